package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		name        string
		url         string
		contentType string
		body        string
		ok          bool
	}{
		{name: "declared markdown", url: "https://x/doc", contentType: "text/markdown", body: "# Hi", ok: true},
		{name: "declared markdown with charset", url: "https://x/doc", contentType: "text/markdown; charset=utf-8", body: "# Hi", ok: true},
		{name: "declared json", url: "https://x/api", contentType: "application/json", body: `{"a":1}`, ok: true},
		{name: "declared plain text", url: "https://x/notes", contentType: "text/plain", body: "anything", ok: true},
		{name: "octet-stream but valid json", url: "https://x/blob", contentType: "application/octet-stream", body: `{"a":1}`, ok: true},
		{name: "octet-stream but md suffix", url: "https://x/doc.md", contentType: "application/octet-stream", body: "whatever", ok: true},
		{name: "no header but markdown-looking", url: "https://x/d", contentType: "", body: "# Title\n\ntext", ok: true},
		{name: "no header but list markers", url: "https://x/d", contentType: "", body: "- one\n- two", ok: true},
		{name: "octet-stream garbage", url: "https://x/blob", contentType: "application/octet-stream", body: "\x00\x01binary", ok: false},
		{name: "declared html", url: "https://x/page", contentType: "text/html", body: "# looks like md", ok: false},
	}

	for _, tc := range cases {
		err := Validate(tc.url, tc.contentType, []byte(tc.body))
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if !tc.ok {
			var cte *ContentTypeError
			if !errors.As(err, &cte) {
				t.Fatalf("%s: expected ContentTypeError, got %v", tc.name, err)
			}
			if cte.URL != tc.url {
				t.Fatalf("%s: error names %q", tc.name, cte.URL)
			}
		}
	}
}

func TestHTTPFetcher_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/markdown")
		_, _ = w.Write([]byte("# Hi"))
	}))
	defer srv.Close()

	body, contentType, err := NewHTTPFetcher().Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(body) != "# Hi" || !strings.HasPrefix(contentType, "text/markdown") {
		t.Fatalf("body=%q contentType=%q", body, contentType)
	}
}

func TestHTTPFetcher_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, _, err := NewHTTPFetcher().Fetch(context.Background(), srv.URL)
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if netErr.URL != srv.URL {
		t.Fatalf("error names %q", netErr.URL)
	}
}
