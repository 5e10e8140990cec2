// Package remote fetches URL imports and validates that what came back is
// text the document can actually inline.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds a single fetch.
const DefaultTimeout = 30 * time.Second

// maxBodyBytes caps how much of a response is read.
const maxBodyBytes = 10 << 20

// Fetcher retrieves remote content. The engine consumes this interface;
// HTTPFetcher is the default implementation and tests substitute fakes.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (body []byte, contentType string, err error)
}

// NetworkError reports a fetch that failed in transport or with a
// non-success status.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ContentTypeError reports content that is neither allow-listed nor
// recognizably markdown/JSON/plain text.
type ContentTypeError struct {
	URL         string
	ContentType string
}

func (e *ContentTypeError) Error() string {
	declared := e.ContentType
	if declared == "" {
		declared = "unknown"
	}
	return fmt.Sprintf("unsupported content type %q for %s (markdown, JSON and plain text are supported)", declared, e.URL)
}

// HTTPFetcher fetches over HTTP(S) with a bounded client.
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher returns a fetcher with the default timeout.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{Client: &http.Client{Timeout: DefaultTimeout}}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", &NetworkError{URL: url, Err: err}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", &NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", &NetworkError{URL: url, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, "", &NetworkError{URL: url, Err: err}
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// allowedTypes is the declared-header allow-list.
var allowedTypes = map[string]bool{
	"text/markdown":    true,
	"text/x-markdown":  true,
	"application/json": true,
	"text/plain":       true,
}

// Validate accepts content whose declared type is allow-listed; for an
// absent or generic declaration it falls back to sniffing (JSON parse
// attempt, URL suffix, markdown heuristics).
func Validate(url, contentType string, body []byte) error {
	declared := normalizeType(contentType)
	if allowedTypes[declared] {
		return nil
	}
	if declared == "" || declared == "application/octet-stream" || declared == "binary/octet-stream" {
		if looksLikeJSON(body) || hasTextSuffix(url) || looksLikeMarkdown(body) {
			return nil
		}
	}
	return &ContentTypeError{URL: url, ContentType: contentType}
}

func normalizeType(contentType string) string {
	t := contentType
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = t[:i]
	}
	return strings.ToLower(strings.TrimSpace(t))
}

func looksLikeJSON(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return false
	}
	if trimmed[0] != '{' && trimmed[0] != '[' && trimmed[0] != '"' {
		return false
	}
	return json.Valid(trimmed)
}

func hasTextSuffix(url string) bool {
	u := url
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	u = strings.ToLower(u)
	return strings.HasSuffix(u, ".md") || strings.HasSuffix(u, ".markdown") || strings.HasSuffix(u, ".json")
}

// looksLikeMarkdown checks for headings, list markers, or fenced blocks.
func looksLikeMarkdown(body []byte) bool {
	text := string(body)
	if strings.Contains(text, "```") {
		return true
	}
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") || strings.HasPrefix(trimmed, "## ") {
			return true
		}
		if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") {
			return true
		}
	}
	return false
}
