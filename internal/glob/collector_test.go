package glob

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setupTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".git"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "docs"), 0755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"docs/alpha.md":   "alpha content\n",
		"docs/beta.md":    "beta content\n",
		"docs/ignored.md": "should not appear\n",
		"docs/trace.log":  "log line\n",
		".gitignore":      "docs/ignored.md\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestCollect_TaggedBlocksSortedAndFiltered(t *testing.T) {
	dir := setupTree(t)
	c := &Collector{}

	block, paths, err := c.Collect("./docs/*", dir)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	if len(paths) != 2 || paths[0] != "docs/alpha.md" || paths[1] != "docs/beta.md" {
		t.Fatalf("paths = %v", paths)
	}

	want := "<alpha_md path=\"docs/alpha.md\">\nalpha content\n</alpha_md>\n\n" +
		"<beta_md path=\"docs/beta.md\">\nbeta content\n</beta_md>"
	if block != want {
		t.Fatalf("block = %q, want %q", block, want)
	}
	if strings.Contains(block, "should not appear") || strings.Contains(block, "log line") {
		t.Fatalf("ignored content leaked into output: %q", block)
	}
}

func TestCollect_DoublestarPattern(t *testing.T) {
	dir := setupTree(t)
	c := &Collector{}

	_, paths, err := c.Collect("**/*.md", dir)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("paths = %v", paths)
	}
}

func TestCollect_BudgetExceeded(t *testing.T) {
	dir := setupTree(t)
	c := &Collector{TokenLimit: 1}

	_, _, err := c.Collect("./docs/*.md", dir)
	var budget *BudgetError
	if !errors.As(err, &budget) {
		t.Fatalf("expected BudgetError, got %v", err)
	}
	if budget.Pattern != "./docs/*.md" || budget.Files != 2 || budget.Estimate <= 0 {
		t.Fatalf("budget error fields: %+v", budget)
	}
	for _, part := range []string{"./docs/*.md", "2 files"} {
		if !strings.Contains(budget.Error(), part) {
			t.Fatalf("error message %q missing %q", budget.Error(), part)
		}
	}
}

func TestCollect_WarningSideChannel(t *testing.T) {
	dir := setupTree(t)
	var warned []string
	c := &Collector{
		TokenLimit: 8, // alpha+beta ≈ 28 chars ≈ 7 tokens: above limit/2, below limit
		Warnf: func(format string, args ...any) {
			warned = append(warned, fmt.Sprintf(format, args...))
		},
	}

	block, _, err := c.Collect("./docs/*.md", dir)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(warned) != 1 {
		t.Fatalf("expected one warning, got %v", warned)
	}
	if strings.Contains(block, "tokens") {
		t.Fatalf("warning leaked into returned content")
	}
}

func TestTagName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"docs/My-File.MD", "my_file_md"},
		{"2-notes.md", "_2_notes_md"},
		{"a/b/plain", "plain"},
		{"weird...", "weird"},
	}
	for _, tc := range cases {
		if got := tagName(tc.in); got != tc.want {
			t.Fatalf("tagName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
