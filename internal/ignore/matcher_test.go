package ignore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMatcher_BuiltinAndUserRules(t *testing.T) {
	m := NewMatcher([]string{
		"secrets/**",
		"!secrets/public.md",
		"*.tmp",
	})

	cases := []struct {
		path    string
		isDir   bool
		ignored bool
	}{
		{path: ".git/config", isDir: false, ignored: true},
		{path: "node_modules/pkg/index.js", isDir: false, ignored: true},
		{path: "deep/vendor/lib/a.go", isDir: false, ignored: true},
		{path: "debug.log", isDir: false, ignored: true},
		{path: ".DS_Store", isDir: false, ignored: true},
		{path: "secrets/key.md", isDir: false, ignored: true},
		{path: "secrets/public.md", isDir: false, ignored: false},
		{path: "nested/cache.tmp", isDir: false, ignored: true},
		{path: "docs/guide.md", isDir: false, ignored: false},
	}

	for _, tc := range cases {
		if got := m.ShouldIgnore(tc.path, tc.isDir); got != tc.ignored {
			t.Fatalf("path %s: expected ignored=%v, got %v", tc.path, tc.ignored, got)
		}
	}
}

func TestMatcher_BuiltinNotNegatable(t *testing.T) {
	m := NewMatcher([]string{"!*.log", "!node_modules/"})
	if !m.ShouldIgnore("trace.log", false) {
		t.Fatalf("expected *.log builtin to survive user negation")
	}
	if !m.ShouldIgnore("node_modules/a/b.js", false) {
		t.Fatalf("expected node_modules builtin to survive user negation")
	}
}

func TestMatcher_NegatedDirectoryRule(t *testing.T) {
	m := NewMatcher([]string{
		"out/",
		"!out/include/",
	})

	if !m.ShouldIgnore("out/tmp/file.go", false) {
		t.Fatalf("expected out/tmp/file.go to be ignored")
	}
	if m.ShouldIgnore("out/include/file.go", false) {
		t.Fatalf("expected out/include/file.go to be included")
	}
}

func TestLoadUpward_CollectsToVCSRoot(t *testing.T) {
	root := t.TempDir()
	// repo root (has .git) -> mid -> leaf
	if err := os.MkdirAll(filepath.Join(root, ".git"), 0755); err != nil {
		t.Fatal(err)
	}
	leaf := filepath.Join(root, "mid", "leaf")
	if err := os.MkdirAll(leaf, 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(root, ".gitignore"), "generated/\n*.bak\n")
	writeFile(t, filepath.Join(root, "mid", ".gitignore"), "!important.bak\n")

	m, err := LoadUpward(leaf)
	if err != nil {
		t.Fatalf("LoadUpward: %v", err)
	}

	if !m.ShouldIgnore("generated/x.md", false) {
		t.Fatalf("expected root .gitignore rule to apply")
	}
	if !m.ShouldIgnore("old.bak", false) {
		t.Fatalf("expected *.bak to be ignored")
	}
	// The nearer .gitignore negation overrides the ancestor rule.
	if m.ShouldIgnore("important.bak", false) {
		t.Fatalf("expected nearer negation to win")
	}
}

func TestLoadUpward_StopsAtVCSMarker(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".gitignore"), "above-the-root.md\n")
	repo := filepath.Join(root, "repo")
	if err := os.MkdirAll(filepath.Join(repo, ".git"), 0755); err != nil {
		t.Fatal(err)
	}

	m, err := LoadUpward(repo)
	if err != nil {
		t.Fatalf("LoadUpward: %v", err)
	}
	if m.ShouldIgnore("above-the-root.md", false) {
		t.Fatalf("rules above the VCS root must not apply")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}
