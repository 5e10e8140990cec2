// Package ignore applies gitignore-style exclusion rules to glob results.
package ignore

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

type rule struct {
	pattern  string
	negated  bool
	dirOnly  bool
	anchored bool
}

// builtinRules are applied unconditionally, before any .gitignore content,
// and cannot be negated away: version control internals, dependency
// caches, OS metadata, and log files never belong in expanded output.
var builtinRules = []string{
	".git/",
	".hg/",
	".svn/",
	"node_modules/",
	"vendor/",
	"dist/",
	"build/",
	"target/",
	"__pycache__/",
	".DS_Store",
	"Thumbs.db",
	"*.log",
}

// vcsMarkers identify a repository root; the upward .gitignore walk stops
// at the first directory containing one.
var vcsMarkers = []string{".git", ".hg", ".svn"}

// Matcher applies the built-in set plus user rules with gitignore
// "last rule wins" semantics (built-ins always win).
type Matcher struct {
	builtin []rule
	rules   []rule
}

// NewMatcher builds a matcher from gitignore-style lines. Earlier lines
// come from ancestor files, later lines from files nearer the base
// directory, so nearer rules override.
func NewMatcher(lines []string) *Matcher {
	m := &Matcher{}
	for _, line := range builtinRules {
		if parsed, ok := parseRule(line); ok {
			m.builtin = append(m.builtin, parsed)
		}
	}
	for _, line := range lines {
		if parsed, ok := parseRule(line); ok {
			m.rules = append(m.rules, parsed)
		}
	}
	return m
}

// LoadUpward builds a matcher from every .gitignore found while walking
// from baseDir up to the first ancestor containing a version-control
// marker (or the filesystem root). Rules from higher directories are
// ordered first so rules closer to baseDir take precedence.
func LoadUpward(baseDir string) (*Matcher, error) {
	dir, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, err
	}

	var chain []string
	for {
		chain = append(chain, dir)
		if hasVCSMarker(dir) {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	var lines []string
	for i := len(chain) - 1; i >= 0; i-- {
		fileLines, err := readIgnoreFile(filepath.Join(chain[i], ".gitignore"))
		if err != nil {
			return nil, err
		}
		lines = append(lines, fileLines...)
	}
	return NewMatcher(lines), nil
}

// ShouldIgnore reports whether relPath (slash or native separators) is
// excluded.
func (m *Matcher) ShouldIgnore(relPath string, isDir bool) bool {
	relPath = normalizePath(relPath)

	for _, r := range m.builtin {
		if ruleMatches(r, relPath, isDir) {
			return true
		}
	}

	ignored := false
	for _, r := range m.rules {
		if ruleMatches(r, relPath, isDir) {
			ignored = !r.negated
		}
	}
	return ignored
}

func hasVCSMarker(dir string) bool {
	for _, marker := range vcsMarkers {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}

func readIgnoreFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func parseRule(line string) (rule, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return rule{}, false
	}

	parsed := rule{}
	if strings.HasPrefix(line, "!") {
		parsed.negated = true
		line = strings.TrimPrefix(line, "!")
	}
	if strings.HasPrefix(line, "/") {
		parsed.anchored = true
		line = strings.TrimPrefix(line, "/")
	}
	if strings.HasSuffix(line, "/") {
		parsed.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}

	line = normalizePath(line)
	if line == "" {
		return rule{}, false
	}
	parsed.pattern = line
	return parsed, true
}

func ruleMatches(r rule, relPath string, isDir bool) bool {
	if r.dirOnly {
		if matchDirectoryPattern(r, relPath) {
			return true
		}
		return isDir && matchPathPattern(r.pattern, filepath.Base(relPath))
	}

	if r.anchored {
		return matchPathPattern(r.pattern, relPath)
	}

	if strings.Contains(r.pattern, "/") {
		if matchPathPattern(r.pattern, relPath) {
			return true
		}
		parts := strings.Split(relPath, "/")
		for i := 1; i < len(parts); i++ {
			if matchPathPattern(r.pattern, strings.Join(parts[i:], "/")) {
				return true
			}
		}
		return false
	}

	if matchPathPattern(r.pattern, filepath.Base(relPath)) {
		return true
	}
	for _, segment := range strings.Split(relPath, "/") {
		if matchPathPattern(r.pattern, segment) {
			return true
		}
	}
	return false
}

// matchDirectoryPattern matches a trailing-slash rule against relPath or
// any of its leading directory prefixes.
func matchDirectoryPattern(r rule, relPath string) bool {
	if relPath == r.pattern || strings.HasPrefix(relPath, r.pattern+"/") {
		return true
	}
	if r.anchored {
		return false
	}
	parts := strings.Split(relPath, "/")
	for i := range parts {
		if strings.Join(parts[:i+1], "/") == r.pattern {
			return true
		}
		if i < len(parts)-1 && matchPathPattern(r.pattern, parts[i]) {
			return true
		}
	}
	return false
}

func matchPathPattern(pattern, value string) bool {
	ok, err := regexp.MatchString("^"+globToRegex(pattern)+"$", value)
	return err == nil && ok
}

func globToRegex(pattern string) string {
	var b strings.Builder
	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]
		switch {
		case ch == '*':
			if i+1 < len(pattern) && pattern[i+1] == '*' {
				b.WriteString(".*")
				i++
			} else {
				b.WriteString("[^/]*")
			}
		case ch == '?':
			b.WriteString("[^/]")
		default:
			if strings.ContainsRune(`.+()|[]{}^$\`, rune(ch)) {
				b.WriteByte('\\')
			}
			b.WriteByte(ch)
		}
	}
	return b.String()
}

func normalizePath(path string) string {
	path = filepath.ToSlash(path)
	path = strings.TrimPrefix(path, "./")
	path = strings.TrimPrefix(path, "/")
	return path
}
