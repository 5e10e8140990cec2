// Package glob expands glob-pattern imports into tagged file blocks with
// ignore filtering and a token budget.
package glob

import (
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/weave-dev/weave/internal/ignore"
)

const (
	// Rough chars-per-token divisor used for the budget estimate.
	charsPerToken = 4

	// DefaultTokenLimit is the hard ceiling on a single glob expansion.
	DefaultTokenLimit = 100_000

	// budgetOverrideEnv disables the hard ceiling when set to any
	// non-empty value. The warning threshold still applies.
	budgetOverrideEnv = "WEAVE_NO_GLOB_BUDGET"
)

// BudgetError reports a glob expansion whose estimated token count
// exceeds the ceiling.
type BudgetError struct {
	Pattern  string
	Files    int
	Estimate int
	Limit    int
}

func (e *BudgetError) Error() string {
	return fmt.Sprintf("glob %q matched %d files totalling ~%d tokens, over the %d token limit (set %s=1 to override)",
		e.Pattern, e.Files, e.Estimate, e.Limit, budgetOverrideEnv)
}

// Collector expands glob patterns relative to a base directory.
type Collector struct {
	// TokenLimit overrides DefaultTokenLimit when positive.
	TokenLimit int

	// Warnf receives near-budget warnings; returned content never
	// carries them. Nil means warnings are dropped.
	Warnf func(format string, args ...any)
}

// Collect expands pattern under baseDir into one tagged block per matched
// file, sorted by relative path. Ignore rules come from every .gitignore
// between baseDir and the repository root, plus the built-in set.
// The returned paths are the matched files relative to baseDir.
func (c *Collector) Collect(pattern, baseDir string) (string, []string, error) {
	matcher, err := ignore.LoadUpward(baseDir)
	if err != nil {
		return "", nil, fmt.Errorf("loading ignore rules for %s: %w", baseDir, err)
	}

	fsys := os.DirFS(baseDir)
	cleaned := strings.TrimPrefix(pattern, "./")
	matches, err := doublestar.Glob(fsys, cleaned)
	if err != nil {
		return "", nil, fmt.Errorf("glob %q: %w", pattern, err)
	}
	sort.Strings(matches)

	type matchedFile struct {
		rel     string
		content string
	}
	var files []matchedFile
	totalChars := 0
	for _, rel := range matches {
		info, err := fs.Stat(fsys, rel)
		if err != nil {
			return "", nil, fmt.Errorf("stat %s: %w", rel, err)
		}
		if matcher.ShouldIgnore(rel, info.IsDir()) {
			continue
		}
		if info.IsDir() {
			continue
		}
		data, err := fs.ReadFile(fsys, rel)
		if err != nil {
			return "", nil, fmt.Errorf("read %s: %w", rel, err)
		}
		files = append(files, matchedFile{rel: rel, content: string(data)})
		totalChars += len(data)
	}

	limit := c.TokenLimit
	if limit <= 0 {
		limit = DefaultTokenLimit
	}
	estimate := totalChars / charsPerToken
	if estimate > limit && os.Getenv(budgetOverrideEnv) == "" {
		return "", nil, &BudgetError{
			Pattern:  pattern,
			Files:    len(files),
			Estimate: estimate,
			Limit:    limit,
		}
	}
	if estimate > limit/2 && c.Warnf != nil {
		c.Warnf("glob %q matched %d files, ~%d tokens (limit %d)", pattern, len(files), estimate, limit)
	}

	blocks := make([]string, 0, len(files))
	paths := make([]string, 0, len(files))
	for _, f := range files {
		tag := tagName(f.rel)
		body := strings.TrimRight(f.content, "\n")
		blocks = append(blocks, fmt.Sprintf("<%s path=%q>\n%s\n</%s>", tag, f.rel, body, tag))
		paths = append(paths, f.rel)
	}
	return strings.Join(blocks, "\n\n"), paths, nil
}

// tagName derives an XML-safe tag from a file's base name: lower-cased,
// non-alphanumeric runs collapsed to a single underscore, and a leading
// digit escaped with an underscore.
func tagName(rel string) string {
	base := rel
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	base = strings.ToLower(base)

	var b strings.Builder
	pendingSep := false
	for _, r := range base {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !alnum {
			pendingSep = b.Len() > 0
			continue
		}
		if pendingSep {
			b.WriteByte('_')
			pendingSep = false
		}
		b.WriteRune(r)
	}
	name := b.String()
	if name == "" {
		return "file"
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "_" + name
	}
	return name
}
