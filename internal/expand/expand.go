// Package expand is the recursive driver: it parses a document's
// directives, resolves each one, and splices the results back in,
// recursing into imported files with cycle detection.
package expand

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/weave-dev/weave/internal/directive"
	"github.com/weave-dev/weave/internal/extract"
	"github.com/weave-dev/weave/internal/glob"
	"github.com/weave-dev/weave/internal/remote"
	"github.com/weave-dev/weave/internal/shell"
)

// DefaultMaxFileSize is the per-file input ceiling.
const DefaultMaxFileSize = 10 << 20

// Expander resolves import directives. Zero-value fields fall back to
// production defaults; tests substitute the collaborator interfaces.
type Expander struct {
	Fetcher     remote.Fetcher
	Runner      shell.Runner
	Globber     *glob.Collector
	MaxFileSize int64

	// Env is the environment for command and script directives; nil
	// means the current process environment, threaded explicitly.
	Env []string

	// Verbose sends a per-directive trace through Logf (stderr when
	// Logf is nil).
	Verbose bool
	Logf    func(format string, args ...any)

	// Imports, when non-nil, accumulates every file path touched during
	// expansion. Callers use it for dry-run reporting; correctness does
	// not depend on it.
	Imports *[]string
}

// New returns an Expander wired to the real collaborators.
func New() *Expander {
	return &Expander{
		Fetcher: remote.NewHTTPFetcher(),
		Runner:  shell.ExecRunner{},
		Globber: &glob.Collector{},
	}
}

// HasDirectives is the cheap pre-check callers use to skip expansion.
func HasDirectives(text string) bool {
	return directive.HasDirectives(text)
}

// Expand resolves every directive in text, with relative paths resolved
// against dir. Any resolver failure aborts the whole call; there is no
// partial output.
func (e *Expander) Expand(ctx context.Context, text, dir string) (string, error) {
	return e.expand(ctx, text, dir, nil)
}

// expand processes directives in reverse document order so that splicing
// never invalidates the byte offsets of directives still to be processed.
// visited carries the canonical paths of the ancestor chain; each
// recursion gets its own copy, so a file may appear in two unrelated
// branches without tripping cycle detection.
func (e *Expander) expand(ctx context.Context, text, dir string, visited []string) (string, error) {
	directives := directive.Parse(text)
	for i := len(directives) - 1; i >= 0; i-- {
		d := directives[i]
		if e.Verbose {
			e.logf("resolving %s directive %s", d.Kind, summarize(d.Original))
		}
		replacement, err := e.resolve(ctx, d, dir, visited)
		if err != nil {
			return "", fmt.Errorf("resolving %s: %w", summarize(d.Original), err)
		}
		text = text[:d.Index] + replacement + text[d.Index+len(d.Original):]
	}
	return text, nil
}

func (e *Expander) resolve(ctx context.Context, d directive.Directive, dir string, visited []string) (string, error) {
	switch d.Kind {
	case directive.KindFile:
		return e.resolveFile(ctx, d, dir, visited)
	case directive.KindSymbol:
		content, _, err := e.readImport(d.Path, dir, d.Original)
		if err != nil {
			return "", err
		}
		return extract.Symbol(content, d.Symbol)
	case directive.KindGlob:
		return e.resolveGlob(d.Pattern, dir)
	case directive.KindURL:
		return e.resolveURL(ctx, d.URL)
	case directive.KindCommand:
		out, err := e.runner().Run(ctx, d.Command, dir, e.env())
		if err != nil {
			return "", &CommandError{Command: d.Command, Err: err}
		}
		return combineOutput(out), nil
	case directive.KindCodeFence:
		out, err := e.runner().RunScript(ctx, d.Shebang, d.Code, dir, e.env())
		if err != nil {
			return "", &CommandError{Command: d.Shebang, Err: err}
		}
		return combineOutput(out), nil
	default:
		return "", fmt.Errorf("unknown directive kind %v", d.Kind)
	}
}

// resolveFile inlines a whole file or a line slice of it. Whole files are
// recursively expanded with the file's own directory as the new base;
// line slices are inserted verbatim.
func (e *Expander) resolveFile(ctx context.Context, d directive.Directive, dir string, visited []string) (string, error) {
	content, path, err := e.readImport(d.Path, dir, d.Original)
	if err != nil {
		return "", err
	}

	if d.Range != nil {
		return extract.Lines(content, d.Range.Start, d.Range.End), nil
	}

	for _, seen := range visited {
		if seen == path {
			return "", &CircularImportError{Chain: append(append([]string(nil), visited...), path)}
		}
	}
	child := make([]string, 0, len(visited)+1)
	child = append(child, visited...)
	child = append(child, path)

	return e.expand(ctx, content, filepath.Dir(path), child)
}

// readImport resolves, size-checks and reads a path-backed import,
// recording it in the accumulator. Returns the content and the canonical
// absolute path.
func (e *Expander) readImport(path, dir, original string) (string, string, error) {
	resolved, err := resolvePath(path, dir)
	if err != nil {
		return "", "", err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return "", "", &NotFoundError{Path: resolved, Directive: original}
		}
		return "", "", fmt.Errorf("stat %s: %w", resolved, err)
	}
	if limit := e.maxFileSize(); info.Size() > limit {
		return "", "", &SizeError{Path: resolved, Size: info.Size(), Limit: limit}
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return "", "", fmt.Errorf("read %s: %w", resolved, err)
	}
	e.record(resolved)
	return string(data), resolved, nil
}

// resolveGlob runs the collector with the right base: relative patterns
// are anchored at the current file's directory, absolute and
// home-relative patterns at the filesystem root.
func (e *Expander) resolveGlob(pattern, dir string) (string, error) {
	p, err := expandHome(pattern)
	if err != nil {
		return "", err
	}
	base := dir
	if filepath.IsAbs(p) {
		base = string(filepath.Separator)
		p = strings.TrimPrefix(p, string(filepath.Separator))
	}

	globber := e.Globber
	if globber == nil {
		globber = &glob.Collector{}
	}
	block, files, err := globber.Collect(p, base)
	if err != nil {
		return "", err
	}
	for _, f := range files {
		e.record(filepath.Join(base, f))
	}
	return block, nil
}

func (e *Expander) resolveURL(ctx context.Context, url string) (string, error) {
	fetcher := e.Fetcher
	if fetcher == nil {
		fetcher = remote.NewHTTPFetcher()
	}
	body, contentType, err := fetcher.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	if err := remote.Validate(url, contentType, body); err != nil {
		return "", err
	}
	return string(body), nil
}

func (e *Expander) runner() shell.Runner {
	if e.Runner != nil {
		return e.Runner
	}
	return shell.ExecRunner{}
}

func (e *Expander) env() []string {
	if e.Env != nil {
		return e.Env
	}
	return os.Environ()
}

func (e *Expander) maxFileSize() int64 {
	if e.MaxFileSize > 0 {
		return e.MaxFileSize
	}
	return DefaultMaxFileSize
}

func (e *Expander) record(path string) {
	if e.Imports != nil {
		*e.Imports = append(*e.Imports, path)
	}
}

func (e *Expander) logf(format string, args ...any) {
	if e.Logf != nil {
		e.Logf(format, args...)
		return
	}
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// resolvePath turns a directive path into a canonical absolute path:
// home-relative and absolute paths pass through, everything else is
// anchored at the directory of the file being expanded.
func resolvePath(path, dir string) (string, error) {
	p, err := expandHome(path)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(dir, p)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	return filepath.Clean(abs), nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expanding %s: %w", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// combineOutput frames captured command output for inlining: stderr first
// when both streams are non-empty, and no trailing newline so splices
// don't introduce blank lines.
func combineOutput(out shell.Output) string {
	stderr := strings.TrimRight(out.Stderr, "\n")
	stdout := strings.TrimRight(out.Stdout, "\n")
	switch {
	case stderr != "" && stdout != "":
		return stderr + "\n" + stdout
	case stderr != "":
		return stderr
	default:
		return stdout
	}
}

// summarize keeps error and trace lines readable when the original match
// is a multi-line fenced block.
func summarize(original string) string {
	if i := strings.IndexByte(original, '\n'); i >= 0 {
		return original[:i] + "..."
	}
	return original
}
