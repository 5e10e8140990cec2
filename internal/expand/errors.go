package expand

import (
	"fmt"
	"strings"
)

// NotFoundError reports an import whose resolved path does not exist.
type NotFoundError struct {
	Path      string
	Directive string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("import not found: %s (from %s)", e.Path, e.Directive)
}

// CircularImportError reports a file importing itself through its own
// ancestor chain. Chain holds the canonical paths from the first repeat
// through to the offending re-entry.
type CircularImportError struct {
	Chain []string
}

func (e *CircularImportError) Error() string {
	return "circular import: " + strings.Join(e.Chain, " -> ")
}

// SizeError reports a file over the per-file input ceiling.
type SizeError struct {
	Path  string
	Size  int64
	Limit int64
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("file %s is %d bytes, over the %d byte import limit", e.Path, e.Size, e.Limit)
}

// CommandError reports that a command or script could not be invoked at
// all. A command that runs and exits non-zero is not a CommandError; its
// output is inlined.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("cannot run %q: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }
