package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/weave-dev/weave/internal/expand"
	"github.com/weave-dev/weave/internal/fileutil"
	"github.com/weave-dev/weave/internal/remote"
	"github.com/weave-dev/weave/internal/shell"
)

func RunExpand(cmd *cobra.Command, args []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to read --output flag: %w", err)
	}
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("failed to read --verbose flag: %w", err)
	}
	listImports, err := cmd.Flags().GetBool("list-imports")
	if err != nil {
		return fmt.Errorf("failed to read --list-imports flag: %w", err)
	}
	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		return fmt.Errorf("failed to read --timeout flag: %w", err)
	}

	path, text, err := readInputFile(args[0])
	if err != nil {
		return err
	}

	result := text
	if expand.HasDirectives(text) {
		var touched []string
		e := expand.New()
		e.Verbose = verbose
		e.Fetcher = &remote.HTTPFetcher{Client: &http.Client{Timeout: timeout}}
		e.Runner = timeoutRunner{inner: shell.ExecRunner{}, limit: timeout}
		if listImports {
			e.Imports = &touched
		}
		e.Globber.Warnf = func(format string, warnArgs ...any) {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: "+format+"\n", warnArgs...)
		}

		result, err = e.Expand(cmd.Context(), text, filepath.Dir(path))
		if err != nil {
			return err
		}

		if listImports {
			for _, p := range fileutil.DedupeStrings(touched) {
				fmt.Fprintln(cmd.ErrOrStderr(), p)
			}
		}
	}

	out := fileutil.EnsureTrailingNewline(result)
	if outputPath != "" {
		return fileutil.WriteIfChanged(outputPath, []byte(out))
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

// timeoutRunner bounds each command or script invocation independently;
// a slow directive surfaces as a CommandError instead of hanging the
// whole expansion.
type timeoutRunner struct {
	inner shell.Runner
	limit time.Duration
}

func (r timeoutRunner) Run(ctx context.Context, command, dir string, env []string) (shell.Output, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	return r.inner.Run(ctx, command, dir, env)
}

func (r timeoutRunner) RunScript(ctx context.Context, shebang, code, dir string, env []string) (shell.Output, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	return r.inner.RunScript(ctx, shebang, code, dir, env)
}

func (r timeoutRunner) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.limit <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.limit)
}

func readInputFile(arg string) (string, string, error) {
	path, err := filepath.Abs(arg)
	if err != nil {
		return "", "", fmt.Errorf("failed to resolve path %q: %w", arg, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return path, string(data), nil
}
