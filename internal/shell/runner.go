// Package shell runs command directives and executable code fences.
package shell

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
)

// Output is the captured result of one invocation. A non-zero ExitCode is
// not an error at this layer; directive authors want failing output
// inlined too.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes shell commands and shebang scripts. The environment is
// threaded explicitly; implementations never mutate process-wide state.
type Runner interface {
	Run(ctx context.Context, command, dir string, env []string) (Output, error)
	RunScript(ctx context.Context, shebang, code, dir string, env []string) (Output, error)
}

// ExecRunner runs commands through sh and scripts through their shebang.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, command, dir string, env []string) (Output, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	return run(cmd, dir, env, fmt.Sprintf("command %q", command))
}

// RunScript materializes code (whose first line is the shebang) into a
// temporary executable and runs it, so the kernel's interpreter dispatch
// applies exactly as it would for a standalone script.
func (ExecRunner) RunScript(ctx context.Context, shebang, code, dir string, env []string) (Output, error) {
	f, err := os.CreateTemp("", "weave-fence-*")
	if err != nil {
		return Output{}, fmt.Errorf("staging script for %q: %w", shebang, err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.WriteString(code); err != nil {
		f.Close()
		return Output{}, fmt.Errorf("staging script for %q: %w", shebang, err)
	}
	if err := f.Close(); err != nil {
		return Output{}, fmt.Errorf("staging script for %q: %w", shebang, err)
	}
	if err := os.Chmod(path, 0o700); err != nil {
		return Output{}, fmt.Errorf("staging script for %q: %w", shebang, err)
	}

	cmd := exec.CommandContext(ctx, path)
	return run(cmd, dir, env, fmt.Sprintf("script %q", shebang))
}

func run(cmd *exec.Cmd, dir string, env []string, what string) (Output, error) {
	var stdout, stderr bytes.Buffer
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if env != nil {
		cmd.Env = env
	}

	err := cmd.Run()
	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			out.ExitCode = exitErr.ExitCode()
			return out, nil
		}
		return out, fmt.Errorf("running %s: %w", what, err)
	}
	return out, nil
}
