package docker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Runner abstracts invocations of the docker binary. The release pipeline
// is a strictly sequential series of blocking toolchain calls, and routing
// them through this interface lets tests script outcomes (auth missing,
// build failure, push failure) without a daemon or network.
type Runner interface {
	// Run executes docker with the given arguments, streaming output to
	// the runner's attached writers. Returns an error on non-zero exit.
	// Used for long-running commands (build, push) whose progress the
	// operator wants to see live.
	Run(ctx context.Context, args ...string) error

	// Output executes docker with the given arguments and returns the
	// combined stdout+stderr. Used for short probe commands (buildx
	// inspect, container run -d) whose output is consumed, not displayed.
	Output(ctx context.Context, args ...string) ([]byte, error)
}

// ExecRunner is the production Runner. It shells out to the docker binary,
// which is the only way to reach buildx and the CLI's credential helpers.
type ExecRunner struct {
	// Bin is the docker binary name or path. Defaults to "docker".
	Bin string

	// Dir is the working directory for invocations. Empty means the
	// current directory. Build contexts resolve relative to this.
	Dir string

	// Env holds extra environment variables in "KEY=value" form, appended
	// to the inherited environment.
	Env []string

	// Stdout and Stderr receive streamed command output for Run.
	// Nil writers default to the process's own stdout/stderr.
	Stdout, Stderr io.Writer
}

// NewRunner creates an ExecRunner with the standard docker binary and the
// process's own output streams.
func NewRunner() *ExecRunner {
	return &ExecRunner{
		Bin:    "docker",
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run executes the docker binary, streaming output so the operator sees
// build and push progress as the toolchain produces it.
func (r *ExecRunner) Run(ctx context.Context, args ...string) error {
	cmd := r.command(ctx, args)

	cmd.Stdout = r.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = r.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w", r.binary(), strings.Join(args, " "), err)
	}
	return nil
}

// Output executes the docker binary and captures combined output.
// On failure the output is included in the error, since the toolchain's
// stderr usually carries the only useful diagnosis.
func (r *ExecRunner) Output(ctx context.Context, args ...string) ([]byte, error) {
	cmd := r.command(ctx, args)

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	if err := cmd.Run(); err != nil {
		return buf.Bytes(), fmt.Errorf("%s %s: %s: %w",
			r.binary(), strings.Join(args, " "),
			strings.TrimSpace(buf.String()), err)
	}
	return buf.Bytes(), nil
}

// command builds the exec.Cmd with context cancellation, working
// directory, and environment wiring shared by Run and Output.
func (r *ExecRunner) command(ctx context.Context, args []string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, r.binary(), args...)
	cmd.Dir = r.Dir

	// os.Environ() returns a copy, so appending does not mutate this
	// process's environment.
	cmd.Env = append(os.Environ(), r.Env...)
	return cmd
}

func (r *ExecRunner) binary() string {
	if r.Bin != "" {
		return r.Bin
	}
	return "docker"
}
