package system

import (
	"bytes"
	"context"
	"io"
	"os/exec"
)

// CommandResult holds the captured streams of a finished command.
type CommandResult struct {
	Stdout string
	Stderr string
}

// CommandRunner defines an interface for running system commands.
type CommandRunner interface {
	// Run executes name with args. When stdin is non-nil it is piped to the
	// process; secrets must travel this way and never through args.
	Run(ctx context.Context, stdin io.Reader, name string, args ...string) (CommandResult, error)
}

// ExecCommandRunner executes commands on the local host.
type ExecCommandRunner struct{}

// NewCommandRunner returns a default command runner implementation.
func NewCommandRunner() CommandRunner {
	return &ExecCommandRunner{}
}

// Run executes a command and returns its stdout and stderr separately.
func (r *ExecCommandRunner) Run(ctx context.Context, stdin io.Reader, name string, args ...string) (CommandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != nil {
		cmd.Stdin = stdin
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	return CommandResult{Stdout: stdout.String(), Stderr: stderr.String()}, err
}

// CommandExists checks if a command is available in PATH or, for paths,
// exists and is executable.
func CommandExists(command string) bool {
	_, err := exec.LookPath(command)
	return err == nil
}
