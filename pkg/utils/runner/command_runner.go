// Package runner executes external processes while capturing their output.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// CommandResult captures the output collected during an external command
// execution. Both fields contain the complete output produced by the command,
// including any output written before a failure.
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Command describes one external invocation.
type Command struct {
	// Name is the program to run.
	Name string
	// Args are the program arguments, excluding the program name.
	Args []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Env entries are appended to the parent environment.
	Env []string
	// Stdin, when non-nil, is connected to the process standard input.
	Stdin io.Reader
}

// CommandRunner executes external commands while capturing their output.
// A non-zero exit status is not an error: it is reported through
// CommandResult.ExitCode so callers can apply their own failure policy.
// Errors are reserved for invocations that never ran to completion
// (program missing, context cancelled).
type CommandRunner interface {
	Run(ctx context.Context, cmd Command) (CommandResult, error)
}

// ErrEmptyCommand is returned when a Command has no program name.
var ErrEmptyCommand = errors.New("command name must not be empty")

// ExecCommandRunner runs commands with os/exec.
type ExecCommandRunner struct{}

// NewExecCommandRunner creates a runner backed by os/exec.
func NewExecCommandRunner() *ExecCommandRunner {
	return &ExecCommandRunner{}
}

// Run executes the command and captures stdout and stderr separately.
func (r *ExecCommandRunner) Run(ctx context.Context, cmd Command) (CommandResult, error) {
	if cmd.Name == "" {
		return CommandResult{}, ErrEmptyCommand
	}

	var outBuf, errBuf bytes.Buffer

	execCmd := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	execCmd.Dir = cmd.Dir
	execCmd.Stdout = &outBuf
	execCmd.Stderr = &errBuf
	execCmd.Stdin = cmd.Stdin

	if len(cmd.Env) > 0 {
		execCmd.Env = append(os.Environ(), cmd.Env...)
	}

	runErr := execCmd.Run()

	result := CommandResult{
		Stdout: outBuf.String(),
		Stderr: errBuf.String(),
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			// The process ran and reported failure; surface the status only.
			result.ExitCode = exitErr.ExitCode()

			return result, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, fmt.Errorf("command %s interrupted: %w", cmd.Name, ctxErr)
		}

		return result, fmt.Errorf("command %s failed to start: %w", cmd.Name, runErr)
	}

	return result, nil
}
