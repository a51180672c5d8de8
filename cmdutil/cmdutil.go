// Package cmdutil runs external commands with their output routed to caller-supplied
// writers, so child processes can log through a logbar.Logger instead of scribbling
// over live progress bars.
package cmdutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"
)

// DefaultTimeout is the default timeout for command execution.
const DefaultTimeout = 30 * time.Minute

// ErrEmptyCommand is returned when no program name is given.
var ErrEmptyCommand = errors.New("no command given")

// Stream runs name with args in dir and waits for it. stdout and stderr receive the
// child's output as it is produced; nil discards. The child inherits the environment
// and stdin of the parent.
func Stream(ctx context.Context, name string, args []string, dir string, stdout, stderr io.Writer) error {
	if name == "" {
		return ErrEmptyCommand
	}
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Env = os.Environ()

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("command %s failed: %w", name, err)
	}
	return nil
}

// StreamWithTimeout is Stream bounded by timeout. A non-positive timeout uses DefaultTimeout.
func StreamWithTimeout(ctx context.Context, name string, args []string, dir string, stdout, stderr io.Writer, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return Stream(ctx, name, args, dir, stdout, stderr)
}

// ExitCode extracts the child's exit status from an error returned by Stream.
// It reports -1 when err did not come from a process that ran to exit.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
