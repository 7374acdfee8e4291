package runtime

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
)

// Runs commands directly on the host with os/exec.
//
// The zero value is ready to use. Commands inherit the current process
// environment with [Command.Env] layered on top.
type Host struct{}

// Runs the command and waits for it to exit.
//
// A non-zero exit status is returned as an [*ExitError]. If the command has no
// stderr writer, stderr is captured into the error.
func (Host) Run(ctx context.Context, cmd Command) error {
	if len(cmd.Args) == 0 {
		return ErrEmptyCommand
	}

	c := exec.CommandContext(ctx, cmd.Args[0], cmd.Args[1:]...)
	c.Dir = cmd.Dir
	c.Env = append(os.Environ(), cmd.Env...)
	c.Stdin = cmd.Stdin
	c.Stdout = cmd.Stdout

	var stderr bytes.Buffer
	c.Stderr = cmd.Stderr
	if c.Stderr == nil {
		c.Stderr = &stderr
	}

	slog.Debug("exec", "command", cmd.String(), "dir", cmd.Dir)

	if err := c.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
			return &ExitError{Args: cmd.Args, Code: exitErr.ExitCode(), Stderr: stderr.String()}
		}
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, cmd.Args[0])
		}
		return fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	return nil
}

// Reports whether name resolves to an executable on the host PATH.
func (Host) LookPath(ctx context.Context, name string) error {
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}
