package runtime

import (
	"fmt"
	"io"
	"strings"
)

// Describes a single process invocation.
type Command struct {
	Args   []string  // Program and arguments. Args[0] is resolved through PATH.
	Env    []string  // Extra "KEY=value" entries layered over the inherited environment.
	Dir    string    // Working directory. Empty inherits the executor's default.
	Stdin  io.Reader // Standard input. Nil means no input.
	Stdout io.Writer // Standard output. Nil discards.
	Stderr io.Writer // Standard error. Nil captures it into the [ExitError].
}

// Reports a process that ran to completion with a non-zero exit status.
type ExitError struct {
	Args   []string // Command line of the failed process.
	Code   int      // Exit status.
	Stderr string   // Captured standard error, when the caller did not supply a writer.
}

// Formats the failure as "<program>: exit status <code>", followed by any
// captured standard error.
func (e *ExitError) Error() string {
	name := "(unknown)"
	if len(e.Args) > 0 {
		name = e.Args[0]
	}
	msg := fmt.Sprintf("%s: exit status %d", name, e.Code)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

// Matches [ErrCommandFailed].
func (e *ExitError) Is(target error) bool {
	return target == ErrCommandFailed
}

// Returns the command line as a single space-joined string, for logging.
func (c Command) String() string {
	return strings.Join(c.Args, " ")
}
