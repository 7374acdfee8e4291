package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// Represents the 'crumake env' command.
type EnvCmd struct{}

// Executes the env command.
//
// Prints the environment bundle steps receive, one KEY='value' line per
// variable, in a form that can be sourced by a POSIX shell.
func (c *EnvCmd) Run(ctx context.Context, flags *BuildFlags) error {
	s, err := openSession(ctx, flags)
	if err != nil {
		return err
	}
	defer s.Close()

	printEnv(os.Stdout, s.bc.Env())
	return nil
}

// Writes "KEY=value" entries as shell assignments with single-quoted values.
func printEnv(w io.Writer, env []string) {
	for _, kv := range env {
		k, v, _ := strings.Cut(kv, "=")
		fmt.Fprintf(w, "%s=%s\n", k, shellQuote(v))
	}
}

// Quotes s for a POSIX shell. Embedded single quotes become '\”.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
