package cli

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/cruciblehq/crumake/internal/probe"
)

// Represents the 'crumake probe' command.
type ProbeCmd struct{}

// Executes the probe command.
//
// Prints every capability checked with its outcome, then the resulting build
// tags. Only the executor is prepared; version metadata is not needed.
func (c *ProbeCmd) Run(ctx context.Context, flags *BuildFlags) error {
	root, err := flags.root()
	if err != nil {
		return err
	}

	exec, release, err := openExecutor(ctx, flags, root)
	if err != nil {
		return err
	}
	defer release()

	res := probe.New(exec, flags.Compiler).ProbeAll(ctx, probe.DefaultRules(flags.Compiler))
	printResults(os.Stdout, res)
	return nil
}

// Writes probe results as aligned "capability  status" lines.
func printResults(w io.Writer, res probe.Results) {
	names := slices.Sorted(maps.Keys(res.Present))

	width := 0
	for _, name := range names {
		width = max(width, len(name))
	}

	for _, name := range names {
		status := "absent"
		if res.Present[name] {
			status = "present"
		}
		fmt.Fprintf(w, "%-*s  %s\n", width, name, status)
	}
	fmt.Fprintf(w, "tags: %s\n", strings.Join(res.Tags, " "))
}
