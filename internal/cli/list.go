package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/cruciblehq/crumake/internal/bundle"
)

// Represents the 'crumake list' command.
type ListCmd struct{}

// Executes the list command.
func (c *ListCmd) Run(ctx context.Context) error {
	printBundles(os.Stdout, bundle.DefaultRegistry(), bundle.Defaults())
	return nil
}

// Writes the registered bundles, default ones first in the order they run.
func printBundles(w io.Writer, r bundle.Registry, defaults []string) {
	for _, name := range defaults {
		fmt.Fprintf(w, "%s (default)\n", name)
	}
	for _, name := range r.Names() {
		if !slices.Contains(defaults, name) {
			fmt.Fprintln(w, name)
		}
	}
}
