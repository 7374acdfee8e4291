package cli

import (
	"context"
	"os"

	"github.com/cruciblehq/crumake/internal/bundle"
)

// Represents the 'crumake make' command.
type MakeCmd struct {
	Bundles []string `arg:"" optional:"" help:"Bundles to make, in order. Defaults to every bundle." placeholder:"BUNDLE"`
}

// Executes the make command.
//
// Bundle names are checked before the environment is prepared, so a typo
// fails fast without starting containers or probing.
func (c *MakeCmd) Run(ctx context.Context, flags *BuildFlags) error {
	registry := bundle.DefaultRegistry()
	if err := registry.Check(c.Bundles); err != nil {
		return err
	}

	s, err := openSession(ctx, flags)
	if err != nil {
		return err
	}
	defer s.Close()

	d := &bundle.Dispatcher{
		Root:     s.root,
		Exec:     s.exec,
		Registry: registry,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	}
	return d.Dispatch(ctx, c.Bundles, s.bc)
}
