package bundle

import (
	"bytes"
	"context"
	"io"
	"slices"

	"github.com/cruciblehq/crumake/internal/buildctx"
	"github.com/cruciblehq/crumake/internal/paths"
	"github.com/cruciblehq/crumake/internal/runtime"
)

// Runs commands for bundle steps. Implemented by [runtime.Host] and
// [*runtime.Container].
type Executor interface {
	Run(ctx context.Context, cmd runtime.Command) error
}

// A named build step and its output directory.
type Bundle struct {
	Name string // Bundle name (e.g., "binary").
	Dest string // Output directory, bundles/<version>/<name>.
}

// A build step invoked by the dispatcher.
type Step interface {
	Run(ctx context.Context, env *Env) error
}

// Adapts a function to the [Step] interface.
type StepFunc func(ctx context.Context, env *Env) error

// Calls f.
func (f StepFunc) Run(ctx context.Context, env *Env) error {
	return f(ctx, env)
}

// Everything a step may use while it runs.
type Env struct {
	Bundle  Bundle            // The bundle being made.
	Context *buildctx.Context // Read-only build context shared by all bundles.
	Root    string            // Repository root; commands run here.
	Exec    Executor          // Executor for commands.
	Stdout  io.Writer         // Destination for command output.
	Stderr  io.Writer         // Destination for command diagnostics.
}

// Returns the output directory of another bundle of the same version.
func (e *Env) Sibling(name string) string {
	return paths.Bundle(e.Root, e.Context.Version(), name)
}

// Returns the environment entries passed to every command of the step.
func (e *Env) environ(extra ...string) []string {
	env := e.Context.Env()
	env = append(env, "DEST="+e.Bundle.Dest)
	return append(env, extra...)
}

// Runs a command in the repository root with the step environment.
func (e *Env) run(ctx context.Context, args ...string) error {
	return e.runEnv(ctx, nil, args...)
}

// Runs a command with extra environment entries layered on top.
func (e *Env) runEnv(ctx context.Context, extra []string, args ...string) error {
	return e.Exec.Run(ctx, runtime.Command{
		Args:   slices.Clone(args),
		Env:    e.environ(extra...),
		Dir:    e.Root,
		Stdout: e.Stdout,
		Stderr: e.Stderr,
	})
}

// Runs a command and returns its standard output.
func (e *Env) output(ctx context.Context, args ...string) (string, error) {
	var out bytes.Buffer
	err := e.Exec.Run(ctx, runtime.Command{
		Args:   slices.Clone(args),
		Env:    e.environ(),
		Dir:    e.Root,
		Stdout: &out,
		Stderr: e.Stderr,
	})
	return out.String(), err
}
