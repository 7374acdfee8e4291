package cli

import (
	"context"
	"log/slog"

	"github.com/cruciblehq/crumake/internal/buildctx"
	"github.com/cruciblehq/crumake/internal/probe"
	"github.com/cruciblehq/crumake/internal/runtime"
	"github.com/cruciblehq/crumake/internal/version"
)

// Runs commands on the host or in the build environment.
type Executor interface {
	Run(ctx context.Context, cmd runtime.Command) error
	LookPath(ctx context.Context, name string) error
}

// State shared by the commands that build a context.
type session struct {
	root    string            // Absolute repository root.
	exec    Executor          // Executor for probes and bundles.
	results probe.Results     // Probe outcome.
	info    version.Info      // Resolved version metadata.
	bc      *buildctx.Context // Assembled build context.
	close   func()            // Releases the executor.
}

// Resolves the version, selects an executor, probes it, and assembles the
// build context.
//
// Version resolution always runs on the host, where the repository's git
// metadata lives. The returned session must be closed.
func openSession(ctx context.Context, f *BuildFlags) (*session, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}

	root, err := f.root()
	if err != nil {
		return nil, err
	}

	info, err := version.Resolve(ctx, runtime.Host{}, version.Options{
		Root:           root,
		CommitOverride: f.Commit,
	})
	if err != nil {
		return nil, err
	}
	slog.Info("resolved version", "version", info.Version, "commit", info.Commit, "dirty", info.Dirty)

	s := &session{root: root, info: info, close: func() {}}

	if s.exec, s.close, err = openExecutor(ctx, f, root); err != nil {
		return nil, err
	}

	s.results = probe.New(s.exec, f.Compiler).ProbeAll(ctx, probe.DefaultRules(f.Compiler))
	slog.Debug("probed build environment", "tags", s.results.Tags)

	s.bc = buildctx.Assemble(s.results, info, f.overrides(root))
	return s, nil
}

// Releases the session's executor.
func (s *session) Close() {
	s.close()
}

// Returns the executor selected by the flags and a function releasing it.
func openExecutor(ctx context.Context, f *BuildFlags, root string) (Executor, func(), error) {
	if f.EnvImage == "" {
		return runtime.Host{}, func() {}, nil
	}

	rt, err := runtime.New(f.runtimeConfig())
	if err != nil {
		return nil, nil, err
	}

	ctr, err := rt.StartEnvironment(ctx, f.EnvImage, containerID(root), root)
	if err != nil {
		rt.Close()
		return nil, nil, err
	}
	slog.Info("using build environment", "image", f.EnvImage)

	release := func() {
		ctr.Destroy(context.WithoutCancel(ctx))
		rt.Close()
	}
	return ctr, release, nil
}
