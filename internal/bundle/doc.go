// Package bundle dispatches named build steps ("bundles") against a build
// context.
//
// A bundle is an independently invokable step: compiling a binary, running a
// test suite, producing cross-platform archives. The [Dispatcher] runs the
// requested bundles in order, giving each a fresh output directory under
// bundles/<version>/<name>, and halts at the first failure without rolling
// back what earlier bundles produced. When no bundles are requested, the
// [Defaults] list runs.
//
// Output directories left by a previous run for the same version are moved
// aside and removed before the run starts, unless the build context asks to
// keep them. Steps receive the build context both as a Go value and as
// environment variables (VERSION, GITCOMMIT, LDFLAGS, DEST, ...) on every
// command they run, so the same commands behave identically on the host and
// inside the build-environment container.
//
// Example usage:
//
//	d := &bundle.Dispatcher{
//	    Root:     "/src/project",
//	    Exec:     runtime.Host{},
//	    Registry: bundle.DefaultRegistry(),
//	}
//	if err := d.Dispatch(ctx, []string{"binary", "test-unit"}, bc); err != nil {
//	    return err
//	}
package bundle
