package bundle

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/cruciblehq/crumake/internal/buildctx"
	"github.com/cruciblehq/crumake/internal/paths"
)

// Runs bundles sequentially against a build context.
type Dispatcher struct {
	Root     string    // Repository root.
	Exec     Executor  // Executor for bundle commands.
	Registry Registry  // Available bundles. Nil uses [DefaultRegistry].
	Stdout   io.Writer // Command output. Nil discards.
	Stderr   io.Writer // Command diagnostics. Nil captures them into errors.
}

// Makes the named bundles in order.
//
// An empty list makes the [Defaults]. Every name is checked against the
// registry before anything runs. The version's output tree is prepared once,
// then each bundle gets its own output directory. Dispatch stops at the first
// failing bundle and returns an error matching [ErrBundleFailed]; outputs of
// bundles that already ran are left in place.
func (d *Dispatcher) Dispatch(ctx context.Context, names []string, bc *buildctx.Context) error {
	if bc.Version() == "" || bc.Commit() == "" {
		return fmt.Errorf("%w: version and commit must be set before making bundles", ErrConfiguration)
	}

	if len(names) == 0 {
		names = Defaults()
	}

	registry := d.Registry
	if registry == nil {
		registry = DefaultRegistry()
	}

	if err := registry.Check(names); err != nil {
		return err
	}

	versionDir, err := versionTree(d.Root, bc.Version())
	if err != nil {
		return err
	}
	if err := prepareDir(versionDir, bc.Keep()); err != nil {
		return err
	}
	linkLatest(d.Root, bc.Version())

	for _, name := range names {
		b := Bundle{Name: name, Dest: paths.Bundle(d.Root, bc.Version(), name)}

		if err := d.make(ctx, b, registry[name], bc); err != nil {
			slog.Error("bundle failed", "bundle", name, "error", err)
			return fmt.Errorf("%w: %s: %w", ErrBundleFailed, name, err)
		}
	}

	return nil
}

// Prepares a bundle's output directory and runs its step.
func (d *Dispatcher) make(ctx context.Context, b Bundle, step Step, bc *buildctx.Context) error {
	if err := prepareDir(b.Dest, bc.Keep()); err != nil {
		return err
	}

	slog.Info("making bundle", "bundle", b.Name, "dest", b.Dest)
	start := time.Now()

	err := step.Run(ctx, &Env{
		Bundle:  b,
		Context: bc,
		Root:    d.Root,
		Exec:    d.Exec,
		Stdout:  d.Stdout,
		Stderr:  d.Stderr,
	})
	if err != nil {
		return err
	}

	slog.Info("bundle complete", "bundle", b.Name, "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

// Returns bundles/<version> under root, which must be a direct child of the
// bundles directory.
func versionTree(root, version string) (string, error) {
	bundles := filepath.Join(root, paths.BundlesDir)
	dir := paths.VersionBundles(root, version)

	rel, err := filepath.Rel(bundles, dir)
	if err != nil || rel != version || rel == "." || !filepath.IsLocal(rel) || filepath.Base(rel) != rel {
		return "", fmt.Errorf("%w: version %q does not name a directory under %s", ErrConfiguration, version, bundles)
	}
	return dir, nil
}

// Reports whether a regular file or directory exists at path.
func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
