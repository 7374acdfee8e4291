package bundle

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	goruntime "runtime"

	"github.com/cruciblehq/crumake/internal/paths"
)

// Ensures dir exists and holds no stale output.
//
// An existing directory is reused when keep is set and replaced otherwise.
func prepareDir(dir string, keep bool) error {
	_, err := os.Lstat(dir)
	switch {
	case err == nil && keep:
		slog.Debug("reusing existing output", "dir", dir)
	case err == nil:
		slog.Info("removing stale output", "dir", dir)
		if err := removeAtomically(dir); err != nil {
			return err
		}
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %w", ErrFilesystem, err)
	}

	if err := os.MkdirAll(dir, paths.DefaultDirMode); err != nil {
		return fmt.Errorf("%w: %w", ErrFilesystem, err)
	}
	return nil
}

// Removes dir so that it is either fully present or fully gone.
//
// The directory is first renamed into a fresh sibling scratch directory, which
// is atomic on a single file system, and then deleted from there. A failed
// deletion leaves the scratch directory behind but never a partial dir.
func removeAtomically(dir string) error {
	scratch, err := os.MkdirTemp(filepath.Dir(dir), "."+filepath.Base(dir)+".stale-")
	if err != nil {
		return fmt.Errorf("%w: cannot remove %s: %w", ErrFilesystem, dir, err)
	}

	if err := os.Rename(dir, filepath.Join(scratch, filepath.Base(dir))); err != nil {
		os.Remove(scratch)
		return fmt.Errorf("%w: cannot remove %s: %w", ErrFilesystem, dir, err)
	}

	if err := os.RemoveAll(scratch); err != nil {
		return fmt.Errorf("%w: cannot remove %s: %w", ErrFilesystem, scratch, err)
	}
	return nil
}

// Points bundles/latest at the given version. Failures are logged, not
// returned; the link is a convenience.
func linkLatest(root, version string) {
	if goruntime.GOOS == "windows" {
		return
	}

	link := filepath.Join(root, paths.BundlesDir, paths.LatestLink)
	if info, err := os.Lstat(link); err == nil {
		if info.Mode()&os.ModeSymlink == 0 {
			slog.Warn("not replacing non-symlink", "path", link)
			return
		}
		os.Remove(link)
	}

	if err := os.Symlink(version, link); err != nil {
		slog.Warn("failed to link latest bundles", "path", link, "error", err)
	}
}

// Replaces link with a relative symlink to target in the same directory.
func symlinkSibling(target, link string) error {
	if goruntime.GOOS == "windows" {
		return nil
	}
	os.Remove(link)
	if err := os.Symlink(filepath.Base(target), link); err != nil {
		return fmt.Errorf("%w: %w", ErrFilesystem, err)
	}
	return nil
}
