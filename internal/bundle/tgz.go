package bundle

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/cruciblehq/crumake/internal/paths"
)

// Archives every cross-compiled binary as <dest>/<os>/<arch>/<name>-<version>.tgz.
//
// Requires the cross bundle of the same version to have run first.
func tgz(ctx context.Context, env *Env) error {
	bc := env.Context

	crossDir := env.Sibling("cross")
	if !exists(crossDir) {
		return fmt.Errorf("%w: %s not found; make the cross bundle first", ErrMissingInput, crossDir)
	}

	targets, err := crossTargets(bc.CrossPlatforms())
	if err != nil {
		return err
	}

	for _, p := range targets {
		bin := filepath.Join(platformDir(crossDir, p), binaryFile(bc.BinaryName(), bc.Version(), p.OS))
		if !exists(bin) {
			return fmt.Errorf("%w: %s not found", ErrMissingInput, bin)
		}

		dir := platformDir(env.Bundle.Dest, p)
		if err := os.MkdirAll(dir, paths.DefaultDirMode); err != nil {
			return fmt.Errorf("%w: %w", ErrFilesystem, err)
		}

		prefix := bc.BinaryName() + "-" + bc.Version()
		out := filepath.Join(dir, prefix+".tgz")
		if err := writeTarball(out, bin, path.Join(prefix, filepath.Base(bin)), bc.BuildTime()); err != nil {
			return err
		}

		slog.Info("created tgz", "path", out)
		if err := writeChecksums(out); err != nil {
			return err
		}
	}

	return nil
}

// Writes a gzip-compressed tar holding a single executable entry.
//
// Entry times are pinned to modTime so identical inputs yield identical
// archives.
func writeTarball(out, src, name string, modTime time.Time) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFilesystem, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFilesystem, err)
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFilesystem, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("%w: %w", ErrFilesystem, cerr)
		}
	}()

	zw, err := gzip.NewWriterLevel(f, gzip.BestCompression)
	if err != nil {
		return err
	}
	zw.ModTime = modTime
	tw := tar.NewWriter(zw)

	dir := &tar.Header{Typeflag: tar.TypeDir, Name: path.Dir(name) + "/", Mode: int64(paths.DefaultDirMode), ModTime: modTime}
	if err := tw.WriteHeader(dir); err != nil {
		return fmt.Errorf("%w: %w", ErrFilesystem, err)
	}

	file := &tar.Header{Typeflag: tar.TypeReg, Name: name, Mode: int64(paths.DefaultExecMode), Size: info.Size(), ModTime: modTime}
	if err := tw.WriteHeader(file); err != nil {
		return fmt.Errorf("%w: %w", ErrFilesystem, err)
	}
	if _, err := io.Copy(tw, in); err != nil {
		return fmt.Errorf("%w: %w", ErrFilesystem, err)
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrFilesystem, err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrFilesystem, err)
	}
	return nil
}
