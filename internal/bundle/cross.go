package bundle

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/containerd/platforms"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/cruciblehq/crumake/internal/paths"
)

// Builds the main package for every cross platform into <dest>/<os>/<arch>.
//
// Cross builds disable cgo, so they are pure Go and never use external
// linking; the netgo tag is kept for Linux targets.
func cross(ctx context.Context, env *Env) error {
	bc := env.Context

	targets, err := crossTargets(bc.CrossPlatforms())
	if err != nil {
		return err
	}

	for _, p := range targets {
		dir := platformDir(env.Bundle.Dest, p)
		if err := os.MkdirAll(dir, paths.DefaultDirMode); err != nil {
			return fmt.Errorf("%w: %w", ErrFilesystem, err)
		}

		out := filepath.Join(dir, binaryFile(bc.BinaryName(), bc.Version(), p.OS))
		slog.Info("cross compiling", "platform", platforms.Format(p), "output", out)

		args := []string{"go", "build", "-o", out}
		args = append(args, bc.GoBuildArgs(false)...)
		if p.OS == "linux" {
			args = withTag(args, "netgo")
		}
		args = append(args, bc.MainPackage())

		extra := append(goEnv(p), "CGO_ENABLED=0")
		if err := env.runEnv(ctx, extra, args...); err != nil {
			return fmt.Errorf("%s: %w", platforms.Format(p), err)
		}

		if err := writeChecksums(out); err != nil {
			return err
		}
	}

	return nil
}

// Parses the configured cross platforms.
func crossTargets(specs []string) ([]ocispec.Platform, error) {
	targets := make([]ocispec.Platform, 0, len(specs))
	for _, s := range specs {
		p, err := platforms.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("%w: cross platform %q: %w", ErrConfiguration, s, err)
		}
		targets = append(targets, p)
	}
	return targets, nil
}

// Returns <base>/<os>/<arch> for a platform.
func platformDir(base string, p ocispec.Platform) string {
	return filepath.Join(base, p.OS, p.Architecture)
}

// Adds tag to the -tags argument of a go build argument list, inserting the
// argument when absent.
func withTag(args []string, tag string) []string {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == "-tags" {
			out := append([]string(nil), args...)
			out[i+1] = args[i+1] + " " + tag
			return out
		}
	}
	return append(args, "-tags", tag)
}
