package bundle

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	goruntime "runtime"
	"strings"

	"github.com/containerd/platforms"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// Builds the main package into a versioned binary.
//
// Static builds are only attempted for Linux targets; other targets fall back
// to a dynamic build.
type binaryStep struct {
	static bool
}

func (s binaryStep) Run(ctx context.Context, env *Env) error {
	bc := env.Context

	target, err := targetPlatform(bc.Target())
	if err != nil {
		return err
	}

	static := s.static && target.OS == "linux"
	if s.static && !static {
		slog.Debug("static linking unsupported for target, building dynamically", "target", platforms.Format(target))
	}

	out := filepath.Join(env.Bundle.Dest, binaryFile(bc.BinaryName(), bc.Version(), target.OS))

	args := append([]string{"go", "build", "-o", out}, bc.GoBuildArgs(static)...)
	args = append(args, bc.MainPackage())
	if err := env.run(ctx, args...); err != nil {
		return err
	}

	if err := symlinkSibling(out, filepath.Join(env.Bundle.Dest, bc.BinaryName()+exeSuffix(target.OS))); err != nil {
		return err
	}

	slog.Info("created binary", "path", out)
	return writeChecksums(out)
}

// Returns the file name of a versioned binary, e.g. "app-1.2.0" or
// "app-1.2.0.exe".
func binaryFile(name, version, goos string) string {
	return fmt.Sprintf("%s-%s%s", name, version, exeSuffix(goos))
}

// Returns ".exe" for Windows targets.
func exeSuffix(goos string) string {
	if goos == "windows" {
		return ".exe"
	}
	return ""
}

// Parses a target platform, defaulting to the host.
func targetPlatform(target string) (ocispec.Platform, error) {
	if target == "" {
		return ocispec.Platform{OS: goruntime.GOOS, Architecture: goruntime.GOARCH}, nil
	}
	p, err := platforms.Parse(target)
	if err != nil {
		return ocispec.Platform{}, fmt.Errorf("%w: target %q: %w", ErrConfiguration, target, err)
	}
	return p, nil
}

// Returns the Go toolchain environment selecting a platform.
func goEnv(p ocispec.Platform) []string {
	env := []string{"GOOS=" + p.OS, "GOARCH=" + p.Architecture}
	if p.Architecture == "arm" && p.Variant != "" {
		env = append(env, "GOARM="+strings.TrimPrefix(p.Variant, "v"))
	}
	return env
}
