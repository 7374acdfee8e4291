package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/containerd/platforms"
	"github.com/opencontainers/go-digest"

	"github.com/cruciblehq/crumake/internal"
	"github.com/cruciblehq/crumake/internal/buildctx"
	"github.com/cruciblehq/crumake/internal/bundle"
	"github.com/cruciblehq/crumake/internal/probe"
	"github.com/cruciblehq/crumake/internal/runtime"
)

// Defaults interpolated into flag definitions.
var (
	defaultTimeout             = buildctx.DefaultTimeout.String()
	defaultCompiler            = probe.DefaultCompiler
	defaultContainerdAddress   = runtime.DefaultAddress
	defaultContainerdNamespace = runtime.DefaultNamespace
	defaultSnapshotter         = runtime.DefaultSnapshotter
)

// Settings shared by every command that builds a context.
type BuildFlags struct {
	Root           string        `help:"Repository root." default:"." type:"path" placeholder:"DIR"`
	Keep           bool          `help:"Reuse existing bundle output directories." env:"KEEPBUNDLE"`
	Commit         string        `help:"Commit identifier, used verbatim when the root has no git metadata." env:"GITCOMMIT" placeholder:"HASH"`
	BuildDebug     bool          `help:"Keep debug symbols in produced binaries." env:"BUILD_DEBUG"`
	Incremental    bool          `help:"Skip forced rebuilds of all packages." env:"INCREMENTAL_BINARY"`
	Tags           []string      `help:"Extra build tags." env:"BUILDTAGS" sep:" " placeholder:"TAG"`
	Target         string        `help:"Target platform for the binary bundles (e.g., linux/arm64)." env:"TARGET_PLATFORM" placeholder:"OS/ARCH"`
	CrossPlatforms []string      `help:"Platforms built by the cross bundle." env:"CROSSPLATFORMS" sep:" " placeholder:"OS/ARCH"`
	Timeout        time.Duration `help:"Timeout for test bundles." env:"TIMEOUT" default:"${default_timeout}"`
	TestFlags      []string      `help:"Extra go test flags." env:"TESTFLAGS" sep:" " placeholder:"FLAG"`
	BinaryName     string        `help:"Base name of produced binaries. Defaults to the root directory name." placeholder:"NAME"`
	MainPkg        string        `help:"Package built by the binary bundles." default:"." placeholder:"PKG"`
	VersionPkg     string        `help:"Package receiving the version variables." default:"main" placeholder:"PKG"`
	Compiler       string        `help:"C compiler used for capability probes." env:"CC" default:"${default_compiler}"`

	EnvImage            string `help:"OCI archive of the build environment. Commands run inside it when set." env:"BUILD_ENV_IMAGE" type:"path" placeholder:"FILE"`
	ContainerdAddress   string `help:"Containerd socket address." default:"${default_containerd}" placeholder:"PATH"`
	ContainerdNamespace string `help:"Containerd namespace." default:"${default_namespace}"`
	Snapshotter         string `help:"Containerd snapshotter." default:"${default_snapshotter}"`
}

// Returns the absolute repository root.
func (f *BuildFlags) root() (string, error) {
	root, err := filepath.Abs(f.Root)
	if err != nil {
		return "", fmt.Errorf("%w: root %q: %w", bundle.ErrConfiguration, f.Root, err)
	}
	return root, nil
}

// Checks the platform settings before any work starts.
func (f *BuildFlags) validate() error {
	if f.Target != "" {
		if _, err := platforms.Parse(f.Target); err != nil {
			return fmt.Errorf("%w: target %q: %w", bundle.ErrConfiguration, f.Target, err)
		}
	}
	for _, p := range f.CrossPlatforms {
		if _, err := platforms.Parse(p); err != nil {
			return fmt.Errorf("%w: cross platform %q: %w", bundle.ErrConfiguration, p, err)
		}
	}
	return nil
}

// Returns the overrides folded into the build context.
func (f *BuildFlags) overrides(root string) buildctx.Overrides {
	name := f.BinaryName
	if name == "" {
		name = filepath.Base(root)
	}

	ov := buildctx.Overrides{
		Debug:          f.BuildDebug,
		Incremental:    f.Incremental,
		Tags:           f.Tags,
		Target:         f.Target,
		Timeout:        f.Timeout,
		TestFlags:      f.TestFlags,
		VersionPackage: f.VersionPkg,
		BinaryName:     name,
		MainPackage:    f.MainPkg,
		Keep:           f.Keep,
	}
	if len(f.CrossPlatforms) > 0 {
		ov.CrossPlatforms = f.CrossPlatforms
	}
	return ov
}

// Returns the containerd settings.
func (f *BuildFlags) runtimeConfig() runtime.Config {
	return runtime.Config{
		Address:     f.ContainerdAddress,
		Namespace:   f.ContainerdNamespace,
		Snapshotter: f.Snapshotter,
	}
}

// Returns the build-environment container ID for a repository root.
//
// The ID is stable per root, so a container left behind by an interrupted run
// is replaced by the next one.
func containerID(root string) string {
	return internal.Name + "-" + digest.FromString(root).Encoded()[:12]
}
