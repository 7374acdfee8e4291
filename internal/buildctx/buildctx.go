package buildctx

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/cruciblehq/crumake/internal/probe"
	"github.com/cruciblehq/crumake/internal/version"
)

const (

	// Default go test timeout.
	DefaultTimeout = 5 * time.Minute

	// Default package receiving the -X version variables.
	DefaultVersionPackage = "main"

	// Default main package built by the binary bundles.
	DefaultMainPackage = "."
)

// Tags added for static builds.
var staticTags = []string{"netgo", "static_build"}

// Default cross-compilation targets.
var DefaultCrossPlatforms = []string{
	"linux/386", "linux/arm",
	"darwin/amd64", "darwin/arm64",
	"freebsd/amd64", "freebsd/386", "freebsd/arm",
	"windows/amd64", "windows/386",
}

// User-supplied configuration folded into the context.
type Overrides struct {
	Debug          bool          // Keep DWARF symbols (omit -w).
	Incremental    bool          // Skip forced rebuilds (omit -a).
	Tags           []string      // Extra build tags.
	Target         string        // Target platform "os/arch". Empty means the host.
	CrossPlatforms []string      // Platforms built by the cross bundle. Nil uses [DefaultCrossPlatforms].
	Timeout        time.Duration // go test timeout. Zero uses [DefaultTimeout].
	TestFlags      []string      // Extra go test flags.
	VersionPackage string        // Package receiving -X variables. Empty uses [DefaultVersionPackage].
	BinaryName     string        // Base name of produced binaries.
	MainPackage    string        // Package built by the binary bundles. Empty uses [DefaultMainPackage].
	Keep           bool          // Reuse existing bundle output directories.
}

// Immutable build configuration for a single run.
type Context struct {
	version        string
	commit         string
	dirty          bool
	buildTime      time.Time
	tags           []string
	ldflags        []string
	staticLDFlags  []string
	buildFlags     []string
	testFlags      []string
	timeout        time.Duration
	target         string
	crossPlatforms []string
	goTestCover    bool
	versionPackage string
	binaryName     string
	mainPackage    string
	keep           bool
}

// Assembles the build context.
//
// The result depends only on the arguments: identical inputs always yield an
// identical context.
func Assemble(res probe.Results, info version.Info, ov Overrides) *Context {
	c := &Context{
		version:        info.Version,
		commit:         info.Commit,
		dirty:          info.Dirty,
		buildTime:      info.BuildTime,
		tags:           tagSet(res.Tags, ov.Tags),
		testFlags:      slices.Clone(ov.TestFlags),
		timeout:        ov.Timeout,
		target:         ov.Target,
		crossPlatforms: slices.Clone(ov.CrossPlatforms),
		goTestCover:    res.Has(probe.GoTestCover),
		versionPackage: ov.VersionPackage,
		binaryName:     ov.BinaryName,
		mainPackage:    ov.MainPackage,
		keep:           ov.Keep,
	}

	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.crossPlatforms == nil {
		c.crossPlatforms = slices.Clone(DefaultCrossPlatforms)
	}
	if c.versionPackage == "" {
		c.versionPackage = DefaultVersionPackage
	}
	if c.mainPackage == "" {
		c.mainPackage = DefaultMainPackage
	}

	c.ldflags = []string{
		ldflagVar(c.versionPackage, "GitCommit", c.commit),
		ldflagVar(c.versionPackage, "Version", c.version),
		ldflagVar(c.versionPackage, "BuildTime", info.BuildTimeString()),
	}
	if !ov.Debug {
		c.ldflags = append([]string{"-w"}, c.ldflags...)
	}

	c.staticLDFlags = []string{
		"-linkmode", "external",
		"-extldflags", "-static",
		ldflagVar(c.versionPackage, "IAmStatic", "true"),
	}

	if !ov.Incremental {
		c.buildFlags = []string{"-a"}
	}

	return c
}

// Formats a -X linker assignment.
func ldflagVar(pkg, name, value string) string {
	return fmt.Sprintf("-X %s.%s=%s", pkg, name, value)
}

// Merges tag lists into a sorted set, dropping blanks.
func tagSet(lists ...[]string) []string {
	var tags []string
	for _, l := range lists {
		for _, t := range l {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}
	slices.Sort(tags)
	return slices.Compact(tags)
}

// Version string from the VERSION file.
func (c *Context) Version() string { return c.version }

// Commit identifier, possibly suffixed for a dirty tree.
func (c *Context) Commit() string { return c.commit }

// Whether the working tree had uncommitted tracked changes.
func (c *Context) Dirty() bool { return c.dirty }

// Time the build metadata was resolved.
func (c *Context) BuildTime() time.Time { return c.buildTime }

// Base build tags, sorted.
func (c *Context) Tags() []string { return slices.Clone(c.tags) }

// Linker flags shared by every build.
func (c *Context) LDFlags() []string { return slices.Clone(c.ldflags) }

// Additional linker flags for static builds.
func (c *Context) StaticLDFlags() []string { return slices.Clone(c.staticLDFlags) }

// Flags passed to every go build.
func (c *Context) BuildFlags() []string { return slices.Clone(c.buildFlags) }

// Extra go test flags.
func (c *Context) TestFlags() []string { return slices.Clone(c.testFlags) }

// go test timeout.
func (c *Context) Timeout() time.Duration { return c.timeout }

// Target platform, empty for the host.
func (c *Context) Target() string { return c.target }

// Platforms built by the cross bundle.
func (c *Context) CrossPlatforms() []string { return slices.Clone(c.crossPlatforms) }

// Whether go test supports coverage profiles.
func (c *Context) GoTestCover() bool { return c.goTestCover }

// Base name of produced binaries.
func (c *Context) BinaryName() string { return c.binaryName }

// Package built by the binary bundles.
func (c *Context) MainPackage() string { return c.mainPackage }

// Whether existing bundle outputs are reused.
func (c *Context) Keep() bool { return c.keep }

// Returns the tags for a build, adding the static tags when static is set.
func (c *Context) BuildTags(static bool) []string {
	if !static {
		return c.Tags()
	}
	return tagSet(staticTags, c.tags)
}

// Returns the go build arguments (excluding "go build" and the package) for
// a static or dynamic build.
func (c *Context) GoBuildArgs(static bool) []string {
	args := c.BuildFlags()
	if static {
		args = append(args, "-installsuffix", "netgo")
	}
	if tags := c.BuildTags(static); len(tags) > 0 {
		args = append(args, "-tags", strings.Join(tags, " "))
	}

	ld := c.LDFlags()
	if static {
		ld = append(ld, c.staticLDFlags...)
	}
	args = append(args, "-ldflags", strings.Join(ld, " "))

	return args
}

// Returns the go test arguments (excluding "go test" and packages).
func (c *Context) GoTestArgs() []string {
	var args []string
	if len(c.tags) > 0 {
		args = append(args, "-tags", strings.Join(c.tags, " "))
	}
	args = append(args, "-ldflags", strings.Join(c.ldflags, " "))
	args = append(args, "-timeout", c.timeout.String())
	return append(args, c.testFlags...)
}

// Returns the context as "KEY=value" environment entries for bundle steps.
func (c *Context) Env() []string {
	env := []string{
		"VERSION=" + c.version,
		"GITCOMMIT=" + c.commit,
		"BUILDTIME=" + c.buildTime.Format(time.RFC3339Nano),
		"BUILDTAGS=" + strings.Join(c.tags, " "),
		"LDFLAGS=" + strings.Join(c.ldflags, " "),
		"LDFLAGS_STATIC=" + strings.Join(c.staticLDFlags, " "),
		"BUILDFLAGS=" + strings.Join(c.buildFlags, " "),
		"TESTFLAGS=" + strings.Join(c.testFlags, " "),
		"TIMEOUT=" + c.timeout.String(),
	}
	if c.target != "" {
		if goos, goarch, ok := strings.Cut(c.target, "/"); ok {
			env = append(env, "GOOS="+goos, "GOARCH="+goarch)
		}
	}
	return env
}
