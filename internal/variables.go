package internal

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"time"
)

const (

	// Name of the tool, used for logging, container naming, and config paths.
	Name = "crumake"

	// Reported by [VersionString] when the binary was not stamped.
	defaultLocalBuild = "(local)"
)

// Stamped by crumake's own link step (-X <pkg>.<Var>=...), the same variables
// it sets in the binaries it builds. The repository's .crumake.toml points
// version_pkg at this package.
var (
	Version   = "" // Contents of the VERSION file (e.g., "0.1.0").
	GitCommit = "" // Short commit, "-unsupported" suffixed when built from a dirty tree.
	BuildTime = "" // RFC 3339 build timestamp with nanoseconds.
	IAmStatic = "" // "true" for statically linked builds.
)

// Returns the host platform crumake was built for (e.g., "linux/amd64").
func Platform() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}

// Returns true if this is a local build, i.e. version or commit is unset.
func IsLocal() bool {
	return strings.TrimSpace(Version) == "" || strings.TrimSpace(GitCommit) == ""
}

// Returns true if the binary was linked statically.
func IsStatic() bool {
	v, err := strconv.ParseBool(IAmStatic)
	return err == nil && v
}

// Returns the stamped build time, or false when absent or malformed.
func Built() (time.Time, bool) {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(BuildTime))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Returns a detailed version string.
//
// If this is a local build, returns "(local)". Otherwise, returns a string
// formatted as "<version> (<commit>, <os>/<arch>[, static])[ built <time>]".
// A leading "v" on the version is dropped.
func VersionString() string {
	if IsLocal() {
		return defaultLocalBuild
	}

	v := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(Version)), "v")

	details := []string{strings.TrimSpace(GitCommit), Platform()}
	if IsStatic() {
		details = append(details, "static")
	}

	s := fmt.Sprintf("%s (%s)", v, strings.Join(details, ", "))
	if t, ok := Built(); ok {
		s += " built " + t.UTC().Format(time.RFC3339)
	}
	return s
}
