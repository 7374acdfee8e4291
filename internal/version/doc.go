// Package version resolves the version string and commit identifier stamped
// into every artifact.
//
// The version is read from the VERSION file at the repository root. The
// commit is derived from git: the short hash of HEAD, with "-unsupported"
// appended when tracked files have uncommitted modifications. When git
// metadata is unavailable (a source tarball, a container without git), an
// explicit commit override is required; without one, resolution fails with
// [ErrConfiguration]. The override is ignored inside a git working tree.
//
// The version must be a single path element (e.g. "1.2.0"), since it names the
// bundles/<version> output directory.
package version
