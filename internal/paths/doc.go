// Provides platform-appropriate paths for crumake.
//
// User-level configuration follows XDG conventions on Linux and
// platform-native conventions on macOS and Windows. The tool name "crumake"
// is used as the subdirectory under each base path. Repository-relative
// locations (the VERSION file and the bundles tree) are also resolved here so
// that every package agrees on the layout.
package paths
