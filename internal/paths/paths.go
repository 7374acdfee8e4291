package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (

	// Name used for directory and file naming.
	toolName = "crumake"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644

	// Default permission mode for produced executables.
	DefaultExecMode os.FileMode = 0755

	// Name of the file holding the version identifier, relative to the
	// repository root.
	VersionFile = "VERSION"

	// Name of the directory holding bundle outputs, relative to the
	// repository root.
	BundlesDir = "bundles"

	// Name of the symlink pointing at the most recent version's bundles.
	LatestLink = "latest"

	// Name of the per-project configuration file, relative to the working
	// directory.
	ProjectConfig = ".crumake.toml"
)

// Path to the user configuration file.
//
//	Linux:   $XDG_CONFIG_HOME/crumake/config.toml
//	macOS:   ~/Library/Application Support/crumake/config.toml
func Config() string {
	return filepath.Join(xdg.ConfigHome, toolName, "config.toml")
}

// Path to the VERSION file of the repository at root.
func Version(root string) string {
	return filepath.Join(root, VersionFile)
}

// Path to the bundles tree for a given version.
//
//	<root>/bundles/<version>
func VersionBundles(root, version string) string {
	return filepath.Join(root, BundlesDir, version)
}

// Path to the output directory of a single bundle.
//
//	<root>/bundles/<version>/<bundle>
func Bundle(root, version, bundle string) string {
	return filepath.Join(VersionBundles(root, version), bundle)
}
