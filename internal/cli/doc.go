// Parses flags, loads configuration, and configures logging for crumake.
//
// The tool accepts the following global flags:
//
//	-q, --quiet     Suppress informational output.
//	-v, --verbose   Enable verbose output.
//	-d, --debug     Enable debug output.
//
// Build settings (--root, --keep, --commit, --tags, --target, and so on) may
// also be given through environment variables (KEEPBUNDLE, GITCOMMIT,
// BUILDTAGS, ...) or a TOML configuration file. Two files are consulted, the
// user file under $XDG_CONFIG_HOME/crumake/config.toml and a .crumake.toml in
// the working directory. Keys are flag names with underscores:
//
//	binary_name     = "app"
//	version_pkg     = "example.com/app/internal"
//	cross_platforms = ["linux/amd64", "darwin/arm64"]
//	timeout         = "10m"
//
// Subcommands:
//
//	make [BUNDLE...]  Make bundles (the default command).
//	probe             Show detected capabilities and build tags.
//	env               Print the assembled build environment.
//	list              List available bundles.
//	version           Show version information.
//
// Flags override build-time defaults set via linker flags. After parsing, the
// global logger is reconfigured to reflect the final level and verbosity
// before the selected command runs.
package cli
