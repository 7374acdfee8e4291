package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/containerd/log"
	"github.com/mattn/go-isatty"

	"github.com/cruciblehq/crumake/internal"
	"github.com/cruciblehq/crumake/internal/paths"
)

// Represents the root command for crumake.
var RootCmd struct {
	Quiet   bool `short:"q" help:"Suppress informational output."`
	Verbose bool `short:"v" help:"Enable verbose output."`
	Debug   bool `short:"d" help:"Enable debug output."`

	Build BuildFlags `embed:""`

	Make    MakeCmd    `cmd:"" default:"withargs" help:"Make bundles (default command)."`
	Probe   ProbeCmd   `cmd:"" help:"Show detected capabilities and build tags."`
	Env     EnvCmd     `cmd:"" help:"Print the assembled build environment."`
	List    ListCmd    `cmd:"" help:"List available bundles."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// Parses arguments, configures logging, and runs the selected subcommand.
func Execute() error {

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kongCtx := kong.Parse(&RootCmd,
		kong.Name(internal.Name),
		kong.Description("Build-and-release driver.\n\nResolves version metadata, probes the build environment for optional\nfeatures, and makes the requested bundles under bundles/<version>."),
		kong.UsageOnError(),
		kong.Configuration(tomlLoader, paths.Config(), paths.ProjectConfig),
		kong.Vars{
			"version":             internal.VersionString(),
			"default_timeout":     defaultTimeout,
			"default_compiler":    defaultCompiler,
			"default_containerd":  defaultContainerdAddress,
			"default_namespace":   defaultContainerdNamespace,
			"default_snapshotter": defaultSnapshotter,
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.Bind(&RootCmd.Build),
	)

	configureLogger()

	return kongCtx.Run()
}

// Creates a logger writing to f.
//
// Terminals get human-readable text records; anything else gets JSON, one
// record per line. Verbose output adds source locations.
func NewLogger(f *os.File, level slog.Leveler, verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level, AddSource: verbose}

	var handler slog.Handler
	if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		handler = slog.NewTextHandler(f, opts)
	} else {
		handler = slog.NewJSONHandler(f, opts)
	}
	return slog.New(handler).With("app", internal.Name)
}

// Configures the global logger based on CLI flags.
func configureLogger() {
	internal.Configure(RootCmd.Quiet, RootCmd.Verbose, RootCmd.Debug)

	level := internal.LogLevel()
	slog.SetDefault(NewLogger(os.Stderr, level, internal.IsVerbose()))

	// The containerd client logs through its own logger.
	if err := log.SetLevel(containerdLevel(level)); err != nil {
		slog.Debug("failed to set containerd log level", "error", err)
	}
}

// Maps an slog level to a containerd log level name.
func containerdLevel(level slog.Level) string {
	switch {
	case level <= slog.LevelDebug:
		return "debug"
	case level <= slog.LevelInfo:
		return "info"
	default:
		return "warn"
	}
}
