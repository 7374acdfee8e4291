package internal

import (
	"log/slog"
	"strconv"
	"sync/atomic"
)

var (
	rawQuiet   = "false" // Default quiet mode, set via ldflags.
	rawDebug   = "false" // Default debug mode, set via ldflags.
	rawVerbose = "false" // Default verbose mode, set via ldflags.

	quietMode   atomic.Bool // Warnings and errors only.
	debugMode   atomic.Bool // Debug records, including every command executed.
	verboseMode atomic.Bool // Source locations on log records.
)

// Parses the ldflags defaults. Unparseable values leave the mode off.
func init() {
	quietMode.Store(parseFlag(rawQuiet))
	debugMode.Store(parseFlag(rawDebug))
	verboseMode.Store(parseFlag(rawVerbose))
}

func parseFlag(raw string) bool {
	v, err := strconv.ParseBool(raw)
	return err == nil && v
}

// Turns on the modes requested on the command line. Modes enabled by ldflags
// defaults stay on.
func Configure(quiet, verbose, debug bool) {
	if quiet {
		quietMode.Store(true)
	}
	if verbose {
		verboseMode.Store(true)
	}
	if debug {
		debugMode.Store(true)
	}
}

// Enables or disables quiet mode.
func SetQuiet(enabled bool) {
	quietMode.Store(enabled)
}

// Returns true if quiet mode is enabled.
func IsQuiet() bool {
	return quietMode.Load()
}

// Enables or disables debug mode.
func SetDebug(enabled bool) {
	debugMode.Store(enabled)
}

// Returns true if debug mode is enabled.
func IsDebug() bool {
	return debugMode.Load()
}

// Returns true if verbose logging is enabled.
func IsVerbose() bool {
	return verboseMode.Load()
}

// Returns the log level implied by the current modes.
//
// Debug wins over quiet; with neither set the level is info.
func LogLevel() slog.Level {
	switch {
	case IsDebug():
		return slog.LevelDebug
	case IsQuiet():
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
