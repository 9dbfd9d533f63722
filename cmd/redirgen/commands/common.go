// Package commands defines the redirgen CLI surface.
package commands

import (
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/redirgen/internal/config"
	"git.home.luguber.info/inful/redirgen/internal/history"
	"git.home.luguber.info/inful/redirgen/internal/logfields"
	"git.home.luguber.info/inful/redirgen/internal/notify"
)

// Global context passed to subcommands if we need to share global state later.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"redirgen.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" help:"Resolve redirects and emit artifacts"`
	Init    InitCmd    `cmd:"" help:"Initialize a new configuration file"`
	Check   CheckCmd   `cmd:"" help:"Validate redirect declarations without emitting artifacts"`
	Watch   WatchCmd   `cmd:"" help:"Rebuild on content changes and serve a local preview"`
	History HistoryCmd `cmd:"" help:"Show recent builds from the history store"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(c.Verbose),
	}))
	slog.SetDefault(logger)
	return nil
}

// parseLogLevel resolves the log level from the verbose flag and the
// REDIRGEN_LOG_LEVEL environment variable. The env var wins.
func parseLogLevel(verbose bool) slog.Level {
	switch strings.ToLower(os.Getenv("REDIRGEN_LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// ResolveOutputDir determines the final output directory.
// Priority: CLI flag > configured directory.
func ResolveOutputDir(cliOutput string, cfg *config.Config) string {
	if cliOutput != "" {
		return cliOutput
	}
	return cfg.Output.Directory
}

// openHistory opens the configured history store, or returns nil when history
// is disabled.
func openHistory(cfg *config.Config) (*history.Store, error) {
	if cfg.History.Database == "" {
		return nil, nil
	}
	return history.Open(cfg.History.Database)
}

// openNotifier connects the configured NATS notifier, or returns nil when
// notifications are disabled. Connection failures are reported but do not
// abort the build; the map on disk is still the source of truth.
func openNotifier(cfg *config.Config) notify.Notifier {
	if cfg.Notify == nil {
		return nil
	}
	n, err := notify.NewNATSNotifier(cfg.Notify)
	if err != nil {
		slog.Warn("Map change notifications disabled", logfields.Error(err))
		return nil
	}
	return n
}
