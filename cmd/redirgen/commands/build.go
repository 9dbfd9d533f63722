package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/redirgen/internal/builder"
	"git.home.luguber.info/inful/redirgen/internal/config"
	rerrors "git.home.luguber.info/inful/redirgen/internal/errors"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output string `short:"o" help:"Output directory for emitted artifacts (overrides config)"`
	Clean  bool   `help:"Clean the output directory before emitting"`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return rerrors.ConfigError(err, "failed to load configuration")
	}
	if b.Clean {
		cfg.Output.Clean = true
	}
	outputDir := ResolveOutputDir(b.Output, cfg)

	store, err := openHistory(cfg)
	if err != nil {
		return rerrors.Wrap(err, rerrors.CategoryHistory, rerrors.SeverityError, "failed to open history store")
	}
	if store != nil {
		defer func() { _ = store.Close() }()
	}

	notifier := openNotifier(cfg)
	if notifier != nil {
		defer notifier.Close()
	}

	result, err := builder.New(cfg, outputDir).
		SetHistory(store).
		SetNotifier(notifier).
		Build(context.Background())
	if err != nil {
		return rerrors.BuildError(err, "build failed")
	}

	fmt.Printf("Resolved %d redirects from %d pages\n", result.Report.Redirects, result.Report.Pages)
	if result.Report.PagesEmitted > 0 {
		fmt.Printf("Wrote %d redirect pages to %s\n", result.Report.PagesEmitted, outputDir)
	}
	if result.Report.MapEmitted {
		fmt.Printf("Wrote nginx map %s (checksum %s)\n", cfg.Redirects.MapFile, result.Report.MapChecksum)
	}
	return nil
}
