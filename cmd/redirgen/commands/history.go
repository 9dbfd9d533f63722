package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/redirgen/internal/config"
	rerrors "git.home.luguber.info/inful/redirgen/internal/errors"
	"git.home.luguber.info/inful/redirgen/internal/history"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int `short:"n" help:"Number of builds to show" default:"10"`
}

func (h *HistoryCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return rerrors.ConfigError(err, "failed to load configuration")
	}
	if cfg.History.Database == "" {
		return rerrors.ValidationError(
			fmt.Sprintf("history is not enabled; set history.database in %s", root.Config))
	}

	store, err := history.Open(cfg.History.Database)
	if err != nil {
		return rerrors.Wrap(err, rerrors.CategoryHistory, rerrors.SeverityError, "failed to open history store")
	}
	defer func() { _ = store.Close() }()

	reports, err := store.Recent(context.Background(), h.Limit)
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		fmt.Println("No builds recorded yet")
		return nil
	}

	for _, r := range reports {
		line := fmt.Sprintf("%s  %s  pages=%d redirects=%d emitted=%d",
			r.StartedAt.Format("2006-01-02 15:04:05"), r.BuildID, r.Pages, r.Redirects, r.PagesEmitted)
		if r.MapEmitted {
			line += fmt.Sprintf(" map=%s", r.MapChecksum)
		}
		if r.ContentCommit != "" {
			line += fmt.Sprintf(" commit=%.8s", r.ContentCommit)
		}
		fmt.Println(line)
	}
	return nil
}
