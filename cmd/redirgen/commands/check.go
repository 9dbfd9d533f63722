package commands

import (
	"fmt"

	"git.home.luguber.info/inful/redirgen/internal/config"
	"git.home.luguber.info/inful/redirgen/internal/content"
	rerrors "git.home.luguber.info/inful/redirgen/internal/errors"
	"git.home.luguber.info/inful/redirgen/internal/linkcheck"
	"git.home.luguber.info/inful/redirgen/internal/redirect"
)

// CheckCmd implements the 'check' command. It resolves the redirect index
// and reports problems without writing any artifacts. Invalid redirects fail
// the command; stale links only do so under --strict.
type CheckCmd struct {
	Strict bool `help:"Also exit non-zero on stale links"`
}

func (c *CheckCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return rerrors.ConfigError(err, "failed to load configuration")
	}

	pages, err := content.NewScanner(cfg.Content.Directory, cfg.Content.RedirectField).Scan()
	if err != nil {
		return rerrors.Wrap(err, rerrors.CategoryContent, rerrors.SeverityError, "content scan failed")
	}
	idx := redirect.NewIndex(pages)

	problems := idx.Problems()
	for _, p := range problems {
		fmt.Printf("invalid redirect: %s\n", p.Error())
	}

	stale, err := linkcheck.Run(pages, idx)
	if err != nil {
		return err
	}
	for _, s := range stale {
		fmt.Printf("stale link: %s\n", s)
	}

	pairs := idx.Pairs()
	fmt.Printf("Checked %d pages: %d redirects, %d problems, %d stale links\n",
		len(pages), len(pairs), len(problems), len(stale))

	if len(problems) > 0 {
		return rerrors.ValidationError(
			fmt.Sprintf("check failed: %d invalid redirects", len(problems)))
	}
	if c.Strict && len(stale) > 0 {
		return rerrors.ValidationError(
			fmt.Sprintf("check failed: %d stale links", len(stale)))
	}
	return nil
}
