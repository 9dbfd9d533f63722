package main

import (
	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/redirgen/cmd/redirgen/commands"
	"git.home.luguber.info/inful/redirgen/internal/errors"
	"git.home.luguber.info/inful/redirgen/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("redirgen"),
		kong.Description("Build-time redirect generator for static sites"),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
	)
	err := ctx.Run(&commands.Global{}, &cli)
	errors.NewCLIErrorAdapter(cli.Verbose, nil).HandleError(err)
}
