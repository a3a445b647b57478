package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

// Globals are flags shared by every command.
type Globals struct {
	Config string `short:"c" default:"liarsdice.hcl" help:"Path to HCL configuration file (missing file uses defaults)"`
	Debug  bool   `help:"Enable debug logging"`
}

type CLI struct {
	Globals

	Version    kong.VersionFlag `short:"v" help:"Show version"`
	Train      TrainCmd         `cmd:"" help:"Train CFR policies for every dice configuration"`
	Play       PlayCmd          `cmd:"" help:"Play a single match between two agents"`
	Tournament TournamentCmd    `cmd:"" help:"Run a round-robin tournament between agents"`
	Inspect    InspectCmd       `cmd:"" help:"Describe the contents of a policy store"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("liarsdice"),
		kong.Description("Two-player Liar's Dice engine, CFR solver and agent arena"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
