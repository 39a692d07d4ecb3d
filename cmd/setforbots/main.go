package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Play     PlayCmd          `cmd:"" default:"withargs" help:"Play a game in the terminal"`
	Simulate SimulateCmd      `cmd:"" help:"Run many AI-only games and report statistics"`
	Hints    HintsCmd         `cmd:"" help:"Deal the opening table for a seed and list its sets"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("setforbots"),
		kong.Description("Real-time SET for humans and bots"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
