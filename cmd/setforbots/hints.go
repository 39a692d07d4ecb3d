package main

import (
	"fmt"
	"io"
	"os"

	"github.com/lox/setforbots/cmd/setforbots/shared"
	"github.com/lox/setforbots/internal/game"
)

// HintsCmd deals the opening table a seed produces and lists its sets.
type HintsCmd struct {
	GameFlags `kong:"embed"`
}

func (c *HintsCmd) Run() error {
	logger := shared.SetupLogger(c.Debug)

	cfg, err := c.load()
	if err != nil {
		return err
	}
	cfg.Game.HumanPlayers = 0
	cfg.Game.Hints = false

	g, err := game.NewGame(logger, cfg.Game, nil, nil, nil)
	if err != nil {
		return err
	}
	hints, err := g.Preview()
	if err != nil {
		return err
	}
	printHints(os.Stdout, g, hints)
	return nil
}

func printHints(w io.Writer, g *game.Game, hints [][]int) {
	cfg := g.Config()
	enc := cfg.Encoding()

	fmt.Fprintf(w, "Seed %d\n", cfg.Seed)
	for slot := range cfg.TableSize {
		fmt.Fprintf(w, "  %2d  %s\n", slot, enc.Describe(g.Grid().CardAt(slot)))
	}
	if len(hints) == 0 {
		fmt.Fprintln(w, "No sets on the table")
		return
	}
	fmt.Fprintf(w, "%d set(s):\n", len(hints))
	for _, slots := range hints {
		fmt.Fprintf(w, "  %v\n", slots)
	}
}
