package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lox/setforbots/internal/config"
	"github.com/lox/setforbots/internal/game"
	"github.com/muesli/termenv"
)

// GameFlags are the overrides shared by every command that builds a game.
// Unset flags keep the config file value.
type GameFlags struct {
	Config  string `kong:"default='setforbots.hcl',type='path',help='HCL config file, defaults apply when it is missing'"`
	Players *int   `kong:"help='Number of players'"`
	Seed    *int64 `kong:"help='Deterministic RNG seed (optional)'"`
	Timer   string `kong:"help='Timer mode: countdown, elapsed or none'"`
	Hints   bool   `kong:"help='Log every set on the table after each deal'"`
	Debug   bool   `kong:"help='Enable debug logging'"`
	NoColor bool   `kong:"name='no-color',help='Disable colour output'"`
}

// load reads the config file and applies the flags on top.
func (f *GameFlags) load() (*config.Config, error) {
	cfg, err := config.Load(f.Config)
	if err != nil {
		return nil, err
	}
	if f.Players != nil {
		cfg.Game.Players = *f.Players
	}
	if f.Seed != nil {
		cfg.Game.Seed = *f.Seed
	}
	if f.Timer != "" {
		mode, err := game.ParseTimerMode(f.Timer)
		if err != nil {
			return nil, err
		}
		cfg.Game.TimerMode = mode
	}
	if f.Hints {
		cfg.Game.Hints = true
	}
	if f.NoColor {
		cfg.UI.Color = false
	}
	if !cfg.UI.Color {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	return cfg, nil
}
