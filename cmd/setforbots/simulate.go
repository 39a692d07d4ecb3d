package main

import (
	"os"
	"time"

	"github.com/lox/setforbots/cmd/setforbots/shared"
	"github.com/lox/setforbots/internal/fileutil"
	"github.com/lox/setforbots/internal/simulator"
	"github.com/rs/zerolog"
)

// SimulateCmd runs headless all-AI games in parallel.
type SimulateCmd struct {
	GameFlags `kong:"embed"`

	Games    int           `kong:"default='100',help='Number of games to simulate'"`
	Parallel int           `kong:"default='0',help='Games to run at once (0 for GOMAXPROCS)'"`
	Timeout  time.Duration `kong:"default='2m',help='Per-game timeout'"`
	Think    time.Duration `kong:"default='0s',help='AI think delay, overrides the config file'"`
	Freeze   time.Duration `kong:"default='1ms',help='Point and penalty freeze, overrides the config file'"`
	Output   string        `kong:"type='path',help='Write a JSON summary to this file'"`
}

func (c *SimulateCmd) Run() error {
	logger := shared.SetupLogger(c.Debug)

	cfg, err := c.load()
	if err != nil {
		return err
	}
	cfg.Game.HumanPlayers = 0
	cfg.Game.AIThinkDelay = c.Think
	cfg.Game.PointFreeze = c.Freeze
	cfg.Game.PenaltyFreeze = c.Freeze
	if err := cfg.Game.Validate(); err != nil {
		return err
	}

	ctx, stop := shared.SetupSignalHandlerWithLogger(logger)
	defer stop()

	// Per-game logs are only interesting when debugging.
	gameLogger := logger.Level(zerolog.WarnLevel)
	if c.Debug {
		gameLogger = logger
	}

	logger.Info().
		Int("games", c.Games).
		Int("players", cfg.Game.Players).
		Stringer("timer", cfg.Game.TimerMode).
		Dur("timeout", c.Timeout).
		Msg("Starting simulation")

	start := time.Now()
	sim := simulator.New(simulator.Config{
		Games:    c.Games,
		Parallel: c.Parallel,
		Seed:     cfg.Game.Seed,
		Timeout:  c.Timeout,
		Game:     cfg.Game,
		Logger:   gameLogger,
	})
	stats, err := sim.Run(ctx)
	if err != nil {
		return err
	}

	simulator.PrintSummary(os.Stdout, stats)
	if c.Output != "" {
		if err := fileutil.WriteJSON(c.Output, simulator.Summarize(stats)); err != nil {
			return err
		}
		logger.Info().Str("path", c.Output).Msg("Wrote summary")
	}
	logger.Info().Dur("elapsed", time.Since(start)).Msg("Simulation complete")
	return nil
}
