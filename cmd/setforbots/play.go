package main

import (
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/lox/setforbots/cmd/setforbots/shared"
	"github.com/lox/setforbots/internal/config"
	"github.com/lox/setforbots/internal/display"
	"github.com/lox/setforbots/internal/game"
	"github.com/lox/setforbots/internal/tui"
	"github.com/rs/zerolog"
)

// PlayCmd runs one game, in the TUI or headless.
type PlayCmd struct {
	GameFlags `kong:"embed"`

	Humans   *int `kong:"help='Number of keyboard players (at most 2)'"`
	Headless bool `kong:"help='Log game events instead of showing the TUI'"`
	JSON     bool `kong:"name='json',help='Structured JSON logs in headless mode'"`
}

func (c *PlayCmd) Run() error {
	cfg, err := c.load()
	if err != nil {
		return err
	}
	if c.Humans != nil {
		cfg.Game.HumanPlayers = *c.Humans
	}
	if c.Headless {
		cfg.UI.Headless = true
		// Nobody can press keys without the TUI.
		cfg.Game.HumanPlayers = 0
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.UI.Headless {
		return c.runHeadless(cfg)
	}
	return c.runTUI(cfg)
}

func (c *PlayCmd) runHeadless(cfg *config.Config) error {
	var logger zerolog.Logger
	if c.JSON {
		logger = shared.SetupStructuredLogger(c.Debug)
	} else {
		logger = shared.SetupLogger(c.Debug)
	}

	ctx, stop := shared.SetupSignalHandlerWithLogger(logger)
	defer stop()

	names := playerNames(cfg.Game)
	out := display.NewLogDisplay(logger, cfg.Game.Encoding(), names)

	g, err := game.NewGame(logger, cfg.Game, nil, out, nil)
	if err != nil {
		return err
	}
	res, err := g.Run(ctx)
	if err != nil {
		return err
	}
	printResult(os.Stdout, res, names)
	return nil
}

func (c *PlayCmd) runTUI(cfg *config.Config) error {
	logger, logFile, err := shared.SetupFileLogger(cfg.UI.LogFile, cfg.UI.LogLevel, c.Debug)
	if err != nil {
		return err
	}
	defer logFile.Close()

	tuiLevel := log.InfoLevel
	if c.Debug {
		tuiLevel = log.DebugLevel
	}
	tuiLogger := log.NewWithOptions(logFile, log.Options{
		Level:           tuiLevel,
		ReportTimestamp: true,
	})

	ctx, stop := shared.SetupSignalHandler()
	defer stop()

	// The log file records the same events the board shows.
	board := tui.NewBoard(cfg.Game)
	out := display.NewMulti(board, display.NewLogDisplay(logger, cfg.Game.Encoding(), playerNames(cfg.Game)))

	g, err := game.NewGame(logger, cfg.Game, nil, out, nil)
	if err != nil {
		return err
	}

	model := tui.NewModel(tuiLogger, board,
		tui.NewKeymap(cfg.Game.HumanPlayers, cfg.Game.TableSize),
		g.KeyPressed, g.Stop)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	type outcome struct {
		res game.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := g.Run(ctx)
		program.Send(tui.GameOverMsg{Err: err})
		done <- outcome{res, err}
	}()

	board.Logf("Game %s, seed %d", g.ID, g.Config().Seed)
	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		g.Stop()
		<-done
		return fmt.Errorf("error running TUI: %w", err)
	}

	// Leaving the TUI ends the game.
	g.Stop()
	o := <-done
	if o.err != nil {
		return o.err
	}
	printResult(os.Stdout, o.res, playerNames(cfg.Game))
	return nil
}

func playerNames(cfg game.Config) []string {
	names := make([]string, cfg.Players)
	for i := range names {
		names[i] = cfg.PlayerName(i)
	}
	return names
}

func printResult(w io.Writer, res game.Result, names []string) {
	fmt.Fprintf(w, "Game %s (seed %d) %s after %v\n", res.GameID, res.Seed, res.Reason, res.Duration.Round(time.Millisecond))
	for i, score := range res.Scores {
		fmt.Fprintf(w, "  %-12s %d\n", names[i], score)
	}
	switch len(res.Winners) {
	case 0:
	case 1:
		fmt.Fprintf(w, "Winner: %s\n", names[res.Winners[0]])
	default:
		winners := make([]string, len(res.Winners))
		for i, p := range res.Winners {
			winners[i] = names[p]
		}
		fmt.Fprintf(w, "Tie: %v\n", winners)
	}
	fmt.Fprintf(w, "Deals %d, reshuffles %d, points %d, penalties %d\n",
		res.Stats.Deals, res.Stats.Reshuffles, res.Stats.Points, res.Stats.Penalties)
}
