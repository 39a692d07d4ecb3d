package game

import (
	"context"
	"fmt"
	"time"

	"github.com/coder/quartz"
	"github.com/lox/setforbots/internal/cards"
	"github.com/lox/setforbots/internal/gameid"
	"github.com/lox/setforbots/internal/grid"
	"github.com/lox/setforbots/internal/randutil"
	"github.com/rs/zerolog"
)

// deckStream and aiStream select independent random streams from the game
// seed so the deck order does not depend on how many AIs draw numbers.
const (
	deckStream = 0
	aiStream   = 1
)

// Result summarises a finished game.
type Result struct {
	GameID   string
	Seed     int64
	Scores   []int
	Winners  []int
	Stats    DealerStats
	Reason   EndReason
	Duration time.Duration
}

// Game wires the grid, claim queue, players, drivers and dealer for one game.
type Game struct {
	ID string

	cfg     Config
	clock   quartz.Clock
	logger  zerolog.Logger
	grid    *grid.Grid
	players []*Player
	dealer  *Dealer
}

// NewGame validates cfg and builds every component. A nil oracle selects the
// feature oracle for the configured encoding; a nil display discards
// notifications. A zero seed is replaced by one derived from the clock.
func NewGame(logger zerolog.Logger, cfg Config, oracle cards.Oracle, display Display, clock quartz.Clock) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = quartz.NewReal()
	}
	if display == nil {
		display = NopDisplay{}
	}
	if oracle == nil {
		o, err := cards.NewFeatureOracle(cfg.Encoding())
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		oracle = o
	}
	if cfg.Seed == 0 {
		cfg.Seed = clock.Now("game", "seed").UnixNano()
	}

	id := gameid.Generate()
	logger = logger.With().Str("game_id", id).Logger()

	claims := grid.NewClaimQueue(cfg.Players, clock)
	g := grid.New(logger, grid.Config{
		Players:     cfg.Players,
		TableSize:   cfg.TableSize,
		DeckSize:    cfg.DeckSize,
		FeatureSize: cfg.FeatureSize,
	}, claims, display)

	players := make([]*Player, cfg.Players)
	drivers := make([]*AIDriver, cfg.Players)
	for i := range cfg.Players {
		human := cfg.IsHuman(i)
		players[i] = NewPlayer(logger, i, cfg.PlayerName(i), human, g, display, clock, cfg.PointFreeze, cfg.PenaltyFreeze)
		if !human {
			rng := randutil.Stream(cfg.Seed, aiStream+uint64(i))
			drivers[i] = NewAIDriver(logger, players[i], g, clock, rng, cfg.AIThinkDelay)
		}
	}

	deck := cards.NewDeck(cfg.DeckSize, randutil.Stream(cfg.Seed, deckStream))
	dealer := NewDealer(logger, cfg, g, claims, deck, oracle, clock, display, players, drivers)

	return &Game{
		ID:      id,
		cfg:     cfg,
		clock:   clock,
		logger:  logger,
		grid:    g,
		players: players,
		dealer:  dealer,
	}, nil
}

// Config returns the effective configuration, including the chosen seed.
func (g *Game) Config() Config {
	return g.cfg
}

// Grid returns the shared grid, for displays that render it directly.
func (g *Game) Grid() *grid.Grid {
	return g.grid
}

// Players returns the players in id order.
func (g *Game) Players() []*Player {
	return g.players
}

// Dealer returns the game's dealer.
func (g *Game) Dealer() *Dealer {
	return g.dealer
}

// KeyPressed forwards a key press from a human player. Presses for AI
// players and unknown ids are ignored.
func (g *Game) KeyPressed(player, slot int) bool {
	if player < 0 || player >= len(g.players) || !g.players[player].Human {
		return false
	}
	return g.players[player].KeyPressed(slot)
}

// Stop asks the dealer to end the game. Run still joins every agent before
// returning.
func (g *Game) Stop() {
	g.dealer.Stop()
}

// Run plays the game to completion. The error is non-nil only when the game
// failed; a stopped or exhausted game returns its result with a nil error.
func (g *Game) Run(ctx context.Context) (Result, error) {
	start := g.clock.Now("game", "start")
	g.logger.Info().
		Int("players", g.cfg.Players).
		Int("humans", g.cfg.HumanPlayers).
		Int64("seed", g.cfg.Seed).
		Msg("Game starting")

	reason, err := g.dealer.Run(ctx)

	res := Result{
		GameID:   g.ID,
		Seed:     g.cfg.Seed,
		Scores:   make([]int, len(g.players)),
		Stats:    g.dealer.Stats(),
		Reason:   reason,
		Duration: g.clock.Since(start, "game", "end"),
	}
	for i, p := range g.players {
		res.Scores[i] = p.Score()
	}
	if reason != EndFailed {
		res.Winners = g.dealer.Winners()
	}

	if err != nil {
		g.logger.Error().Err(err).Msg("Game failed")
		return res, fmt.Errorf("game %s: %w", g.ID, err)
	}
	g.logger.Info().
		Ints("scores", res.Scores).
		Ints("winners", res.Winners).
		Stringer("reason", reason).
		Dur("duration", res.Duration).
		Msg("Game finished")
	return res, nil
}

// Preview deals the opening grid for the configured seed and returns the
// sets on it. The game cannot be run afterwards.
func (g *Game) Preview() ([][]int, error) {
	hints, err := g.dealer.Preview()
	if err != nil {
		return nil, fmt.Errorf("game %s: %w", g.ID, err)
	}
	return hints, nil
}
