package simulator

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/lox/setforbots/internal/game"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastGame plays on a 27-card deck with no think time and short freezes.
func fastGame() game.Config {
	cfg := game.DefaultConfig()
	cfg.Players = 3
	cfg.FeatureCount = 3
	cfg.DeckSize = 27
	cfg.TableSize = 9
	cfg.TurnTimeout = 200 * time.Millisecond
	cfg.TurnWarning = 0
	cfg.PointFreeze = time.Millisecond
	cfg.PenaltyFreeze = time.Millisecond
	cfg.AIThinkDelay = 0
	return cfg
}

func testConfig(games int) Config {
	return Config{
		Games:    games,
		Parallel: 2,
		Seed:     12345,
		Timeout:  20 * time.Second,
		Game:     fastGame(),
		Logger:   zerolog.New(io.Discard),
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	cfg := testConfig(1)
	cfg.Parallel = 0
	cfg.Seed = 0
	cfg.Game.HumanPlayers = 2

	s := New(cfg)
	assert.Positive(t, s.config.Parallel)
	assert.NotZero(t, s.config.Seed)
	assert.Zero(t, s.config.Game.HumanPlayers, "simulations are all-AI")
}

func TestRunAggregatesGames(t *testing.T) {
	stats, err := New(testConfig(4)).Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, stats)

	assert.Equal(t, 4, stats.Games)
	require.Len(t, stats.Seats, 3)
	for seat := range stats.Seats {
		assert.Equal(t, 4, stats.Seats[seat].Games)
	}
	assert.Positive(t, stats.Mean())
	assert.GreaterOrEqual(t, stats.Deals, 4)
	assert.Positive(t, stats.Reshuffles, "every game ends with the grid returned to the deck")
	require.NoError(t, stats.Validate())
}

func TestRunRejectsBadConfig(t *testing.T) {
	_, err := New(testConfig(0)).Run(context.Background())
	assert.Error(t, err)

	cfg := testConfig(1)
	cfg.Game.Players = 0
	_, err = New(cfg).Run(context.Background())
	assert.ErrorIs(t, err, game.ErrInvalidConfig)
}

func TestRunTimesOut(t *testing.T) {
	cfg := testConfig(1)
	cfg.Timeout = 20 * time.Millisecond
	cfg.Game = game.DefaultConfig()
	cfg.Game.Players = 1
	cfg.Game.AIThinkDelay = time.Second
	cfg.Game.TimerMode = game.TimerNone

	_, err := New(cfg).Run(context.Background())
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestRunStopsWhenCancelled(t *testing.T) {
	cfg := testConfig(2)
	cfg.Game = game.DefaultConfig()
	cfg.Game.AIThinkDelay = time.Second
	cfg.Timeout = 0

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(cfg).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPrintSummary(t *testing.T) {
	stats, err := New(testConfig(2)).Run(context.Background())
	require.NoError(t, err)

	var buf bytes.Buffer
	PrintSummary(&buf, stats)
	out := buf.String()
	assert.Contains(t, out, "Games played: 2")
	assert.Contains(t, out, "POINTS PER GAME")
	assert.Contains(t, out, "Seat 3:")
}

func TestSummarize(t *testing.T) {
	stats, err := New(testConfig(3)).Run(context.Background())
	require.NoError(t, err)

	sum := Summarize(stats)
	assert.Equal(t, 3, sum.Games)
	assert.InDelta(t, stats.Mean(), sum.MeanPoints, 1e-9)
	assert.LessOrEqual(t, sum.CI95[0], sum.CI95[1])
	require.Len(t, sum.Seats, 3)

	rate := 0.0
	for i, seat := range sum.Seats {
		assert.Equal(t, i+1, seat.Seat)
		rate += seat.WinRate
	}
	assert.InDelta(t, 1.0, rate, 1e-9, "win rates add up to one")
}
