package game

import (
	"context"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayerRejectsActionsWhileDealing(t *testing.T) {
	t.Parallel()
	f := newDealerFixture(t, testConfig(1), newScriptedOracle(t), quartz.NewReal())
	p := f.players[0]

	// The gate starts closed until the first deal.
	assert.False(t, p.KeyPressed(0))
	assert.Equal(t, 0, p.Pending())

	require.NoError(t, f.dealer.deal(true))
	assert.True(t, p.KeyPressed(0))
	assert.Equal(t, 1, p.Pending())

	f.grid.BeginDealing()
	assert.False(t, p.KeyPressed(1))
	assert.Equal(t, 1, p.Pending())
}

func TestPlayerRejectsInvalidSlotsAndFullQueue(t *testing.T) {
	t.Parallel()
	f := newDealerFixture(t, testConfig(1), newScriptedOracle(t), quartz.NewReal())
	require.NoError(t, f.dealer.deal(true))
	p := f.players[0]

	assert.False(t, p.KeyPressed(-1))
	assert.False(t, p.KeyPressed(f.cfg.TableSize))

	for slot := range f.cfg.FeatureSize {
		require.True(t, p.KeyPressed(slot))
	}
	assert.True(t, p.QueueFull())
	assert.False(t, p.KeyPressed(5), "queue holds at most one set of actions")
}

func TestPlayerTogglesTokens(t *testing.T) {
	t.Parallel()
	f := newDealerFixture(t, testConfig(1), newScriptedOracle(t), quartz.NewReal())
	require.NoError(t, f.dealer.deal(true))
	p := f.players[0]
	runPlayer(t, p)

	require.True(t, p.KeyPressed(4))
	waitForCondition(t, time.Second, func() bool { return f.grid.HasToken(0, 4) }, "token placed")
	assert.Equal(t, 1, f.display.TokenCount())

	require.True(t, p.KeyPressed(4))
	waitForCondition(t, time.Second, func() bool { return !f.grid.HasToken(0, 4) }, "token removed")
	assert.Equal(t, 0, f.grid.PlayerTokenCount(0))
	assert.Equal(t, 0, f.display.TokenCount())
}

func TestPlayerWaitsForVerdictThenServesPenalty(t *testing.T) {
	t.Parallel()
	oracle := newScriptedOracle(t)
	oracle.isSet = alwaysInvalid
	f := newDealerFixture(t, testConfig(1), oracle, quartz.NewReal())
	require.NoError(t, f.dealer.deal(true))
	p := f.players[0]
	runPlayer(t, p)

	for _, slot := range []int{0, 1, 2} {
		require.True(t, p.KeyPressed(slot))
	}
	waitForCondition(t, time.Second, func() bool { return f.grid.Awaiting(0) }, "claim submitted")
	assert.False(t, p.KeyPressed(3), "no actions while awaiting a verdict")

	player, ok := f.claims.TryDequeue()
	require.True(t, ok)
	require.NoError(t, f.dealer.resolve(player))

	assert.True(t, p.Frozen())
	assert.False(t, p.KeyPressed(3), "no actions while frozen")
	assert.Equal(t, 0, p.Score())
	assert.Equal(t, 3, f.grid.PlayerTokenCount(0), "a rejected claim leaves the tokens")

	waitForCondition(t, time.Second, func() bool { return !p.Frozen() }, "freeze ended")
	assert.True(t, p.KeyPressed(3))

	freezes := f.display.Freezes(0)
	require.NotEmpty(t, freezes)
	assert.Equal(t, time.Duration(0), freezes[len(freezes)-1], "freeze end is published")
	assert.LessOrEqual(t, freezes[0], f.cfg.PenaltyFreeze)
}

func TestPlayerChangedSignalsAfterAction(t *testing.T) {
	t.Parallel()
	f := newDealerFixture(t, testConfig(1), newScriptedOracle(t), quartz.NewReal())
	require.NoError(t, f.dealer.deal(true))
	p := f.players[0]
	runPlayer(t, p)

	require.True(t, p.KeyPressed(7))
	select {
	case <-p.Changed():
	case <-time.After(time.Second):
		t.Fatal("no change signal after applying an action")
	}
	assert.True(t, f.grid.HasToken(0, 7))
}

func TestPlayerStopsOnCancelWhileGated(t *testing.T) {
	t.Parallel()
	f := newDealerFixture(t, testConfig(1), newScriptedOracle(t), quartz.NewReal())
	require.NoError(t, f.dealer.deal(true))
	p := f.players[0]

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = p.Run(ctx) }()

	// Queue an action, then close the gate so Run blocks waiting for it.
	f.grid.BeginDealing()
	select {
	case p.actions <- 0:
	default:
		t.Fatal("action queue full")
	}

	select {
	case <-p.Done():
		t.Fatal("player exited early")
	case <-time.After(10 * time.Millisecond):
	}

	cancel()
	select {
	case <-p.Done():
	case <-time.After(time.Second):
		t.Fatal("player did not stop")
	}
	assert.False(t, p.CanAct())
	assert.False(t, f.grid.HasToken(0, 0))
}

func TestVerdictString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "point", VerdictPoint.String())
	assert.Equal(t, "penalty", VerdictPenalty.String())
	assert.Equal(t, "stale", VerdictStale.String())
	assert.Equal(t, "unknown", Verdict(9).String())
}
