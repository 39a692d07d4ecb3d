package game

import (
	"context"
	rand "math/rand/v2"
	"slices"
	"time"

	"github.com/coder/quartz"
	"github.com/lox/setforbots/internal/grid"
	"github.com/rs/zerolog"
)

// idleWait bounds how long a driver sleeps when the grid offers it nothing to
// press, for example while the last cards of the deck are all under its tokens.
const idleWait = 50 * time.Millisecond

// AIDriver presses keys on behalf of a player. It goes through
// Player.KeyPressed like a keyboard would, so it is subject to exactly the
// same gating.
type AIDriver struct {
	player *Player
	grid   *grid.Grid
	clock  quartz.Clock
	rng    *rand.Rand
	delay  time.Duration
	logger zerolog.Logger

	presses int
	done    chan struct{}
}

// NewAIDriver creates a driver for player. delay is the think time before
// every press; zero presses as soon as the player can act.
func NewAIDriver(logger zerolog.Logger, player *Player, g *grid.Grid, clock quartz.Clock, rng *rand.Rand, delay time.Duration) *AIDriver {
	return &AIDriver{
		player: player,
		grid:   g,
		clock:  clock,
		rng:    rng,
		delay:  delay,
		logger: logger.With().Str("component", "ai").Int("player", player.ID).Logger(),
		done:   make(chan struct{}),
	}
}

// Done is closed when Run returns.
func (a *AIDriver) Done() <-chan struct{} {
	return a.done
}

// Run drives the player until ctx is cancelled.
func (a *AIDriver) Run(ctx context.Context) error {
	defer close(a.done)
	defer func() {
		a.logger.Debug().Int("presses", a.presses).Msg("AI driver stopped")
	}()

	for {
		if ctx.Err() != nil {
			return nil
		}
		if err := a.grid.WaitDealt(ctx); err != nil {
			return nil
		}

		// Act only on a settled view of our own tokens. Each of these is
		// cleared by the player goroutine, which signals Changed afterwards.
		if a.player.Frozen() || a.player.Pending() > 0 || a.grid.Awaiting(a.player.ID) {
			if !a.waitChanged(ctx) {
				return nil
			}
			continue
		}
		if !a.player.CanAct() {
			// Dealing started again; go back to the gate.
			continue
		}

		if !a.sleep(ctx, a.delay) {
			return nil
		}

		held := a.grid.PlayerSlots(a.player.ID)
		if len(held) >= a.grid.Config().FeatureSize {
			// A rejected claim leaves the tokens in place; pick them all up.
			for _, slot := range held {
				a.press(slot)
			}
			continue
		}

		slot, ok := a.pick(held)
		if !ok {
			if !a.sleep(ctx, idleWait) {
				return nil
			}
			continue
		}
		a.press(slot)
	}
}

func (a *AIDriver) press(slot int) {
	if a.player.KeyPressed(slot) {
		a.presses++
	}
}

// pick returns a random occupied slot the player holds no token on.
func (a *AIDriver) pick(held []int) (int, bool) {
	candidates := slices.DeleteFunc(a.grid.OccupiedSlots(), func(slot int) bool {
		return slices.Contains(held, slot)
	})
	if len(candidates) == 0 {
		return 0, false
	}
	return candidates[a.rng.IntN(len(candidates))], true
}

func (a *AIDriver) waitChanged(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-a.player.Changed():
		return true
	}
}

func (a *AIDriver) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := a.clock.NewTimer(d, "ai", "think")
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
