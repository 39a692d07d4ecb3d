package game

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/coder/quartz"
	"github.com/lox/setforbots/internal/grid"
	"github.com/rs/zerolog"
)

// freezeTick is how often a frozen player republishes its remaining freeze.
const freezeTick = 250 * time.Millisecond

// Verdict is the dealer's answer to a claim.
type Verdict int

const (
	VerdictPoint Verdict = iota
	VerdictPenalty
	// VerdictStale means the claim no longer held a full set when drained.
	VerdictStale
)

func (v Verdict) String() string {
	switch v {
	case VerdictPoint:
		return "point"
	case VerdictPenalty:
		return "penalty"
	case VerdictStale:
		return "stale"
	default:
		return "unknown"
	}
}

// Player is one agent contending for the grid. Input arrives through
// KeyPressed (from a keyboard or an AIDriver) and is applied by Run on the
// player's own goroutine.
type Player struct {
	ID    int
	Name  string
	Human bool

	grid    *grid.Grid
	display Display
	clock   quartz.Clock
	logger  zerolog.Logger

	pointFreeze   time.Duration
	penaltyFreeze time.Duration

	actions  chan int
	verdicts chan Verdict
	changed  chan struct{}
	done     chan struct{}

	frozen     atomic.Bool
	terminated atomic.Bool
	score      atomic.Int64
}

// NewPlayer creates a player bound to a grid. The action queue holds at most
// FeatureSize pending slots.
func NewPlayer(logger zerolog.Logger, id int, name string, human bool, g *grid.Grid, display Display, clock quartz.Clock, pointFreeze, penaltyFreeze time.Duration) *Player {
	return &Player{
		ID:            id,
		Name:          name,
		Human:         human,
		grid:          g,
		display:       display,
		clock:         clock,
		logger:        logger.With().Str("component", "player").Int("player", id).Logger(),
		pointFreeze:   pointFreeze,
		penaltyFreeze: penaltyFreeze,
		actions:       make(chan int, g.Config().FeatureSize),
		verdicts:      make(chan Verdict, 1),
		changed:       make(chan struct{}, 1),
		done:          make(chan struct{}),
	}
}

// KeyPressed queues an action on slot. It is rejected, not queued, while the
// dealer is dealing, while a claim is pending, while frozen, or when the
// action queue is full. It reports whether the action was queued.
func (p *Player) KeyPressed(slot int) bool {
	if slot < 0 || slot >= p.grid.Config().TableSize {
		return false
	}
	if !p.CanAct() {
		return false
	}
	select {
	case p.actions <- slot:
		return true
	default:
		return false
	}
}

// CanAct reports whether the player would currently accept an action.
func (p *Player) CanAct() bool {
	return !p.terminated.Load() &&
		!p.frozen.Load() &&
		!p.grid.Dealing() &&
		!p.grid.Awaiting(p.ID)
}

// Pending returns the number of queued actions not yet applied.
func (p *Player) Pending() int {
	return len(p.actions)
}

// QueueFull reports whether the pending action queue is at capacity.
func (p *Player) QueueFull() bool {
	return len(p.actions) == cap(p.actions)
}

// Frozen reports whether the player is serving a freeze.
func (p *Player) Frozen() bool {
	return p.frozen.Load()
}

// Score returns the current score. Safe for concurrent use.
func (p *Player) Score() int {
	return int(p.score.Load())
}

// Changed is signalled whenever the player may have become able to act again:
// after an action is applied and after a verdict has been served. The
// channel has capacity one so a signal is never lost between a check and a
// wait; receivers must tolerate spurious wakes.
func (p *Player) Changed() <-chan struct{} {
	return p.changed
}

// Done is closed when Run returns.
func (p *Player) Done() <-chan struct{} {
	return p.done
}

// Run applies queued actions until ctx is cancelled.
func (p *Player) Run(ctx context.Context) error {
	defer close(p.done)
	defer p.terminated.Store(true)

	p.logger.Debug().Str("name", p.Name).Bool("human", p.Human).Msg("Player starting")
	defer p.logger.Debug().Msg("Player terminated")

	for {
		var slot int
		select {
		case <-ctx.Done():
			return nil
		case slot = <-p.actions:
		}

		if err := p.grid.WaitDealt(ctx); err != nil {
			return nil
		}

		if p.grid.RemoveToken(p.ID, slot) {
			p.notify()
			continue
		}
		_, claimed := p.grid.PlaceToken(p.ID, slot)
		if !claimed {
			p.notify()
			continue
		}

		p.logger.Debug().Ints("slots", p.grid.PlayerSlots(p.ID)).Msg("Claim submitted")
		select {
		case <-ctx.Done():
			return nil
		case v := <-p.verdicts:
			if err := p.serve(ctx, v); err != nil {
				return nil
			}
		}
	}
}

// award adds a point. Only the dealer calls it.
func (p *Player) award() int {
	score := int(p.score.Add(1))
	p.display.SetScore(p.ID, score)
	return score
}

// prepare marks the player frozen before the dealer releases its claim, so
// there is no window in which a new action could slip in.
func (p *Player) prepare(v Verdict) {
	if p.freezeFor(v) > 0 {
		p.frozen.Store(true)
	}
}

// deliver hands the verdict to the player's goroutine. The channel has room
// for exactly one verdict, matching the one-claim-per-player rule.
func (p *Player) deliver(v Verdict) {
	select {
	case p.verdicts <- v:
	default:
		p.logger.Error().Stringer("verdict", v).Msg("Verdict dropped, previous verdict unread")
	}
}

func (p *Player) freezeFor(v Verdict) time.Duration {
	switch v {
	case VerdictPoint:
		return p.pointFreeze
	case VerdictPenalty:
		return p.penaltyFreeze
	default:
		return 0
	}
}

// serve applies a verdict: hold the player for the configured freeze, then
// discard anything queued and signal that it may act again.
func (p *Player) serve(ctx context.Context, v Verdict) error {
	p.logger.Debug().Stringer("verdict", v).Int("score", p.Score()).Msg("Verdict received")

	if d := p.freezeFor(v); d > 0 {
		p.frozen.Store(true)
		if err := p.freeze(ctx, d); err != nil {
			return err
		}
	}

	p.drain()
	p.frozen.Store(false)
	p.notify()
	return nil
}

func (p *Player) freeze(ctx context.Context, d time.Duration) error {
	until := p.clock.Now("player", "freeze").Add(d)
	for {
		remaining := p.clock.Until(until, "player", "freeze")
		if remaining <= 0 {
			break
		}
		p.display.SetFreeze(p.ID, remaining)

		t := p.clock.NewTimer(min(remaining, freezeTick), "player", "freeze")
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	p.display.SetFreeze(p.ID, 0)
	return nil
}

func (p *Player) drain() {
	for {
		select {
		case <-p.actions:
		default:
			return
		}
	}
}

func (p *Player) notify() {
	select {
	case p.changed <- struct{}{}:
	default:
	}
}
