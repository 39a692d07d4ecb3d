package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/coder/quartz"
	"github.com/lox/setforbots/internal/cards"
	"github.com/lox/setforbots/internal/grid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ErrDealerStopped is returned when Run is called on a dealer that already ran.
var ErrDealerStopped = errors.New("dealer already stopped")

// DealerState is the dealer's position in its loop.
type DealerState int32

const (
	StateIdle DealerState = iota
	StateDealing
	StateCountingDown
	StateDraining
	StateReshuffling
	StateTerminated
)

func (s DealerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDealing:
		return "dealing"
	case StateCountingDown:
		return "counting_down"
	case StateDraining:
		return "draining"
	case StateReshuffling:
		return "reshuffling"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("DealerState(%d)", int32(s))
	}
}

// EndReason says why a game stopped.
type EndReason int

const (
	// EndExhausted means no set remains among the cards still in play.
	EndExhausted EndReason = iota
	// EndStopped means Stop was called or the context was cancelled.
	EndStopped
	// EndFailed means a collaborator or invariant failure stopped the dealer.
	EndFailed
)

func (r EndReason) String() string {
	switch r {
	case EndExhausted:
		return "exhausted"
	case EndStopped:
		return "stopped"
	case EndFailed:
		return "failed"
	default:
		return fmt.Sprintf("EndReason(%d)", int(r))
	}
}

// DealerStats counts what the dealer did during a game.
type DealerStats struct {
	Deals       int
	Reshuffles  int
	Claims      int
	Points      int
	Penalties   int
	StaleClaims int
	Discarded   int
}

// Dealer is the single coordinating loop. It owns the deck, the timer and
// the scores; everything else it reaches through the grid and claim queue.
type Dealer struct {
	cfg     Config
	grid    *grid.Grid
	claims  *grid.ClaimQueue
	deck    *cards.Deck
	oracle  cards.Oracle
	timer   *Timer
	display Display
	logger  zerolog.Logger

	players []*Player
	drivers []*AIDriver // indexed by player id, nil for human players

	state    atomic.Int32
	stopCh   chan struct{}
	stopOnce sync.Once
	ran      atomic.Bool

	// needReshuffle is set by the dealing step when the layout can no longer
	// produce a set. Dealer goroutine only.
	needReshuffle bool

	deals       atomic.Int64
	reshuffles  atomic.Int64
	claimCount  atomic.Int64
	points      atomic.Int64
	penalties   atomic.Int64
	staleClaims atomic.Int64
	discarded   atomic.Int64
}

// NewDealer assembles a dealer. drivers may be shorter than players or hold
// nil entries for players without an autonomous driver.
func NewDealer(logger zerolog.Logger, cfg Config, g *grid.Grid, claims *grid.ClaimQueue, deck *cards.Deck, oracle cards.Oracle, clock quartz.Clock, display Display, players []*Player, drivers []*AIDriver) *Dealer {
	if display == nil {
		display = NopDisplay{}
	}
	d := &Dealer{
		cfg:     cfg,
		grid:    g,
		claims:  claims,
		deck:    deck,
		oracle:  oracle,
		timer:   NewTimer(clock, cfg.TimerMode, cfg.TurnTimeout, cfg.TurnWarning),
		display: display,
		logger:  logger.With().Str("component", "dealer").Logger(),
		players: players,
		drivers: make([]*AIDriver, len(players)),
		stopCh:  make(chan struct{}),
	}
	copy(d.drivers, drivers)
	return d
}

// State returns the current dealer state.
func (d *Dealer) State() DealerState {
	return DealerState(d.state.Load())
}

// Stop requests termination. It is safe to call more than once and from any
// goroutine.
func (d *Dealer) Stop() {
	d.stopOnce.Do(func() {
		close(d.stopCh)
	})
}

// Stats returns a snapshot of the dealer counters.
func (d *Dealer) Stats() DealerStats {
	return DealerStats{
		Deals:       int(d.deals.Load()),
		Reshuffles:  int(d.reshuffles.Load()),
		Claims:      int(d.claimCount.Load()),
		Points:      int(d.points.Load()),
		Penalties:   int(d.penalties.Load()),
		StaleClaims: int(d.staleClaims.Load()),
		Discarded:   int(d.discarded.Load()),
	}
}

// Winners returns every player tied at the highest score. It is only
// meaningful once Run has returned.
func (d *Dealer) Winners() []int {
	best := -1
	var winners []int
	for _, p := range d.players {
		switch score := p.Score(); {
		case score > best:
			best = score
			winners = []int{p.ID}
		case score == best:
			winners = append(winners, p.ID)
		}
	}
	return winners
}

// Run starts every agent, plays until the cards run out or termination is
// requested, then stops and joins the agents and announces the winners.
// The returned error is non-nil only for fatal failures.
func (d *Dealer) Run(ctx context.Context) (EndReason, error) {
	if !d.ran.CompareAndSwap(false, true) {
		return EndFailed, ErrDealerStopped
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-d.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	agentCtx, stopAgents := context.WithCancel(ctx)
	defer stopAgents()
	g, agentCtx := errgroup.WithContext(agentCtx)
	for i, p := range d.players {
		g.Go(func() error { return p.Run(agentCtx) })
		if drv := d.drivers[i]; drv != nil {
			g.Go(func() error { return drv.Run(agentCtx) })
		}
	}

	d.logger.Info().
		Int("players", len(d.players)).
		Int("deck", d.deck.Len()).
		Stringer("timer", d.timer.Mode()).
		Msg("Dealer starting")

	reason, err := d.loop(ctx)
	if err != nil {
		reason = EndFailed
	}

	d.terminate(stopAgents, g)

	if reason != EndFailed {
		winners := d.Winners()
		d.display.AnnounceWinners(winners)
		d.logger.Info().
			Ints("winners", winners).
			Stringer("reason", reason).
			Msg("Game over")
	}
	return reason, err
}

// Preview deals the opening grid without starting any agent and returns
// the sets on it as slot lists. A dealer that previewed cannot Run.
func (d *Dealer) Preview() ([][]int, error) {
	if !d.ran.CompareAndSwap(false, true) {
		return nil, ErrDealerStopped
	}
	defer d.setState(StateTerminated)
	if err := d.deal(true); err != nil {
		return nil, err
	}
	return d.grid.Hints(d.oracle)
}

func (d *Dealer) loop(ctx context.Context) (EndReason, error) {
	for {
		if ctx.Err() != nil {
			return EndStopped, nil
		}

		finished, err := d.exhausted()
		if err != nil {
			return EndFailed, err
		}
		if finished {
			return EndExhausted, nil
		}

		if err := d.deal(true); err != nil {
			return EndFailed, err
		}
		if err := d.countdown(ctx); err != nil {
			return EndFailed, err
		}
		if ctx.Err() != nil {
			return EndStopped, nil
		}
		d.reshuffle()
	}
}

// exhausted reports whether no set can be formed from the deck. It is checked
// right after a reshuffle, when every card still in play is in the deck.
func (d *Dealer) exhausted() (bool, error) {
	pool := append(d.deck.Cards(), d.grid.Cards()...)
	sets, err := d.oracle.FindSets(pool, 1)
	if err != nil {
		return false, fmt.Errorf("search remaining cards: %w", err)
	}
	return len(sets) == 0, nil
}

// deal fills every empty slot from the deck with the gate closed, then runs
// the integrity and starvation checks before reopening the gate. The timer is
// reset when at least one slot was filled, or unconditionally when
// forceReset is set.
func (d *Dealer) deal(forceReset bool) error {
	d.setState(StateDealing)
	d.grid.BeginDealing()

	filled := 0
	for _, slot := range d.grid.EmptySlots() {
		card, ok := d.deck.Draw()
		if !ok {
			break
		}
		if err := d.grid.PlaceCard(card, slot); err != nil {
			return fmt.Errorf("deal card %v to slot %d: %w", card, slot, err)
		}
		filled++
	}
	if filled > 0 || forceReset {
		d.timer.Reset()
	}
	if filled > 0 {
		d.deals.Add(1)
	}

	if err := d.grid.Verify(); err != nil {
		return fmt.Errorf("grid integrity after deal: %w", err)
	}

	onGrid := d.grid.Cards()
	gridSets, err := d.oracle.FindSets(onGrid, 0)
	if err != nil {
		return fmt.Errorf("search grid: %w", err)
	}
	if d.cfg.Hints {
		hints, err := d.grid.Hints(d.oracle)
		if err != nil {
			return fmt.Errorf("hints: %w", err)
		}
		d.logger.Info().Interface("sets", hints).Msg("Hints")
	}

	d.needReshuffle = false
	switch {
	case len(gridSets) > 0:
	case d.timer.Mode() != TimerCountdown:
		// Nothing will ever expire, so a dead layout has to be replaced now.
		d.needReshuffle = true
	default:
		pool := append(d.deck.Cards(), onGrid...)
		sets, err := d.oracle.FindSets(pool, 1)
		if err != nil {
			return fmt.Errorf("search remaining cards: %w", err)
		}
		d.needReshuffle = len(sets) == 0
	}

	d.logger.Debug().
		Int("filled", filled).
		Int("on_grid", len(onGrid)).
		Int("deck", d.deck.Len()).
		Int("grid_sets", len(gridSets)).
		Bool("reshuffle", d.needReshuffle).
		Msg("Dealt")

	d.grid.EndDealing()
	d.timer.Publish(d.display)
	return nil
}

// countdown drains claims until the round expires, the layout is starved or
// ctx is done.
func (d *Dealer) countdown(ctx context.Context) error {
	d.setState(StateCountingDown)
	for !d.timer.Expired() && !d.needReshuffle {
		player, ok := d.claims.Dequeue(ctx, d.timer.NextWake())
		if ctx.Err() != nil {
			return nil
		}
		if ok {
			if err := d.resolve(player); err != nil {
				return err
			}
			d.setState(StateCountingDown)
		}
		d.timer.Publish(d.display)
	}
	if d.timer.Expired() {
		d.logger.Debug().Msg("Round expired")
	}
	return nil
}

// resolve judges one claim. The player's tokens are read now, not when the
// claim was queued: a reshuffle or another player's point may have taken
// cards away in between, which makes the claim stale.
func (d *Dealer) resolve(player int) error {
	d.setState(StateDraining)
	d.claimCount.Add(1)

	if player < 0 || player >= len(d.players) {
		return fmt.Errorf("claim from unknown player %d", player)
	}
	p := d.players[player]
	logger := d.logger.With().Int("player", player).Logger()

	slots, held := d.grid.HeldCards(player)
	if len(held) != d.cfg.FeatureSize {
		d.staleClaims.Add(1)
		logger.Debug().Ints("slots", slots).Msg("Stale claim dropped")
		d.release(p, VerdictStale)
		return nil
	}

	ok, err := d.oracle.IsSet(held...)
	if err != nil {
		return fmt.Errorf("validate claim of player %d: %w", player, err)
	}

	if !ok {
		d.penalties.Add(1)
		logger.Debug().Ints("slots", slots).Msg("Claim rejected")
		d.release(p, VerdictPenalty)
		return nil
	}

	score := p.award()
	d.points.Add(1)
	logger.Debug().Ints("slots", slots).Int("score", score).Msg("Claim accepted")

	d.grid.BeginDealing()
	for _, slot := range slots {
		if _, ok := d.grid.RemoveCard(slot); ok {
			d.discarded.Add(1)
		}
	}
	d.release(p, VerdictPoint)
	return d.deal(true)
}

// release hands the verdict over. The freeze flag goes up before the claim
// mark comes down so the player never looks idle in between.
func (d *Dealer) release(p *Player, v Verdict) {
	p.prepare(v)
	d.grid.ReleaseClaim(p.ID)
	p.deliver(v)
}

// reshuffle returns every grid card to the deck, which clears every token.
func (d *Dealer) reshuffle() {
	d.setState(StateReshuffling)
	d.grid.BeginDealing()
	for _, slot := range d.grid.OccupiedSlots() {
		if card, ok := d.grid.RemoveCard(slot); ok {
			d.deck.Return(card)
		}
	}
	d.deck.Shuffle()
	d.reshuffles.Add(1)
	d.needReshuffle = false
	d.logger.Debug().Int("deck", d.deck.Len()).Msg("Reshuffled")
}

// terminate stops every agent and joins them highest id first, each driver
// before the player it drives.
func (d *Dealer) terminate(stopAgents context.CancelFunc, g *errgroup.Group) {
	stopAgents()
	for i := len(d.players) - 1; i >= 0; i-- {
		if drv := d.drivers[i]; drv != nil {
			<-drv.Done()
		}
		<-d.players[i].Done()
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		d.logger.Warn().Err(err).Msg("Agent exited with error")
	}
	d.setState(StateTerminated)
	d.logger.Debug().Msg("All agents joined")
}

func (d *Dealer) setState(s DealerState) {
	if prev := DealerState(d.state.Swap(int32(s))); prev != s {
		d.logger.Trace().Stringer("from", prev).Stringer("to", s).Msg("State")
	}
}

