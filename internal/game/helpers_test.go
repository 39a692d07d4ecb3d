package game

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/lox/setforbots/internal/cards"
	"github.com/lox/setforbots/internal/grid"
	"github.com/lox/setforbots/internal/randutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var errOracleDown = errors.New("oracle unavailable")

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard).Level(zerolog.Disabled)
}

// testConfig is an all-human game with short freezes, so nothing acts unless
// the test says so.
func testConfig(players int) Config {
	cfg := DefaultConfig()
	cfg.Players = players
	cfg.HumanPlayers = players
	cfg.PointFreeze = 20 * time.Millisecond
	cfg.PenaltyFreeze = 50 * time.Millisecond
	cfg.AIThinkDelay = 0
	cfg.Seed = 42
	return cfg
}

// waitForCondition polls until condition holds or the timeout expires.
func waitForCondition(t *testing.T, timeout time.Duration, condition func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out after %v: %s", timeout, msg)
}

// scriptedOracle delegates to the feature oracle unless a hook overrides a
// method. Hooks are set before the dealer starts.
type scriptedOracle struct {
	inner  *cards.FeatureOracle
	isSet  func(cs ...cards.Card) (bool, error)
	search func(cs []cards.Card, limit int) ([][]cards.Card, error)
}

func newScriptedOracle(t *testing.T) *scriptedOracle {
	t.Helper()
	inner, err := cards.NewFeatureOracle(cards.Classic)
	require.NoError(t, err)
	return &scriptedOracle{inner: inner}
}

func (o *scriptedOracle) IsSet(cs ...cards.Card) (bool, error) {
	if o.isSet != nil {
		return o.isSet(cs...)
	}
	return o.inner.IsSet(cs...)
}

func (o *scriptedOracle) FindSets(cs []cards.Card, limit int) ([][]cards.Card, error) {
	if o.search != nil {
		return o.search(cs, limit)
	}
	return o.inner.FindSets(cs, limit)
}

func alwaysValid(cs ...cards.Card) (bool, error)   { return true, nil }
func alwaysInvalid(cs ...cards.Card) (bool, error) { return false, nil }

// recordingDisplay keeps the last value of every notification.
type recordingDisplay struct {
	mu         sync.Mutex
	cards      map[int]cards.Card
	tokens     map[[2]int]bool
	scores     map[int]int
	freezes    map[int][]time.Duration
	countdowns int
	elapsed    int
	winners    []int
	announced  int
}

func newRecordingDisplay() *recordingDisplay {
	return &recordingDisplay{
		cards:   make(map[int]cards.Card),
		tokens:  make(map[[2]int]bool),
		scores:  make(map[int]int),
		freezes: make(map[int][]time.Duration),
	}
}

func (r *recordingDisplay) PlaceCard(card cards.Card, slot int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cards[slot] = card
}

func (r *recordingDisplay) RemoveCard(slot int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cards, slot)
}

func (r *recordingDisplay) PlaceToken(player, slot int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[[2]int{player, slot}] = true
}

func (r *recordingDisplay) RemoveToken(player, slot int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, [2]int{player, slot})
}

func (r *recordingDisplay) SetCountdown(time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.countdowns++
}

func (r *recordingDisplay) SetElapsed(time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.elapsed++
}

func (r *recordingDisplay) SetScore(player, score int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scores[player] = score
}

func (r *recordingDisplay) SetFreeze(player int, remaining time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.freezes[player] = append(r.freezes[player], remaining)
}

func (r *recordingDisplay) AnnounceWinners(players []int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.winners = append([]int(nil), players...)
	r.announced++
}

func (r *recordingDisplay) Score(player int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scores[player]
}

func (r *recordingDisplay) TokenCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tokens)
}

func (r *recordingDisplay) CardCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cards)
}

func (r *recordingDisplay) Freezes(player int) []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.freezes[player]...)
}

func (r *recordingDisplay) Winners() ([]int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.winners...), r.announced
}

// dealerFixture builds a dealer without running its loop, so tests can drive
// deal, resolve and reshuffle step by step.
type dealerFixture struct {
	cfg     Config
	grid    *grid.Grid
	claims  *grid.ClaimQueue
	deck    *cards.Deck
	players []*Player
	dealer  *Dealer
	display *recordingDisplay
}

func newDealerFixture(t *testing.T, cfg Config, oracle cards.Oracle, clock quartz.Clock) *dealerFixture {
	t.Helper()
	require.NoError(t, cfg.Validate())

	display := newRecordingDisplay()
	claims := grid.NewClaimQueue(cfg.Players, clock)
	g := grid.New(testLogger(), grid.Config{
		Players:     cfg.Players,
		TableSize:   cfg.TableSize,
		DeckSize:    cfg.DeckSize,
		FeatureSize: cfg.FeatureSize,
	}, claims, display)

	players := make([]*Player, cfg.Players)
	for i := range players {
		players[i] = NewPlayer(testLogger(), i, cfg.PlayerName(i), true, g, display, clock, cfg.PointFreeze, cfg.PenaltyFreeze)
	}
	deck := cards.NewDeck(cfg.DeckSize, randutil.New(cfg.Seed))
	d := NewDealer(testLogger(), cfg, g, claims, deck, oracle, clock, display, players, nil)

	return &dealerFixture{
		cfg:     cfg,
		grid:    g,
		claims:  claims,
		deck:    deck,
		players: players,
		dealer:  d,
		display: display,
	}
}

// claim places tokens for player on slots straight through the grid and
// returns whether the last one queued a claim.
func (f *dealerFixture) claim(t *testing.T, player int, slots ...int) {
	t.Helper()
	var claimed bool
	for _, slot := range slots {
		var placed bool
		placed, claimed = f.grid.PlaceToken(player, slot)
		require.True(t, placed, "token p%d@%d", player, slot)
	}
	require.True(t, claimed, "player %d did not claim", player)
}

// runPlayer starts p.Run and stops it when the test ends.
func runPlayer(t *testing.T, p *Player) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = p.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-p.Done()
	})
}

func verdictOf(t *testing.T, p *Player) Verdict {
	t.Helper()
	select {
	case v := <-p.verdicts:
		return v
	default:
		t.Fatalf("player %d has no verdict", p.ID)
		return 0
	}
}
