// Package grid holds the state shared between the dealer and the players:
// which card lies on which slot, which tokens each player has placed, and the
// queue of claims waiting for a verdict.
//
// Every mutation goes through a single mutex, so the slot/card bijection and
// the token matrix are always observed in a consistent state. Agents never
// touch the fields directly.
package grid

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/lox/setforbots/internal/cards"
	"github.com/rs/zerolog"
)

var (
	ErrSlotOutOfRange = errors.New("slot out of range")
	ErrCardOutOfRange = errors.New("card out of range")
	ErrCardOnTable    = errors.New("card already on table")
	ErrBijection      = errors.New("slot/card mapping out of sync")
	ErrTokenBound     = errors.New("player holds too many tokens")
	ErrStrayToken     = errors.New("token on empty slot")
	ErrClaimQueueFull = errors.New("claim queue full")
)

// Listener receives display notifications for grid changes. Calls are made
// while the grid lock is held, so implementations must return quickly and
// must not call back into the grid.
type Listener interface {
	PlaceCard(card cards.Card, slot int)
	RemoveCard(slot int)
	PlaceToken(player, slot int)
	RemoveToken(player, slot int)
}

type nopListener struct{}

func (nopListener) PlaceCard(cards.Card, int) {}
func (nopListener) RemoveCard(int)            {}
func (nopListener) PlaceToken(int, int)       {}
func (nopListener) RemoveToken(int, int)      {}

// Config sizes a grid.
type Config struct {
	Players     int
	TableSize   int
	DeckSize    int
	FeatureSize int
}

// Grid is the shared table of face-up cards and player tokens.
type Grid struct {
	cfg      Config
	listener Listener
	claims   *ClaimQueue
	gate     *Gate
	logger   zerolog.Logger

	mu         sync.Mutex
	slotToCard []cards.Card
	cardToSlot []int
	tokens     [][]bool
	counts     []int
	awaiting   []bool
}

// New creates an empty grid. The dealing gate starts closed: no token can be
// placed until the dealer has finished the first deal.
func New(logger zerolog.Logger, cfg Config, claims *ClaimQueue, listener Listener) *Grid {
	if listener == nil {
		listener = nopListener{}
	}
	g := &Grid{
		cfg:        cfg,
		listener:   listener,
		claims:     claims,
		gate:       NewGate(),
		logger:     logger.With().Str("component", "grid").Logger(),
		slotToCard: make([]cards.Card, cfg.TableSize),
		cardToSlot: make([]int, cfg.DeckSize),
		tokens:     make([][]bool, cfg.Players),
		counts:     make([]int, cfg.Players),
		awaiting:   make([]bool, cfg.Players),
	}
	for i := range g.slotToCard {
		g.slotToCard[i] = cards.None
	}
	for i := range g.cardToSlot {
		g.cardToSlot[i] = -1
	}
	for p := range g.tokens {
		g.tokens[p] = make([]bool, cfg.TableSize)
	}
	return g
}

// Config returns the grid dimensions.
func (g *Grid) Config() Config {
	return g.cfg
}

// PlaceCard puts card on slot. It is a no-op if the slot is occupied.
func (g *Grid) PlaceCard(card cards.Card, slot int) error {
	if !g.validSlot(slot) {
		return fmt.Errorf("%w: %d", ErrSlotOutOfRange, slot)
	}
	if card < 0 || int(card) >= g.cfg.DeckSize {
		return fmt.Errorf("%w: %d", ErrCardOutOfRange, card)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.slotToCard[slot].Valid() {
		return nil
	}
	if other := g.cardToSlot[card]; other >= 0 {
		return fmt.Errorf("%w: card %d on slot %d, placing on %d", ErrCardOnTable, card, other, slot)
	}
	g.cardToSlot[card] = slot
	g.slotToCard[slot] = card
	g.listener.PlaceCard(card, slot)
	return nil
}

// RemoveCard clears slot, removing every token on it first, and returns the
// card that was there.
func (g *Grid) RemoveCard(slot int) (cards.Card, bool) {
	if !g.validSlot(slot) {
		return cards.None, false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	card := g.slotToCard[slot]
	if !card.Valid() {
		return cards.None, false
	}
	for p := range g.tokens {
		g.removeTokenLocked(p, slot)
	}
	g.cardToSlot[card] = -1
	g.slotToCard[slot] = cards.None
	g.listener.RemoveCard(slot)
	return card, true
}

// PlaceToken places a token for player on slot. It fails silently unless the
// slot holds a card, dealing is not in progress, the player is not awaiting a
// verdict and holds fewer than FeatureSize tokens. When the placement
// completes a set the claim is queued in the same critical section, so no
// other mutation can slip in between.
func (g *Grid) PlaceToken(player, slot int) (placed, claimed bool) {
	if !g.validPlayer(player) || !g.validSlot(slot) {
		return false, false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.gate.IsClosed() || g.awaiting[player] {
		return false, false
	}
	if !g.slotToCard[slot].Valid() || g.tokens[player][slot] || g.counts[player] >= g.cfg.FeatureSize {
		return false, false
	}

	g.tokens[player][slot] = true
	g.counts[player]++
	g.listener.PlaceToken(player, slot)

	if g.counts[player] < g.cfg.FeatureSize {
		return true, false
	}
	if err := g.claims.Enqueue(player); err != nil {
		g.logger.Error().Err(err).Int("player", player).Msg("Dropping claim")
		g.removeTokenLocked(player, slot)
		return false, false
	}
	g.awaiting[player] = true
	return true, true
}

// RemoveToken removes player's token from slot and reports whether one was
// removed. Like PlaceToken it is rejected while dealing or awaiting a verdict.
func (g *Grid) RemoveToken(player, slot int) bool {
	if !g.validPlayer(player) || !g.validSlot(slot) {
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.gate.IsClosed() || g.awaiting[player] {
		return false
	}
	if !g.slotToCard[slot].Valid() {
		return false
	}
	return g.removeTokenLocked(player, slot)
}

func (g *Grid) removeTokenLocked(player, slot int) bool {
	if !g.tokens[player][slot] {
		return false
	}
	g.tokens[player][slot] = false
	g.counts[player]--
	g.listener.RemoveToken(player, slot)
	return true
}

// ReleaseClaim clears the awaiting-verdict mark for player.
func (g *Grid) ReleaseClaim(player int) {
	if !g.validPlayer(player) {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.awaiting[player] = false
}

// Awaiting reports whether player has a claim waiting for a verdict.
func (g *Grid) Awaiting(player int) bool {
	if !g.validPlayer(player) {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.awaiting[player]
}

// PlayerTokenCount returns how many tokens player currently holds.
func (g *Grid) PlayerTokenCount(player int) int {
	if !g.validPlayer(player) {
		return 0
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.counts[player]
}

// HasToken reports whether player holds a token on slot.
func (g *Grid) HasToken(player, slot int) bool {
	if !g.validPlayer(player) || !g.validSlot(slot) {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.tokens[player][slot]
}

// PlayerSlots returns the slots player holds tokens on, ascending.
func (g *Grid) PlayerSlots(player int) []int {
	slots, _ := g.HeldCards(player)
	return slots
}

// HeldCards returns the slots player holds tokens on and the cards on them,
// read atomically.
func (g *Grid) HeldCards(player int) ([]int, []cards.Card) {
	if !g.validPlayer(player) {
		return nil, nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	slots := make([]int, 0, g.cfg.FeatureSize)
	held := make([]cards.Card, 0, g.cfg.FeatureSize)
	for slot, has := range g.tokens[player] {
		if has {
			slots = append(slots, slot)
			held = append(held, g.slotToCard[slot])
		}
	}
	return slots, held
}

// IsPlaceable reports whether slot currently holds a card.
func (g *Grid) IsPlaceable(slot int) bool {
	return g.CardAt(slot).Valid()
}

// CardAt returns the card on slot, or cards.None.
func (g *Grid) CardAt(slot int) cards.Card {
	if !g.validSlot(slot) {
		return cards.None
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.slotToCard[slot]
}

// SlotOf returns the slot card lies on.
func (g *Grid) SlotOf(card cards.Card) (int, bool) {
	if card < 0 || int(card) >= g.cfg.DeckSize {
		return -1, false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	slot := g.cardToSlot[card]
	return slot, slot >= 0
}

// Cards returns the cards on the grid in slot order.
func (g *Grid) Cards() []cards.Card {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]cards.Card, 0, len(g.slotToCard))
	for _, c := range g.slotToCard {
		if c.Valid() {
			out = append(out, c)
		}
	}
	return out
}

// EmptySlots returns the slots without a card, ascending.
func (g *Grid) EmptySlots() []int {
	return g.slots(false)
}

// OccupiedSlots returns the slots holding a card, ascending.
func (g *Grid) OccupiedSlots() []int {
	return g.slots(true)
}

func (g *Grid) slots(occupied bool) []int {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []int
	for slot, c := range g.slotToCard {
		if c.Valid() == occupied {
			out = append(out, slot)
		}
	}
	return out
}

// CountCards returns the number of cards on the grid.
func (g *Grid) CountCards() int {
	return len(g.Cards())
}

// BeginDealing closes the dealing gate. Token mutations in flight finish
// first because the gate is flipped under the grid lock.
func (g *Grid) BeginDealing() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gate.Close()
}

// EndDealing opens the dealing gate and wakes every agent blocked in WaitDealt.
func (g *Grid) EndDealing() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gate.Open()
}

// Dealing reports whether the dealer is currently changing cards.
func (g *Grid) Dealing() bool {
	return g.gate.IsClosed()
}

// WaitDealt blocks until dealing is finished or ctx is done.
func (g *Grid) WaitDealt(ctx context.Context) error {
	return g.gate.Wait(ctx)
}

// Hints returns every set currently on the grid as ascending slot lists.
func (g *Grid) Hints(oracle cards.Oracle) ([][]int, error) {
	sets, err := oracle.FindSets(g.Cards(), 0)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	hints := make([][]int, 0, len(sets))
	for _, set := range sets {
		slots := make([]int, 0, len(set))
		for _, c := range set {
			slots = append(slots, g.cardToSlot[c])
		}
		slices.Sort(slots)
		hints = append(hints, slots)
	}
	return hints, nil
}

// Verify checks the slot/card bijection and the token invariants.
func (g *Grid) Verify() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for slot, c := range g.slotToCard {
		if !c.Valid() {
			continue
		}
		if g.cardToSlot[c] != slot {
			return fmt.Errorf("%w: slot %d holds card %d, card maps to slot %d", ErrBijection, slot, c, g.cardToSlot[c])
		}
	}
	for c, slot := range g.cardToSlot {
		if slot < 0 {
			continue
		}
		if g.slotToCard[slot] != cards.Card(c) {
			return fmt.Errorf("%w: card %d maps to slot %d holding %v", ErrBijection, c, slot, g.slotToCard[slot])
		}
	}
	for p, row := range g.tokens {
		n := 0
		for slot, has := range row {
			if !has {
				continue
			}
			n++
			if !g.slotToCard[slot].Valid() {
				return fmt.Errorf("%w: player %d slot %d", ErrStrayToken, p, slot)
			}
		}
		if n != g.counts[p] {
			return fmt.Errorf("%w: player %d counted %d, holds %d", ErrTokenBound, p, g.counts[p], n)
		}
		if n > g.cfg.FeatureSize {
			return fmt.Errorf("%w: player %d holds %d", ErrTokenBound, p, n)
		}
	}
	return nil
}

func (g *Grid) validSlot(slot int) bool {
	return slot >= 0 && slot < g.cfg.TableSize
}

func (g *Grid) validPlayer(player int) bool {
	return player >= 0 && player < g.cfg.Players
}
