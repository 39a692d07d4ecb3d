package tui

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/lox/setforbots/internal/cards"
	"github.com/lox/setforbots/internal/game"
)

// maxLogLines bounds the event log kept for the viewport.
const maxLogLines = 200

// Board is the game.Display the TUI renders from. Notifications update the
// board under its own lock and then nudge the model through a one-slot
// channel, so the game never waits on the terminal and no update is lost.
type Board struct {
	enc   cards.Encoding
	names []string

	mu        sync.Mutex
	slots     []cards.Card
	tokens    [][]bool
	scores    []int
	freezes   []time.Duration
	mode      game.TimerMode
	countdown time.Duration
	warn      bool
	elapsed   time.Duration
	winners   []int
	over      bool
	log       []string

	changed chan struct{}
	closed  chan struct{}
	once    sync.Once
}

// BoardView is a copy of the board state for rendering.
type BoardView struct {
	Encoding  cards.Encoding
	Names     []string
	Slots     []cards.Card
	Tokens    [][]bool
	Scores    []int
	Freezes   []time.Duration
	Mode      game.TimerMode
	Countdown time.Duration
	Warn      bool
	Elapsed   time.Duration
	Winners   []int
	Over      bool
	Log       []string
}

// NewBoard creates a board for cfg.
func NewBoard(cfg game.Config) *Board {
	names := make([]string, cfg.Players)
	tokens := make([][]bool, cfg.Players)
	for p := range cfg.Players {
		names[p] = cfg.PlayerName(p)
		tokens[p] = make([]bool, cfg.TableSize)
	}
	slots := make([]cards.Card, cfg.TableSize)
	for i := range slots {
		slots[i] = cards.None
	}
	return &Board{
		enc:     cfg.Encoding(),
		names:   names,
		slots:   slots,
		tokens:  tokens,
		scores:  make([]int, cfg.Players),
		freezes: make([]time.Duration, cfg.Players),
		mode:    cfg.TimerMode,
		changed: make(chan struct{}, 1),
		closed:  make(chan struct{}),
	}
}

// Changed is signalled after every update.
func (b *Board) Changed() <-chan struct{} {
	return b.changed
}

// Closed is closed by Close.
func (b *Board) Closed() <-chan struct{} {
	return b.closed
}

// Close marks the game as over and releases anything waiting on Changed.
func (b *Board) Close() {
	b.once.Do(func() {
		b.mu.Lock()
		b.over = true
		b.mu.Unlock()
		close(b.closed)
	})
}

// Snapshot copies the current state.
func (b *Board) Snapshot() BoardView {
	b.mu.Lock()
	defer b.mu.Unlock()
	tokens := make([][]bool, len(b.tokens))
	for p := range b.tokens {
		tokens[p] = slices.Clone(b.tokens[p])
	}
	return BoardView{
		Encoding:  b.enc,
		Names:     slices.Clone(b.names),
		Slots:     slices.Clone(b.slots),
		Tokens:    tokens,
		Scores:    slices.Clone(b.scores),
		Freezes:   slices.Clone(b.freezes),
		Mode:      b.mode,
		Countdown: b.countdown,
		Warn:      b.warn,
		Elapsed:   b.elapsed,
		Winners:   slices.Clone(b.winners),
		Over:      b.over,
		Log:       slices.Clone(b.log),
	}
}

// Logf appends a line to the event log.
func (b *Board) Logf(format string, args ...any) {
	b.update(func() { b.appendLog(fmt.Sprintf(format, args...)) })
}

func (b *Board) appendLog(line string) {
	b.log = append(b.log, line)
	if n := len(b.log) - maxLogLines; n > 0 {
		b.log = slices.Delete(b.log, 0, n)
	}
}

func (b *Board) update(fn func()) {
	b.mu.Lock()
	fn()
	b.mu.Unlock()
	select {
	case b.changed <- struct{}{}:
	default:
	}
}

func (b *Board) validSlot(slot int) bool {
	return slot >= 0 && slot < len(b.slots)
}

func (b *Board) validPlayer(player int) bool {
	return player >= 0 && player < len(b.scores)
}

func (b *Board) PlaceCard(card cards.Card, slot int) {
	b.update(func() {
		if b.validSlot(slot) {
			b.slots[slot] = card
		}
	})
}

func (b *Board) RemoveCard(slot int) {
	b.update(func() {
		if b.validSlot(slot) {
			b.slots[slot] = cards.None
		}
	})
}

func (b *Board) PlaceToken(player, slot int) {
	b.update(func() {
		if b.validPlayer(player) && b.validSlot(slot) {
			b.tokens[player][slot] = true
		}
	})
}

func (b *Board) RemoveToken(player, slot int) {
	b.update(func() {
		if b.validPlayer(player) && b.validSlot(slot) {
			b.tokens[player][slot] = false
		}
	})
}

func (b *Board) SetCountdown(remaining time.Duration, warn bool) {
	b.update(func() {
		b.countdown = remaining
		b.warn = warn
	})
}

func (b *Board) SetElapsed(elapsed time.Duration) {
	b.update(func() { b.elapsed = elapsed })
}

func (b *Board) SetScore(player, score int) {
	b.update(func() {
		if !b.validPlayer(player) {
			return
		}
		b.scores[player] = score
		b.appendLog(fmt.Sprintf("%s scores (%d)", b.names[player], score))
	})
}

func (b *Board) SetFreeze(player int, remaining time.Duration) {
	b.update(func() {
		if b.validPlayer(player) {
			b.freezes[player] = remaining
		}
	})
}

func (b *Board) AnnounceWinners(players []int) {
	b.update(func() {
		b.winners = slices.Clone(players)
		names := make([]string, 0, len(players))
		for _, p := range players {
			if b.validPlayer(p) {
				names = append(names, b.names[p])
			}
		}
		switch len(names) {
		case 0:
			b.appendLog("Game over")
		case 1:
			b.appendLog(fmt.Sprintf("%s wins!", names[0]))
		default:
			b.appendLog(fmt.Sprintf("Tie between %v", names))
		}
	})
}
