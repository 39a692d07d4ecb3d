// Package display holds game.Display implementations that do not need a
// terminal: a structured event log and a fan-out to several displays.
package display

import (
	"fmt"
	"sync"
	"time"

	"github.com/lox/setforbots/internal/cards"
	"github.com/rs/zerolog"
)

// LogDisplay writes every notification to a zerolog logger. Grid churn goes
// to debug and trace, scores and the final result to info. Countdown updates
// are logged once per whole second.
type LogDisplay struct {
	logger zerolog.Logger
	enc    cards.Encoding
	names  []string

	mu         sync.Mutex
	lastSecond int64
	warned     bool
}

// NewLogDisplay returns a display logging through logger. names labels
// players; missing names fall back to "Player N".
func NewLogDisplay(logger zerolog.Logger, enc cards.Encoding, names []string) *LogDisplay {
	return &LogDisplay{
		logger:     logger.With().Str("component", "display").Logger(),
		enc:        enc,
		names:      names,
		lastSecond: -1,
	}
}

func (d *LogDisplay) name(player int) string {
	if player >= 0 && player < len(d.names) && d.names[player] != "" {
		return d.names[player]
	}
	return fmt.Sprintf("Player %d", player+1)
}

func (d *LogDisplay) PlaceCard(card cards.Card, slot int) {
	d.logger.Debug().
		Int("slot", slot).
		Stringer("card", card).
		Str("features", d.enc.Describe(card)).
		Msg("Card placed")
}

func (d *LogDisplay) RemoveCard(slot int) {
	d.logger.Debug().Int("slot", slot).Msg("Card removed")
}

func (d *LogDisplay) PlaceToken(player, slot int) {
	d.logger.Trace().Int("player", player).Int("slot", slot).Msg("Token placed")
}

func (d *LogDisplay) RemoveToken(player, slot int) {
	d.logger.Trace().Int("player", player).Int("slot", slot).Msg("Token removed")
}

func (d *LogDisplay) SetCountdown(remaining time.Duration, warn bool) {
	d.mu.Lock()
	sec := int64(remaining / time.Second)
	changed := sec != d.lastSecond
	enteredWarning := warn && !d.warned
	d.lastSecond = sec
	d.warned = warn
	d.mu.Unlock()

	if enteredWarning {
		d.logger.Info().Dur("remaining", remaining).Msg("Round ending soon")
		return
	}
	if changed {
		d.logger.Trace().Int64("seconds", sec).Msg("Countdown")
	}
}

func (d *LogDisplay) SetElapsed(elapsed time.Duration) {
	d.mu.Lock()
	sec := int64(elapsed / time.Second)
	changed := sec != d.lastSecond
	d.lastSecond = sec
	d.mu.Unlock()

	if changed {
		d.logger.Trace().Int64("seconds", sec).Msg("Elapsed")
	}
}

func (d *LogDisplay) SetScore(player, score int) {
	d.logger.Info().
		Int("player", player).
		Str("name", d.name(player)).
		Int("score", score).
		Msg("Point")
}

func (d *LogDisplay) SetFreeze(player int, remaining time.Duration) {
	if remaining == 0 {
		d.logger.Debug().Int("player", player).Msg("Freeze over")
		return
	}
	d.logger.Trace().Int("player", player).Dur("remaining", remaining).Msg("Frozen")
}

func (d *LogDisplay) AnnounceWinners(players []int) {
	names := make([]string, len(players))
	for i, p := range players {
		names[i] = d.name(p)
	}
	msg := "Winner"
	if len(players) > 1 {
		msg = "Tie"
	}
	d.logger.Info().Ints("players", players).Strs("names", names).Msg(msg)
}
