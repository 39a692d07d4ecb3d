package display

import (
	"time"

	"github.com/lox/setforbots/internal/cards"
	"github.com/lox/setforbots/internal/game"
)

// Multi forwards every notification to each display in order.
type Multi []game.Display

// NewMulti drops nil displays.
func NewMulti(displays ...game.Display) Multi {
	out := make(Multi, 0, len(displays))
	for _, d := range displays {
		if d != nil {
			out = append(out, d)
		}
	}
	return out
}

func (m Multi) PlaceCard(card cards.Card, slot int) {
	for _, d := range m {
		d.PlaceCard(card, slot)
	}
}

func (m Multi) RemoveCard(slot int) {
	for _, d := range m {
		d.RemoveCard(slot)
	}
}

func (m Multi) PlaceToken(player, slot int) {
	for _, d := range m {
		d.PlaceToken(player, slot)
	}
}

func (m Multi) RemoveToken(player, slot int) {
	for _, d := range m {
		d.RemoveToken(player, slot)
	}
}

func (m Multi) SetCountdown(remaining time.Duration, warn bool) {
	for _, d := range m {
		d.SetCountdown(remaining, warn)
	}
}

func (m Multi) SetElapsed(elapsed time.Duration) {
	for _, d := range m {
		d.SetElapsed(elapsed)
	}
}

func (m Multi) SetScore(player, score int) {
	for _, d := range m {
		d.SetScore(player, score)
	}
}

func (m Multi) SetFreeze(player int, remaining time.Duration) {
	for _, d := range m {
		d.SetFreeze(player, remaining)
	}
}

func (m Multi) AnnounceWinners(players []int) {
	for _, d := range m {
		d.AnnounceWinners(players)
	}
}
