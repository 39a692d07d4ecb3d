package game

import (
	"time"

	"github.com/lox/setforbots/internal/cards"
	"github.com/lox/setforbots/internal/grid"
)

// Display is notified of everything a player would see. Calls are
// fire-and-forget: implementations must not block and must not call back
// into the game.
type Display interface {
	grid.Listener

	SetCountdown(remaining time.Duration, warn bool)
	SetElapsed(elapsed time.Duration)
	SetScore(player, score int)
	SetFreeze(player int, remaining time.Duration)
	AnnounceWinners(players []int)
}

// NopDisplay discards every notification.
type NopDisplay struct{}

func (NopDisplay) PlaceCard(cards.Card, int)        {}
func (NopDisplay) RemoveCard(int)                   {}
func (NopDisplay) PlaceToken(int, int)              {}
func (NopDisplay) RemoveToken(int, int)             {}
func (NopDisplay) SetCountdown(time.Duration, bool) {}
func (NopDisplay) SetElapsed(time.Duration)         {}
func (NopDisplay) SetScore(int, int)                {}
func (NopDisplay) SetFreeze(int, time.Duration)     {}
func (NopDisplay) AnnounceWinners([]int)            {}
