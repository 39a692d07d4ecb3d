package game

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lox/setforbots/internal/cards"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid game config")

// TimerMode selects how the round clock behaves.
type TimerMode int

const (
	// TimerCountdown reshuffles the grid when the round duration elapses.
	TimerCountdown TimerMode = iota
	// TimerNone never expires and shows no clock.
	TimerNone
	// TimerElapsed never expires and shows the time since the last reset.
	TimerElapsed
)

func (m TimerMode) String() string {
	switch m {
	case TimerCountdown:
		return "countdown"
	case TimerNone:
		return "none"
	case TimerElapsed:
		return "elapsed"
	default:
		return fmt.Sprintf("TimerMode(%d)", int(m))
	}
}

// ParseTimerMode parses a mode name as produced by TimerMode.String.
func ParseTimerMode(s string) (TimerMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "countdown", "":
		return TimerCountdown, nil
	case "none", "off":
		return TimerNone, nil
	case "elapsed", "countup", "count-up":
		return TimerElapsed, nil
	default:
		return 0, fmt.Errorf("%w: unknown timer mode %q", ErrInvalidConfig, s)
	}
}

// Config holds everything the core reads at startup. It is never mutated
// once a game is created.
type Config struct {
	Players      int
	HumanPlayers int      // the first HumanPlayers seats take keyboard input
	PlayerNames  []string // optional, defaults to "Player N"

	TableSize    int
	DeckSize     int
	FeatureCount int
	FeatureSize  int // cards per combination and values per feature

	TimerMode     TimerMode
	TurnTimeout   time.Duration
	TurnWarning   time.Duration
	PointFreeze   time.Duration
	PenaltyFreeze time.Duration

	AIThinkDelay time.Duration
	Hints        bool
	Seed         int64
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() Config {
	return Config{
		Players:       2,
		HumanPlayers:  0,
		TableSize:     12,
		DeckSize:      cards.Classic.DeckSize(),
		FeatureCount:  cards.Classic.FeatureCount,
		FeatureSize:   cards.Classic.FeatureSize,
		TimerMode:     TimerCountdown,
		TurnTimeout:   60 * time.Second,
		TurnWarning:   5 * time.Second,
		PointFreeze:   time.Second,
		PenaltyFreeze: 3 * time.Second,
		AIThinkDelay:  250 * time.Millisecond,
	}
}

// Encoding returns the card encoding described by the config.
func (c Config) Encoding() cards.Encoding {
	return cards.Encoding{FeatureCount: c.FeatureCount, FeatureSize: c.FeatureSize}
}

// PlayerName returns the display name of a player.
func (c Config) PlayerName(id int) string {
	if id >= 0 && id < len(c.PlayerNames) && c.PlayerNames[id] != "" {
		return c.PlayerNames[id]
	}
	return fmt.Sprintf("Player %d", id+1)
}

// IsHuman reports whether a player takes keyboard input.
func (c Config) IsHuman(id int) bool {
	return id >= 0 && id < c.HumanPlayers
}

// Validate checks the config for inconsistent values.
func (c Config) Validate() error {
	if c.Players < 1 {
		return fmt.Errorf("%w: need at least one player, got %d", ErrInvalidConfig, c.Players)
	}
	if c.HumanPlayers < 0 || c.HumanPlayers > c.Players {
		return fmt.Errorf("%w: human players %d not in [0, %d]", ErrInvalidConfig, c.HumanPlayers, c.Players)
	}
	if c.FeatureSize < 3 {
		return fmt.Errorf("%w: feature size must be at least 3, got %d", ErrInvalidConfig, c.FeatureSize)
	}
	if c.FeatureCount < 1 {
		return fmt.Errorf("%w: feature count must be positive, got %d", ErrInvalidConfig, c.FeatureCount)
	}
	if max := c.Encoding().DeckSize(); c.DeckSize < 1 || c.DeckSize > max {
		return fmt.Errorf("%w: deck size %d not in [1, %d]", ErrInvalidConfig, c.DeckSize, max)
	}
	if c.TableSize < c.FeatureSize {
		return fmt.Errorf("%w: table size %d smaller than feature size %d", ErrInvalidConfig, c.TableSize, c.FeatureSize)
	}
	if c.TimerMode == TimerCountdown && c.TurnTimeout <= 0 {
		return fmt.Errorf("%w: countdown mode needs a positive turn timeout", ErrInvalidConfig)
	}
	if c.TurnWarning < 0 || c.PointFreeze < 0 || c.PenaltyFreeze < 0 || c.AIThinkDelay < 0 {
		return fmt.Errorf("%w: durations must not be negative", ErrInvalidConfig)
	}
	return nil
}
