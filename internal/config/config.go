// Package config loads game settings from an HCL file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lox/setforbots/internal/game"
	"github.com/rs/zerolog"
)

// File is the raw shape of a config file. Attributes are pointers so an
// absent attribute keeps its default even when zero is a valid value.
type File struct {
	Game *GameSettings `hcl:"game,block"`
	UI   *UISettings   `hcl:"ui,block"`
}

// GameSettings is the game {} block. Durations are in milliseconds.
type GameSettings struct {
	Players      *int     `hcl:"players,optional"`
	HumanPlayers *int     `hcl:"human_players,optional"`
	PlayerNames  []string `hcl:"player_names,optional"`

	TableSize    *int `hcl:"table_size,optional"`
	DeckSize     *int `hcl:"deck_size,optional"`
	FeatureCount *int `hcl:"feature_count,optional"`
	FeatureSize  *int `hcl:"feature_size,optional"`

	TimerMode       *string `hcl:"timer_mode,optional"`
	TurnTimeoutMS   *int    `hcl:"turn_timeout_ms,optional"`
	TurnWarningMS   *int    `hcl:"turn_warning_ms,optional"`
	PointFreezeMS   *int    `hcl:"point_freeze_ms,optional"`
	PenaltyFreezeMS *int    `hcl:"penalty_freeze_ms,optional"`
	AIThinkDelayMS  *int    `hcl:"ai_think_delay_ms,optional"`

	Hints *bool  `hcl:"hints,optional"`
	Seed  *int64 `hcl:"seed,optional"`
}

// UISettings is the ui {} block.
type UISettings struct {
	Headless *bool  `hcl:"headless,optional"`
	Color    *bool  `hcl:"color,optional"`
	LogLevel string `hcl:"log_level,optional"`
	LogFile  string `hcl:"log_file,optional"`
}

// UI holds presentation settings that never reach the game core.
type UI struct {
	Headless bool
	Color    bool
	LogLevel string
	LogFile  string
}

// Config is a fully resolved configuration.
type Config struct {
	Game game.Config
	UI   UI
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Game: game.DefaultConfig(),
		UI: UI{
			Color:    true,
			LogLevel: "info",
			LogFile:  "setforbots.log",
		},
	}
}

// Load reads filename. A missing file yields the defaults.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}
	return decode(file.Body)
}

// Parse decodes HCL source; filename only appears in diagnostics.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}
	return decode(file.Body)
}

func decode(body hcl.Body) (*Config, error) {
	var raw File
	if diags := gohcl.DecodeBody(body, nil, &raw); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg := Default()
	if err := raw.Game.apply(&cfg.Game); err != nil {
		return nil, err
	}
	raw.UI.apply(&cfg.UI)
	return cfg, nil
}

func (s *GameSettings) apply(cfg *game.Config) error {
	if s == nil {
		return nil
	}
	setInt(&cfg.Players, s.Players)
	setInt(&cfg.HumanPlayers, s.HumanPlayers)
	if len(s.PlayerNames) > 0 {
		cfg.PlayerNames = s.PlayerNames
	}

	setInt(&cfg.TableSize, s.TableSize)
	setInt(&cfg.FeatureCount, s.FeatureCount)
	setInt(&cfg.FeatureSize, s.FeatureSize)
	if s.DeckSize != nil {
		cfg.DeckSize = *s.DeckSize
	} else if s.FeatureCount != nil || s.FeatureSize != nil {
		// Default to the full deck of whatever encoding was chosen.
		cfg.DeckSize = cfg.Encoding().DeckSize()
	}

	if s.TimerMode != nil {
		mode, err := game.ParseTimerMode(*s.TimerMode)
		if err != nil {
			return err
		}
		cfg.TimerMode = mode
	}
	setMillis(&cfg.TurnTimeout, s.TurnTimeoutMS)
	setMillis(&cfg.TurnWarning, s.TurnWarningMS)
	setMillis(&cfg.PointFreeze, s.PointFreezeMS)
	setMillis(&cfg.PenaltyFreeze, s.PenaltyFreezeMS)
	setMillis(&cfg.AIThinkDelay, s.AIThinkDelayMS)

	if s.Hints != nil {
		cfg.Hints = *s.Hints
	}
	if s.Seed != nil {
		cfg.Seed = *s.Seed
	}
	return nil
}

func (s *UISettings) apply(ui *UI) {
	if s == nil {
		return
	}
	if s.Headless != nil {
		ui.Headless = *s.Headless
	}
	if s.Color != nil {
		ui.Color = *s.Color
	}
	if s.LogLevel != "" {
		ui.LogLevel = s.LogLevel
	}
	if s.LogFile != "" {
		ui.LogFile = s.LogFile
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setMillis(dst *time.Duration, v *int) {
	if v != nil {
		*dst = time.Duration(*v) * time.Millisecond
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Game.Validate(); err != nil {
		return err
	}
	if _, err := zerolog.ParseLevel(c.UI.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.UI.LogLevel, err)
	}
	if !c.UI.Headless && c.Game.HumanPlayers > 2 {
		return fmt.Errorf("at most 2 human players can share a keyboard, got %d", c.Game.HumanPlayers)
	}
	return nil
}
