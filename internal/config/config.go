// Package config loads process settings from the environment and game rules
// from an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"catanrig/internal/game"
)

// Action sources selectable with ACTION_SOURCE.
const (
	SourceConsole = "console"
	SourceRemote  = "remote"
	SourceUART    = "uart"
	SourceMenu    = "menu"
)

var sources = []string{SourceConsole, SourceRemote, SourceUART, SourceMenu}

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	HTTPAddr      string        `env:"HTTP_ADDR" envDefault:":8080"`
	StatePath     string        `env:"STATE_PATH" envDefault:"game_state.json"`
	OutputPath    string        `env:"OUTPUT_PATH"`
	DBPath        string        `env:"DB_PATH" envDefault:"catanrig.db"`
	RulesPath     string        `env:"RULES_PATH"`
	Seed          uint64        `env:"SEED"`
	MaxTurns      int           `env:"MAX_TURNS" envDefault:"200"`
	ActionTimeout time.Duration `env:"ACTION_TIMEOUT" envDefault:"0s"`
	ActionSource  string        `env:"ACTION_SOURCE" envDefault:"console"`
	Interactive   bool          `env:"INTERACTIVE"`
	UARTDevice    string        `env:"UART_DEVICE"`
	UARTPoll      time.Duration `env:"UART_POLL" envDefault:"10ms"`
	DesertValue   uint8         `env:"DESERT_VALUE" envDefault:"0"`
	RedisURL      string        `env:"REDIS_URL"`
	RedisChannel  string        `env:"REDIS_CHANNEL" envDefault:"catanrig:state"`
	LogLevel      slog.Level    `env:"LOG_LEVEL" envDefault:"INFO"`
	Resume        bool          `env:"RESUME"`
}

// Load parses the environment. OutputPath falls back to StatePath.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.OutputPath == "" {
		cfg.OutputPath = cfg.StatePath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the host cannot start with.
func (c *Config) Validate() error {
	if !slices.Contains(sources, c.ActionSource) {
		return fmt.Errorf("%w: ACTION_SOURCE %q, want one of %v", ErrInvalid, c.ActionSource, sources)
	}
	if (c.ActionSource == SourceUART || c.ActionSource == SourceMenu) && c.UARTDevice == "" {
		return fmt.Errorf("%w: ACTION_SOURCE=%s needs UART_DEVICE", ErrInvalid, c.ActionSource)
	}
	if c.MaxTurns <= 0 {
		return fmt.Errorf("%w: MAX_TURNS must be positive", ErrInvalid)
	}
	if c.ActionTimeout < 0 {
		return fmt.Errorf("%w: ACTION_TIMEOUT must not be negative", ErrInvalid)
	}
	if c.UARTPoll <= 0 {
		return fmt.Errorf("%w: UART_POLL must be positive", ErrInvalid)
	}
	if c.DesertValue > 4 {
		return fmt.Errorf("%w: DESERT_VALUE must be 0..4", ErrInvalid)
	}
	return nil
}

// LoadRules reads a YAML rules file and fills anything it leaves out from
// the default rules. An empty path yields the defaults.
func LoadRules(path string) (game.Rules, error) {
	if path == "" {
		return game.DefaultRules(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return game.Rules{}, fmt.Errorf("reading rules: %w", err)
	}
	var r game.Rules
	if err := yaml.Unmarshal(b, &r); err != nil {
		return game.Rules{}, fmt.Errorf("parsing rules %s: %w", path, err)
	}
	r = r.Merge(game.DefaultRules())
	if err := validateRules(r); err != nil {
		return game.Rules{}, fmt.Errorf("rules %s: %w", path, err)
	}
	return r, nil
}

func validateRules(r game.Rules) error {
	for name, cost := range r.Costs {
		for res, n := range cost {
			if !res.Tradable() {
				return fmt.Errorf("%w: cost of %s uses %q", ErrInvalid, name, res)
			}
			if n < 0 {
				return fmt.Errorf("%w: cost of %s is negative", ErrInvalid, name)
			}
		}
	}
	for card, n := range r.DevDeck {
		if _, ok := card.Index(); !ok {
			return fmt.Errorf("%w: unknown development card %q", ErrInvalid, card)
		}
		if n < 0 {
			return fmt.Errorf("%w: negative count of %s", ErrInvalid, card)
		}
	}
	if r.BankStart < 0 {
		return fmt.Errorf("%w: bank_start is negative", ErrInvalid)
	}
	return nil
}
