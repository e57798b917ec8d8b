// Package config reads runtime settings from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the settings shared by every subcommand.
type Config struct {
	Scenario string `env:"GAMESTATE_SCENARIO" envDefault:"scenarios/demo.yaml"`
	Sheet    string `env:"GAMESTATE_SHEET" envDefault:"inventory.pdf"`
	// LogFile receives engine logs. Empty discards them; the TUI owns the
	// terminal so logs never go to stderr while it runs.
	LogFile string `env:"GAMESTATE_LOG"`
	// AutoPick makes headless runs resolve each choice with its first
	// enabled options. When false a headless run stops at the first choice.
	AutoPick bool `env:"GAMESTATE_AUTO_PICK" envDefault:"true"`
	// UndoDepth bounds the TUI undo history. 0 keeps everything.
	UndoDepth int `env:"GAMESTATE_UNDO_DEPTH" envDefault:"50"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load returns the Config for the current environment.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
