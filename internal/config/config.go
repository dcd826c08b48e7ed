// Package config provides YAML-based configuration loading and CPU pace
// presets for the battleship platform.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-battleship/internal/battleship"
)

// Config contains all configuration for the battleship platform.
type Config struct {
	Rules   RulesConfig   `yaml:"rules"`
	CPU     CPUConfig     `yaml:"cpu"`
	Player  PlayerConfig  `yaml:"player"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// RulesConfig selects a registered variant or defines a custom one.
type RulesConfig struct {
	Variant      string       `yaml:"variant"`
	BoardSize    int          `yaml:"board_size"`
	LockOnAttack bool         `yaml:"lock_on_attack"`
	Fleet        []ShipConfig `yaml:"fleet"`
}

// ShipConfig defines one ship of a custom fleet.
type ShipConfig struct {
	Name   string `yaml:"name"`
	Length int    `yaml:"length"`
}

// CPUConfig defines the computer opponent.
type CPUConfig struct {
	Name       string        `yaml:"name"`
	Pace       Pace          `yaml:"pace"`
	ThinkDelay time.Duration `yaml:"think_delay"`
}

// PlayerConfig defines the local human player.
type PlayerConfig struct {
	Name string `yaml:"name"`
}

// ServerConfig defines the SSH server.
type ServerConfig struct {
	Address     string        `yaml:"address"`
	HostKeyPath string        `yaml:"host_key_path"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
	MaxLobbies  int           `yaml:"max_lobbies"`
}

// StorageConfig defines the scoreboard database.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// LogConfig defines logging output.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Custom reports whether the rules section defines its own fleet.
func (r RulesConfig) Custom() bool {
	return len(r.Fleet) > 0
}

// ToRules converts a custom rules section to engine rules.
func (r RulesConfig) ToRules() battleship.Rules {
	rules := battleship.Rules{
		BoardSize:    r.BoardSize,
		LockOnAttack: r.LockOnAttack,
	}
	for _, s := range r.Fleet {
		rules.Fleet = append(rules.Fleet, battleship.ShipSpec{Name: s.Name, Length: s.Length})
	}
	return rules
}

// Validate checks the parts of the config that can be checked without
// touching the registry or the filesystem.
func (c Config) Validate() error {
	var errs []error
	if c.Rules.Custom() {
		if err := c.Rules.ToRules().Validate(); err != nil {
			errs = append(errs, fmt.Errorf("rules: %w", err))
		}
	} else if c.Rules.Variant == "" {
		errs = append(errs, errors.New("rules: variant or fleet required"))
	}
	if _, err := ParsePace(string(c.CPU.Pace)); err != nil {
		errs = append(errs, fmt.Errorf("cpu: %w", err))
	}
	if c.CPU.ThinkDelay < 0 {
		errs = append(errs, fmt.Errorf("cpu: negative think delay %s", c.CPU.ThinkDelay))
	}
	if c.Server.Address == "" {
		errs = append(errs, errors.New("server: address required"))
	}
	if c.Server.MaxLobbies < 0 {
		errs = append(errs, fmt.Errorf("server: negative max_lobbies %d", c.Server.MaxLobbies))
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}
	return errors.Join(errs...)
}
