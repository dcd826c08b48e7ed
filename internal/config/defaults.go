package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/battleship.yaml
var defaultYAML []byte

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Rules: RulesConfig{
			Variant:   "classic",
			BoardSize: 10,
		},
		CPU: CPUConfig{
			Name:       "Bingo",
			Pace:       PaceNormal,
			ThinkDelay: 600 * time.Millisecond,
		},
		Player: PlayerConfig{
			Name: "Tango",
		},
		Server: ServerConfig{
			Address:     ":2222",
			HostKeyPath: ".ssh/battleship_ed25519",
			IdleTimeout: 30 * time.Minute,
			MaxLobbies:  64,
		},
		Storage: StorageConfig{
			Path: "~/.battleship/scores.db",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
