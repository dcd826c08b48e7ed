package config

import (
	"fmt"
	"time"
)

// Pace is a named speed for the computer opponent's moves.
type Pace string

const (
	PaceInstant Pace = "instant"
	PaceNormal  Pace = "normal"
	PaceSlow    Pace = "slow"
)

// ParsePace validates a pace name. The empty string means normal.
func ParsePace(s string) (Pace, error) {
	switch p := Pace(s); p {
	case "":
		return PaceNormal, nil
	case PaceInstant, PaceNormal, PaceSlow:
		return p, nil
	}
	return "", fmt.Errorf("unknown pace %q (want instant, normal or slow)", s)
}

// DelayForPace returns the think delay for a pace preset.
func DelayForPace(p Pace) time.Duration {
	switch p {
	case PaceInstant:
		return 0
	case PaceSlow:
		return 1500 * time.Millisecond
	default:
		return 600 * time.Millisecond
	}
}

// ApplyPace modifies the config based on a pace preset.
func ApplyPace(cfg *Config, p Pace) {
	cfg.CPU.Pace = p
	cfg.CPU.ThinkDelay = DelayForPace(p)
}
