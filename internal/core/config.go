package core

import "time"

// RuntimeConfig is handed to the UI models when a session starts.
type RuntimeConfig struct {
	ScreenW  int           // Screen width in characters
	ScreenH  int           // Screen height in characters
	Seed     int64         // RNG seed, 0 means seed from the clock
	CPUDelay time.Duration // Pause before the computer fires
}

// DefaultConfig returns a RuntimeConfig for a standard 80x24 terminal.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		CPUDelay: 600 * time.Millisecond,
	}
}

// Resized returns a copy of c for a new terminal size.
func (c RuntimeConfig) Resized(w, h int) RuntimeConfig {
	c.ScreenW = w
	c.ScreenH = h
	return c
}
