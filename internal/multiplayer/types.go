// Package multiplayer pairs SSH sessions into online battleship matches.
// Every match owns its own boards and players and serializes access to them
// with a single lock; nothing is shared between matches.
package multiplayer

import (
	"github.com/google/uuid"

	"github.com/vovakirdan/tui-battleship/internal/game"
)

// SessionID uniquely identifies a player's session (e.g., SSH connection).
type SessionID string

// NewSessionID returns a fresh random session identifier.
func NewSessionID() SessionID {
	return SessionID(uuid.NewString())
}

// MatchID uniquely identifies an online match.
type MatchID string

// NewMatchID returns a fresh random match identifier.
func NewMatchID() MatchID {
	return MatchID("match-" + uuid.NewString())
}

// Side is the seat a session plays. The host always takes SideOne and fires
// first.
type Side int

const (
	SideNone Side = -1
	SideOne  Side = game.SeatOne
	SideTwo  Side = game.SeatTwo
)

// Seat converts the side to a match seat.
func (s Side) Seat() int { return int(s) }

// Other returns the opposing side.
func (s Side) Other() Side {
	switch s {
	case SideOne:
		return SideTwo
	case SideTwo:
		return SideOne
	}
	return SideNone
}

func (s Side) String() string {
	switch s {
	case SideOne:
		return "Player 1"
	case SideTwo:
		return "Player 2"
	}
	return "none"
}
