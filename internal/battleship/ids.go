package battleship

import "sync/atomic"

// IDAllocator hands out ship and player identifiers. The package keeps a
// process-wide allocator for NewShip and NewPlayer; tests and isolated
// sessions can construct their own.
type IDAllocator struct {
	ships   atomic.Uint64
	players atomic.Uint64
}

// NewIDAllocator returns an allocator whose first ship and player IDs are 1.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{}
}

var defaultIDs = NewIDAllocator()

// NewShip creates a ship with the next ship identifier.
// The identifier is consumed only when the length is valid.
func (a *IDAllocator) NewShip(name string, length int) (*Ship, error) {
	if _, err := newShip(0, name, length); err != nil {
		return nil, err
	}
	return newShip(ShipID(a.ships.Add(1)), name, length)
}

// NewPlayer creates a player with the next player identifier.
func (a *IDAllocator) NewPlayer(name string, board *Board, automated bool) *Player {
	return &Player{
		id:        PlayerID(a.players.Add(1)),
		name:      name,
		board:     board,
		automated: automated,
	}
}
