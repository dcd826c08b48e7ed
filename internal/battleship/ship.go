package battleship

import "fmt"

// Ship length bounds.
const (
	MinShipLength = 2
	MaxShipLength = 5
)

// ShipID identifies a ship for the lifetime of the process.
// The zero value never names a ship.
type ShipID uint64

// Ship tracks a vessel's length, damage and current placement.
// Ships are created independently of any board; the board records
// placement through SetPosition.
type Ship struct {
	id     ShipID
	name   string
	length int
	hits   int
	pos    *Position
}

// NewShip creates a ship with an identifier from the default allocator.
func NewShip(name string, length int) (*Ship, error) {
	return defaultIDs.NewShip(name, length)
}

func newShip(id ShipID, name string, length int) (*Ship, error) {
	if length < MinShipLength || length > MaxShipLength {
		return nil, fmt.Errorf("%w: ship length %d outside [%d,%d]",
			ErrInvalidLength, length, MinShipLength, MaxShipLength)
	}
	return &Ship{id: id, name: name, length: length}, nil
}

// ID returns the ship's unique identifier.
func (s *Ship) ID() ShipID { return s.id }

// Name returns the display label.
func (s *Ship) Name() string { return s.name }

// Length returns the number of cells the ship covers.
func (s *Ship) Length() int { return s.length }

// Hits returns the accumulated damage.
func (s *Ship) Hits() int { return s.hits }

// Hit records one point of damage. A sunk ship takes no further damage
// and Hit reports false.
func (s *Ship) Hit() bool {
	if s.IsSunk() {
		return false
	}
	s.hits++
	return true
}

// IsSunk reports whether every cell of the ship has been hit.
func (s *Ship) IsSunk() bool {
	return s.hits == s.length
}

// Position returns the placed position, or false if the ship is not placed.
func (s *Ship) Position() (Position, bool) {
	if s.pos == nil {
		return Position{}, false
	}
	return *s.pos, true
}

// SetPosition records the ship's placement. Nil clears it.
// No validation happens here; the board owns placement correctness.
func (s *Ship) SetPosition(p *Position) {
	if p == nil {
		s.pos = nil
		return
	}
	cp := *p
	s.pos = &cp
}

func (s *Ship) String() string {
	return fmt.Sprintf("%s#%d(%d)", s.name, s.id, s.length)
}
