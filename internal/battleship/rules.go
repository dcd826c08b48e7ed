package battleship

import "fmt"

// ShipSpec describes one ship of a fleet.
type ShipSpec struct {
	Name   string
	Length int
}

// Rules fixes the board size and fleet for a game.
type Rules struct {
	BoardSize int
	Fleet     []ShipSpec
	// LockOnAttack freezes placement on a board after its first attack.
	LockOnAttack bool
}

// ClassicFleet is the standard five-ship fleet.
func ClassicFleet() []ShipSpec {
	return []ShipSpec{
		{Name: "Carrier", Length: 5},
		{Name: "Battleship", Length: 4},
		{Name: "Destroyer", Length: 3},
		{Name: "Submarine", Length: 3},
		{Name: "Patrol Boat", Length: 2},
	}
}

// ClassicRules is a 10x10 board with the classic fleet.
func ClassicRules() Rules {
	return Rules{BoardSize: 10, Fleet: ClassicFleet()}
}

// Validate checks that a fleet built from r could be placed on its board.
func (r Rules) Validate() error {
	if r.BoardSize < 2 {
		return fmt.Errorf("%w: board size %d", ErrInvalidRules, r.BoardSize)
	}
	if len(r.Fleet) == 0 {
		return fmt.Errorf("%w: empty fleet", ErrInvalidRules)
	}
	total := 0
	for _, s := range r.Fleet {
		if s.Length < MinShipLength || s.Length > MaxShipLength {
			return fmt.Errorf("%w: %q has length %d", ErrInvalidRules, s.Name, s.Length)
		}
		if s.Length > r.BoardSize {
			return fmt.Errorf("%w: %q longer than board size %d", ErrInvalidRules, s.Name, r.BoardSize)
		}
		total += s.Length
	}
	if total > r.BoardSize*r.BoardSize {
		return fmt.Errorf("%w: fleet needs %d cells, board has %d",
			ErrInvalidRules, total, r.BoardSize*r.BoardSize)
	}
	return nil
}

// FleetCells returns the number of cells the whole fleet covers.
func (r Rules) FleetCells() int {
	total := 0
	for _, s := range r.Fleet {
		total += s.Length
	}
	return total
}

// NewBoard creates an empty board sized and configured for r.
func (r Rules) NewBoard(rng Random) (*Board, error) {
	b, err := NewBoard(r.BoardSize, rng)
	if err != nil {
		return nil, err
	}
	b.SetLockOnAttack(r.LockOnAttack)
	return b, nil
}

// NewFleet creates one unplaced ship per spec using ids.
func (r Rules) NewFleet(ids *IDAllocator) ([]*Ship, error) {
	fleet := make([]*Ship, 0, len(r.Fleet))
	for _, spec := range r.Fleet {
		s, err := ids.NewShip(spec.Name, spec.Length)
		if err != nil {
			return nil, err
		}
		fleet = append(fleet, s)
	}
	return fleet, nil
}
