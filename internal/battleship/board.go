// Package battleship implements the rules of two-player Battleship:
// ship placement validation, attack resolution, sinking detection and
// the randomized placement and targeting helpers used by computer players.
//
// The package is single-threaded. Nothing here locks; a caller that shares
// a board between goroutines must serialize access itself.
package battleship

import (
	"fmt"
	"math/rand"
	"time"
)

// Random is the source of randomness used by a board.
// *rand.Rand satisfies it.
type Random interface {
	Intn(n int) int
}

// BoardPhase describes where a board is in its lifecycle.
type BoardPhase int

const (
	PhaseEmpty     BoardPhase = iota // no ships placed, no attacks
	PhasePopulated                   // ships placed, no attacks yet
	PhaseActive                      // at least one attack received
)

func (p BoardPhase) String() string {
	switch p {
	case PhaseEmpty:
		return "empty"
	case PhasePopulated:
		return "populated"
	case PhaseActive:
		return "active"
	}
	return "unknown"
}

// cell is one grid square. ship is a non-owning handle to the occupant,
// nil when empty. Ships are told apart by identity, never by ID alone.
type cell struct {
	hit  bool
	ship *Ship
}

// CellState is a read-only view of a grid square.
type CellState struct {
	Hit  bool
	Ship ShipID // zero when the cell is empty
}

// Occupied reports whether a ship covers the cell.
func (c CellState) Occupied() bool { return c.Ship != 0 }

// Board is a square grid of cells that owns ship placement,
// attack resolution and the randomized searches.
// Cells are stored in row-major order: index = row*size + col.
type Board struct {
	size     int
	cells    []cell
	ships    []*Ship
	sunk     int
	attacked bool

	lockOnAttack bool
	rng          Random
}

// NewBoard creates an empty size x size board. A nil rng is replaced with
// a time-seeded source.
func NewBoard(size int, rng Random) (*Board, error) {
	if size < 2 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Board{
		size:  size,
		cells: make([]cell, size*size),
		rng:   rng,
	}, nil
}

// SetLockOnAttack enables the policy that freezes placement once the board
// has been attacked. Off by default.
func (b *Board) SetLockOnAttack(lock bool) {
	b.lockOnAttack = lock
}

// LockOnAttack reports whether the freeze policy is enabled.
func (b *Board) LockOnAttack() bool { return b.lockOnAttack }

// Size returns the side length of the grid.
func (b *Board) Size() int { return b.size }

// SunkCount returns how many placed ships are sunk.
func (b *Board) SunkCount() int { return b.sunk }

// Ships returns the placed ships in placement order.
func (b *Board) Ships() []*Ship {
	out := make([]*Ship, len(b.ships))
	copy(out, b.ships)
	return out
}

// Contains reports whether the ship is placed on this board.
func (b *Board) Contains(s *Ship) bool {
	if s == nil {
		return false
	}
	for _, placed := range b.ships {
		if placed == s {
			return true
		}
	}
	return false
}

// Phase returns the board's lifecycle phase.
func (b *Board) Phase() BoardPhase {
	switch {
	case b.attacked:
		return PhaseActive
	case len(b.ships) > 0:
		return PhasePopulated
	}
	return PhaseEmpty
}

// InBounds reports whether c addresses a cell on the grid.
func (b *Board) InBounds(c Coord) bool {
	return c.Row >= 0 && c.Row < b.size && c.Col >= 0 && c.Col < b.size
}

func (b *Board) index(c Coord) int {
	return c.Row*b.size + c.Col
}

func (b *Board) at(c Coord) *cell {
	return &b.cells[b.index(c)]
}

func (b *Board) checkBounds(cs ...Coord) error {
	for _, c := range cs {
		if !b.InBounds(c) {
			return fmt.Errorf("%w: %s on %dx%d board", ErrOutOfBounds, c, b.size, b.size)
		}
	}
	return nil
}

// Cell returns the state of the cell at c.
func (b *Board) Cell(c Coord) (CellState, error) {
	if err := b.checkBounds(c); err != nil {
		return CellState{}, err
	}
	cl := b.at(c)
	st := CellState{Hit: cl.hit}
	if cl.ship != nil {
		st.Ship = cl.ship.ID()
	}
	return st, nil
}

// ShipAt returns the ship covering c, or nil.
func (b *Board) ShipAt(c Coord) *Ship {
	if !b.InBounds(c) {
		return nil
	}
	return b.at(c).ship
}

// AddShip places s on the cells from start to end inclusive. The pair may be
// given in either order. Nothing is changed when an error is returned.
func (b *Board) AddShip(s *Ship, start, end Coord) error {
	if s == nil {
		return ErrNilShip
	}
	if b.locked() {
		return ErrBoardLocked
	}
	if err := b.checkBounds(start, end); err != nil {
		return err
	}
	if b.Contains(s) {
		return fmt.Errorf("%w: %s", ErrDuplicatePlacement, s)
	}
	pos, err := line(start, end, s.Length())
	if err != nil {
		return err
	}
	cells := pos.Cells()
	for _, c := range cells {
		if occ := b.at(c).ship; occ != nil {
			return fmt.Errorf("%w: %s holds %s", ErrOccupied, c, occ)
		}
	}

	for _, c := range cells {
		b.at(c).ship = s
	}
	s.SetPosition(&pos)
	b.ships = append(b.ships, s)
	if s.IsSunk() {
		b.sunk++
	}
	return nil
}

// RemoveShip takes s off the board and clears its position.
// It reports false and changes nothing when s is not on the board.
// With the lock policy enabled removal is refused once attacked.
func (b *Board) RemoveShip(s *Ship) bool {
	if !b.Contains(s) || b.locked() {
		return false
	}
	for i := range b.cells {
		if b.cells[i].ship == s {
			b.cells[i].ship = nil
		}
	}
	for i, placed := range b.ships {
		if placed == s {
			b.ships = append(b.ships[:i], b.ships[i+1:]...)
			break
		}
	}
	if s.IsSunk() {
		b.sunk--
	}
	s.SetPosition(nil)
	return true
}

// ShipOverlap reports whether placing s from start to end would cover a cell
// held by a different ship. Cells held by s itself do not count, so a
// re-placement can be checked before the ship is removed.
func (b *Board) ShipOverlap(s *Ship, start, end Coord) (bool, error) {
	if s == nil {
		return false, ErrNilShip
	}
	if err := b.checkBounds(start, end); err != nil {
		return false, err
	}
	pos, err := line(start, end, s.Length())
	if err != nil {
		return false, err
	}
	for _, c := range pos.Cells() {
		if occ := b.at(c).ship; occ != nil && occ != s {
			return true, nil
		}
	}
	return false, nil
}

// ReceiveAttack fires at c. It returns the ship that was hit, or nil on a miss.
func (b *Board) ReceiveAttack(c Coord) (*Ship, error) {
	if err := b.checkBounds(c); err != nil {
		return nil, err
	}
	cl := b.at(c)
	if cl.hit {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyHit, c)
	}
	cl.hit = true
	b.attacked = true

	s := cl.ship
	if s == nil {
		return nil, nil
	}
	if s.Hit() && s.IsSunk() {
		b.sunk++
	}
	return s, nil
}

// AllShipsSunk reports whether every placed ship is sunk.
// An empty board reports true; callers should not treat that as a win
// before any ship is placed.
func (b *Board) AllShipsSunk() bool {
	return b.sunk == len(b.ships)
}

func (b *Board) locked() bool {
	return b.lockOnAttack && b.attacked
}
