package battleship

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"
)

func newTestBoard(t *testing.T, size int) *Board {
	t.Helper()
	b, err := NewBoard(size, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("NewBoard(%d) failed: %v", size, err)
	}
	return b
}

func newTestShip(t *testing.T, ids *IDAllocator, length int) *Ship {
	t.Helper()
	s, err := ids.NewShip("test", length)
	if err != nil {
		t.Fatalf("NewShip(%d) failed: %v", length, err)
	}
	return s
}

// occupied returns the coordinates held by s, scanned in row-major order.
func occupied(b *Board, s *Ship) []Coord {
	var out []Coord
	for r := 0; r < b.Size(); r++ {
		for c := 0; c < b.Size(); c++ {
			if b.ShipAt(C(r, c)) == s {
				out = append(out, C(r, c))
			}
		}
	}
	return out
}

func TestNewBoardSize(t *testing.T) {
	for _, size := range []int{-1, 0, 1} {
		if _, err := NewBoard(size, nil); !errors.Is(err, ErrInvalidSize) {
			t.Errorf("NewBoard(%d) error = %v, want ErrInvalidSize", size, err)
		}
	}
	b := newTestBoard(t, 2)
	if b.Size() != 2 {
		t.Errorf("Size() = %d, want 2", b.Size())
	}
}

func TestAddShipEitherOrder(t *testing.T) {
	tests := []struct {
		name       string
		length     int
		start, end Coord
	}{
		{"horizontal", 3, C(2, 1), C(2, 3)},
		{"vertical", 5, C(0, 0), C(4, 0)},
		{"edge row", 2, C(9, 8), C(9, 9)},
		{"edge col", 4, C(6, 9), C(9, 9)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids := NewIDAllocator()

			fwdBoard := newTestBoard(t, 10)
			fwd := newTestShip(t, ids, tt.length)
			if err := fwdBoard.AddShip(fwd, tt.start, tt.end); err != nil {
				t.Fatalf("AddShip(forward) failed: %v", err)
			}

			revBoard := newTestBoard(t, 10)
			rev := newTestShip(t, ids, tt.length)
			if err := revBoard.AddShip(rev, tt.end, tt.start); err != nil {
				t.Fatalf("AddShip(reversed) failed: %v", err)
			}

			a, b := occupied(fwdBoard, fwd), occupied(revBoard, rev)
			if len(a) != tt.length {
				t.Errorf("occupied %d cells, want %d", len(a), tt.length)
			}
			if !reflect.DeepEqual(a, b) {
				t.Errorf("forward cells %v != reversed cells %v", a, b)
			}

			pf, _ := fwd.Position()
			pr, _ := rev.Position()
			if pf != pr {
				t.Errorf("positions differ: %v vs %v", pf, pr)
			}
			if pf.Start != tt.start {
				t.Errorf("normalized start = %v, want %v", pf.Start, tt.start)
			}
		})
	}
}

func TestAddShipShapeMismatch(t *testing.T) {
	tests := []struct {
		name       string
		length     int
		start, end Coord
	}{
		{"diagonal", 3, C(0, 0), C(2, 2)},
		{"diagonal off by one", 2, C(0, 0), C(1, 1)},
		{"skewed", 3, C(0, 0), C(1, 2)},
		{"too long row", 3, C(0, 0), C(0, 3)},
		{"too short col", 4, C(0, 0), C(2, 0)},
		{"single cell", 2, C(5, 5), C(5, 5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBoard(t, 10)
			s := newTestShip(t, NewIDAllocator(), tt.length)

			err := b.AddShip(s, tt.start, tt.end)
			if !errors.Is(err, ErrShapeMismatch) {
				t.Fatalf("AddShip() error = %v, want ErrShapeMismatch", err)
			}
			if b.Contains(s) || len(b.Ships()) != 0 {
				t.Error("failed placement mutated the board")
			}
			if _, ok := s.Position(); ok {
				t.Error("failed placement set a position")
			}
		})
	}
}

func TestAddShipOccupiedAndDuplicate(t *testing.T) {
	ids := NewIDAllocator()
	b := newTestBoard(t, 10)
	first := newTestShip(t, ids, 4)
	second := newTestShip(t, ids, 3)

	if err := b.AddShip(first, C(3, 2), C(3, 5)); err != nil {
		t.Fatalf("AddShip() failed: %v", err)
	}

	// Crosses first at (3,4).
	err := b.AddShip(second, C(2, 4), C(4, 4))
	if !errors.Is(err, ErrOccupied) {
		t.Fatalf("AddShip(crossing) error = %v, want ErrOccupied", err)
	}
	for _, c := range []Coord{C(2, 4), C(4, 4)} {
		if b.ShipAt(c) != nil {
			t.Errorf("cell %v occupied after failed placement", c)
		}
	}
	if _, ok := second.Position(); ok {
		t.Error("failed placement set a position")
	}

	err = b.AddShip(first, C(0, 0), C(0, 3))
	if !errors.Is(err, ErrDuplicatePlacement) {
		t.Fatalf("AddShip(same ship) error = %v, want ErrDuplicatePlacement", err)
	}
	if b.ShipAt(C(0, 0)) != nil {
		t.Error("duplicate placement mutated the board")
	}
	if len(b.Ships()) != 1 {
		t.Errorf("len(Ships()) = %d, want 1", len(b.Ships()))
	}
}

func TestAddShipOutOfBounds(t *testing.T) {
	b := newTestBoard(t, 5)
	s := newTestShip(t, NewIDAllocator(), 3)

	for _, pair := range [][2]Coord{
		{C(0, 3), C(0, 5)},
		{C(-1, 0), C(1, 0)},
		{C(4, 4), C(6, 4)},
	} {
		if err := b.AddShip(s, pair[0], pair[1]); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("AddShip(%v, %v) error = %v, want ErrOutOfBounds", pair[0], pair[1], err)
		}
	}
}

func TestRemoveShipAndReplace(t *testing.T) {
	ids := NewIDAllocator()
	b := newTestBoard(t, 10)
	s := newTestShip(t, ids, 3)

	if b.RemoveShip(s) {
		t.Error("RemoveShip() on absent ship = true")
	}

	if err := b.AddShip(s, C(0, 0), C(0, 2)); err != nil {
		t.Fatalf("AddShip() failed: %v", err)
	}
	if !b.RemoveShip(s) {
		t.Fatal("RemoveShip() = false")
	}
	if b.Contains(s) {
		t.Error("ship still on board")
	}
	if _, ok := s.Position(); ok {
		t.Error("position not cleared")
	}
	if got := occupied(b, s); len(got) != 0 {
		t.Errorf("cells still occupied: %v", got)
	}

	if err := b.AddShip(s, C(5, 5), C(7, 5)); err != nil {
		t.Fatalf("re-placing failed: %v", err)
	}
	if got := occupied(b, s); len(got) != 3 || got[0] != C(5, 5) {
		t.Errorf("re-placed cells = %v", got)
	}
}

func TestRemoveShipKeepsOrder(t *testing.T) {
	ids := NewIDAllocator()
	b := newTestBoard(t, 10)
	a, m, z := newTestShip(t, ids, 2), newTestShip(t, ids, 2), newTestShip(t, ids, 2)
	_ = b.AddShip(a, C(0, 0), C(0, 1))
	_ = b.AddShip(m, C(1, 0), C(1, 1))
	_ = b.AddShip(z, C(2, 0), C(2, 1))

	b.RemoveShip(m)
	got := b.Ships()
	if len(got) != 2 || got[0] != a || got[1] != z {
		t.Errorf("Ships() = %v, want [a z]", got)
	}
}

func TestShipOverlap(t *testing.T) {
	ids := NewIDAllocator()
	b := newTestBoard(t, 10)
	placed := newTestShip(t, ids, 3)
	other := newTestShip(t, ids, 3)
	if err := b.AddShip(placed, C(4, 4), C(4, 6)); err != nil {
		t.Fatalf("AddShip() failed: %v", err)
	}

	tests := []struct {
		name       string
		ship       *Ship
		start, end Coord
		want       bool
	}{
		{"own cells", placed, C(4, 5), C(4, 7), false},
		{"same spot", placed, C(4, 4), C(4, 6), false},
		{"other crossing", other, C(3, 5), C(5, 5), true},
		{"other clear", other, C(0, 0), C(0, 2), false},
		{"other touching end", other, C(4, 6), C(4, 8), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.ShipOverlap(tt.ship, tt.start, tt.end)
			if err != nil {
				t.Fatalf("ShipOverlap() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ShipOverlap() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := b.ShipOverlap(other, C(0, 0), C(1, 1)); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("ShipOverlap(diagonal) error = %v, want ErrShapeMismatch", err)
	}
	if _, err := b.ShipOverlap(other, C(0, 9), C(0, 11)); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("ShipOverlap(out of bounds) error = %v, want ErrOutOfBounds", err)
	}
}

func TestReceiveAttack(t *testing.T) {
	b := newTestBoard(t, 10)
	s := newTestShip(t, NewIDAllocator(), 2)
	_ = b.AddShip(s, C(0, 0), C(0, 1))

	got, err := b.ReceiveAttack(C(5, 5))
	if err != nil || got != nil {
		t.Errorf("miss = %v, %v; want nil, nil", got, err)
	}

	got, err = b.ReceiveAttack(C(0, 1))
	if err != nil || got != s {
		t.Errorf("hit = %v, %v; want ship, nil", got, err)
	}

	if _, err := b.ReceiveAttack(C(0, 1)); !errors.Is(err, ErrAlreadyHit) {
		t.Errorf("second attack error = %v, want ErrAlreadyHit", err)
	}
	if s.Hits() != 1 {
		t.Errorf("Hits() = %d, want 1", s.Hits())
	}
	if _, err := b.ReceiveAttack(C(5, 5)); !errors.Is(err, ErrAlreadyHit) {
		t.Errorf("repeat miss error = %v, want ErrAlreadyHit", err)
	}

	for _, c := range []Coord{C(10, 0), C(0, 10), C(-1, 3), C(3, -1)} {
		if _, err := b.ReceiveAttack(c); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("ReceiveAttack(%v) error = %v, want ErrOutOfBounds", c, err)
		}
	}

	cs, err := b.Cell(C(0, 1))
	if err != nil || !cs.Hit || cs.Ship != s.ID() || !cs.Occupied() {
		t.Errorf("Cell(0,1) = %+v, %v", cs, err)
	}
}

func TestSinkingRequiresEveryCell(t *testing.T) {
	for length := MinShipLength; length <= MaxShipLength; length++ {
		b := newTestBoard(t, 10)
		s := newTestShip(t, NewIDAllocator(), length)
		if err := b.AddShip(s, C(2, 0), C(2, length-1)); err != nil {
			t.Fatalf("AddShip() failed: %v", err)
		}
		for col := 0; col < length; col++ {
			if s.IsSunk() || b.AllShipsSunk() {
				t.Fatalf("length %d: sunk after %d attacks", length, col)
			}
			if _, err := b.ReceiveAttack(C(2, col)); err != nil {
				t.Fatalf("ReceiveAttack() failed: %v", err)
			}
		}
		if !s.IsSunk() || !b.AllShipsSunk() || b.SunkCount() != 1 {
			t.Errorf("length %d: not sunk after %d attacks", length, length)
		}
	}
}

func TestSingleShipScenario(t *testing.T) {
	b := newTestBoard(t, 10)
	s := newTestShip(t, NewIDAllocator(), 5)
	if err := b.AddShip(s, C(0, 0), C(4, 0)); err != nil {
		t.Fatalf("AddShip() failed: %v", err)
	}
	for row := 0; row < 5; row++ {
		if _, err := b.ReceiveAttack(C(row, 0)); err != nil {
			t.Fatalf("ReceiveAttack(%d,0) failed: %v", row, err)
		}
	}
	if !s.IsSunk() {
		t.Error("IsSunk() = false")
	}
	if !b.AllShipsSunk() {
		t.Error("AllShipsSunk() = false")
	}
}

func TestTwoShipScenario(t *testing.T) {
	ids := NewIDAllocator()
	b := newTestBoard(t, 10)
	small := newTestShip(t, ids, 2)
	big := newTestShip(t, ids, 3)
	if err := b.AddShip(small, C(0, 0), C(0, 1)); err != nil {
		t.Fatalf("AddShip(small) failed: %v", err)
	}
	if err := b.AddShip(big, C(2, 2), C(4, 2)); err != nil {
		t.Fatalf("AddShip(big) failed: %v", err)
	}

	_, _ = b.ReceiveAttack(C(0, 0))
	_, _ = b.ReceiveAttack(C(0, 1))

	if !small.IsSunk() {
		t.Error("small ship not sunk")
	}
	if b.AllShipsSunk() {
		t.Error("AllShipsSunk() = true with one ship afloat")
	}
	if b.SunkCount() != 1 {
		t.Errorf("SunkCount() = %d, want 1", b.SunkCount())
	}
}

func TestEmptyBoardAllShipsSunk(t *testing.T) {
	b := newTestBoard(t, 4)
	if !b.AllShipsSunk() {
		t.Error("empty board should report all ships sunk")
	}
}

func TestRemoveSunkShipAdjustsCount(t *testing.T) {
	ids := NewIDAllocator()
	b := newTestBoard(t, 10)
	s := newTestShip(t, ids, 2)
	_ = b.AddShip(s, C(0, 0), C(0, 1))
	_, _ = b.ReceiveAttack(C(0, 0))
	_, _ = b.ReceiveAttack(C(0, 1))

	b.RemoveShip(s)
	if b.SunkCount() != 0 {
		t.Errorf("SunkCount() = %d after removing the sunk ship, want 0", b.SunkCount())
	}
	if b.SunkCount() > len(b.Ships()) {
		t.Error("sunk count exceeds placed ships")
	}
}

func TestLockOnAttack(t *testing.T) {
	ids := NewIDAllocator()

	tests := []struct {
		name string
		lock bool
	}{
		{"unlocked", false},
		{"locked", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBoard(t, 10)
			b.SetLockOnAttack(tt.lock)
			placed := newTestShip(t, ids, 2)
			late := newTestShip(t, ids, 2)
			_ = b.AddShip(placed, C(0, 0), C(0, 1))
			_, _ = b.ReceiveAttack(C(9, 9))

			err := b.AddShip(late, C(5, 5), C(5, 6))
			removed := b.RemoveShip(placed)

			if tt.lock {
				if !errors.Is(err, ErrBoardLocked) {
					t.Errorf("AddShip() error = %v, want ErrBoardLocked", err)
				}
				if removed {
					t.Error("RemoveShip() succeeded on locked board")
				}
			} else {
				if err != nil {
					t.Errorf("AddShip() failed: %v", err)
				}
				if !removed {
					t.Error("RemoveShip() failed on unlocked board")
				}
			}
		})
	}
}

func TestBoardPhase(t *testing.T) {
	b := newTestBoard(t, 10)
	if b.Phase() != PhaseEmpty {
		t.Errorf("Phase() = %v, want empty", b.Phase())
	}
	s := newTestShip(t, NewIDAllocator(), 2)
	_ = b.AddShip(s, C(0, 0), C(1, 0))
	if b.Phase() != PhasePopulated {
		t.Errorf("Phase() = %v, want populated", b.Phase())
	}
	_, _ = b.ReceiveAttack(C(3, 3))
	if b.Phase() != PhaseActive {
		t.Errorf("Phase() = %v, want active", b.Phase())
	}
}

func TestShipsFromSeparateAllocators(t *testing.T) {
	b := newTestBoard(t, 10)
	a := newTestShip(t, NewIDAllocator(), 2)
	other := newTestShip(t, NewIDAllocator(), 3)
	if a.ID() != other.ID() {
		t.Fatalf("fresh allocators gave IDs %d and %d, want equal", a.ID(), other.ID())
	}

	if err := b.AddShip(a, C(0, 0), C(0, 1)); err != nil {
		t.Fatalf("AddShip(a) failed: %v", err)
	}
	if err := b.AddShip(other, C(5, 0), C(5, 2)); err != nil {
		t.Fatalf("AddShip(other) failed: %v", err)
	}
	if !b.Contains(a) || !b.Contains(other) {
		t.Fatalf("Contains(a) = %v, Contains(other) = %v, want both true", b.Contains(a), b.Contains(other))
	}

	got, err := b.ReceiveAttack(C(0, 0))
	if err != nil {
		t.Fatalf("ReceiveAttack failed: %v", err)
	}
	if got != a {
		t.Errorf("attack on A1 hit %v, want %v", got, a)
	}
	if a.Hits() != 1 || other.Hits() != 0 {
		t.Errorf("hits a=%d other=%d, want 1 and 0", a.Hits(), other.Hits())
	}

	if overlap, err := b.ShipOverlap(other, C(0, 1), C(2, 1)); err != nil || !overlap {
		t.Errorf("ShipOverlap across a = %v, %v; want true", overlap, err)
	}

	if !b.RemoveShip(a) {
		t.Fatal("RemoveShip(a) = false")
	}
	if b.ShipAt(C(5, 1)) != other {
		t.Error("removing a cleared cells held by other")
	}
	if b.ShipAt(C(0, 1)) != nil {
		t.Error("a still occupies B1 after removal")
	}
}

func TestNilShip(t *testing.T) {
	b := newTestBoard(t, 4)
	if err := b.AddShip(nil, C(0, 0), C(0, 1)); !errors.Is(err, ErrNilShip) {
		t.Errorf("AddShip(nil) error = %v, want ErrNilShip", err)
	}
	if _, err := b.ShipOverlap(nil, C(0, 0), C(0, 1)); !errors.Is(err, ErrNilShip) {
		t.Errorf("ShipOverlap(nil) error = %v, want ErrNilShip", err)
	}
	if b.Phase() != PhaseEmpty {
		t.Errorf("Phase() = %v after rejected placement, want empty", b.Phase())
	}
}
