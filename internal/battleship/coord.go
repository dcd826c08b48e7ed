package battleship

import "fmt"

// Coord is a cell address on a board. Row grows downward, Col to the right.
type Coord struct {
	Row int
	Col int
}

// C is a convenience constructor for Coord.
func C(row, col int) Coord {
	return Coord{Row: row, Col: col}
}

// String returns a string representation of the coordinate.
func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Add returns a new Coord offset by (dr, dc).
func (c Coord) Add(dr, dc int) Coord {
	return Coord{Row: c.Row + dr, Col: c.Col + dc}
}

// Position is the inclusive pair of end cells a ship covers.
// Positions stored on ships are normalized so Start <= End along the axis.
type Position struct {
	Start Coord
	End   Coord
}

// Horizontal reports whether the position lies along a single row.
func (p Position) Horizontal() bool {
	return p.Start.Row == p.End.Row
}

// Len returns the number of cells covered by the position.
func (p Position) Len() int {
	if p.Horizontal() {
		return abs(p.End.Col-p.Start.Col) + 1
	}
	return abs(p.End.Row-p.Start.Row) + 1
}

// Cells lists every covered cell from Start to End.
func (p Position) Cells() []Coord {
	dr, dc := unitShift(p.Start, p.End)
	n := p.Len()
	cells := make([]Coord, 0, n)
	c := p.Start
	for i := 0; i < n; i++ {
		cells = append(cells, c)
		c = c.Add(dr, dc)
	}
	return cells
}

// Contains reports whether c is one of the covered cells.
func (p Position) Contains(c Coord) bool {
	for _, pc := range p.Cells() {
		if pc == c {
			return true
		}
	}
	return false
}

// String returns a string representation of the position.
func (p Position) String() string {
	return p.Start.String() + "-" + p.End.String()
}

// line validates that start and end describe a straight run of exactly
// length cells and returns it normalized.
func line(start, end Coord, length int) (Position, error) {
	var span int
	switch {
	case start.Row == end.Row:
		span = abs(end.Col-start.Col) + 1
	case start.Col == end.Col:
		span = abs(end.Row-start.Row) + 1
	default:
		return Position{}, fmt.Errorf("%w: %s to %s is diagonal", ErrShapeMismatch, start, end)
	}
	if span != length {
		return Position{}, fmt.Errorf("%w: %s to %s spans %d cells, ship needs %d",
			ErrShapeMismatch, start, end, span, length)
	}
	return normalize(start, end), nil
}

func normalize(start, end Coord) Position {
	if end.Row < start.Row || end.Col < start.Col {
		start, end = end, start
	}
	return Position{Start: start, End: end}
}

// unitShift returns the per-step delta walking from a to b.
func unitShift(a, b Coord) (int, int) {
	return sign(b.Row - a.Row), sign(b.Col - a.Col)
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
