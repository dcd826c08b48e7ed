package battleship

import "fmt"

// diagonalShifts are the step directions of the unhit-cell walk.
var diagonalShifts = [4][2]int{{1, -1}, {-1, -1}, {1, 1}, {-1, 1}}

// RandomUnhitCoords returns a random cell that has not been attacked yet,
// or false when every cell has been attacked.
//
// The walk starts at a random cell and steps the row in a random diagonal
// direction, wrapping at the edges. The column advances only when the row
// wraps, so the walk visits every cell once before it comes back to the
// origin.
func (b *Board) RandomUnhitCoords() (Coord, bool) {
	origin := C(b.rng.Intn(b.size), b.rng.Intn(b.size))
	shift := diagonalShifts[b.rng.Intn(len(diagonalShifts))]

	c := origin
	for b.at(c).hit {
		c.Row += shift[0]
		if c.Row == b.size || c.Row == -1 {
			c.Row = wrap(c.Row, b.size)
			c.Col = wrap(c.Col+shift[1], b.size)
		}
		if c == origin {
			return Coord{}, false
		}
	}
	return c, true
}

// RandomEmptyStraightLine picks, uniformly at random, a vertical or
// horizontal run of length cells that holds no ship. It returns false when
// no such run exists.
func (b *Board) RandomEmptyStraightLine(length int) (Position, bool, error) {
	if length < MinShipLength || length > b.size {
		return Position{}, false, fmt.Errorf("%w: line length %d outside [%d,%d]",
			ErrInvalidLength, length, MinShipLength, b.size)
	}
	lines := b.EmptyLines(length)
	if len(lines) == 0 {
		return Position{}, false, nil
	}
	return lines[b.rng.Intn(len(lines))], true, nil
}

// EmptyLines lists every ship-free run of length cells, vertical runs first.
// Length is not validated; runs longer than the board yield nothing.
func (b *Board) EmptyLines(length int) []Position {
	lines := b.emptyLines(length, true)
	return append(lines, b.emptyLines(length, false)...)
}

// emptyLines sweeps each column (vertical) or row (horizontal) with a window
// of length cells. When the window hits an occupied cell the sweep restarts
// just past the last occupied cell in that window.
func (b *Board) emptyLines(length int, vertical bool) []Position {
	var lines []Position
	at := func(line, i int) Coord {
		if vertical {
			return C(i, line)
		}
		return C(line, i)
	}

	for ln := 0; ln < b.size; ln++ {
		start := 0
		for start+length <= b.size {
			last := -1
			for i := start; i < start+length; i++ {
				if b.at(at(ln, i)).ship != nil {
					last = i
				}
			}
			if last >= 0 {
				start = last + 1
				continue
			}
			lines = append(lines, Position{Start: at(ln, start), End: at(ln, start+length-1)})
			start++
		}
	}
	return lines
}

func wrap(v, n int) int {
	return ((v % n) + n) % n
}
