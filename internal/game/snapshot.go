package game

import "github.com/vovakirdan/tui-battleship/internal/battleship"

// Mark is what a viewer sees in one board cell.
type Mark uint8

const (
	MarkUnknown Mark = iota // opponent cell not attacked yet
	MarkWater               // own empty cell
	MarkShip                // own ship, or opponent ship revealed after the round
	MarkMiss
	MarkHit
	MarkSunk
)

// BoardView is a rendered-ready grid of marks, indexed [row][col].
type BoardView struct {
	Size  int
	Marks [][]Mark
}

// At returns the mark at c, or MarkUnknown out of bounds.
func (v BoardView) At(c battleship.Coord) Mark {
	if c.Row < 0 || c.Row >= v.Size || c.Col < 0 || c.Col >= v.Size {
		return MarkUnknown
	}
	return v.Marks[c.Row][c.Col]
}

// ShipView describes one ship of the viewer's own fleet.
type ShipView struct {
	Name     string
	Length   int
	Hits     int
	Placed   bool
	Sunk     bool
	Position battleship.Position
}

// SeatView is the public part of a seat.
type SeatView struct {
	Name      string
	Wins      int
	Automated bool
	Ready     bool
	ShipsLeft int
}

// Snapshot is one seat's view of the match. The opponent's unsunk ships are
// hidden until the round is over.
type Snapshot struct {
	Seat     int
	Phase    Phase
	Round    int
	Turn     int
	YourTurn bool
	Winner   int // -1 while undecided
	You      SeatView
	Opponent SeatView
	Own      BoardView
	Target   BoardView
	Fleet    []ShipView
	Stats    Stats
	LastShot *Shot
}

// Snapshot returns seat's view of the match.
func (m *Match) Snapshot(seat int) Snapshot {
	if !validSeat(seat) {
		return Snapshot{Seat: seat, Winner: -1}
	}
	opp := Opponent(seat)
	snap := Snapshot{
		Seat:     seat,
		Phase:    m.phase,
		Round:    m.round,
		Turn:     m.turn,
		YourTurn: m.phase == PhaseBattle && m.turn == seat,
		Winner:   m.winner,
		You:      m.seatView(seat),
		Opponent: m.seatView(opp),
		Own:      boardView(m.players[seat].Board(), true),
		Target:   boardView(m.players[opp].Board(), m.phase == PhaseOver),
		Stats:    m.stats[seat],
	}
	for _, s := range m.fleets[seat] {
		pos, placed := s.Position()
		snap.Fleet = append(snap.Fleet, ShipView{
			Name:     s.Name(),
			Length:   s.Length(),
			Hits:     s.Hits(),
			Placed:   placed,
			Sunk:     s.IsSunk(),
			Position: pos,
		})
	}
	if m.lastShot != nil {
		shot := *m.lastShot
		snap.LastShot = &shot
	}
	return snap
}

func (m *Match) seatView(seat int) SeatView {
	p := m.players[seat]
	b := p.Board()
	return SeatView{
		Name:      p.Name(),
		Wins:      p.Wins(),
		Automated: p.Automated(),
		Ready:     m.ready[seat],
		ShipsLeft: len(b.Ships()) - b.SunkCount(),
	}
}

// boardView renders b. Unattacked cells show ship positions only when
// reveal is set.
func boardView(b *battleship.Board, reveal bool) BoardView {
	size := b.Size()
	v := BoardView{Size: size, Marks: make([][]Mark, size)}
	for r := 0; r < size; r++ {
		v.Marks[r] = make([]Mark, size)
		for c := 0; c < size; c++ {
			v.Marks[r][c] = cellMark(b, battleship.C(r, c), reveal)
		}
	}
	return v
}

func cellMark(b *battleship.Board, c battleship.Coord, reveal bool) Mark {
	cs, err := b.Cell(c)
	if err != nil {
		return MarkUnknown
	}
	switch {
	case cs.Hit && !cs.Occupied():
		return MarkMiss
	case cs.Hit && b.ShipAt(c).IsSunk():
		return MarkSunk
	case cs.Hit:
		return MarkHit
	case cs.Occupied() && reveal:
		return MarkShip
	case reveal:
		return MarkWater
	}
	return MarkUnknown
}
