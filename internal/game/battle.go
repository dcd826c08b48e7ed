package game

import (
	"fmt"

	"github.com/vovakirdan/tui-battleship/internal/battleship"
)

// Outcome is the result of one shot.
type Outcome string

const (
	OutcomeMiss Outcome = "miss"
	OutcomeHit  Outcome = "hit"
	OutcomeSunk Outcome = "sunk"
)

// Shot records a resolved attack.
type Shot struct {
	Seat    int
	Coord   battleship.Coord
	Outcome Outcome
	Ship    string // name of the ship hit, empty on a miss
	Won     bool   // the shot sank the last ship
}

func (s Shot) String() string {
	switch s.Outcome {
	case OutcomeMiss:
		return fmt.Sprintf("%s: miss", s.Coord)
	case OutcomeSunk:
		return fmt.Sprintf("%s: sunk %s", s.Coord, s.Ship)
	}
	return fmt.Sprintf("%s: hit", s.Coord)
}

// Fire resolves seat's attack on the opponent's board at c. The turn passes
// to the opponent unless the shot ends the round.
func (m *Match) Fire(seat int, c battleship.Coord) (Shot, error) {
	if err := m.checkSeat(seat); err != nil {
		return Shot{}, err
	}
	if m.phase != PhaseBattle {
		return Shot{}, fmt.Errorf("%w: firing during %s", ErrWrongPhase, m.phase)
	}
	if seat != m.turn {
		return Shot{}, ErrNotYourTurn
	}

	target := m.players[Opponent(seat)].Board()
	ship, err := target.ReceiveAttack(c)
	if err != nil {
		return Shot{}, err
	}

	shot := Shot{Seat: seat, Coord: c, Outcome: OutcomeMiss}
	st := &m.stats[seat]
	st.Shots++
	if ship != nil {
		st.Hits++
		shot.Ship = ship.Name()
		shot.Outcome = OutcomeHit
		if ship.IsSunk() {
			st.Sunk++
			shot.Outcome = OutcomeSunk
		}
	}

	if shot.Outcome == OutcomeSunk && target.AllShipsSunk() {
		shot.Won = true
		m.phase = PhaseOver
		m.winner = seat
		m.players[seat].Win()
		m.log.Info("round over", "round", m.round, "winner", m.players[seat].Name(),
			"shots", st.Shots, "hits", st.Hits)
	} else {
		m.turn = Opponent(seat)
	}

	m.lastShot = &shot
	return shot, nil
}

// AutoFire picks a random unattacked cell on the opponent's board and fires.
func (m *Match) AutoFire(seat int) (Shot, error) {
	if err := m.checkSeat(seat); err != nil {
		return Shot{}, err
	}
	c, ok := m.players[Opponent(seat)].Board().RandomUnhitCoords()
	if !ok {
		return Shot{}, ErrNoTarget
	}
	return m.Fire(seat, c)
}
