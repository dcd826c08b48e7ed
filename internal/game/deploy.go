package game

import (
	"fmt"

	"github.com/vovakirdan/tui-battleship/internal/battleship"
)

// maxDeployAttempts bounds AutoDeploy restarts when random placement paints
// itself into a corner.
const maxDeployAttempts = 100

// Fleet returns the seat's ships in fleet order.
func (m *Match) Fleet(seat int) []*battleship.Ship {
	if !validSeat(seat) {
		return nil
	}
	out := make([]*battleship.Ship, len(m.fleets[seat]))
	copy(out, m.fleets[seat])
	return out
}

func (m *Match) deployable(seat, idx int) (*battleship.Ship, error) {
	if err := m.checkSeat(seat); err != nil {
		return nil, err
	}
	if m.phase != PhaseDeploy {
		return nil, fmt.Errorf("%w: deploying during %s", ErrWrongPhase, m.phase)
	}
	if m.ready[seat] {
		return nil, ErrSeatReady
	}
	if idx < 0 || idx >= len(m.fleets[seat]) {
		return nil, fmt.Errorf("%w: index %d", ErrBadShip, idx)
	}
	return m.fleets[seat][idx], nil
}

// Place puts fleet ship idx on the seat's board from start to end, moving it
// if it is already placed. A failed move leaves the ship where it was.
func (m *Match) Place(seat, idx int, start, end battleship.Coord) error {
	ship, err := m.deployable(seat, idx)
	if err != nil {
		return err
	}
	board := m.players[seat].Board()

	overlap, err := board.ShipOverlap(ship, start, end)
	if err != nil {
		return err
	}
	if overlap {
		return fmt.Errorf("%w: %s from %s to %s", battleship.ErrOccupied, ship.Name(), start, end)
	}

	prev, placed := ship.Position()
	if placed {
		board.RemoveShip(ship)
	}
	if err := board.AddShip(ship, start, end); err != nil {
		if placed {
			_ = board.AddShip(ship, prev.Start, prev.End)
		}
		return err
	}
	m.log.Debug("ship placed", "seat", seat, "ship", ship.Name(), "at", start, "to", end)
	return nil
}

// Withdraw takes fleet ship idx off the seat's board.
func (m *Match) Withdraw(seat, idx int) error {
	ship, err := m.deployable(seat, idx)
	if err != nil {
		return err
	}
	m.players[seat].Board().RemoveShip(ship)
	return nil
}

// AutoDeploy places the seat's whole fleet at random, replacing any manual
// placement.
func (m *Match) AutoDeploy(seat int) error {
	if _, err := m.deployable(seat, 0); err != nil {
		return err
	}
	board := m.players[seat].Board()
	fleet := m.fleets[seat]

	for attempt := 0; attempt < maxDeployAttempts; attempt++ {
		for _, s := range fleet {
			board.RemoveShip(s)
		}
		if placeRandomly(board, fleet) {
			m.log.Debug("fleet auto-deployed", "seat", seat, "attempts", attempt+1)
			return nil
		}
	}
	for _, s := range fleet {
		board.RemoveShip(s)
	}
	return ErrFleetDoesNotFit
}

func placeRandomly(board *battleship.Board, fleet []*battleship.Ship) bool {
	for _, s := range fleet {
		pos, ok, err := board.RandomEmptyStraightLine(s.Length())
		if err != nil || !ok {
			return false
		}
		if err := board.AddShip(s, pos.Start, pos.End); err != nil {
			return false
		}
	}
	return true
}

// Deployed reports whether every ship of the seat's fleet is on its board.
func (m *Match) Deployed(seat int) bool {
	if !validSeat(seat) {
		return false
	}
	board := m.players[seat].Board()
	for _, s := range m.fleets[seat] {
		if !board.Contains(s) {
			return false
		}
	}
	return true
}

// IsReady reports whether the seat has confirmed its fleet.
func (m *Match) IsReady(seat int) bool {
	return validSeat(seat) && m.ready[seat]
}

// Ready confirms the seat's deployment. Once both seats are ready the
// battle starts with SeatOne to fire.
func (m *Match) Ready(seat int) error {
	if err := m.checkSeat(seat); err != nil {
		return err
	}
	if m.phase != PhaseDeploy {
		return fmt.Errorf("%w: ready during %s", ErrWrongPhase, m.phase)
	}
	if !m.Deployed(seat) {
		return ErrFleetNotDeployed
	}
	m.ready[seat] = true
	if m.ready[SeatOne] && m.ready[SeatTwo] {
		m.phase = PhaseBattle
		m.turn = SeatOne
		m.log.Info("battle started", "round", m.round,
			"first", m.players[SeatOne].Name(), "second", m.players[SeatTwo].Name())
	}
	return nil
}
