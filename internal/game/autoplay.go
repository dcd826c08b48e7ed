package game

import "fmt"

// PlayOut finishes the current round with both seats playing automatically.
// Seats still deploying get a random fleet first. It returns the winning
// shot and the number of shots fired in total.
func (m *Match) PlayOut() (Shot, int, error) {
	if m.phase == PhaseDeploy {
		for seat := range m.players {
			if m.ready[seat] {
				continue
			}
			if err := m.AutoDeploy(seat); err != nil {
				return Shot{}, 0, err
			}
			if err := m.Ready(seat); err != nil {
				return Shot{}, 0, err
			}
		}
	}
	if m.phase != PhaseBattle {
		return Shot{}, 0, fmt.Errorf("%w: play out during %s", ErrWrongPhase, m.phase)
	}

	// Every shot hits a fresh cell, so the round ends within both boards' cells.
	limit := 2 * m.rules.BoardSize * m.rules.BoardSize
	for shots := 1; shots <= limit; shots++ {
		shot, err := m.AutoFire(m.turn)
		if err != nil {
			return Shot{}, shots - 1, err
		}
		if shot.Won {
			return shot, m.stats[SeatOne].Shots + m.stats[SeatTwo].Shots, nil
		}
	}
	return Shot{}, limit, ErrNoTarget
}
