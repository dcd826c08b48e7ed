package multiplayer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-battleship/internal/battleship"
	"github.com/vovakirdan/tui-battleship/internal/game"
)

// ErrNotInMatch is returned when a session that is not seated in a match
// tries to act on it.
var ErrNotInMatch = errors.New("multiplayer: session not in this match")

// RoundResult is the outcome of one round of an online match.
type RoundResult struct {
	MatchID  MatchID
	Round    int
	Reason   MatchEndReason
	Winner   Side
	Stats    [2]game.Stats
	Duration time.Duration
}

// OnlineMatch is one battleship match between two sessions. All access to
// the underlying game goes through mu.
type OnlineMatch struct {
	id      MatchID
	code    string
	variant string
	names   [2]string
	sides   [2]SessionHandle

	mu         sync.Mutex
	match      *game.Match
	rematch    [2]bool
	roundStart time.Time
	finished   bool

	done     chan struct{}
	doneOnce sync.Once
}

// NewOnlineMatch creates a match with both fleets placed at random and the
// battle already under way. host plays SideOne.
func NewOnlineMatch(
	id MatchID,
	code, variant string,
	rules battleship.Rules,
	names [2]string,
	host, joiner SessionHandle,
	seed int64,
	logger *log.Logger,
) (*OnlineMatch, error) {
	if logger != nil {
		logger = logger.With("match", string(id))
	}
	gm, err := game.New(game.Config{
		Rules:  rules,
		Names:  names,
		Seed:   seed,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	m := &OnlineMatch{
		id:      id,
		code:    code,
		variant: variant,
		names:   names,
		sides:   [2]SessionHandle{host, joiner},
		match:   gm,
		done:    make(chan struct{}),
	}
	if err := m.deployLocked(); err != nil {
		return nil, err
	}
	return m, nil
}

// deployLocked auto-deploys both fleets and starts the battle.
func (m *OnlineMatch) deployLocked() error {
	for seat := range 2 {
		if err := m.match.AutoDeploy(seat); err != nil {
			return fmt.Errorf("multiplayer: deploy seat %d: %w", seat, err)
		}
		if err := m.match.Ready(seat); err != nil {
			return fmt.Errorf("multiplayer: ready seat %d: %w", seat, err)
		}
	}
	m.rematch = [2]bool{}
	m.roundStart = time.Now()
	return nil
}

// ID returns the match identifier.
func (m *OnlineMatch) ID() MatchID { return m.id }

// Code returns the join code used to create this match.
func (m *OnlineMatch) Code() string { return m.code }

// Variant returns the rules variant ID.
func (m *OnlineMatch) Variant() string { return m.variant }

// Name returns the player name on side.
func (m *OnlineMatch) Name(side Side) string {
	if side != SideOne && side != SideTwo {
		return ""
	}
	return m.names[side]
}

// Session returns the session playing side.
func (m *OnlineMatch) Session(side Side) SessionHandle {
	if side != SideOne && side != SideTwo {
		return nil
	}
	return m.sides[side]
}

// SideOf returns the side played by a session.
func (m *OnlineMatch) SideOf(id SessionID) Side {
	for i, s := range m.sides {
		if s.ID() == id {
			return Side(i)
		}
	}
	return SideNone
}

// Done is closed once the match has ended.
func (m *OnlineMatch) Done() <-chan struct{} {
	return m.done
}

// Snapshot returns side's view of the match.
func (m *OnlineMatch) Snapshot(side Side) game.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.match.Snapshot(side.Seat())
}

// Broadcast sends each side its own snapshot.
func (m *OnlineMatch) Broadcast() {
	m.mu.Lock()
	snaps := [2]game.Snapshot{m.match.Snapshot(game.SeatOne), m.match.Snapshot(game.SeatTwo)}
	m.mu.Unlock()

	for i, s := range m.sides {
		s.Send(SnapshotEvent{MatchID: m.id, Snapshot: snaps[i]})
	}
}

// Fire resolves a shot from the session. When the shot wins the round the
// returned result is non-nil.
func (m *OnlineMatch) Fire(id SessionID, target battleship.Coord) (game.Shot, *RoundResult, error) {
	side := m.SideOf(id)
	if side == SideNone {
		return game.Shot{}, nil, ErrNotInMatch
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.finished {
		return game.Shot{}, nil, fmt.Errorf("%w: match closed", game.ErrWrongPhase)
	}
	shot, err := m.match.Fire(side.Seat(), target)
	if err != nil {
		return game.Shot{}, nil, err
	}
	if !shot.Won {
		return shot, nil, nil
	}
	res := m.resultLocked(MatchEndReasonCompleted, side)
	return shot, &res, nil
}

// RequestRematch records that the session wants another round. It reports
// true once both sides agreed and the new round has started.
func (m *OnlineMatch) RequestRematch(id SessionID) (bool, error) {
	side := m.SideOf(id)
	if side == SideNone {
		return false, ErrNotInMatch
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.finished || m.match.Phase() != game.PhaseOver {
		return false, fmt.Errorf("%w: rematch before the round is over", game.ErrWrongPhase)
	}
	m.rematch[side] = true
	if !m.rematch[SideOne] || !m.rematch[SideTwo] {
		return false, nil
	}
	if err := m.match.Rematch(); err != nil {
		return false, err
	}
	if err := m.deployLocked(); err != nil {
		return false, err
	}
	return true, nil
}

// Forfeit closes the match because the session left. If a round was being
// played the other side wins it and the result is returned.
func (m *OnlineMatch) Forfeit(id SessionID, reason MatchEndReason) (*RoundResult, Side) {
	side := m.SideOf(id)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.finished {
		return nil, SideNone
	}
	m.finished = true
	m.stop()

	if side == SideNone || m.match.Phase() != game.PhaseBattle {
		return nil, SideNone
	}
	res := m.resultLocked(reason, side.Other())
	return &res, side.Other()
}

// Round returns the current round number.
func (m *OnlineMatch) Round() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.match.Round()
}

func (m *OnlineMatch) resultLocked(reason MatchEndReason, winner Side) RoundResult {
	return RoundResult{
		MatchID:  m.id,
		Round:    m.match.Round(),
		Reason:   reason,
		Winner:   winner,
		Stats:    [2]game.Stats{m.match.Stats(game.SeatOne), m.match.Stats(game.SeatTwo)},
		Duration: time.Since(m.roundStart),
	}
}

// watch reports the first session to go away.
func (m *OnlineMatch) watch(onGone func(SessionID)) {
	select {
	case <-m.sides[SideOne].Done():
		onGone(m.sides[SideOne].ID())
	case <-m.sides[SideTwo].Done():
		onGone(m.sides[SideTwo].ID())
	case <-m.done:
	}
}

// Stop gracefully stops the match.
func (m *OnlineMatch) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finished = true
	m.stop()
}

func (m *OnlineMatch) stop() {
	m.doneOnce.Do(func() {
		close(m.done)
	})
}
