// Package game drives a two-seat Battleship match on top of the rules
// engine: fleet deployment, alternating turns, win detection and rematches.
// A Match is not safe for concurrent use.
package game

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-battleship/internal/battleship"
)

// Phase is the match state.
type Phase string

const (
	PhaseDeploy Phase = "deploy"
	PhaseBattle Phase = "battle"
	PhaseOver   Phase = "over"
)

// Seats. The player in SeatOne fires first.
const (
	SeatOne = 0
	SeatTwo = 1
)

// Match flow errors.
var (
	ErrWrongPhase       = errors.New("game: action not allowed in this phase")
	ErrNotYourTurn      = errors.New("game: not your turn")
	ErrBadSeat          = errors.New("game: no such seat")
	ErrBadShip          = errors.New("game: no such ship in fleet")
	ErrSeatReady        = errors.New("game: fleet already confirmed")
	ErrFleetNotDeployed = errors.New("game: fleet not fully deployed")
	ErrFleetDoesNotFit  = errors.New("game: fleet does not fit on the board")
	ErrNoTarget         = errors.New("game: no cell left to attack")
)

// Config describes a new match.
type Config struct {
	Rules     battleship.Rules
	Names     [2]string
	Automated [2]bool
	Seed      int64 // 0 = random based on time

	// IDs allocates ship and player identifiers. Nil uses a fresh allocator
	// owned by the match.
	IDs    *battleship.IDAllocator
	Logger *log.Logger
}

// Stats counts one seat's shooting in the current round.
type Stats struct {
	Shots int
	Hits  int
	Sunk  int
}

// Accuracy returns hits per shot in [0,1].
func (s Stats) Accuracy() float64 {
	if s.Shots == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Shots)
}

// Match is one game between two seats, possibly replayed with Rematch.
type Match struct {
	rules   battleship.Rules
	rng     *rand.Rand
	ids     *battleship.IDAllocator
	log     *log.Logger
	players [2]*battleship.Player
	fleets  [2][]*battleship.Ship
	ready   [2]bool
	stats   [2]Stats

	phase    Phase
	turn     int
	winner   int
	round    int
	lastShot *Shot
}

// New creates a match in the deploy phase with empty boards.
func New(cfg Config) (*Match, error) {
	if err := cfg.Rules.Validate(); err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	ids := cfg.IDs
	if ids == nil {
		ids = battleship.NewIDAllocator()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	m := &Match{
		rules: cfg.Rules,
		rng:   rand.New(rand.NewSource(seed)),
		ids:   ids,
		log:   logger,
	}
	for seat := range m.players {
		name := cfg.Names[seat]
		if name == "" {
			name = fmt.Sprintf("Player %d", seat+1)
		}
		m.players[seat] = ids.NewPlayer(name, nil, cfg.Automated[seat])
	}
	if err := m.reset(); err != nil {
		return nil, err
	}
	return m, nil
}

// reset gives both players fresh boards and fleets and returns to deploy.
func (m *Match) reset() error {
	for seat, p := range m.players {
		board, err := m.rules.NewBoard(m.rng)
		if err != nil {
			return err
		}
		fleet, err := m.rules.NewFleet(m.ids)
		if err != nil {
			return err
		}
		p.SetBoard(board)
		m.fleets[seat] = fleet
		m.ready[seat] = false
		m.stats[seat] = Stats{}
	}
	m.phase = PhaseDeploy
	m.turn = SeatOne
	m.winner = -1
	m.round++
	m.lastShot = nil
	return nil
}

// Rematch starts a new round with the same players and fresh boards.
// Win counts carry over.
func (m *Match) Rematch() error {
	if m.phase != PhaseOver {
		return fmt.Errorf("%w: rematch during %s", ErrWrongPhase, m.phase)
	}
	if err := m.reset(); err != nil {
		return err
	}
	m.log.Info("rematch", "round", m.round)
	return nil
}

// Rules returns the match rules.
func (m *Match) Rules() battleship.Rules { return m.rules }

// Phase returns the current phase.
func (m *Match) Phase() Phase { return m.phase }

// Round returns the 1-based round number.
func (m *Match) Round() int { return m.round }

// Turn returns the seat whose turn it is to fire.
func (m *Match) Turn() int { return m.turn }

// Winner returns the winning seat of the current round.
func (m *Match) Winner() (int, bool) {
	return m.winner, m.winner >= 0
}

// Player returns the player in seat.
func (m *Match) Player(seat int) *battleship.Player {
	if !validSeat(seat) {
		return nil
	}
	return m.players[seat]
}

// Stats returns the seat's shooting stats for the current round.
func (m *Match) Stats(seat int) Stats {
	if !validSeat(seat) {
		return Stats{}
	}
	return m.stats[seat]
}

// LastShot returns the most recent shot of the round, if any.
func (m *Match) LastShot() (Shot, bool) {
	if m.lastShot == nil {
		return Shot{}, false
	}
	return *m.lastShot, true
}

// Opponent returns the other seat.
func Opponent(seat int) int {
	return 1 - seat
}

func validSeat(seat int) bool {
	return seat == SeatOne || seat == SeatTwo
}

func (m *Match) checkSeat(seat int) error {
	if !validSeat(seat) {
		return fmt.Errorf("%w: %d", ErrBadSeat, seat)
	}
	return nil
}
