package multiplayer

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/vovakirdan/tui-battleship/internal/battleship"
	"github.com/vovakirdan/tui-battleship/internal/game"
)

type memorySaver struct {
	mu      sync.Mutex
	results []MatchResultData
}

func (s *memorySaver) SaveMatchResult(r MatchResultData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, r)
	return nil
}

func (s *memorySaver) all() []MatchResultData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]MatchResultData(nil), s.results...)
}

func testRules(variant string) (battleship.Rules, error) {
	if variant == "quick" {
		return game.QuickRules(), nil
	}
	return battleship.Rules{}, fmt.Errorf("unknown variant %q", variant)
}

type fixture struct {
	c      *Coordinator
	saver  *memorySaver
	host   *ChannelSession
	joiner *ChannelSession
}

func newFixture(t *testing.T, cfg CoordinatorConfig) *fixture {
	t.Helper()
	reg := NewSessionRegistry()
	f := &fixture{
		c:      NewCoordinator(cfg, testRules, reg),
		saver:  &memorySaver{},
		host:   NewChannelSession("host", 256),
		joiner: NewChannelSession("joiner", 256),
	}
	f.c.SetResultSaver(f.saver)
	reg.Register(f.host)
	reg.Register(f.joiner)
	return f
}

func drain(s *ChannelSession) []SessionEvent {
	var out []SessionEvent
	for {
		select {
		case e := <-s.Events():
			out = append(out, e)
		default:
			return out
		}
	}
}

func findEvent[T SessionEvent](events []SessionEvent) (T, bool) {
	for _, e := range events {
		if v, ok := e.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// startMatch hosts a quick lobby and joins it, returning the match.
func (f *fixture) startMatch(t *testing.T) *OnlineMatch {
	t.Helper()
	f.c.handleMessage(CreateLobbyMsg{SessionID: "host", Name: "Tango", Variant: "quick"})
	created, ok := findEvent[LobbyCreatedEvent](drain(f.host))
	if !ok {
		t.Fatal("host did not receive LobbyCreatedEvent")
	}

	f.c.handleMessage(JoinLobbyMsg{SessionID: "joiner", Name: "Bingo", Code: created.Code})
	hostEvents := drain(f.host)
	joinerEvents := drain(f.joiner)

	started, ok := findEvent[MatchStartedEvent](joinerEvents)
	if !ok {
		t.Fatal("joiner did not receive MatchStartedEvent")
	}
	if started.Side != SideTwo || started.Opponent != "Tango" {
		t.Errorf("joiner start = %+v", started)
	}
	if _, ok := findEvent[SnapshotEvent](hostEvents); !ok {
		t.Error("host did not receive a snapshot")
	}

	m, ok := f.c.GetMatch(started.MatchID)
	if !ok {
		t.Fatal("match not registered")
	}
	return m
}

// shipCells lists every cell of side's fleet.
func shipCells(m *OnlineMatch, side Side) []battleship.Coord {
	var out []battleship.Coord
	for _, s := range m.Snapshot(side).Fleet {
		out = append(out, s.Position.Cells()...)
	}
	return out
}

// playRound has the host sink the joiner's fleet while the joiner fires
// row by row.
func (f *fixture) playRound(t *testing.T, m *OnlineMatch) {
	t.Helper()
	targets := shipCells(m, SideTwo)
	size := m.Snapshot(SideOne).Own.Size
	next := 0
	for i, c := range targets {
		f.c.handleMessage(FireMsg{SessionID: "host", MatchID: m.ID(), Target: c})
		if i == len(targets)-1 {
			break
		}
		f.c.handleMessage(FireMsg{SessionID: "joiner", MatchID: m.ID(), Target: battleship.C(next/size, next%size)})
		next++
	}
}

func TestLobbyAndMatchStart(t *testing.T) {
	f := newFixture(t, DefaultCoordinatorConfig())
	m := f.startMatch(t)

	if f.c.LobbyCount() != 0 || f.c.MatchCount() != 1 {
		t.Errorf("lobbies %d matches %d", f.c.LobbyCount(), f.c.MatchCount())
	}
	if m.Name(SideOne) != "Tango" || m.Name(SideTwo) != "Bingo" {
		t.Errorf("names = %q, %q", m.Name(SideOne), m.Name(SideTwo))
	}
	snap := m.Snapshot(SideOne)
	if snap.Phase != game.PhaseBattle || !snap.YourTurn {
		t.Errorf("host snapshot phase %v yourTurn %v", snap.Phase, snap.YourTurn)
	}
	for _, s := range snap.Fleet {
		if !s.Placed {
			t.Errorf("%s not auto-deployed", s.Name)
		}
	}
}

func TestLobbyErrors(t *testing.T) {
	f := newFixture(t, DefaultCoordinatorConfig())

	f.c.handleMessage(CreateLobbyMsg{SessionID: "host", Variant: "nope"})
	if e, ok := findEvent[LobbyErrorEvent](drain(f.host)); !ok || e.Message == "" {
		t.Error("unknown variant not rejected")
	}

	f.c.handleMessage(JoinLobbyMsg{SessionID: "joiner", Code: "ZZZZZZ"})
	if e, _ := findEvent[LobbyErrorEvent](drain(f.joiner)); e.Message != "Lobby not found" {
		t.Errorf("join missing = %q", e.Message)
	}

	f.c.handleMessage(CreateLobbyMsg{SessionID: "host", Variant: "quick"})
	created, _ := findEvent[LobbyCreatedEvent](drain(f.host))

	f.c.handleMessage(CreateLobbyMsg{SessionID: "host", Variant: "quick"})
	if e, _ := findEvent[LobbyErrorEvent](drain(f.host)); e.Message != "Already in a lobby" {
		t.Errorf("second lobby = %q", e.Message)
	}

	f.c.handleMessage(JoinLobbyMsg{SessionID: "host", Code: created.Code})
	if _, ok := findEvent[LobbyErrorEvent](drain(f.host)); !ok {
		t.Error("host joined own lobby")
	}

	f.c.handleMessage(CancelLobbyMsg{SessionID: "joiner", Code: created.Code})
	if f.c.LobbyCount() != 1 {
		t.Error("non-host cancelled the lobby")
	}
	f.c.handleMessage(CancelLobbyMsg{SessionID: "host", Code: created.Code})
	if f.c.LobbyCount() != 0 {
		t.Error("host could not cancel the lobby")
	}
}

func TestJoinIsCaseInsensitive(t *testing.T) {
	f := newFixture(t, DefaultCoordinatorConfig())
	f.c.handleMessage(CreateLobbyMsg{SessionID: "host", Variant: "quick"})
	created, _ := findEvent[LobbyCreatedEvent](drain(f.host))

	lower := []byte(created.Code)
	for i, b := range lower {
		if b >= 'A' && b <= 'Z' {
			lower[i] = b + ('a' - 'A')
		}
	}
	f.c.handleMessage(JoinLobbyMsg{SessionID: "joiner", Code: " " + string(lower) + " "})
	if f.c.MatchCount() != 1 {
		t.Error("lower-case code did not join")
	}
}

func TestMaxLobbies(t *testing.T) {
	cfg := DefaultCoordinatorConfig()
	cfg.MaxLobbies = 1
	f := newFixture(t, cfg)

	f.c.handleMessage(CreateLobbyMsg{SessionID: "host", Variant: "quick"})
	f.c.handleMessage(CreateLobbyMsg{SessionID: "joiner", Variant: "quick"})
	if e, _ := findEvent[LobbyErrorEvent](drain(f.joiner)); e.Message == "" {
		t.Error("second lobby accepted past the limit")
	}
}

func TestLobbyExpiry(t *testing.T) {
	cfg := DefaultCoordinatorConfig()
	cfg.LobbyTimeout = -time.Second
	f := newFixture(t, cfg)

	f.c.handleMessage(CreateLobbyMsg{SessionID: "host", Variant: "quick"})
	drain(f.host)
	f.c.cleanupExpiredLobbies()

	if f.c.LobbyCount() != 0 {
		t.Error("lobby not expired")
	}
	if e, _ := findEvent[LobbyErrorEvent](drain(f.host)); e.Message != "Lobby expired" {
		t.Errorf("expiry event = %q", e.Message)
	}
}

func TestShotOutOfTurnRejected(t *testing.T) {
	f := newFixture(t, DefaultCoordinatorConfig())
	m := f.startMatch(t)

	f.c.handleMessage(FireMsg{SessionID: "joiner", MatchID: m.ID(), Target: battleship.C(0, 0)})
	rej, ok := findEvent[ShotRejectedEvent](drain(f.joiner))
	if !ok {
		t.Fatal("out-of-turn shot not rejected")
	}
	if rej.Reason != "not your turn" {
		t.Errorf("reason = %q", rej.Reason)
	}

	f.c.handleMessage(FireMsg{SessionID: "host", MatchID: m.ID(), Target: battleship.C(0, 0)})
	f.c.handleMessage(FireMsg{SessionID: "joiner", MatchID: m.ID(), Target: battleship.C(0, 0)})
	drain(f.joiner)
	f.c.handleMessage(FireMsg{SessionID: "host", MatchID: m.ID(), Target: battleship.C(0, 0)})
	if rej, _ := findEvent[ShotRejectedEvent](drain(f.host)); rej.Reason != "Already fired there" {
		t.Errorf("repeat shot reason = %q", rej.Reason)
	}
}

func TestRoundOverAndRematch(t *testing.T) {
	f := newFixture(t, DefaultCoordinatorConfig())
	m := f.startMatch(t)
	f.playRound(t, m)

	over, ok := findEvent[RoundOverEvent](drain(f.joiner))
	if !ok {
		t.Fatal("joiner did not receive RoundOverEvent")
	}
	if over.Winner != SideOne || over.Round != 1 {
		t.Errorf("round over = %+v", over)
	}
	drain(f.host)

	f.c.saves.Wait()
	results := f.saver.all()
	if len(results) != 1 {
		t.Fatalf("saved %d results, want 1", len(results))
	}
	r := results[0]
	if r.Winner != "Tango" || r.EndReason != "completed" || r.Variant != "quick" || r.Hits1 != game.QuickRules().FleetCells() {
		t.Errorf("saved result = %+v", r)
	}

	f.c.handleMessage(ReadyForRematchMsg{SessionID: "host", MatchID: m.ID()})
	if _, ok := findEvent[RematchRequestedEvent](drain(f.joiner)); !ok {
		t.Error("joiner not told about rematch request")
	}
	f.c.handleMessage(ReadyForRematchMsg{SessionID: "joiner", MatchID: m.ID()})

	if m.Round() != 2 {
		t.Errorf("Round() = %d, want 2", m.Round())
	}
	snap := m.Snapshot(SideOne)
	if snap.Phase != game.PhaseBattle || snap.You.Wins != 1 {
		t.Errorf("after rematch phase %v wins %d", snap.Phase, snap.You.Wins)
	}
}

func TestDisconnectForfeits(t *testing.T) {
	f := newFixture(t, DefaultCoordinatorConfig())
	m := f.startMatch(t)

	f.c.handleMessage(SessionDisconnectedMsg{SessionID: "host"})

	ended, ok := findEvent[MatchEndedEvent](drain(f.joiner))
	if !ok {
		t.Fatal("joiner did not receive MatchEndedEvent")
	}
	if ended.Reason != MatchEndReasonDisconnect || ended.Winner != SideTwo {
		t.Errorf("ended = %+v", ended)
	}
	if f.c.MatchCount() != 0 {
		t.Error("match not removed")
	}

	select {
	case <-m.Done():
	default:
		t.Error("match not stopped")
	}

	f.c.saves.Wait()
	results := f.saver.all()
	if len(results) != 1 || results[0].Winner != "Bingo" || results[0].EndReason != "disconnect" {
		t.Errorf("saved = %+v", results)
	}

	// The leaver can host again.
	f.c.handleMessage(CreateLobbyMsg{SessionID: "host", Variant: "quick"})
	if _, ok := findEvent[LobbyCreatedEvent](drain(f.host)); !ok {
		t.Error("host could not create a lobby after the match")
	}
}

func TestLeaveAfterRoundSavesNothing(t *testing.T) {
	f := newFixture(t, DefaultCoordinatorConfig())
	m := f.startMatch(t)
	f.playRound(t, m)
	f.c.saves.Wait()

	f.c.handleMessage(LeaveMatchMsg{SessionID: "joiner", MatchID: m.ID()})
	f.c.saves.Wait()

	if n := len(f.saver.all()); n != 1 {
		t.Errorf("saved %d results, want only the finished round", n)
	}
	ended, _ := findEvent[MatchEndedEvent](drain(f.host))
	if ended.Reason != MatchEndReasonLeft {
		t.Errorf("reason = %v", ended.Reason)
	}
}

func TestFireFromOutsider(t *testing.T) {
	f := newFixture(t, DefaultCoordinatorConfig())
	m := f.startMatch(t)

	if _, _, err := m.Fire("stranger", battleship.C(0, 0)); err != ErrNotInMatch {
		t.Errorf("Fire(stranger) error = %v, want ErrNotInMatch", err)
	}
}

func TestChannelSessionDropsOldest(t *testing.T) {
	s := NewChannelSession("s", 2)
	s.Send(LobbyErrorEvent{Message: "1"})
	s.Send(LobbyErrorEvent{Message: "2"})
	s.Send(LobbyErrorEvent{Message: "3"})

	got := drain(s)
	if len(got) != 2 || got[0].(LobbyErrorEvent).Message != "2" {
		t.Errorf("events = %+v", got)
	}
	if s.Dropped() != 1 {
		t.Errorf("Dropped() = %d, want 1", s.Dropped())
	}

	s.Close()
	s.Close()
	s.Send(LobbyErrorEvent{Message: "late"})
	if len(drain(s)) != 0 {
		t.Error("closed session accepted an event")
	}
}

// waitEvent reads s until an event of type T arrives.
func waitEvent[T SessionEvent](t *testing.T, s *ChannelSession) T {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case e := <-s.Events():
			if v, ok := e.(T); ok {
				return v
			}
		case <-timeout:
			var zero T
			t.Fatalf("timed out waiting for %T", zero)
			return zero
		}
	}
}

func TestStopWaitsForMessageLoop(t *testing.T) {
	f := newFixture(t, DefaultCoordinatorConfig())
	f.c.Start()

	f.c.Send(CreateLobbyMsg{SessionID: "host", Name: "Tango", Variant: "quick"})
	created := waitEvent[LobbyCreatedEvent](t, f.host)
	f.c.Send(JoinLobbyMsg{SessionID: "joiner", Name: "Bingo", Code: created.Code})
	started := waitEvent[MatchStartedEvent](t, f.joiner)

	m, ok := f.c.GetMatch(started.MatchID)
	if !ok {
		t.Fatal("match not registered")
	}
	targets := shipCells(m, SideTwo)
	size := m.Snapshot(SideOne).Own.Size
	for i, c := range targets {
		f.c.Send(FireMsg{SessionID: "host", MatchID: m.ID(), Target: c})
		if i < len(targets)-1 {
			f.c.Send(FireMsg{SessionID: "joiner", MatchID: m.ID(), Target: battleship.C(i/size, i%size)})
		}
	}
	waitEvent[RoundOverEvent](t, f.host)

	f.c.Stop()

	select {
	case <-f.c.loopDone:
	default:
		t.Fatal("Stop returned before the message loop exited")
	}
	if n := len(f.saver.all()); n != 1 {
		t.Errorf("saved %d results after Stop, want 1", n)
	}
	// Sends after Stop are dropped without blocking.
	f.c.Send(LeaveMatchMsg{SessionID: "joiner", MatchID: m.ID()})
}

func TestStopWithoutStart(t *testing.T) {
	f := newFixture(t, DefaultCoordinatorConfig())
	stopped := make(chan struct{})
	go func() {
		f.c.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop blocked on a coordinator that was never started")
	}
}
