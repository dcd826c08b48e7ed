package tui

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-battleship/internal/battleship"
	"github.com/vovakirdan/tui-battleship/internal/core"
	"github.com/vovakirdan/tui-battleship/internal/game"
	"github.com/vovakirdan/tui-battleship/internal/storage"
)

func newTestGame(t *testing.T, store *storage.Store) GameModel {
	t.Helper()
	cfg := core.DefaultConfig()
	cfg.Seed = 7
	cfg.CPUDelay = 0

	m, err := NewGameModel(GameOptions{
		Variant:    game.VariantQuick,
		Rules:      game.QuickRules(),
		PlayerName: "Tango",
		CPUName:    "Bingo",
		Store:      store,
		Config:     cfg,
	})
	if err != nil {
		t.Fatalf("NewGameModel() failed: %v", err)
	}
	return m
}

func send(t *testing.T, m GameModel, msg tea.Msg) (GameModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	gm, ok := next.(GameModel)
	if !ok {
		t.Fatalf("Update() returned %T", next)
	}
	return gm, cmd
}

// deployAndStart auto-deploys the player's fleet and starts the battle.
func deployAndStart(t *testing.T, m GameModel) GameModel {
	t.Helper()
	m, _ = send(t, m, runeKey('f'))
	m, _ = send(t, m, runeKey('g'))
	if m.Match().Phase() != game.PhaseBattle {
		t.Fatalf("Phase() = %v after ready, want battle", m.Match().Phase())
	}
	return m
}

// fireAt fires at c and lets the computer answer.
func fireAt(t *testing.T, m GameModel, c battleship.Coord) GameModel {
	t.Helper()
	m.cursor = c
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Match().Phase() == game.PhaseBattle && m.Match().Turn() == cpuSeat {
		if cmd == nil {
			t.Fatal("no computer turn scheduled")
		}
		m, _ = send(t, m, cmd())
	}
	return m
}

func TestGameModelComputerIsReady(t *testing.T) {
	m := newTestGame(t, nil)

	if m.Match().Phase() != game.PhaseDeploy {
		t.Fatalf("Phase() = %v, want deploy", m.Match().Phase())
	}
	if !m.Match().IsReady(cpuSeat) || m.Match().IsReady(humanSeat) {
		t.Error("computer should be ready and the player not")
	}
}

func TestGameModelDeploy(t *testing.T) {
	m := newTestGame(t, nil)

	m, _ = send(t, m, runeKey('g'))
	if m.notice != "Place every ship first" {
		t.Errorf("notice = %q after early ready", m.notice)
	}

	// Battleship across the top row.
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	pos, ok := m.Match().Fleet(humanSeat)[0].Position()
	if !ok || pos.Start != battleship.C(0, 0) || pos.End != battleship.C(0, 3) {
		t.Fatalf("battleship at %v, %v", pos, ok)
	}
	if m.shipIdx != 1 {
		t.Errorf("shipIdx = %d after placing, want 1", m.shipIdx)
	}

	// Submarine on top of it.
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !strings.Contains(m.notice, "overlap") {
		t.Errorf("notice = %q, want overlap", m.notice)
	}

	// Submarine vertical from the right edge of row 1.
	m.cursor = battleship.C(1, 7)
	m, _ = send(t, m, runeKey('r'))
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if pos, ok := m.Match().Fleet(humanSeat)[1].Position(); !ok || pos.End != battleship.C(3, 7) {
		t.Errorf("submarine at %v, %v", pos, ok)
	}

	// Patrol boat off the bottom edge.
	m.cursor = battleship.C(7, 0)
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !strings.Contains(m.notice, "does not fit") {
		t.Errorf("notice = %q, want does not fit", m.notice)
	}

	// Withdraw the battleship from under the cursor.
	m.cursor = battleship.C(0, 2)
	m, _ = send(t, m, runeKey('x'))
	if _, ok := m.Match().Fleet(humanSeat)[0].Position(); ok {
		t.Error("battleship still placed after withdraw")
	}
	if m.shipIdx != 0 {
		t.Errorf("shipIdx = %d after withdraw, want 0", m.shipIdx)
	}

	m = deployAndStart(t, m)
	if m.cursor != battleship.C(0, 0) {
		t.Errorf("cursor = %v at battle start, want A1", m.cursor)
	}
}

func TestGameModelBattle(t *testing.T) {
	m := newTestGame(t, nil)
	m = deployAndStart(t, m)

	m = fireAt(t, m, battleship.C(0, 0))
	if got := m.Match().Stats(humanSeat).Shots; got != 1 {
		t.Errorf("player shots = %d, want 1", got)
	}
	if got := m.Match().Stats(cpuSeat).Shots; got != 1 {
		t.Errorf("computer shots = %d, want 1", got)
	}
	if m.Match().Turn() != humanSeat {
		t.Fatal("turn did not come back to the player")
	}

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.notice != "Already fired at A1" {
		t.Errorf("notice = %q", m.notice)
	}

	// A stale computer turn from an earlier round is ignored.
	m, _ = send(t, m, CPUTurnMsg{Round: 0})
	if got := m.Match().Stats(cpuSeat).Shots; got != 1 {
		t.Errorf("stale turn fired: computer shots = %d", got)
	}
}

func TestGameModelRoundAndRematch(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.Open(filepath.Join(dir, "scores.db"))
	if err != nil {
		t.Fatalf("storage.Open() failed: %v", err)
	}
	defer store.Close()

	m := newTestGame(t, store)
	m = deployAndStart(t, m)

	n := m.Match().Rules().BoardSize
	for i := 0; i < n*n && m.Match().Phase() == game.PhaseBattle; i++ {
		m = fireAt(t, m, battleship.C(i/n, i%n))
	}
	if m.Match().Phase() != game.PhaseOver {
		t.Fatalf("Phase() = %v after firing everywhere, want over", m.Match().Phase())
	}
	if !strings.Contains(m.View(), "Press n for a rematch") {
		t.Error("game over view missing rematch hint")
	}

	rounds, err := store.MatchRounds(m.matchID)
	if err != nil {
		t.Fatalf("MatchRounds() failed: %v", err)
	}
	if len(rounds) != 1 || rounds[0].EndReason != "completed" || rounds[0].Mode != storage.ModeLocal {
		t.Fatalf("rounds = %+v", rounds)
	}
	winner, _ := m.Match().Winner()
	if rounds[0].Winner != m.Match().Player(winner).Name() {
		t.Errorf("saved winner %q", rounds[0].Winner)
	}

	m, _ = send(t, m, runeKey('n'))
	if m.Match().Round() != 2 || m.Match().Phase() != game.PhaseDeploy {
		t.Fatalf("after rematch: round %d phase %v", m.Match().Round(), m.Match().Phase())
	}
	if !m.Match().IsReady(cpuSeat) {
		t.Error("computer not redeployed for the rematch")
	}

	// Quitting mid-battle records the round without a winner.
	m = deployAndStart(t, m)
	m = fireAt(t, m, battleship.C(0, 0))
	m, cmd := send(t, m, runeKey('q'))
	if !m.IsQuitting() || cmd == nil {
		t.Fatal("q did not quit")
	}

	rounds, err = store.MatchRounds(m.matchID)
	if err != nil {
		t.Fatalf("MatchRounds() failed: %v", err)
	}
	if len(rounds) != 2 {
		t.Fatalf("got %d rounds, want 2", len(rounds))
	}
	if rounds[1].Round != 2 || rounds[1].Winner != "" || rounds[1].EndReason != "quit" {
		t.Errorf("quit round = %+v", rounds[1])
	}
}

func TestGameModelBackToMenu(t *testing.T) {
	m := newTestGame(t, nil)
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if !m.BackToMenu() || m.IsQuitting() {
		t.Error("esc should go back to the menu")
	}
}

func TestGameModelView(t *testing.T) {
	m := newTestGame(t, nil)
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 90, Height: 30})

	view := m.View()
	for _, want := range []string{"Tango", "Bingo", "Your fleet", "Enemy waters", "Place your Battleship"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
