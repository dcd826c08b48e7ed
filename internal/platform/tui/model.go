package tui

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-battleship/internal/battleship"
	"github.com/vovakirdan/tui-battleship/internal/core"
	"github.com/vovakirdan/tui-battleship/internal/game"
	"github.com/vovakirdan/tui-battleship/internal/multiplayer"
	"github.com/vovakirdan/tui-battleship/internal/registry"
	"github.com/vovakirdan/tui-battleship/internal/storage"
)

const (
	humanSeat = game.SeatOne
	cpuSeat   = game.SeatTwo
)

// GameOptions configures a local game against the computer.
type GameOptions struct {
	Variant    string
	Rules      battleship.Rules
	PlayerName string
	CPUName    string
	Store      *storage.Store // Optional
	Config     core.RuntimeConfig
}

// GameModel is the Bubble Tea model for a local game against the computer.
type GameModel struct {
	match   *game.Match
	variant string
	matchID string
	store   *storage.Store
	config  core.RuntimeConfig
	screen  *core.Screen
	keys    *KeyMapper
	help    help.Model

	cursor     battleship.Coord
	shipIdx    int
	vertical   bool
	notice     string
	noticeID   int
	cpuPending bool
	saved      bool
	roundStart time.Time

	quitting   bool
	backToMenu bool
}

// NewGameModel creates a match, deploys the computer's fleet and waits for
// the player to deploy theirs.
func NewGameModel(opts GameOptions) (GameModel, error) {
	match, err := game.New(game.Config{
		Rules:     opts.Rules,
		Names:     [2]string{opts.PlayerName, opts.CPUName},
		Automated: [2]bool{false, true},
		Seed:      opts.Config.Seed,
	})
	if err != nil {
		return GameModel{}, err
	}

	m := GameModel{
		match:   match,
		variant: opts.Variant,
		matchID: string(multiplayer.NewMatchID()),
		store:   opts.Store,
		config:  opts.Config,
		screen:  core.NewScreen(opts.Config.ScreenW, opts.Config.ScreenH),
		keys:    NewKeyMapper(),
		help:    help.New(),
	}
	if err := m.startRound(); err != nil {
		return GameModel{}, err
	}
	return m, nil
}

// startRound deploys the computer and resets the deploy cursor.
func (m *GameModel) startRound() error {
	if err := m.match.AutoDeploy(cpuSeat); err != nil {
		return err
	}
	if err := m.match.Ready(cpuSeat); err != nil {
		return err
	}
	m.cursor = battleship.C(0, 0)
	m.shipIdx = 0
	m.vertical = false
	m.cpuPending = false
	m.saved = false
	m.roundStart = time.Now()
	return nil
}

// Init initializes the model.
func (m GameModel) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model state.
func (m GameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.config = m.config.Resized(msg.Width, msg.Height)
		m.help.Width = msg.Width
		return m, nil

	case CPUTurnMsg:
		return m.handleCPUTurn(msg)

	case clearNoticeMsg:
		if msg.id == m.noticeID {
			m.notice = ""
		}
		return m, nil
	}

	return m, nil
}

func (m GameModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action := m.keys.MapKey(msg)

	switch action {
	case core.ActionQuit:
		m.abandon()
		m.quitting = true
		return m, tea.Quit
	case core.ActionBack:
		m.abandon()
		m.backToMenu = true
		return m, nil
	case core.ActionHelp:
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	switch m.match.Phase() {
	case game.PhaseDeploy:
		return m.handleDeploy(action)
	case game.PhaseBattle:
		return m.handleBattle(action)
	case game.PhaseOver:
		if action == core.ActionRematch {
			return m.rematch()
		}
	}
	return m, nil
}

func (m *GameModel) moveCursor(a core.Action) {
	dr, dc := a.Delta()
	n := m.match.Rules().BoardSize
	m.cursor = battleship.C(core.Clamp(m.cursor.Row+dr, 0, n-1), core.Clamp(m.cursor.Col+dc, 0, n-1))
}

func (m GameModel) handleDeploy(action core.Action) (tea.Model, tea.Cmd) {
	fleet := m.match.Fleet(humanSeat)

	switch action {
	case core.ActionUp, core.ActionDown, core.ActionLeft, core.ActionRight:
		m.moveCursor(action)

	case core.ActionRotate:
		m.vertical = !m.vertical

	case core.ActionNextShip:
		m.shipIdx = core.Wrap(m.shipIdx+1, len(fleet))

	case core.ActionConfirm:
		start, end := m.placement()
		if err := m.match.Place(humanSeat, m.shipIdx, start, end); err != nil {
			return m, m.setNotice(placeError(fleet[m.shipIdx].Name(), err))
		}
		m.shipIdx = m.nextUnplaced()

	case core.ActionWithdraw:
		for i, s := range fleet {
			if pos, ok := s.Position(); ok && pos.Contains(m.cursor) {
				if err := m.match.Withdraw(humanSeat, i); err == nil {
					m.shipIdx = i
				}
				break
			}
		}

	case core.ActionAuto:
		if err := m.match.AutoDeploy(humanSeat); err != nil {
			return m, m.setNotice("Could not fit the fleet, try again")
		}

	case core.ActionReady:
		if err := m.match.Ready(humanSeat); err != nil {
			if errors.Is(err, game.ErrFleetNotDeployed) {
				return m, m.setNotice("Place every ship first")
			}
			return m, m.setNotice(err.Error())
		}
		m.cursor = battleship.C(0, 0)
	}
	return m, nil
}

// placement returns the cells the selected ship would cover from the cursor.
func (m GameModel) placement() (battleship.Coord, battleship.Coord) {
	length := m.match.Rules().Fleet[m.shipIdx].Length
	if m.vertical {
		return m.cursor, m.cursor.Add(length-1, 0)
	}
	return m.cursor, m.cursor.Add(0, length-1)
}

// nextUnplaced picks the next ship without a position, starting after the
// current one.
func (m GameModel) nextUnplaced() int {
	fleet := m.match.Fleet(humanSeat)
	for i := 1; i <= len(fleet); i++ {
		idx := core.Wrap(m.shipIdx+i, len(fleet))
		if _, placed := fleet[idx].Position(); !placed {
			return idx
		}
	}
	return m.shipIdx
}

func placeError(ship string, err error) string {
	switch {
	case errors.Is(err, battleship.ErrOutOfBounds):
		return fmt.Sprintf("The %s does not fit there", ship)
	case errors.Is(err, battleship.ErrOccupied):
		return fmt.Sprintf("The %s would overlap another ship", ship)
	}
	return err.Error()
}

func (m GameModel) handleBattle(action core.Action) (tea.Model, tea.Cmd) {
	switch action {
	case core.ActionUp, core.ActionDown, core.ActionLeft, core.ActionRight:
		m.moveCursor(action)

	case core.ActionConfirm:
		if m.cpuPending || m.match.Turn() != humanSeat {
			return m, nil
		}
		shot, err := m.match.Fire(humanSeat, m.cursor)
		if err != nil {
			if errors.Is(err, battleship.ErrAlreadyHit) {
				return m, m.setNotice(fmt.Sprintf("Already fired at %s", CoordLabel(m.cursor)))
			}
			return m, m.setNotice(err.Error())
		}
		if shot.Won {
			m.saveResult(game.SeatOne)
			return m, nil
		}
		m.cpuPending = true
		return m, cpuTurnCmd(m.config.CPUDelay, m.match.Round())
	}
	return m, nil
}

func (m GameModel) handleCPUTurn(msg CPUTurnMsg) (tea.Model, tea.Cmd) {
	if msg.Round != m.match.Round() || m.match.Phase() != game.PhaseBattle || m.match.Turn() != cpuSeat {
		return m, nil
	}
	m.cpuPending = false

	shot, err := m.match.AutoFire(cpuSeat)
	if err != nil {
		return m, m.setNotice(err.Error())
	}
	if shot.Won {
		m.saveResult(cpuSeat)
	}
	return m, nil
}

func (m GameModel) rematch() (tea.Model, tea.Cmd) {
	if err := m.match.Rematch(); err != nil {
		return m, m.setNotice(err.Error())
	}
	if err := m.startRound(); err != nil {
		return m, m.setNotice(err.Error())
	}
	return m, nil
}

func (m *GameModel) setNotice(text string) tea.Cmd {
	m.noticeID++
	m.notice = text
	return clearNoticeCmd(m.noticeID)
}

// abandon records an unfinished battle as quit.
func (m *GameModel) abandon() {
	if m.match.Phase() == game.PhaseBattle {
		m.saveResult(-1)
	}
}

// saveResult stores the current round once. winner is -1 for no winner.
func (m *GameModel) saveResult(winner int) {
	if m.saved || m.store == nil {
		return
	}
	m.saved = true

	p1, p2 := m.match.Player(game.SeatOne), m.match.Player(game.SeatTwo)
	s1, s2 := m.match.Stats(game.SeatOne), m.match.Stats(game.SeatTwo)
	rec := storage.MatchRecord{
		MatchID:   m.matchID,
		Variant:   m.variant,
		Mode:      storage.ModeLocal,
		Round:     m.match.Round(),
		Player1:   p1.Name(),
		Player2:   p2.Name(),
		EndReason: "quit",
		Shots1:    s1.Shots,
		Hits1:     s1.Hits,
		Shots2:    s2.Shots,
		Hits2:     s2.Hits,
		Duration:  int(time.Since(m.roundStart) / time.Second),
	}
	if winner >= 0 {
		rec.Winner = m.match.Player(winner).Name()
		rec.EndReason = "completed"
	}
	//nolint:errcheck // Best-effort save, game continues regardless
	m.store.SaveMatch(rec)
}

// View renders the current state to a string for display.
func (m GameModel) View() string {
	if m.quitting {
		return ""
	}

	helpView := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render(m.help.View(m.keys.Keys()))
	m.screen.Resize(m.config.ScreenW, m.config.ScreenH-lipgloss.Height(helpView))
	drawMatch(m.screen, m.matchView())
	return RenderScreen(m.screen) + "\n" + helpView
}

func (m GameModel) matchView() matchView {
	snap := m.match.Snapshot(humanSeat)
	cursor := m.cursor
	mv := matchView{
		header: fmt.Sprintf("%s   [%s]", scoreLine(snap), registry.Title(m.variant)),
		snap:   snap,
		own:    boardOverlay{title: "Your fleet"},
		target: boardOverlay{title: "Enemy waters"},
	}

	switch snap.Phase {
	case game.PhaseDeploy:
		mv.own.active = true
		mv.own.cursor = &cursor
		ship := snap.Fleet[m.shipIdx]
		start, end := m.placement()
		mv.own.preview = battleship.Position{Start: start, End: end}.Cells()
		overlap, err := m.match.Player(humanSeat).Board().ShipOverlap(m.match.Fleet(humanSeat)[m.shipIdx], start, end)
		mv.own.previewOK = err == nil && !overlap

		orient := "horizontal"
		if m.vertical {
			orient = "vertical"
		}
		mv.status = fmt.Sprintf("Place your %s (%d cells, %s)", ship.Name, ship.Length, orient)
		if m.match.Deployed(humanSeat) {
			mv.status = "Fleet deployed. Press g to start the battle"
		}

	case game.PhaseBattle:
		mv.target.active = true
		mv.target.cursor = &cursor
		if snap.YourTurn {
			mv.status = "Your turn. " + shotLine(snap.LastShot, humanSeat, snap.Opponent.Name)
		} else {
			mv.status = fmt.Sprintf("%s is aiming... %s", snap.Opponent.Name, shotLine(snap.LastShot, humanSeat, snap.Opponent.Name))
		}
		mv.detail = statsLine(snap)

	case game.PhaseOver:
		if snap.Winner == humanSeat {
			mv.status = "You sank the whole fleet. Victory!"
		} else {
			mv.status = fmt.Sprintf("%s sank your fleet.", snap.Opponent.Name)
		}
		mv.detail = "Press n for a rematch or esc for the menu"
	}

	if m.notice != "" {
		mv.detail = m.notice
	}
	return mv
}

// IsQuitting returns true if user requested to quit entirely.
func (m GameModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m GameModel) BackToMenu() bool {
	return m.backToMenu
}

// Match exposes the underlying match.
func (m GameModel) Match() *game.Match {
	return m.match
}
