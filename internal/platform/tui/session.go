package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-battleship/internal/core"
	"github.com/vovakirdan/tui-battleship/internal/multiplayer"
	"github.com/vovakirdan/tui-battleship/internal/registry"
	"github.com/vovakirdan/tui-battleship/internal/storage"
)

// SessionOptions configures a full battleship session.
type SessionOptions struct {
	Store      *storage.Store // Optional
	Config     core.RuntimeConfig
	PlayerName string
	CPUName    string
	Variant    string // Preselected rules variant
	StartGame  bool   // Skip the menu and start a game right away

	// Online play is offered only when both are set.
	Coordinator *multiplayer.Coordinator
	Session     *multiplayer.ChannelSession
}

type sessionScreen int

const (
	screenMenu sessionScreen = iota
	screenGame
	screenOnline
	screenScores
)

// SessionModel manages the full session flow: menu -> game -> menu.
// It is the top-level model for both local and SSH sessions.
type SessionModel struct {
	opts     SessionOptions
	screen   sessionScreen
	menu     MenuModel
	game     GameModel
	online   OnlineModel
	scores   ScoreboardModel
	err      string
	quitting bool
}

// NewSessionModel creates a new session model.
func NewSessionModel(opts SessionOptions) (SessionModel, error) {
	m := SessionModel{opts: opts}
	m.menu = NewMenuModel(opts.Config, m.onlineEnabled(), opts.Variant)

	if opts.StartGame {
		if err := m.startGame(opts.Variant); err != nil {
			return SessionModel{}, err
		}
	}
	return m, nil
}

func (m SessionModel) onlineEnabled() bool {
	return m.opts.Coordinator != nil && m.opts.Session != nil
}

// startGame switches to a new local game with the given variant.
func (m *SessionModel) startGame(variant string) error {
	rules, err := registry.Create(variant)
	if err != nil {
		return err
	}
	gm, err := NewGameModel(GameOptions{
		Variant:    variant,
		Rules:      rules,
		PlayerName: m.opts.PlayerName,
		CPUName:    m.opts.CPUName,
		Store:      m.opts.Store,
		Config:     m.opts.Config,
	})
	if err != nil {
		return fmt.Errorf("start game: %w", err)
	}
	m.game = gm
	m.screen = screenGame
	return nil
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	if m.onlineEnabled() {
		return waitForEvent(m.opts.Session)
	}
	return nil
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle window resize globally
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.opts.Config = m.opts.Config.Resized(wsm.Width, wsm.Height)
	}

	// The session owns the only event listener; events reach the online
	// screen only while it is active.
	if evt, ok := msg.(sessionEventMsg); ok {
		listen := waitForEvent(m.opts.Session)
		if m.screen != screenOnline {
			return m, listen
		}
		next, cmd := m.updateOnline(evt)
		return next, tea.Batch(listen, cmd)
	}

	switch m.screen {
	case screenGame:
		return m.updateGame(msg)
	case screenOnline:
		return m.updateOnline(msg)
	case screenScores:
		return m.updateScores(msg)
	}
	return m.updateMenu(msg)
}

// updateMenu handles updates when in menu mode.
func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}

	if m.menu.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	m.err = ""
	switch m.menu.Selected() {
	case ChoicePlay:
		if err := m.startGame(m.menu.Variant()); err != nil {
			m.err = err.Error()
			m.resetMenu()
			return m, nil
		}
		return m, m.game.Init()

	case ChoiceOnline:
		m.online = NewOnlineModel(
			m.opts.Coordinator,
			m.opts.Session.ID(),
			m.opts.PlayerName,
			m.menu.Variant(),
			m.opts.Config,
		)
		m.screen = screenOnline
		return m, m.online.Init()

	case ChoiceScoreboard:
		m.scores = NewScoreboardModel(m.opts.Store, m.opts.Config.ScreenW, m.opts.Config.ScreenH)
		m.screen = screenScores
		return m, m.scores.Init()
	}

	return m, cmd
}

// resetMenu returns to a fresh menu, keeping the highlighted variant.
func (m *SessionModel) resetMenu() {
	variant := m.menu.Variant()
	m.menu = NewMenuModel(m.opts.Config, m.onlineEnabled(), variant)
	m.screen = screenMenu
}

// updateGame handles updates when in game mode.
func (m SessionModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.game.Update(msg)
	if gameModel, ok := newModel.(GameModel); ok {
		m.game = gameModel
	}

	if m.game.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.game.BackToMenu() {
		m.resetMenu()
		return m, nil
	}
	return m, cmd
}

// updateOnline handles updates when in the online flow.
func (m SessionModel) updateOnline(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.online.Update(msg)
	if onlineModel, ok := newModel.(OnlineModel); ok {
		m.online = onlineModel
	}

	if m.online.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.online.BackToMenu() {
		m.resetMenu()
		return m, nil
	}
	return m, cmd
}

// updateScores handles updates when viewing the scoreboard.
func (m SessionModel) updateScores(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.scores.Update(msg)
	if scoresModel, ok := newModel.(ScoreboardModel); ok {
		m.scores = scoresModel
	}

	if m.scores.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.scores.IsGoingBack() {
		m.resetMenu()
		return m, nil
	}
	return m, cmd
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.screen {
	case screenGame:
		return m.game.View()
	case screenOnline:
		return m.online.View()
	case screenScores:
		return m.scores.View()
	}

	view := m.menu.View()
	if m.err != "" {
		view += "\n" + centerText(menuSelectedStyle.Render("Error: "+m.err), m.opts.Config.ScreenW) + "\n"
	}
	return view
}

// Run starts a local session in the alternate screen and blocks until the
// player quits.
func Run(opts SessionOptions) error {
	model, err := NewSessionModel(opts)
	if err != nil {
		return err
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running session: %w", err)
	}
	return nil
}
