package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-battleship/internal/battleship"
	"github.com/vovakirdan/tui-battleship/internal/core"
	"github.com/vovakirdan/tui-battleship/internal/game"
	"github.com/vovakirdan/tui-battleship/internal/multiplayer"
	"github.com/vovakirdan/tui-battleship/internal/registry"
)

// OnlineState represents the current state of the online flow.
type OnlineState int

const (
	OnlineStateChooseMode    OnlineState = iota // Choose Host or Join
	OnlineStateHostWaiting                      // Hosting, waiting for joiner
	OnlineStateJoinEnterCode                    // Entering join code
	OnlineStateJoinWaiting                      // Waiting to connect to host
	OnlineStateInMatch                          // In active match
	OnlineStateMatchEnded                       // Match has ended
)

const joinCodeLen = 6

// sessionEventMsg wraps a coordinator event for the Bubble Tea loop.
type sessionEventMsg struct {
	evt multiplayer.SessionEvent
}

// waitForEvent returns a command that waits for the next coordinator event.
// It yields nil once the session is closed.
func waitForEvent(s *multiplayer.ChannelSession) tea.Cmd {
	return func() tea.Msg {
		select {
		case evt := <-s.Events():
			return sessionEventMsg{evt: evt}
		case <-s.Done():
			return nil
		}
	}
}

// OnlineModel handles matchmaking and play against a remote opponent.
// The owning session listens for events and forwards them.
type OnlineModel struct {
	state       OnlineState
	config      core.RuntimeConfig
	screen      *core.Screen
	keys        *KeyMapper
	help        help.Model
	coordinator *multiplayer.Coordinator
	sessionID   multiplayer.SessionID
	playerName  string
	variant     string

	// Lobby state
	lobbyCode     string
	joinCodeInput string
	joinError     string

	// Match state
	matchID      multiplayer.MatchID
	side         multiplayer.Side
	opponent     string
	snap         *game.Snapshot
	cursor       battleship.Coord
	notice       string
	noticeID     int
	roundOver    *multiplayer.RoundOverEvent
	rematchAsked bool // opponent wants a rematch
	rematchSent  bool
	ended        *multiplayer.MatchEndedEvent

	backToMenu bool
	quitting   bool
}

// NewOnlineModel creates a new online model.
func NewOnlineModel(
	coordinator *multiplayer.Coordinator,
	sessionID multiplayer.SessionID,
	playerName, variant string,
	cfg core.RuntimeConfig,
) OnlineModel {
	return OnlineModel{
		state:       OnlineStateChooseMode,
		config:      cfg,
		screen:      core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		keys:        NewKeyMapper(),
		help:        help.New(),
		coordinator: coordinator,
		sessionID:   sessionID,
		playerName:  playerName,
		variant:     variant,
		side:        multiplayer.SideNone,
	}
}

// Init initializes the online model.
func (m OnlineModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m OnlineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.config = m.config.Resized(msg.Width, msg.Height)
		m.help.Width = msg.Width
		return m, nil
	case clearNoticeMsg:
		if msg.id == m.noticeID {
			m.notice = ""
		}
		return m, nil
	case sessionEventMsg:
		return m.handleEvent(msg.evt)
	}
	return m, nil
}

func (m OnlineModel) handleEvent(evt multiplayer.SessionEvent) (tea.Model, tea.Cmd) {
	switch e := evt.(type) {
	case multiplayer.LobbyCreatedEvent:
		m.lobbyCode = e.Code
		m.state = OnlineStateHostWaiting
	case multiplayer.LobbyJoinedEvent:
		m.side = e.Side
		m.opponent = e.Opponent
	case multiplayer.LobbyErrorEvent:
		m.joinError = e.Message
		switch m.state {
		case OnlineStateJoinWaiting:
			m.state = OnlineStateJoinEnterCode
		case OnlineStateHostWaiting:
			m.state = OnlineStateChooseMode
		}
	case multiplayer.MatchStartedEvent:
		m.matchID = e.MatchID
		m.side = e.Side
		m.opponent = e.Opponent
		m.lobbyCode = e.Code
		m.state = OnlineStateInMatch
	case multiplayer.SnapshotEvent:
		if e.MatchID != m.matchID {
			return m, nil
		}
		if m.snap != nil && e.Snapshot.Round > m.snap.Round {
			m.roundOver = nil
			m.rematchAsked = false
			m.rematchSent = false
		}
		snap := e.Snapshot
		m.snap = &snap
	case multiplayer.ShotRejectedEvent:
		return m, m.setNotice(e.Reason)
	case multiplayer.RoundOverEvent:
		m.roundOver = &e
	case multiplayer.RematchRequestedEvent:
		m.rematchAsked = true
	case multiplayer.MatchEndedEvent:
		m.ended = &e
		m.state = OnlineStateMatchEnded
	}
	return m, nil
}

func (m *OnlineModel) setNotice(text string) tea.Cmd {
	m.noticeID++
	m.notice = text
	return clearNoticeCmd(m.noticeID)
}

func (m OnlineModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.leave()
		m.quitting = true
		return m, tea.Quit
	}

	switch m.state {
	case OnlineStateChooseMode:
		return m.handleChooseModeKey(msg)
	case OnlineStateHostWaiting:
		return m.handleHostWaitingKey(msg)
	case OnlineStateJoinEnterCode:
		return m.handleJoinCodeKey(msg)
	case OnlineStateJoinWaiting:
		return m.handleJoinWaitingKey(msg)
	case OnlineStateInMatch:
		return m.handleMatchKey(msg)
	case OnlineStateMatchEnded:
		switch m.keys.MapKey(msg) {
		case core.ActionQuit:
			m.quitting = true
			return m, tea.Quit
		case core.ActionNone:
		default:
			m.backToMenu = true
		}
	}

	return m, nil
}

// leave tells the coordinator this session is going away from wherever it is.
func (m *OnlineModel) leave() {
	switch m.state {
	case OnlineStateHostWaiting:
		m.coordinator.Send(multiplayer.CancelLobbyMsg{SessionID: m.sessionID, Code: m.lobbyCode})
	case OnlineStateJoinWaiting:
		m.coordinator.Send(multiplayer.LeaveLobbyMsg{SessionID: m.sessionID, Code: m.joinCodeInput})
	case OnlineStateInMatch:
		m.coordinator.Send(multiplayer.LeaveMatchMsg{SessionID: m.sessionID, MatchID: m.matchID})
	}
}

func (m OnlineModel) handleChooseModeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "h", "H", "1":
		m.joinError = ""
		m.coordinator.Send(multiplayer.CreateLobbyMsg{
			SessionID: m.sessionID,
			Name:      m.playerName,
			Variant:   m.variant,
		})
	case "j", "J", "2":
		m.state = OnlineStateJoinEnterCode
		m.joinCodeInput = ""
		m.joinError = ""
	case "esc", "b":
		m.backToMenu = true
	case "q":
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m OnlineModel) handleHostWaitingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "b":
		m.leave()
		m.state = OnlineStateChooseMode
	case "q":
		m.leave()
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m OnlineModel) handleJoinCodeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "esc":
		m.state = OnlineStateChooseMode
	case "enter":
		if len(m.joinCodeInput) == joinCodeLen {
			m.state = OnlineStateJoinWaiting
			m.joinError = ""
			m.coordinator.Send(multiplayer.JoinLobbyMsg{
				SessionID: m.sessionID,
				Name:      m.playerName,
				Code:      m.joinCodeInput,
			})
		}
	case "backspace":
		if m.joinCodeInput != "" {
			m.joinCodeInput = m.joinCodeInput[:len(m.joinCodeInput)-1]
		}
	default:
		if len(key) == 1 && len(m.joinCodeInput) < joinCodeLen {
			c := strings.ToUpper(key)
			if (c[0] >= 'A' && c[0] <= 'Z') || (c[0] >= '0' && c[0] <= '9') {
				m.joinCodeInput += c
			}
		}
	}
	return m, nil
}

func (m OnlineModel) handleJoinWaitingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.leave()
		m.state = OnlineStateJoinEnterCode
	}
	return m, nil
}

func (m OnlineModel) handleMatchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action := m.keys.MapKey(msg)

	switch action {
	case core.ActionQuit:
		m.leave()
		m.quitting = true
		return m, tea.Quit
	case core.ActionBack:
		m.leave()
		m.backToMenu = true
	case core.ActionHelp:
		m.help.ShowAll = !m.help.ShowAll
	case core.ActionUp, core.ActionDown, core.ActionLeft, core.ActionRight:
		if m.snap != nil {
			dr, dc := action.Delta()
			n := m.snap.Target.Size
			m.cursor = battleship.C(core.Clamp(m.cursor.Row+dr, 0, n-1), core.Clamp(m.cursor.Col+dc, 0, n-1))
		}
	case core.ActionConfirm:
		if m.snap == nil || !m.snap.YourTurn {
			return m, m.setNotice("Not your turn")
		}
		if m.snap.Target.At(m.cursor) != game.MarkUnknown {
			return m, m.setNotice(fmt.Sprintf("Already fired at %s", CoordLabel(m.cursor)))
		}
		m.coordinator.Send(multiplayer.FireMsg{SessionID: m.sessionID, MatchID: m.matchID, Target: m.cursor})
	case core.ActionRematch:
		if m.roundOver != nil && !m.rematchSent {
			m.rematchSent = true
			m.coordinator.Send(multiplayer.ReadyForRematchMsg{SessionID: m.sessionID, MatchID: m.matchID})
		}
	}
	return m, nil
}

// View renders the current state.
func (m OnlineModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.state {
	case OnlineStateChooseMode:
		return m.viewChooseMode()
	case OnlineStateHostWaiting:
		return m.viewHostWaiting()
	case OnlineStateJoinEnterCode:
		return m.viewJoinEnterCode()
	case OnlineStateJoinWaiting:
		return m.viewJoinWaiting()
	case OnlineStateInMatch:
		return m.viewMatch()
	case OnlineStateMatchEnded:
		return m.viewMatchEnded()
	}
	return ""
}

func (m OnlineModel) lines(title string, body ...string) string {
	w := m.config.ScreenW
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText(menuTitleStyle.Render(title), w))
	b.WriteString("\n\n")
	for _, line := range body {
		b.WriteString(centerText(line, w))
		b.WriteString("\n")
	}
	return b.String()
}

func (m OnlineModel) viewChooseMode() string {
	body := []string{
		fmt.Sprintf("Rules: %s", registry.Title(m.variant)),
		"",
		"[H] Host a game",
		"[J] Join a game",
		"",
	}
	if m.joinError != "" {
		body = append(body, fmt.Sprintf("Error: %s", m.joinError), "")
	}
	body = append(body, menuDimStyle.Render("Esc: Back  |  Q: Quit"))
	return m.lines("ONLINE BATTLESHIP", body...)
}

func (m OnlineModel) viewHostWaiting() string {
	return m.lines("HOSTING GAME",
		"Share this code with your opponent:",
		"",
		menuSelectedStyle.Render(fmt.Sprintf("[ %s ]", m.lobbyCode)),
		"",
		"Waiting for player to join...",
		"",
		menuDimStyle.Render("Esc: Cancel  |  Q: Quit"),
	)
}

func (m OnlineModel) viewJoinEnterCode() string {
	code := m.joinCodeInput
	if len(code) < joinCodeLen {
		code += "_" + strings.Repeat(" ", joinCodeLen-1-len(m.joinCodeInput))
	}
	body := []string{
		"Enter the game code:",
		"",
		fmt.Sprintf("[ %s ]", code),
	}
	if m.joinError != "" {
		body = append(body, "", fmt.Sprintf("Error: %s", m.joinError))
	}
	body = append(body, "", menuDimStyle.Render("Enter: Connect  |  Esc: Back"))
	return m.lines("JOIN GAME", body...)
}

func (m OnlineModel) viewJoinWaiting() string {
	return m.lines("CONNECTING",
		fmt.Sprintf("Joining game: %s", m.joinCodeInput),
		"",
		"Please wait...",
		"",
		menuDimStyle.Render("Esc: Cancel"),
	)
}

func (m OnlineModel) viewMatchEnded() string {
	body := []string{}
	if m.ended != nil {
		body = append(body, m.ended.Reason.Message())
		if m.ended.Winner != multiplayer.SideNone {
			if m.ended.Winner == m.side {
				body = append(body, "You win the round by forfeit.")
			} else {
				body = append(body, fmt.Sprintf("%s wins the round.", m.opponent))
			}
		}
	}
	body = append(body, "", menuDimStyle.Render("Press any key for the menu  |  Q: Quit"))
	return m.lines("MATCH OVER", body...)
}

func (m OnlineModel) viewMatch() string {
	if m.snap == nil {
		return m.lines("MATCH STARTING", fmt.Sprintf("You are %s against %s", m.side, m.opponent), "", "Get ready!")
	}

	helpView := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render(m.help.View(m.keys.Keys()))
	m.screen.Resize(m.config.ScreenW, m.config.ScreenH-lipgloss.Height(helpView))

	snap := *m.snap
	cursor := m.cursor
	mv := matchView{
		header: fmt.Sprintf("%s   [%s  code %s]", scoreLine(snap), registry.Title(m.variantOrDefault()), m.lobbyCode),
		snap:   snap,
		own:    boardOverlay{title: "Your fleet"},
		target: boardOverlay{title: "Enemy waters", active: snap.Phase == game.PhaseBattle, cursor: &cursor},
		detail: statsLine(snap),
	}

	last := shotLine(snap.LastShot, snap.Seat, snap.Opponent.Name)
	switch {
	case snap.Phase == game.PhaseOver:
		if snap.Winner == snap.Seat {
			mv.status = "You sank the whole fleet. Victory!"
		} else {
			mv.status = fmt.Sprintf("%s sank your fleet.", snap.Opponent.Name)
		}
		switch {
		case m.rematchSent:
			mv.detail = fmt.Sprintf("Waiting for %s to accept the rematch...", snap.Opponent.Name)
		case m.rematchAsked:
			mv.detail = fmt.Sprintf("%s wants a rematch. Press n to accept, esc to leave", snap.Opponent.Name)
		default:
			mv.detail = "Press n for a rematch or esc to leave"
		}
	case snap.YourTurn:
		mv.status = "Your turn. " + last
	default:
		mv.status = fmt.Sprintf("Waiting for %s... %s", snap.Opponent.Name, last)
	}
	if m.notice != "" {
		mv.detail = m.notice
	}

	drawMatch(m.screen, mv)
	return RenderScreen(m.screen) + "\n" + helpView
}

func (m OnlineModel) variantOrDefault() string {
	if m.variant == "" {
		return game.VariantClassic
	}
	return m.variant
}

// State returns the current online state.
func (m OnlineModel) State() OnlineState {
	return m.state
}

// BackToMenu returns true if user wants to go back to menu.
func (m OnlineModel) BackToMenu() bool {
	return m.backToMenu
}

// IsQuitting returns true if user wants to quit entirely.
func (m OnlineModel) IsQuitting() bool {
	return m.quitting
}

// MatchID returns the match ID if a match was started.
func (m OnlineModel) MatchID() multiplayer.MatchID {
	return m.matchID
}

// Side returns which side this session plays.
func (m OnlineModel) Side() multiplayer.Side {
	return m.side
}
