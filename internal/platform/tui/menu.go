package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-battleship/internal/core"
	"github.com/vovakirdan/tui-battleship/internal/registry"
)

// MenuChoice is what the player picked from the main menu.
type MenuChoice int

const (
	ChoiceNone MenuChoice = iota
	ChoicePlay
	ChoiceOnline
	ChoiceScoreboard
	ChoiceQuit
)

// MenuItem represents a selectable entry in the menu.
type MenuItem struct {
	Choice MenuChoice
	Title  string
}

// MenuModel is the Bubble Tea model for the main menu.
type MenuModel struct {
	items      []MenuItem
	cursor     int
	variants   []registry.VariantInfo
	variantIdx int
	width      int
	height     int
	keyMapper  *KeyMapper
	quitting   bool
	selected   MenuChoice
}

// NewMenuModel creates a new menu model. Online play is offered only when
// online is set. variant preselects a rules variant.
func NewMenuModel(cfg core.RuntimeConfig, online bool, variant string) MenuModel {
	items := []MenuItem{{Choice: ChoicePlay, Title: "Play vs Computer"}}
	if online {
		items = append(items, MenuItem{Choice: ChoiceOnline, Title: "Play Online"})
	}
	items = append(items,
		MenuItem{Choice: ChoiceScoreboard, Title: "Scoreboard"},
		MenuItem{Choice: ChoiceQuit, Title: "Quit"},
	)

	variants := registry.List()
	idx := 0
	for i, v := range variants {
		if v.ID == variant {
			idx = i
		}
	}

	return MenuModel{
		items:      items,
		variants:   variants,
		variantIdx: idx,
		width:      cfg.ScreenW,
		height:     cfg.ScreenH,
		keyMapper:  NewKeyMapper(),
	}
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	return m, nil
}

func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keyMapper.MapKeyToMenuAction(msg) {
	case MenuActionQuit:
		m.quitting = true
		m.selected = ChoiceQuit
		return m, tea.Quit

	case MenuActionUp:
		m.cursor = core.Wrap(m.cursor-1, len(m.items))

	case MenuActionDown:
		m.cursor = core.Wrap(m.cursor+1, len(m.items))

	case MenuActionLeft:
		m.variantIdx = core.Wrap(m.variantIdx-1, len(m.variants))

	case MenuActionRight:
		m.variantIdx = core.Wrap(m.variantIdx+1, len(m.variants))

	case MenuActionSelect:
		m.selected = m.items[m.cursor].Choice
		if m.selected == ChoiceQuit {
			m.quitting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

var (
	menuTitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	menuSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	menuDimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText(menuTitleStyle.Render("B A T T L E S H I P"), m.width))
	b.WriteString("\n\n")

	if len(m.variants) > 0 {
		v := m.variants[m.variantIdx]
		line := fmt.Sprintf("<  %s  >", v.Title)
		b.WriteString(centerText(menuSelectedStyle.Render(line), m.width))
		b.WriteString("\n")
		detail := fmt.Sprintf("%dx%d board, %d ships", v.Rules.BoardSize, v.Rules.BoardSize, len(v.Rules.Fleet))
		b.WriteString(centerText(menuDimStyle.Render(detail), m.width))
		b.WriteString("\n\n")
	}

	for i, item := range m.items {
		line := "  " + item.Title
		if i == m.cursor {
			line = menuSelectedStyle.Render("> " + item.Title)
		}
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	controls := "Up/Down: Navigate  |  Left/Right: Rules  |  Enter: Select  |  Q: Quit"
	b.WriteString(centerText(menuDimStyle.Render(controls), m.width))
	b.WriteString("\n")

	return b.String()
}

// Selected returns the chosen entry, or ChoiceNone.
func (m MenuModel) Selected() MenuChoice {
	return m.selected
}

// Variant returns the ID of the highlighted rules variant.
func (m MenuModel) Variant() string {
	if len(m.variants) == 0 {
		return ""
	}
	return m.variants[m.variantIdx].ID
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}
