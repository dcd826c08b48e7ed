// Package tui provides the Bubble Tea front end for battleship: the local
// game against the computer, the online lobby, the scoreboard and the SSH
// server that hosts them.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// CPUTurnMsg is sent when the computer's think delay has elapsed.
type CPUTurnMsg struct {
	Round int
}

// cpuTurnCmd returns a command that fires CPUTurnMsg after delay.
// The round number lets a stale message be ignored after a rematch.
func cpuTurnCmd(delay time.Duration, round int) tea.Cmd {
	if delay <= 0 {
		return func() tea.Msg { return CPUTurnMsg{Round: round} }
	}
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return CPUTurnMsg{Round: round}
	})
}

// clearNoticeMsg hides a transient notice.
type clearNoticeMsg struct {
	id int
}

const noticeTTL = 3 * time.Second

func clearNoticeCmd(id int) tea.Cmd {
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return clearNoticeMsg{id: id}
	})
}
