package multiplayer

import (
	"github.com/vovakirdan/tui-battleship/internal/battleship"
	"github.com/vovakirdan/tui-battleship/internal/game"
)

// SessionEvent represents an event sent from the coordinator to a session.
type SessionEvent interface {
	sessionEvent()
}

// LobbyCreatedEvent is sent when a lobby is successfully created.
type LobbyCreatedEvent struct {
	Code    string
	Variant string
}

func (LobbyCreatedEvent) sessionEvent() {}

// LobbyErrorEvent is sent when a lobby operation fails.
type LobbyErrorEvent struct {
	Message string
}

func (LobbyErrorEvent) sessionEvent() {}

// LobbyJoinedEvent is sent to both host and joiner when someone joins.
type LobbyJoinedEvent struct {
	Code     string
	Side     Side // Which side this session plays
	Opponent string
}

func (LobbyJoinedEvent) sessionEvent() {}

// LobbyPlayerLeftEvent is sent when a player leaves the lobby before match starts.
type LobbyPlayerLeftEvent struct {
	Code string
}

func (LobbyPlayerLeftEvent) sessionEvent() {}

// MatchStartedEvent is sent when the match begins.
type MatchStartedEvent struct {
	MatchID  MatchID
	Side     Side
	Code     string // Keep code for display
	Opponent string
}

func (MatchStartedEvent) sessionEvent() {}

// SnapshotEvent carries a session's own view of the match.
type SnapshotEvent struct {
	MatchID  MatchID
	Snapshot game.Snapshot
}

func (SnapshotEvent) sessionEvent() {}

// ShotRejectedEvent tells the shooter why a shot was not taken.
type ShotRejectedEvent struct {
	MatchID MatchID
	Reason  string
}

func (ShotRejectedEvent) sessionEvent() {}

// RoundOverEvent is sent to both sides when a round is won.
// The match stays open for a rematch.
type RoundOverEvent struct {
	MatchID MatchID
	Round   int
	Winner  Side
}

func (RoundOverEvent) sessionEvent() {}

// RematchRequestedEvent tells a session its opponent wants another round.
type RematchRequestedEvent struct {
	MatchID MatchID
}

func (RematchRequestedEvent) sessionEvent() {}

// MatchEndedEvent is sent when the match closes for good.
type MatchEndedEvent struct {
	MatchID MatchID
	Reason  MatchEndReason
	Winner  Side // SideNone if no winner
}

func (MatchEndedEvent) sessionEvent() {}

// MatchEndReason describes why a match ended.
type MatchEndReason int

const (
	MatchEndReasonCompleted  MatchEndReason = iota // Normal game completion
	MatchEndReasonDisconnect                       // Opponent disconnected
	MatchEndReasonCancelled                        // Match was cancelled
	MatchEndReasonHostLeft                         // Host left the lobby
	MatchEndReasonLeft                             // Opponent left the match
)

func (r MatchEndReason) String() string {
	switch r {
	case MatchEndReasonCompleted:
		return "completed"
	case MatchEndReasonDisconnect:
		return "disconnect"
	case MatchEndReasonCancelled:
		return "cancelled"
	case MatchEndReasonHostLeft:
		return "host left"
	case MatchEndReasonLeft:
		return "left"
	default:
		return "unknown"
	}
}

// Message returns a sentence suitable for display to the remaining player.
func (r MatchEndReason) Message() string {
	switch r {
	case MatchEndReasonCompleted:
		return "Match completed"
	case MatchEndReasonDisconnect:
		return "Opponent disconnected"
	case MatchEndReasonCancelled:
		return "Match cancelled"
	case MatchEndReasonHostLeft:
		return "Host left"
	case MatchEndReasonLeft:
		return "Opponent left"
	default:
		return "Unknown"
	}
}

// CoordinatorMessage represents a message from a session to the coordinator.
type CoordinatorMessage interface {
	coordinatorMessage()
}

// CreateLobbyMsg requests creation of a new lobby.
type CreateLobbyMsg struct {
	SessionID SessionID
	Name      string
	Variant   string
}

func (CreateLobbyMsg) coordinatorMessage() {}

// JoinLobbyMsg requests joining an existing lobby.
type JoinLobbyMsg struct {
	SessionID SessionID
	Name      string
	Code      string
}

func (JoinLobbyMsg) coordinatorMessage() {}

// CancelLobbyMsg requests cancellation of a hosted lobby.
type CancelLobbyMsg struct {
	SessionID SessionID
	Code      string
}

func (CancelLobbyMsg) coordinatorMessage() {}

// LeaveLobbyMsg requests leaving a joined lobby.
type LeaveLobbyMsg struct {
	SessionID SessionID
	Code      string
}

func (LeaveLobbyMsg) coordinatorMessage() {}

// LeaveMatchMsg requests leaving an active match.
type LeaveMatchMsg struct {
	SessionID SessionID
	MatchID   MatchID
}

func (LeaveMatchMsg) coordinatorMessage() {}

// FireMsg fires at the opponent's board.
type FireMsg struct {
	SessionID SessionID
	MatchID   MatchID
	Target    battleship.Coord
}

func (FireMsg) coordinatorMessage() {}

// ReadyForRematchMsg signals readiness for a rematch.
type ReadyForRematchMsg struct {
	SessionID SessionID
	MatchID   MatchID
}

func (ReadyForRematchMsg) coordinatorMessage() {}

// SessionDisconnectedMsg is sent when a session disconnects.
type SessionDisconnectedMsg struct {
	SessionID SessionID
}

func (SessionDisconnectedMsg) coordinatorMessage() {}
