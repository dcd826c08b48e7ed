package multiplayer

import (
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-battleship/internal/battleship"
	"github.com/vovakirdan/tui-battleship/internal/logging"
)

// Lobby represents a waiting room for a match.
type Lobby struct {
	Code       string
	Variant    string
	Host       SessionHandle
	HostName   string
	Joiner     SessionHandle
	JoinerName string
	CreatedAt  time.Time
}

// CoordinatorConfig holds configuration for the coordinator.
type CoordinatorConfig struct {
	LobbyTimeout  time.Duration // How long before an empty lobby expires
	CleanupPeriod time.Duration // How often to clean up expired lobbies
	MaxLobbies    int           // 0 = unlimited
}

// DefaultCoordinatorConfig returns sensible defaults.
func DefaultCoordinatorConfig() CoordinatorConfig {
	return CoordinatorConfig{
		LobbyTimeout:  2 * time.Minute,
		CleanupPeriod: 30 * time.Second,
		MaxLobbies:    64,
	}
}

// RulesFactory resolves a variant ID to its rules.
type RulesFactory func(variant string) (battleship.Rules, error)

// MatchResultSaver is an interface for saving match results.
// This allows the coordinator to save results without depending on the storage package.
type MatchResultSaver interface {
	SaveMatchResult(result MatchResultData) error
}

// MatchResultData contains round result data for persistence.
type MatchResultData struct {
	MatchID      string
	Variant      string
	Round        int
	Player1      string
	Player2      string
	Winner       string
	EndReason    string
	Shots1       int
	Hits1        int
	Shots2       int
	Hits2        int
	DurationSecs int
}

// Coordinator manages lobbies and active matches.
type Coordinator struct {
	config      CoordinatorConfig
	rules       RulesFactory
	sessions    *SessionRegistry
	resultSaver MatchResultSaver // Optional, can be nil
	log         *log.Logger
	saves       sync.WaitGroup

	mu      sync.RWMutex
	lobbies map[string]*Lobby        // code -> lobby
	matches map[MatchID]*OnlineMatch // matchID -> match

	// Track which session is in which lobby/match
	sessionLobby map[SessionID]string  // sessionID -> lobby code
	sessionMatch map[SessionID]MatchID // sessionID -> matchID

	// Message channel for async processing
	msgChan  chan CoordinatorMessage
	done     chan struct{}
	loopDone chan struct{} // closed when processMessages returns
	started  atomic.Bool
}

// NewCoordinator creates a new coordinator.
func NewCoordinator(cfg CoordinatorConfig, rules RulesFactory, sessions *SessionRegistry) *Coordinator {
	return &Coordinator{
		config:       cfg,
		rules:        rules,
		sessions:     sessions,
		log:          logging.Discard(),
		lobbies:      make(map[string]*Lobby),
		matches:      make(map[MatchID]*OnlineMatch),
		sessionLobby: make(map[SessionID]string),
		sessionMatch: make(map[SessionID]MatchID),
		msgChan:      make(chan CoordinatorMessage, 256),
		done:         make(chan struct{}),
		loopDone:     make(chan struct{}),
	}
}

// SetResultSaver sets the optional match result saver.
func (c *Coordinator) SetResultSaver(saver MatchResultSaver) {
	c.resultSaver = saver
}

// SetLogger sets the coordinator's logger.
func (c *Coordinator) SetLogger(l *log.Logger) {
	if l != nil {
		c.log = l
	}
}

// Start begins the coordinator's background processing.
func (c *Coordinator) Start() {
	c.started.Store(true)
	go c.processMessages()
	go c.cleanupLoop()
}

// Stop shuts down the coordinator, ends every match and waits for pending
// result saves. The message loop has exited before the wait starts, so no
// new save can be queued while waiting.
func (c *Coordinator) Stop() {
	close(c.done)
	if c.started.Load() {
		<-c.loopDone
	}

	c.mu.Lock()
	for _, m := range c.matches {
		m.Stop()
	}
	c.mu.Unlock()

	c.saves.Wait()
}

// Send sends a message to the coordinator for async processing.
func (c *Coordinator) Send(msg CoordinatorMessage) {
	select {
	case c.msgChan <- msg:
	case <-c.done:
	}
}

// processMessages handles incoming messages.
func (c *Coordinator) processMessages() {
	defer close(c.loopDone)
	for {
		select {
		case msg := <-c.msgChan:
			c.handleMessage(msg)
		case <-c.done:
			return
		}
	}
}

func (c *Coordinator) handleMessage(msg CoordinatorMessage) {
	switch m := msg.(type) {
	case CreateLobbyMsg:
		c.handleCreateLobby(m)
	case JoinLobbyMsg:
		c.handleJoinLobby(m)
	case CancelLobbyMsg:
		c.handleCancelLobby(m)
	case LeaveLobbyMsg:
		c.handleLeaveLobby(m)
	case LeaveMatchMsg:
		c.handleLeaveMatch(m)
	case FireMsg:
		c.handleFire(m)
	case ReadyForRematchMsg:
		c.handleRematch(m)
	case SessionDisconnectedMsg:
		c.handleSessionDisconnected(m)
	}
}

func (c *Coordinator) handleCreateLobby(msg CreateLobbyMsg) {
	session, ok := c.sessions.Get(msg.SessionID)
	if !ok {
		return
	}

	if _, err := c.rules(msg.Variant); err != nil {
		session.Send(LobbyErrorEvent{Message: fmt.Sprintf("Unknown variant %q", msg.Variant)})
		return
	}

	c.mu.Lock()
	if _, inLobby := c.sessionLobby[msg.SessionID]; inLobby {
		c.mu.Unlock()
		session.Send(LobbyErrorEvent{Message: "Already in a lobby"})
		return
	}
	if _, inMatch := c.sessionMatch[msg.SessionID]; inMatch {
		c.mu.Unlock()
		session.Send(LobbyErrorEvent{Message: "Already in a match"})
		return
	}
	if c.config.MaxLobbies > 0 && len(c.lobbies) >= c.config.MaxLobbies {
		c.mu.Unlock()
		session.Send(LobbyErrorEvent{Message: "Server is full, try again later"})
		return
	}

	code := c.generateUniqueCode()
	c.lobbies[code] = &Lobby{
		Code:      code,
		Variant:   msg.Variant,
		Host:      session,
		HostName:  msg.Name,
		CreatedAt: time.Now(),
	}
	c.sessionLobby[msg.SessionID] = code
	c.mu.Unlock()

	c.log.Info("lobby created", "code", code, "variant", msg.Variant, "host", msg.Name)
	session.Send(LobbyCreatedEvent{Code: code, Variant: msg.Variant})
}

func (c *Coordinator) handleJoinLobby(msg JoinLobbyMsg) {
	session, ok := c.sessions.Get(msg.SessionID)
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, inLobby := c.sessionLobby[msg.SessionID]; inLobby {
		session.Send(LobbyErrorEvent{Message: "Already in a lobby"})
		return
	}
	if _, inMatch := c.sessionMatch[msg.SessionID]; inMatch {
		session.Send(LobbyErrorEvent{Message: "Already in a match"})
		return
	}

	code := strings.ToUpper(strings.TrimSpace(msg.Code))
	lobby, exists := c.lobbies[code]
	if !exists {
		session.Send(LobbyErrorEvent{Message: "Lobby not found"})
		return
	}
	if lobby.Joiner != nil {
		session.Send(LobbyErrorEvent{Message: "Lobby is full"})
		return
	}
	if lobby.Host.ID() == msg.SessionID {
		session.Send(LobbyErrorEvent{Message: "Cannot join your own lobby"})
		return
	}

	lobby.Joiner = session
	lobby.JoinerName = msg.Name
	c.sessionLobby[msg.SessionID] = code

	lobby.Host.Send(LobbyJoinedEvent{Code: code, Side: SideOne, Opponent: lobby.JoinerName})
	session.Send(LobbyJoinedEvent{Code: code, Side: SideTwo, Opponent: lobby.HostName})

	c.startMatch(lobby)
}

// startMatch must be called with c.mu held.
func (c *Coordinator) startMatch(lobby *Lobby) {
	host, joiner := lobby.Host, lobby.Joiner
	fail := func(err error) {
		c.log.Error("cannot start match", "code", lobby.Code, "err", err)
		host.Send(LobbyErrorEvent{Message: "Failed to create game"})
		joiner.Send(LobbyErrorEvent{Message: "Failed to create game"})
		delete(c.sessionLobby, host.ID())
		delete(c.sessionLobby, joiner.ID())
		delete(c.lobbies, lobby.Code)
	}

	rules, err := c.rules(lobby.Variant)
	if err != nil {
		fail(err)
		return
	}

	matchID := NewMatchID()
	names := [2]string{displayName(lobby.HostName, SideOne), displayName(lobby.JoinerName, SideTwo)}
	match, err := NewOnlineMatch(matchID, lobby.Code, lobby.Variant, rules, names,
		host, joiner, time.Now().UnixNano(), c.log)
	if err != nil {
		fail(err)
		return
	}

	c.matches[matchID] = match
	delete(c.sessionLobby, host.ID())
	delete(c.sessionLobby, joiner.ID())
	c.sessionMatch[host.ID()] = matchID
	c.sessionMatch[joiner.ID()] = matchID
	delete(c.lobbies, lobby.Code)

	c.log.Info("match started", "match", matchID, "code", lobby.Code,
		"player1", names[SideOne], "player2", names[SideTwo])

	host.Send(MatchStartedEvent{MatchID: matchID, Side: SideOne, Code: lobby.Code, Opponent: names[SideTwo]})
	joiner.Send(MatchStartedEvent{MatchID: matchID, Side: SideTwo, Code: lobby.Code, Opponent: names[SideOne]})
	match.Broadcast()

	go match.watch(func(id SessionID) {
		c.Send(SessionDisconnectedMsg{SessionID: id})
	})
}

func displayName(name string, side Side) string {
	if name == "" {
		return side.String()
	}
	return name
}

func (c *Coordinator) lookupMatch(id MatchID, session SessionID) (*OnlineMatch, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.matches[id]
	if !ok || c.sessionMatch[session] != id {
		return nil, false
	}
	return m, true
}

func (c *Coordinator) handleFire(msg FireMsg) {
	match, ok := c.lookupMatch(msg.MatchID, msg.SessionID)
	if !ok {
		return
	}

	shot, res, err := match.Fire(msg.SessionID, msg.Target)
	if err != nil {
		if s, ok := c.sessions.Get(msg.SessionID); ok {
			s.Send(ShotRejectedEvent{MatchID: msg.MatchID, Reason: rejectReason(err)})
		}
		return
	}
	c.log.Debug("shot", "match", msg.MatchID, "side", match.SideOf(msg.SessionID), "result", shot)

	match.Broadcast()
	if res != nil {
		c.saveResult(match, *res)
		evt := RoundOverEvent{MatchID: match.ID(), Round: res.Round, Winner: res.Winner}
		match.Session(SideOne).Send(evt)
		match.Session(SideTwo).Send(evt)
		c.log.Info("round over", "match", match.ID(), "round", res.Round, "winner", match.Name(res.Winner))
	}
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, battleship.ErrAlreadyHit):
		return "Already fired there"
	case errors.Is(err, battleship.ErrOutOfBounds):
		return "Off the board"
	}
	return strings.TrimPrefix(err.Error(), "game: ")
}

func (c *Coordinator) handleRematch(msg ReadyForRematchMsg) {
	match, ok := c.lookupMatch(msg.MatchID, msg.SessionID)
	if !ok {
		return
	}

	started, err := match.RequestRematch(msg.SessionID)
	if err != nil {
		c.log.Warn("rematch refused", "match", msg.MatchID, "err", err)
		return
	}
	if !started {
		other := match.Session(match.SideOf(msg.SessionID).Other())
		other.Send(RematchRequestedEvent{MatchID: msg.MatchID})
		return
	}
	c.log.Info("rematch started", "match", msg.MatchID, "round", match.Round())
	match.Broadcast()
}

// endMatch must be called with c.mu held.
func (c *Coordinator) endMatch(match *OnlineMatch, leaver SessionID, reason MatchEndReason) {
	res, winner := match.Forfeit(leaver, reason)
	if res != nil {
		c.saveResult(match, *res)
	}

	for _, side := range []Side{SideOne, SideTwo} {
		s := match.Session(side)
		delete(c.sessionMatch, s.ID())
		if s.ID() != leaver {
			s.Send(MatchEndedEvent{MatchID: match.ID(), Reason: reason, Winner: winner})
		}
	}
	delete(c.matches, match.ID())
	c.log.Info("match ended", "match", match.ID(), "reason", reason)
}

func (c *Coordinator) saveResult(match *OnlineMatch, res RoundResult) {
	if c.resultSaver == nil {
		return
	}

	data := MatchResultData{
		MatchID:      string(match.ID()),
		Variant:      match.Variant(),
		Round:        res.Round,
		Player1:      match.Name(SideOne),
		Player2:      match.Name(SideTwo),
		Winner:       match.Name(res.Winner),
		EndReason:    res.Reason.String(),
		Shots1:       res.Stats[SideOne].Shots,
		Hits1:        res.Stats[SideOne].Hits,
		Shots2:       res.Stats[SideTwo].Shots,
		Hits2:        res.Stats[SideTwo].Hits,
		DurationSecs: int(res.Duration / time.Second),
	}

	// Best effort save, don't block the message loop
	c.saves.Add(1)
	go func() {
		defer c.saves.Done()
		if err := c.resultSaver.SaveMatchResult(data); err != nil {
			c.log.Error("cannot save match result", "match", data.MatchID, "err", err)
		}
	}()
}

func (c *Coordinator) handleCancelLobby(msg CancelLobbyMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	lobby, exists := c.lobbies[msg.Code]
	if !exists {
		return
	}

	// Only host can cancel
	if lobby.Host.ID() != msg.SessionID {
		return
	}

	c.closeLobby(lobby, MatchEndReasonCancelled)
}

// closeLobby must be called with c.mu held.
func (c *Coordinator) closeLobby(lobby *Lobby, reason MatchEndReason) {
	if lobby.Joiner != nil {
		lobby.Joiner.Send(MatchEndedEvent{Reason: reason, Winner: SideNone})
		delete(c.sessionLobby, lobby.Joiner.ID())
	}
	delete(c.lobbies, lobby.Code)
	delete(c.sessionLobby, lobby.Host.ID())
}

func (c *Coordinator) handleLeaveLobby(msg LeaveLobbyMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	lobby, exists := c.lobbies[msg.Code]
	if !exists {
		return
	}

	// If joiner is leaving
	if lobby.Joiner != nil && lobby.Joiner.ID() == msg.SessionID {
		lobby.Joiner = nil
		lobby.JoinerName = ""
		delete(c.sessionLobby, msg.SessionID)
		lobby.Host.Send(LobbyPlayerLeftEvent{Code: msg.Code})
		return
	}

	// If host is leaving, close lobby
	if lobby.Host.ID() == msg.SessionID {
		c.closeLobby(lobby, MatchEndReasonHostLeft)
	}
}

func (c *Coordinator) handleLeaveMatch(msg LeaveMatchMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	match, exists := c.matches[msg.MatchID]
	if !exists || c.sessionMatch[msg.SessionID] != msg.MatchID {
		return
	}
	c.endMatch(match, msg.SessionID, MatchEndReasonLeft)
}

func (c *Coordinator) handleSessionDisconnected(msg SessionDisconnectedMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if code, inLobby := c.sessionLobby[msg.SessionID]; inLobby {
		if lobby, exists := c.lobbies[code]; exists {
			if lobby.Host.ID() == msg.SessionID {
				c.closeLobby(lobby, MatchEndReasonHostLeft)
			} else if lobby.Joiner != nil && lobby.Joiner.ID() == msg.SessionID {
				lobby.Joiner = nil
				lobby.JoinerName = ""
				lobby.Host.Send(LobbyPlayerLeftEvent{Code: code})
			}
		}
		delete(c.sessionLobby, msg.SessionID)
	}

	if matchID, inMatch := c.sessionMatch[msg.SessionID]; inMatch {
		if match, exists := c.matches[matchID]; exists {
			c.endMatch(match, msg.SessionID, MatchEndReasonDisconnect)
		}
	}
}

func (c *Coordinator) cleanupLoop() {
	ticker := time.NewTicker(c.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanupExpiredLobbies()
		case <-c.done:
			return
		}
	}
}

func (c *Coordinator) cleanupExpiredLobbies() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for code, lobby := range c.lobbies {
		// Only expire lobbies without joiners
		if lobby.Joiner == nil && now.Sub(lobby.CreatedAt) > c.config.LobbyTimeout {
			lobby.Host.Send(LobbyErrorEvent{Message: "Lobby expired"})
			delete(c.sessionLobby, lobby.Host.ID())
			delete(c.lobbies, code)
			c.log.Debug("lobby expired", "code", code)
		}
	}
}

func (c *Coordinator) generateUniqueCode() string {
	for {
		code := generateJoinCode()
		if _, exists := c.lobbies[code]; !exists {
			return code
		}
	}
}

// generateJoinCode creates a 6-character uppercase alphanumeric code.
func generateJoinCode() string {
	b := make([]byte, 4) // 4 bytes = 32 bits, base32 encodes to 8 chars, we take 6
	_, err := rand.Read(b)
	if err != nil {
		// Fallback to timestamp-based
		return fmt.Sprintf("%06X", time.Now().UnixNano()&0xFFFFFF)
	}
	return base32.StdEncoding.EncodeToString(b)[:6]
}

// GetLobby returns a lobby by code (for testing/debug).
func (c *Coordinator) GetLobby(code string) (*Lobby, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.lobbies[strings.ToUpper(code)]
	return l, ok
}

// GetMatch returns a match by ID (for testing/debug).
func (c *Coordinator) GetMatch(id MatchID) (*OnlineMatch, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.matches[id]
	return m, ok
}

// LobbyCount returns the number of active lobbies.
func (c *Coordinator) LobbyCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.lobbies)
}

// MatchCount returns the number of active matches.
func (c *Coordinator) MatchCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.matches)
}
