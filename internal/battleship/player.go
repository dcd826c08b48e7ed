package battleship

// PlayerID identifies a player for the lifetime of the process.
type PlayerID uint64

// Player ties an identity to a board and a running win count.
// The board can be swapped between games without losing the history.
type Player struct {
	id        PlayerID
	name      string
	board     *Board
	automated bool
	wins      int
}

// NewPlayer creates a player with an identifier from the default allocator.
func NewPlayer(name string, board *Board, automated bool) *Player {
	return defaultIDs.NewPlayer(name, board, automated)
}

// ID returns the player's identifier.
func (p *Player) ID() PlayerID { return p.id }

// Name returns the display name.
func (p *Player) Name() string { return p.name }

// Board returns the player's current board.
func (p *Player) Board() *Board { return p.board }

// Automated reports whether the computer plays this seat.
func (p *Player) Automated() bool { return p.automated }

// Wins returns the number of games won so far.
func (p *Player) Wins() int { return p.wins }

// SetBoard replaces the board, keeping the win count.
func (p *Player) SetBoard(b *Board) { p.board = b }

// Win records a won game.
func (p *Player) Win() {
	p.wins++
}
