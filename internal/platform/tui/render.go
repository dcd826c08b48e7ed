package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-battleship/internal/battleship"
	"github.com/vovakirdan/tui-battleship/internal/core"
	"github.com/vovakirdan/tui-battleship/internal/game"
)

// colorStyles maps core.Color to lipgloss styles.
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorDefault:      lipgloss.NewStyle(),
	core.ColorRed:          lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	core.ColorGreen:        lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	core.ColorYellow:       lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	core.ColorBlue:         lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	core.ColorCyan:         lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	core.ColorWhite:        lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
	core.ColorBrightRed:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	core.ColorBrightYellow: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	core.ColorBrightBlue:   lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	core.ColorBrightWhite:  lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true),
	core.ColorOrange:       lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	core.ColorGray:         lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	core.ColorDarkGray:     lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same color to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			startColor := s.GetCell(x, y).Color

			var run strings.Builder
			for x < s.Width() {
				cell := s.GetCell(x, y)
				if cell.Color != startColor {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			style, ok := colorStyles[startColor]
			if !ok {
				style = colorStyles[core.ColorDefault]
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}

// Board geometry. Every cell is cellW characters wide so the cursor can
// bracket it.
const (
	cellW      = 3
	rowLabelW  = 3
	boardGap   = 4
	boardTop   = 2
	statusRows = 3
)

// boardDims returns the outer size of a boxed board of n by n cells.
func boardDims(n int) (w, h int) {
	return rowLabelW + n*cellW + 2, n + 3
}

// layoutBoards places the own and target boards side by side, or stacked
// when the terminal is too narrow. ok is false if neither layout fits.
func layoutBoards(w, h, n int) (own, target core.Rect, ok bool) {
	bw, bh := boardDims(n)
	avail := h - statusRows

	x := (w - 2*bw - boardGap) / 2
	own = core.NewRect(x, boardTop, bw, bh)
	target = core.NewRect(x+bw+boardGap, boardTop, bw, bh)
	if own.Fits(w, avail) && target.Fits(w, avail) {
		return own, target, true
	}

	x = (w - bw) / 2
	own = core.NewRect(x, boardTop, bw, bh)
	target = core.NewRect(x, own.Bottom(), bw, bh)
	if own.Fits(w, avail) && target.Fits(w, avail) && !own.Intersects(target) {
		return own, target, true
	}
	return core.Rect{}, core.Rect{}, false
}

// colLabel names a column A, B, C... falling back to digits past Z.
func colLabel(col int) string {
	if col < 26 {
		return string(rune('A' + col))
	}
	return fmt.Sprint(col % 10)
}

// CoordLabel formats a cell the way players call shots, e.g. "B7".
func CoordLabel(c battleship.Coord) string {
	return fmt.Sprintf("%s%d", colLabel(c.Col), c.Row+1)
}

// markGlyph returns how a board mark is drawn.
func markGlyph(m game.Mark) (rune, core.Color) {
	switch m {
	case game.MarkWater:
		return '~', core.ColorBlue
	case game.MarkShip:
		return '■', core.ColorWhite
	case game.MarkMiss:
		return '○', core.ColorCyan
	case game.MarkHit:
		return '✕', core.ColorBrightRed
	case game.MarkSunk:
		return '#', core.ColorOrange
	}
	return '·', core.ColorDarkGray
}

// boardOverlay carries the interactive bits drawn on top of a board.
type boardOverlay struct {
	title     string
	active    bool // board has keyboard focus
	cursor    *battleship.Coord
	preview   []battleship.Coord
	previewOK bool
}

// drawBoard renders a board view inside r.
func drawBoard(s *core.Screen, r core.Rect, v game.BoardView, o boardOverlay) {
	frame := core.ColorGray
	if o.active {
		frame = core.ColorBrightYellow
	}
	s.DrawBox(r, frame)
	s.DrawTextColored(r.X+2, r.Y, " "+o.title+" ", frame)

	x0, y0 := r.X+1, r.Y+1
	for col := range v.Size {
		s.DrawTextColored(x0+rowLabelW+col*cellW+1, y0, colLabel(col), core.ColorGray)
	}

	preview := make(map[battleship.Coord]bool, len(o.preview))
	for _, c := range o.preview {
		preview[c] = true
	}

	for row := range v.Size {
		y := y0 + 1 + row
		s.DrawTextColored(x0, y, fmt.Sprintf("%2d", row+1), core.ColorGray)
		for col := range v.Size {
			c := battleship.C(row, col)
			glyph, color := markGlyph(v.At(c))
			if preview[c] {
				glyph, color = '■', core.ColorGreen
				if !o.previewOK {
					color = core.ColorRed
				}
			}
			x := x0 + rowLabelW + col*cellW
			s.SetColored(x+1, y, glyph, color)
			if o.cursor != nil && *o.cursor == c {
				s.SetColored(x, y, '[', core.ColorBrightYellow)
				s.SetColored(x+2, y, ']', core.ColorBrightYellow)
			}
		}
	}
}

// matchView is everything needed to draw one seat's screen.
type matchView struct {
	header string
	snap   game.Snapshot
	own    boardOverlay
	target boardOverlay
	status string
	detail string
}

// drawMatch renders both boards and the status lines. It returns false if
// the terminal is too small for the board size.
func drawMatch(s *core.Screen, mv matchView) bool {
	s.Clear()
	own, target, ok := layoutBoards(s.Width(), s.Height(), mv.snap.Own.Size)
	if !ok {
		s.DrawTextCentered(s.Height()/2, "Terminal too small, please enlarge the window", core.ColorYellow)
		return false
	}

	s.DrawTextCentered(0, mv.header, core.ColorBrightWhite)
	drawBoard(s, own, mv.snap.Own, mv.own)
	drawBoard(s, target, mv.snap.Target, mv.target)

	y := max(own.Bottom(), target.Bottom())
	s.DrawTextCentered(y, mv.status, core.ColorBrightYellow)
	s.DrawTextCentered(y+1, mv.detail, core.ColorGray)
	return true
}

// scoreLine summarizes both seats for the header.
func scoreLine(snap game.Snapshot) string {
	return fmt.Sprintf("%s (%d)  vs  %s (%d)   Round %d",
		snap.You.Name, snap.You.Wins, snap.Opponent.Name, snap.Opponent.Wins, snap.Round)
}

// statsLine summarizes the viewer's shooting.
func statsLine(snap game.Snapshot) string {
	return fmt.Sprintf("Shots %d  Hits %d  Sunk %d  Accuracy %.0f%%   Enemy ships left %d",
		snap.Stats.Shots, snap.Stats.Hits, snap.Stats.Sunk, snap.Stats.Accuracy()*100, snap.Opponent.ShipsLeft)
}

// shotLine describes a shot from the viewer's perspective.
func shotLine(shot *game.Shot, viewer int, opponent string) string {
	if shot == nil {
		return ""
	}
	who := "You"
	if shot.Seat != viewer {
		who = opponent
	}
	switch shot.Outcome {
	case game.OutcomeSunk:
		return fmt.Sprintf("%s sank the %s at %s!", who, shot.Ship, CoordLabel(shot.Coord))
	case game.OutcomeHit:
		return fmt.Sprintf("%s hit at %s.", who, CoordLabel(shot.Coord))
	}
	return fmt.Sprintf("%s missed at %s.", who, CoordLabel(shot.Coord))
}

// centerText centers text within given width.
func centerText(text string, width int) string {
	n := lipgloss.Width(text)
	if n >= width {
		return text
	}
	return strings.Repeat(" ", (width-n)/2) + text
}
