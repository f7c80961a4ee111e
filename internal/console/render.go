package console

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jaminalder/minimax-tic-tac-toe/internal/domain"
)

// ANSI colour numbers for each side.
const (
	machineColor = "5" // magenta
	playerColor  = "6" // cyan
	alertColor   = "1" // red
	winColor     = "2" // green
	promptColor  = "3" // yellow
)

func (s *Session) paint(text, color string) string {
	return s.out.String(text).Foreground(s.out.Color(color)).String()
}

// cell renders one board cell. Vacant cells show their index, faint.
func (s *Session) cell(b domain.Board, i int, machine domain.Cell) string {
	switch b[i] {
	case domain.Empty:
		return s.out.String(strconv.Itoa(i)).Faint().String()
	case machine:
		return s.paint(b[i].String(), machineColor)
	default:
		return s.paint(b[i].String(), playerColor)
	}
}

// renderBoard draws the 3x3 grid in a box.
func (s *Session) renderBoard(w io.Writer, b domain.Board, machine domain.Cell) {
	fmt.Fprintln(w, "┌───┬───┬───┐")
	for row := 0; row < 3; row++ {
		i := row * 3
		fmt.Fprintf(w, "│ %s │ %s │ %s │\n",
			s.cell(b, i, machine), s.cell(b, i+1, machine), s.cell(b, i+2, machine))
		if row < 2 {
			fmt.Fprintln(w, "├───┼───┼───┤")
		}
	}
	fmt.Fprintln(w, "└───┴───┴───┘")
}
