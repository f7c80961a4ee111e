package domain

import "errors"

// Game holds the current state of a Tic-Tac-Toe match.
type Game struct {
	Board  Board
	Turn   Cell
	Winner Cell
	Over   bool
	Moves  int
}

// Errors returned by domain operations.
var (
	ErrOutOfBounds = errors.New("out of bounds")
	ErrOccupied    = errors.New("cell occupied")
	ErrGameOver    = errors.New("game over")
)

// New returns a new game with X to move.
func New() Game {
	return Game{Turn: X}
}

// CellIndex maps row r and column c (0..2) to a board index.
func CellIndex(r, c int) (int, error) {
	if r < 0 || r > 2 || c < 0 || c > 2 {
		return 0, ErrOutOfBounds
	}
	return r*3 + c, nil
}

// PlayAt attempts to play the current turn at board index idx (0..8).
func (g *Game) PlayAt(idx int) error {
	if g.Over {
		return ErrGameOver
	}
	if idx < 0 || idx >= len(g.Board) {
		return ErrOutOfBounds
	}
	if g.Board[idx] != Empty {
		return ErrOccupied
	}

	g.Board[idx] = g.Turn
	g.Moves++

	if w := Winner(g.Board); w != Empty {
		g.Winner = w
		g.Over = true
		return nil
	}
	if IsFilled(g.Board) {
		g.Winner = Empty
		g.Over = true
		return nil
	}

	g.Turn = Other(g.Turn)
	return nil
}
