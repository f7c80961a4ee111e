package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Cell represents a board cell state.
type Cell uint8

const (
	Empty Cell = iota
	X
	O
)

// Valid reports whether c is one of Empty, X or O.
func (c Cell) Valid() bool { return c <= O }

func (c Cell) String() string {
	switch c {
	case X:
		return "x"
	case O:
		return "o"
	case Empty:
		return " "
	default:
		return "?"
	}
}

// ParseCell accepts x, o (any case) and the empty markers ' ', '.', '-', '_'.
func ParseCell(r rune) (Cell, error) {
	switch r {
	case 'x', 'X':
		return X, nil
	case 'o', 'O':
		return O, nil
	case ' ', '.', '-', '_':
		return Empty, nil
	}
	return Empty, fmt.Errorf("%w: symbol %q", ErrInvalidBoard, r)
}

// Board is a fixed 3x3 board stored row-major.
type Board [9]Cell

// ErrInvalidBoard is returned for boards that are not 9 valid cells.
var ErrInvalidBoard = errors.New("invalid board")

// WinPatterns lists the rows, columns and diagonals.
var WinPatterns = [8][3]int{
	// rows
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	// cols
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	// diags
	{0, 4, 8}, {2, 4, 6},
}

// Clean returns a board with every cell empty.
func Clean() Board { return Board{} }

// ParseBoard reads exactly nine cells, e.g. "xx oo    ".
func ParseBoard(s string) (Board, error) {
	var b Board
	rs := []rune(s)
	if len(rs) != len(b) {
		return b, fmt.Errorf("%w: want 9 cells, got %d", ErrInvalidBoard, len(rs))
	}
	for i, r := range rs {
		c, err := ParseCell(r)
		if err != nil {
			return Board{}, err
		}
		b[i] = c
	}
	return b, nil
}

func (b Board) String() string {
	var sb strings.Builder
	for _, c := range b {
		sb.WriteString(c.String())
	}
	return sb.String()
}

// Valid reports whether every cell holds a known value.
func (b Board) Valid() bool {
	for _, c := range b {
		if !c.Valid() {
			return false
		}
	}
	return true
}

// Winner returns the owner of the first fully owned pattern, or Empty.
// Empty covers both games in progress and drawn boards; check IsFilled
// to tell them apart.
func Winner(b Board) Cell {
	for _, ln := range WinPatterns {
		first := b[ln[0]]
		if first != Empty && b[ln[1]] == first && b[ln[2]] == first {
			return first
		}
	}
	return Empty
}

// VacantCells returns the empty indices in ascending order.
func VacantCells(b Board) []int {
	out := make([]int, 0, len(b))
	for i, c := range b {
		if c == Empty {
			out = append(out, i)
		}
	}
	return out
}

// IsFilled reports whether no cell is empty.
func IsFilled(b Board) bool {
	for _, c := range b {
		if c == Empty {
			return false
		}
	}
	return true
}

// Other returns the opponent of p. Empty has no opponent and maps to itself.
func Other(p Cell) Cell {
	switch p {
	case X:
		return O
	case O:
		return X
	}
	return p
}

// Score is +1 when the evaluated side owns a line, -1 when its opponent
// does and 0 otherwise. The evaluated side is machine when forMachine is
// set, else the machine's opponent.
func Score(b Board, forMachine bool, machine Cell) int {
	w := Winner(b)
	if w == Empty {
		return 0
	}
	side := machine
	if !forMachine {
		side = Other(machine)
	}
	if w == side {
		return 1
	}
	return -1
}
