// Package search finds optimal tic-tac-toe moves by full-depth minimax.
//
// Scores are always from the machine's point of view. A win found at
// depth d is worth 10-d, a loss d-10, so quicker wins and slower losses
// rank higher. A 3x3 board never recurses past depth 9, so the scale
// never changes sign.
package search

import (
	"errors"

	"github.com/jaminalder/minimax-tic-tac-toe/internal/domain"
)

// NoMove marks a result computed for a board that is already terminal.
const NoMove = -1

// maxScore is the scaling base; it must exceed the deepest reachable ply.
const maxScore = 10

// ErrNoMoves is returned by BestMove when the board is already decided.
var ErrNoMoves = errors.New("no moves left")

// Result is the value of a position and the move that achieves it.
type Result struct {
	Score int
	Move  int
	// Nodes counts positions visited to produce this result.
	Nodes int
}

// HasMove reports whether Move refers to a board index.
func (r Result) HasMove() bool { return r.Move != NoMove }

// Evaluator searches on behalf of a fixed machine symbol.
type Evaluator struct {
	machine domain.Cell
	tie     TieBreaker
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithTieBreak sets the policy used among equally scored moves.
func WithTieBreak(t TieBreaker) Option {
	return func(e *Evaluator) {
		if t != nil {
			e.tie = t
		}
	}
}

// New returns an evaluator playing machine (X or O). Ties are broken at
// random unless WithTieBreak says otherwise.
func New(machine domain.Cell, opts ...Option) *Evaluator {
	if machine != domain.X && machine != domain.O {
		panic("search: machine must be X or O")
	}
	e := &Evaluator{machine: machine, tie: Random(nil)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Machine returns the symbol the evaluator plays.
func (e *Evaluator) Machine() domain.Cell { return e.machine }

// Evaluate returns the minimax value of b and the best move for the side
// to move. machineTurn says whether the machine moves at this ply; depth
// is the number of plies already searched (0 at the root).
//
// Evaluate panics on a board holding an unknown cell value. Callers that
// cannot guarantee well-formed input should use BestMove.
func (e *Evaluator) Evaluate(b domain.Board, depth int, machineTurn bool) Result {
	if !b.Valid() {
		panic(domain.ErrInvalidBoard)
	}
	return e.minimax(b, depth, machineTurn)
}

func (e *Evaluator) minimax(b domain.Board, depth int, machineTurn bool) Result {
	if domain.Winner(b) != domain.Empty {
		score := domain.Score(b, machineTurn, e.machine)
		if machineTurn {
			score *= maxScore - depth
		} else {
			score *= depth - maxScore
		}
		return Result{Score: score, Move: NoMove, Nodes: 1}
	}
	if domain.IsFilled(b) {
		return Result{Score: 0, Move: NoMove, Nodes: 1}
	}

	mover := e.machine
	if !machineTurn {
		mover = domain.Other(e.machine)
	}

	moves := domain.VacantCells(b)
	scores := make([]int, len(moves))
	nodes := 1
	for i, mv := range moves {
		child := b
		child[mv] = mover
		r := e.minimax(child, depth+1, !machineTurn)
		scores[i] = r.Score
		nodes += r.Nodes
	}

	best := e.choose(scores, machineTurn)
	return Result{Score: scores[best], Move: moves[best], Nodes: nodes}
}

// choose returns the position in scores of the extremum, deferring to the
// tie-break policy when several candidates share it.
func (e *Evaluator) choose(scores []int, maximize bool) int {
	target := scores[0]
	for _, s := range scores[1:] {
		if (maximize && s > target) || (!maximize && s < target) {
			target = s
		}
	}
	tied := make([]int, 0, len(scores))
	for i, s := range scores {
		if s == target {
			tied = append(tied, i)
		}
	}
	return tied[e.tie.Pick(len(tied))]
}

// BestMove searches from the root for the side to move. Unlike Evaluate it
// reports malformed and already decided boards as errors.
func (e *Evaluator) BestMove(b domain.Board, machineTurn bool) (Result, error) {
	if !b.Valid() {
		return Result{Move: NoMove}, domain.ErrInvalidBoard
	}
	if domain.Winner(b) != domain.Empty || domain.IsFilled(b) {
		return Result{Move: NoMove}, ErrNoMoves
	}
	return e.minimax(b, 0, machineTurn), nil
}
