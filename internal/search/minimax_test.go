package search

import (
	"errors"
	"testing"

	"github.com/jaminalder/minimax-tic-tac-toe/internal/domain"
)

func board(t *testing.T, s string) domain.Board {
	t.Helper()
	b, err := domain.ParseBoard(s)
	if err != nil {
		t.Fatalf("ParseBoard(%q): %v", s, err)
	}
	return b
}

// lastTie always picks the final candidate.
type lastTie struct{ calls int }

func (l *lastTie) Pick(n int) int {
	l.calls++
	return n - 1
}

func TestEmptyBoardIsADraw(t *testing.T) {
	for _, machine := range []domain.Cell{domain.X, domain.O} {
		e := New(machine, WithTieBreak(LowestIndex{}))
		r := e.Evaluate(domain.Clean(), 0, true)
		if r.Score != 0 {
			t.Fatalf("machine %v: empty board score = %d, want 0", machine, r.Score)
		}
		if r.Move != 0 {
			t.Fatalf("machine %v: lowest-index move = %d, want 0", machine, r.Move)
		}
		if r.Nodes != 549946 {
			t.Fatalf("machine %v: visited %d nodes, want the full tree of 549946", machine, r.Nodes)
		}
	}
}

func TestEmptyBoardRandomTieStaysOptimal(t *testing.T) {
	e := New(domain.X, WithTieBreak(Seeded(7)))
	for i := 0; i < 3; i++ {
		r := e.Evaluate(domain.Clean(), 0, true)
		if r.Score != 0 {
			t.Fatalf("run %d: score = %d, want 0", i, r.Score)
		}
		if r.Move < 0 || r.Move > 8 {
			t.Fatalf("run %d: move %d out of range", i, r.Move)
		}
	}
	if r := e.Evaluate(domain.Clean(), 0, false); r.Score != 0 {
		t.Fatalf("minimizing side on empty board: score = %d, want 0", r.Score)
	}
}

func TestCompletesWinningRow(t *testing.T) {
	e := New(domain.X)
	r := e.Evaluate(board(t, "xx oo    "), 0, true)
	if r.Move != 2 {
		t.Fatalf("move = %d, want 2", r.Move)
	}
	// win found one ply down: 10 - 1
	if r.Score != 9 {
		t.Fatalf("score = %d, want 9", r.Score)
	}
}

func TestBlocksImmediateThreat(t *testing.T) {
	e := New(domain.X)
	r := e.Evaluate(board(t, "oo  x    "), 0, true)
	if r.Move != 2 {
		t.Fatalf("move = %d, want block at 2", r.Move)
	}
	if r.Score < 0 {
		t.Fatalf("score = %d, blocking should not lose", r.Score)
	}
}

func TestUnavoidableLossStillReturnsMove(t *testing.T) {
	// o threatens both 2 and 6; every reply loses on the next ply.
	b := board(t, "oo ox  x ")
	e := New(domain.X, WithTieBreak(LowestIndex{}))
	r := e.Evaluate(b, 0, true)
	if r.Score != -8 {
		t.Fatalf("score = %d, want -8", r.Score)
	}
	if r.Move != 2 {
		t.Fatalf("move = %d, want lowest tied index 2", r.Move)
	}

	rnd := New(domain.X).Evaluate(b, 0, true)
	if rnd.Score >= 0 || !rnd.HasMove() || b[rnd.Move] != domain.Empty {
		t.Fatalf("random tie-break result %+v on losing board", rnd)
	}
}

func TestTerminalBoards(t *testing.T) {
	e := New(domain.X)
	cases := []struct {
		board       string
		depth       int
		machineTurn bool
		want        int
	}{
		// x won; machine is x
		{"xxxoo    ", 0, true, 10},
		{"xxxoo    ", 5, false, 5},
		// o won
		{"ooo xx x ", 6, true, -4},
		{"ooo xx x ", 6, false, -4},
		// draw
		{"xoxooxxxo", 9, true, 0},
	}
	for _, tc := range cases {
		r := e.Evaluate(board(t, tc.board), tc.depth, tc.machineTurn)
		if r.Score != tc.want || r.HasMove() {
			t.Fatalf("Evaluate(%q, %d, %v) = %+v, want score %d and no move", tc.board, tc.depth, tc.machineTurn, r, tc.want)
		}
	}
}

func TestScoreIsStableAcrossRuns(t *testing.T) {
	e := New(domain.O)
	b := board(t, "x   o   x")
	first := e.Evaluate(b, 0, true)
	for i := 0; i < 5; i++ {
		r := e.Evaluate(b, 0, true)
		if r.Score != first.Score {
			t.Fatalf("run %d: score %d differs from %d", i, r.Score, first.Score)
		}
		if b[r.Move] != domain.Empty {
			t.Fatalf("run %d: move %d is not vacant", i, r.Move)
		}
	}
}

func TestAppliedMoveAgreesWithChildValue(t *testing.T) {
	e := New(domain.X, WithTieBreak(LowestIndex{}))
	for _, s := range []string{"         ", "xx oo    ", "oo ox  x ", "x o o x  ", "xoxoxo   "} {
		b := board(t, s)
		if domain.Winner(b) != domain.Empty || domain.IsFilled(b) {
			t.Fatalf("%q is terminal", s)
		}
		r := e.Evaluate(b, 0, true)
		child := b
		child[r.Move] = domain.X
		cr := e.Evaluate(child, 1, false)
		if cr.Score != r.Score {
			t.Fatalf("%q: root score %d but child after move %d scores %d", s, r.Score, r.Move, cr.Score)
		}
		terminal := domain.Winner(child) != domain.Empty || domain.IsFilled(child)
		if terminal == cr.HasMove() {
			t.Fatalf("%q: child terminal=%v but child result %+v", s, terminal, cr)
		}
		if b != board(t, s) {
			t.Fatalf("%q: Evaluate mutated its argument", s)
		}
	}
}

func TestTieBreakerSeesEveryTie(t *testing.T) {
	lt := &lastTie{}
	e := New(domain.X, WithTieBreak(lt))
	r := e.Evaluate(domain.Clean(), 0, true)
	if r.Move != 8 || r.Score != 0 {
		t.Fatalf("last-candidate policy gave %+v, want move 8 score 0", r)
	}
	if lt.calls == 0 {
		t.Fatalf("tie breaker never consulted")
	}
}

func TestSeededIsReproducible(t *testing.T) {
	a := New(domain.X, WithTieBreak(Seeded(99)))
	b := New(domain.X, WithTieBreak(Seeded(99)))
	pos := board(t, "    x    ")
	for i := 0; i < 4; i++ {
		ra := a.Evaluate(pos, 0, false)
		rb := b.Evaluate(pos, 0, false)
		if ra != rb {
			t.Fatalf("run %d: %+v != %+v", i, ra, rb)
		}
	}
}

func TestBestMove(t *testing.T) {
	e := New(domain.X)
	if _, err := e.BestMove(board(t, "xxxoo    "), true); !errors.Is(err, ErrNoMoves) {
		t.Fatalf("won board: err = %v, want ErrNoMoves", err)
	}
	if _, err := e.BestMove(board(t, "xoxooxxxo"), true); !errors.Is(err, ErrNoMoves) {
		t.Fatalf("filled board: err = %v, want ErrNoMoves", err)
	}
	bad := domain.Clean()
	bad[0] = domain.Cell(9)
	if _, err := e.BestMove(bad, true); !errors.Is(err, domain.ErrInvalidBoard) {
		t.Fatalf("invalid board: err = %v, want ErrInvalidBoard", err)
	}
	r, err := e.BestMove(board(t, "xx oo    "), true)
	if err != nil || r.Move != 2 {
		t.Fatalf("BestMove = %+v, %v", r, err)
	}
}

func TestEvaluatePanicsOnInvalidBoard(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on invalid cell")
		}
	}()
	b := domain.Clean()
	b[4] = domain.Cell(3)
	New(domain.O).Evaluate(b, 0, true)
}

func TestParseTieBreak(t *testing.T) {
	for _, name := range []string{"", "random", "LOWEST", "seeded"} {
		if _, err := ParseTieBreak(name, 1); err != nil {
			t.Fatalf("ParseTieBreak(%q): %v", name, err)
		}
	}
	if tb, _ := ParseTieBreak("lowest", 0); tb.Pick(5) != 0 {
		t.Fatalf("lowest policy should pick 0")
	}
	if _, err := ParseTieBreak("coin", 0); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}
