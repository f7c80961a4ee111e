// Package console runs games against the engine over a text stream.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jaminalder/minimax-tic-tac-toe/internal/domain"
	"github.com/jaminalder/minimax-tic-tac-toe/internal/search"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog/log"
)

// Tally counts finished games.
type Tally struct {
	Machine int
	Player  int
	Draws   int
}

// Session is one interactive sitting: several games and a running score.
type Session struct {
	in      *bufio.Scanner
	lines   chan line
	start   sync.Once
	out     *termenv.Output
	tie     search.TieBreaker
	profile []termenv.OutputOption
	tally   Tally
}

// Option configures a Session.
type Option func(*Session)

// WithTieBreak sets the engine's tie-break policy.
func WithTieBreak(t search.TieBreaker) Option {
	return func(s *Session) {
		if t != nil {
			s.tie = t
		}
	}
}

// WithProfile forces a colour profile, e.g. termenv.Ascii for plain text.
func WithProfile(p termenv.Profile) Option {
	return func(s *Session) {
		s.profile = []termenv.OutputOption{termenv.WithProfile(p)}
	}
}

// New returns a session reading moves from r and writing to w.
func New(r io.Reader, w io.Writer, opts ...Option) *Session {
	s := &Session{
		in:    bufio.NewScanner(r),
		lines: make(chan line),
		tie:   search.Random(nil),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.out = termenv.NewOutput(w, s.profile...)
	return s
}

// Tally returns the score so far.
func (s *Session) Tally() Tally { return s.tally }

// Run plays games until the user declines another one or input ends.
// End of input is not an error.
func (s *Session) Run(ctx context.Context) error {
	for {
		first, err := s.askRange(ctx, "Machine first? [0,1] >", 0, 1)
		if err != nil {
			return eofOK(err)
		}
		if _, err := s.PlayGame(ctx, first == 1); err != nil {
			return eofOK(err)
		}
		fmt.Fprintf(s.out, "Player: %d; Self: %d; Draws: %d\n", s.tally.Player, s.tally.Machine, s.tally.Draws)
		again, err := s.askRange(ctx, "Again? [0,1] >", 0, 1)
		if err != nil {
			return eofOK(err)
		}
		if again == 0 {
			return nil
		}
	}
}

func eofOK(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// PlayGame plays one game and returns the winner (Empty for a draw).
func (s *Session) PlayGame(ctx context.Context, machineFirst bool) (domain.Cell, error) {
	machine := domain.O
	if machineFirst {
		machine = domain.X
	}
	engine := search.New(machine, search.WithTieBreak(s.tie))
	g := domain.New()
	s.renderBoard(s.out, g.Board, machine)

	for !g.Over {
		if err := ctx.Err(); err != nil {
			return domain.Empty, err
		}
		if g.Turn == machine {
			if err := s.machineTurn(engine, &g); err != nil {
				return domain.Empty, err
			}
		} else {
			idx, err := s.askMove(ctx, g.Board)
			if err != nil {
				return domain.Empty, err
			}
			if err := g.PlayAt(idx); err != nil {
				return domain.Empty, err
			}
		}
		s.renderBoard(s.out, g.Board, machine)
	}

	switch g.Winner {
	case machine:
		s.tally.Machine++
		fmt.Fprintln(s.out, s.paint("I win. Ha!", winColor))
	case domain.Empty:
		s.tally.Draws++
		fmt.Fprintln(s.out, s.out.String("Draw!").Underline())
	default:
		s.tally.Player++
		fmt.Fprintln(s.out, s.paint("You win. Sad.", alertColor))
	}
	return g.Winner, nil
}

func (s *Session) machineTurn(engine *search.Evaluator, g *domain.Game) error {
	fmt.Fprintln(s.out, s.out.String("I'm thinking...").Blink())
	begin := time.Now()
	r, err := engine.BestMove(g.Board, true)
	if err != nil {
		return err
	}
	elapsed := time.Since(begin)
	if err := g.PlayAt(r.Move); err != nil {
		return err
	}
	log.Debug().Int("move", r.Move).Int("score", r.Score).Int("nodes", r.Nodes).Dur("elapsed", elapsed).Msg("engine move")
	fmt.Fprintf(s.out, "Solution obtained in %.3f milliseconds\n", float64(elapsed.Microseconds())/1000)
	return nil
}

// askMove prompts until the user names a vacant cell.
func (s *Session) askMove(ctx context.Context, b domain.Board) (int, error) {
	for {
		idx, err := s.askRange(ctx, "Your choice index ->", 0, len(b)-1)
		if err != nil {
			return 0, err
		}
		if b[idx] != domain.Empty {
			fmt.Fprintln(s.out, s.paint("That cell is occupied!", alertColor))
			continue
		}
		return idx, nil
	}
}

// askRange prompts until the user enters an integer in [low, high].
func (s *Session) askRange(ctx context.Context, prompt string, low, high int) (int, error) {
	for {
		fmt.Fprint(s.out, s.paint(prompt, promptColor), " ")
		text, err := s.readLine(ctx)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(text)
		if err != nil {
			fmt.Fprintln(s.out, s.paint("Please enter a number.", alertColor))
			continue
		}
		if n < low || n > high {
			fmt.Fprintln(s.out, s.paint("Out of range!", alertColor))
			continue
		}
		return n, nil
	}
}

type line struct {
	text string
	err  error
}

// scan feeds input lines to s.lines and ends with the read error or io.EOF.
func (s *Session) scan() {
	for s.in.Scan() {
		s.lines <- line{text: strings.TrimSpace(s.in.Text())}
	}
	err := s.in.Err()
	if err == nil {
		err = io.EOF
	}
	s.lines <- line{err: err}
	close(s.lines)
}

// readLine waits for the next input line or for ctx to end. The reader
// goroutine starts on first use and outlives a cancelled ctx.
func (s *Session) readLine(ctx context.Context) (string, error) {
	s.start.Do(func() { go s.scan() })
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l, ok := <-s.lines:
		if !ok {
			return "", io.EOF
		}
		return l.text, l.err
	}
}
