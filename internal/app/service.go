package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jaminalder/minimax-tic-tac-toe/internal/domain"
	"github.com/jaminalder/minimax-tic-tac-toe/internal/search"
	"github.com/rs/zerolog/log"
)

// Errors exposed by the service layer.
var (
	ErrNotFound    = errors.New("game not found")
	ErrNotYourTurn = errors.New("not your turn")
	ErrNotAPlayer  = errors.New("not a player")
	ErrBadSymbol   = errors.New("machine must be x or o")
)

// SearchReport describes one engine search.
type SearchReport struct {
	Score   int
	Move    int
	Nodes   int
	Elapsed time.Duration
}

// GameState is the in-memory state tracked per game.
type GameState struct {
	ID         string
	Game       domain.Game
	Machine    domain.Cell
	Human      string
	Created    time.Time
	Updated    time.Time
	LastSearch *SearchReport
}

// HumanSide returns the symbol the human plays.
func (gs GameState) HumanSide() domain.Cell { return domain.Other(gs.Machine) }

type subscriber struct {
	mu     sync.Mutex
	ch     chan []byte
	closed bool
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// send delivers payload without blocking. It reports false when the
// buffer is full; sends to a closed subscriber are discarded.
func (s *subscriber) send(payload []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return true
	}
	select {
	case s.ch <- payload:
		return true
	default:
		return false
	}
}

// Service manages games against the engine and their subscribers.
type Service struct {
	mu     sync.Mutex
	games  map[string]*GameState
	subs   map[string]map[*subscriber]struct{}
	render func(GameState) []byte
	tie    search.TieBreaker
	// one evaluator per machine symbol; evaluators are stateless apart
	// from the tie-break policy, which is safe for concurrent use.
	engines map[domain.Cell]*search.Evaluator
}

// Option configures a Service.
type Option func(*Service)

// WithRenderer sets the function that encodes broadcast payloads.
func WithRenderer(renderer func(GameState) []byte) Option {
	return func(s *Service) {
		if renderer != nil {
			s.render = renderer
		}
	}
}

// WithTieBreak sets the engine's tie-break policy.
func WithTieBreak(t search.TieBreaker) Option {
	return func(s *Service) {
		if t != nil {
			s.tie = t
		}
	}
}

// NewService creates a service. Without options broadcasts carry no
// payload and ties are broken at random.
func NewService(opts ...Option) *Service {
	s := &Service{
		games:  make(map[string]*GameState),
		subs:   make(map[string]map[*subscriber]struct{}),
		render: func(GameState) []byte { return nil },
		tie:    search.Random(nil),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engines = map[domain.Cell]*search.Evaluator{
		domain.X: search.New(domain.X, search.WithTieBreak(s.tie)),
		domain.O: search.New(domain.O, search.WithTieBreak(s.tie)),
	}
	return s
}

// SetRenderer replaces the broadcast renderer function.
func (s *Service) SetRenderer(renderer func(GameState) []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if renderer == nil {
		s.render = func(GameState) []byte { return nil }
		return
	}
	s.render = renderer
}

// CreateGame registers a new game. The machine plays X and opens the game
// when machineFirst is set, otherwise it plays O.
func (s *Service) CreateGame(machineFirst bool) (*GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	machine := domain.O
	if machineFirst {
		machine = domain.X
	}
	gs := &GameState{ID: uuid.NewString(), Game: domain.New(), Machine: machine, Created: now, Updated: now}
	if err := s.machineMoveLocked(gs); err != nil {
		return nil, err
	}
	s.games[gs.ID] = gs
	log.Info().Str("gameID", gs.ID).Stringer("machine", machine).Msg("game created")
	cp := *gs
	return &cp, nil
}

// Get returns a copy of the game state if present.
func (s *Service) Get(id string) (*GameState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.games[id]
	if !ok {
		return nil, false
	}
	cp := *gs
	return &cp, true
}

// Join claims the human seat if it is free; later callers spectate and
// get Empty back.
func (s *Service) Join(id, playerID string) (domain.Cell, *GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.games[id]
	if !ok {
		return domain.Empty, nil, ErrNotFound
	}
	side := domain.Empty
	if gs.Human == "" || gs.Human == playerID {
		gs.Human = playerID
		side = gs.HumanSide()
	}
	gs.Updated = time.Now()
	cp := *gs
	return side, &cp, nil
}

// Play applies the human move at idx and lets the engine reply.
func (s *Service) Play(id, playerID string, idx int) (*GameState, error) {
	s.mu.Lock()
	gs, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	if gs.Human != playerID {
		s.mu.Unlock()
		return nil, ErrNotAPlayer
	}
	if !gs.Game.Over && gs.Game.Turn != gs.HumanSide() {
		s.mu.Unlock()
		return nil, ErrNotYourTurn
	}
	if err := gs.Game.PlayAt(idx); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if err := s.machineMoveLocked(gs); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	gs.Updated = time.Now()
	cp, subs, payload := s.snapshotLocked(gs)
	s.mu.Unlock()

	s.broadcast(id, subs, payload)
	return &cp, nil
}

// Restart clears the board and keeps the seats. The machine opens again
// when it holds X.
func (s *Service) Restart(id string) (*GameState, error) {
	s.mu.Lock()
	gs, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	gs.Game = domain.New()
	gs.LastSearch = nil
	if err := s.machineMoveLocked(gs); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	gs.Updated = time.Now()
	cp, subs, payload := s.snapshotLocked(gs)
	s.mu.Unlock()

	log.Info().Str("gameID", id).Msg("game restarted")
	s.broadcast(id, subs, payload)
	return &cp, nil
}

// Analyze evaluates an arbitrary position without touching any game.
func (s *Service) Analyze(b domain.Board, machine domain.Cell, machineTurn bool) (SearchReport, error) {
	e, ok := s.engines[machine]
	if !ok {
		return SearchReport{Move: search.NoMove}, ErrBadSymbol
	}
	return timedSearch(e, b, machineTurn)
}

func timedSearch(e *search.Evaluator, b domain.Board, machineTurn bool) (SearchReport, error) {
	begin := time.Now()
	r, err := e.BestMove(b, machineTurn)
	rep := SearchReport{Score: r.Score, Move: r.Move, Nodes: r.Nodes, Elapsed: time.Since(begin)}
	return rep, err
}

// machineMoveLocked plays the engine's move if it is the engine's turn.
func (s *Service) machineMoveLocked(gs *GameState) error {
	if gs.Game.Over || gs.Game.Turn != gs.Machine {
		return nil
	}
	rep, err := timedSearch(s.engines[gs.Machine], gs.Game.Board, true)
	if err != nil {
		return err
	}
	if err := gs.Game.PlayAt(rep.Move); err != nil {
		return err
	}
	gs.LastSearch = &rep
	log.Info().
		Str("gameID", gs.ID).
		Int("move", rep.Move).
		Int("score", rep.Score).
		Int("nodes", rep.Nodes).
		Dur("elapsed", rep.Elapsed).
		Msg("engine move")
	return nil
}

func (s *Service) snapshotLocked(gs *GameState) (GameState, map[*subscriber]struct{}, []byte) {
	cp := *gs
	return cp, s.copySubsLocked(gs.ID), s.render(cp)
}

// broadcast fans out payload; slow subscribers are closed and dropped.
func (s *Service) broadcast(id string, subs map[*subscriber]struct{}, payload []byte) {
	var toDrop []*subscriber
	for sub := range subs {
		if !sub.send(payload) {
			sub.close()
			toDrop = append(toDrop, sub)
		}
	}
	if len(toDrop) == 0 {
		return
	}
	log.Debug().Str("gameID", id).Int("dropped", len(toDrop)).Msg("dropping slow subscribers")
	s.mu.Lock()
	for _, sub := range toDrop {
		if set, ok := s.subs[id]; ok {
			delete(set, sub)
		}
	}
	s.mu.Unlock()
}

// Subscribe registers a subscriber for a game. Returns a channel and an
// unsubscribe func; the channel closes when ctx ends.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan []byte, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.subs[id]
	if set == nil {
		set = make(map[*subscriber]struct{})
		s.subs[id] = set
	}
	sub := &subscriber{ch: make(chan []byte, 1)}
	set[sub] = struct{}{}

	unsubOnce := &sync.Once{}
	unsub := func() {
		unsubOnce.Do(func() {
			s.mu.Lock()
			if set, ok := s.subs[id]; ok {
				delete(set, sub)
			}
			s.mu.Unlock()
			sub.close()
		})
	}
	go func() {
		<-ctx.Done()
		unsub()
	}()
	return sub.ch, unsub
}

func (s *Service) copySubsLocked(id string) map[*subscriber]struct{} {
	out := make(map[*subscriber]struct{})
	if set, ok := s.subs[id]; ok {
		for k := range set {
			out[k] = struct{}{}
		}
	}
	return out
}
