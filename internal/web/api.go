package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jaminalder/minimax-tic-tac-toe/internal/app"
	"github.com/jaminalder/minimax-tic-tac-toe/internal/domain"
	"github.com/jaminalder/minimax-tic-tac-toe/internal/search"
	"github.com/rs/zerolog/log"
)

// SearchDTO is the JSON form of an engine search.
type SearchDTO struct {
	Score     int     `json:"score"`
	Move      int     `json:"move"`
	Nodes     int     `json:"nodes"`
	ElapsedMs float64 `json:"elapsed_ms"`
}

// StateDTO is the JSON form of a game.
type StateDTO struct {
	ID         string     `json:"id"`
	Board      string     `json:"board"`
	Machine    string     `json:"machine"`
	Turn       string     `json:"turn"`
	Winner     string     `json:"winner"`
	Over       bool       `json:"over"`
	Moves      int        `json:"moves"`
	Status     string     `json:"status"`
	LastSearch *SearchDTO `json:"last_search,omitempty"`
}

func searchDTO(rep app.SearchReport) SearchDTO {
	return SearchDTO{
		Score:     rep.Score,
		Move:      rep.Move,
		Nodes:     rep.Nodes,
		ElapsedMs: float64(rep.Elapsed.Microseconds()) / 1000,
	}
}

func newStateDTO(gs app.GameState) StateDTO {
	dto := StateDTO{
		ID:      gs.ID,
		Board:   gs.Game.Board.String(),
		Machine: gs.Machine.String(),
		Turn:    gs.Game.Turn.String(),
		Winner:  gs.Game.Winner.String(),
		Over:    gs.Game.Over,
		Moves:   gs.Game.Moves,
		Status:  statusText(gs),
	}
	if gs.LastSearch != nil {
		s := searchDTO(*gs.LastSearch)
		dto.LastSearch = &s
	}
	return dto
}

type evaluateRequest struct {
	Board       string `json:"board"`
	Machine     string `json:"machine"`
	MachineTurn *bool  `json:"machine_turn"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

func writeJSONError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func (h *handlers) apiState(w http.ResponseWriter, r *http.Request) {
	gs, ok := h.svc.Get(chi.URLParam(r, "id"))
	if !ok {
		writeJSONError(w, http.StatusNotFound, app.ErrNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, newStateDTO(*gs))
}

func (h *handlers) apiEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "malformed json")
		return
	}
	b, err := domain.ParseBoard(req.Board)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	var machine domain.Cell
	switch req.Machine {
	case "x", "X":
		machine = domain.X
	case "o", "O":
		machine = domain.O
	default:
		writeJSONError(w, http.StatusBadRequest, app.ErrBadSymbol.Error())
		return
	}
	machineTurn := true
	if req.MachineTurn != nil {
		machineTurn = *req.MachineTurn
	}

	rep, err := h.svc.Analyze(b, machine, machineTurn)
	switch {
	case errors.Is(err, search.ErrNoMoves):
		writeJSONError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	log.Debug().Str("board", b.String()).Int("move", rep.Move).Int("score", rep.Score).Msg("evaluate")
	writeJSON(w, http.StatusOK, searchDTO(rep))
}
