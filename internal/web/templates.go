package web

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"

	"github.com/google/uuid"
	"github.com/jaminalder/minimax-tic-tac-toe/internal/app"
	"github.com/jaminalder/minimax-tic-tac-toe/internal/domain"
)

type templates struct {
	game  *template.Template
	board *template.Template
	index *template.Template
}

func funcs() template.FuncMap {
	return template.FuncMap{
		"iter": func(n int) []int {
			a := make([]int, n)
			for i := range a {
				a[i] = i
			}
			return a
		},
		"cellSymbol": func(c domain.Cell) string {
			switch c {
			case domain.X:
				return "X"
			case domain.O:
				return "O"
			default:
				return ""
			}
		},
		"add": func(a, b int) int { return a + b },
		"mul": func(a, b int) int { return a * b },
	}
}

func loadTemplates() *templates {
	base := template.Must(template.New("base").Funcs(funcs()).Parse(`<!doctype html><html><head>
<meta charset="utf-8"/>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org/dist/ext/sse.js"></script>
</head><body>{{template "content" .}}</body></html>`))
	index := template.Must(template.Must(base.Clone()).New("content").Parse(`<h1>TicTacToe vs Minimax</h1>
<form action="/game" method="post">
  <label><input type="checkbox" name="machine_first" value="1"> Machine moves first</label>
  <button>Create</button>
</form>`))
	game := template.Must(template.Must(base.Clone()).New("content").Parse(`
<div hx-ext="sse" hx-sse="connect:/game/{{.ID}}/events">
  <div id="board-stream" hx-sse="swap:board">{{.BoardHTML}}</div>
</div>`))
	board := template.Must(template.New("board_only").Funcs(funcs()).Parse(boardTemplate))
	return &templates{game: game, board: board, index: index}
}

func renderTemplate(t *template.Template, name string, data any) []byte {
	var buf bytes.Buffer
	if name == "" {
		_ = t.Execute(&buf, data)
	} else {
		_ = t.ExecuteTemplate(&buf, name, data)
	}
	return buf.Bytes()
}

const boardTemplate = `
<div id="board">
  {{if .Error}}
  <div class="alert">{{.Error}}</div>
  {{end}}
  <div class="status">{{.Status}}</div>
  {{range $r := iter 3}}
  <div class="row">
    {{range $c := iter 3}}
      <form hx-post="/game/{{$.ID}}/play" hx-target="#board" hx-swap="outerHTML" method="post">
        <input type="hidden" name="cell" value="{{add (mul $r 3) $c}}">
        <button type="submit">{{cellSymbol (index $.Board (add (mul $r 3) $c))}}</button>
      </form>
    {{end}}
  </div>
  {{end}}
  {{if .Search}}<div class="search">{{.Search}}</div>{{end}}
  {{if .Over}}
  <form hx-post="/game/{{.ID}}/restart" hx-target="#board" hx-swap="outerHTML" method="post"><button>Again</button></form>
  {{end}}
</div>
`

// boardData feeds boardTemplate.
type boardData struct {
	ID     string
	Board  domain.Board
	Status string
	Search string
	Over   bool
	Error  string
}

func newBoardData(gs app.GameState, errMsg string) boardData {
	d := boardData{ID: gs.ID, Board: gs.Game.Board, Over: gs.Game.Over, Error: errMsg, Status: statusText(gs)}
	if rep := gs.LastSearch; rep != nil {
		d.Search = fmt.Sprintf("Solution obtained in %.3f milliseconds (%d positions)",
			float64(rep.Elapsed.Microseconds())/1000, rep.Nodes)
	}
	return d
}

func statusText(gs app.GameState) string {
	g := gs.Game
	switch {
	case g.Over && g.Winner == gs.Machine:
		return "I win. Ha!"
	case g.Over && g.Winner != domain.Empty:
		return "You win. Sad."
	case g.Over:
		return "Draw!"
	case g.Turn == gs.Machine:
		return "I'm thinking..."
	default:
		return "Your turn"
	}
}

// Helper to set cookie
func ensurePlayerCookie(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie("player_id"); err == nil && c.Value != "" {
		return c.Value
	}
	v := uuid.NewString()
	http.SetCookie(w, &http.Cookie{Name: "player_id", Value: v, Path: "/"})
	return v
}
