package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const wsWriteWait = 5 * time.Second

// stream pushes the game as JSON on connect and after every change.
func (h *handlers) stream(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.svc.Get(id); !ok {
		http.NotFound(w, r)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Str("gameID", id).Msg("websocket upgrade")
		return
	}
	defer conn.Close()

	ctx := r.Context()
	ch, unsub := h.svc.Subscribe(ctx, id)
	defer unsub()

	// reader: detect the client going away
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func() bool {
		gs, ok := h.svc.Get(id)
		if !ok {
			return false
		}
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(newStateDTO(*gs)); err != nil {
			log.Error().Err(err).Str("gameID", id).Msg("websocket write")
			return false
		}
		return true
	}

	log.Info().Str("gameID", id).Str("remote", conn.RemoteAddr().String()).Msg("websocket connected")
	if !send() {
		return
	}
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-closed:
			log.Info().Str("gameID", id).Msg("websocket closed")
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		case _, ok := <-ch:
			if !ok || !send() {
				return
			}
		}
	}
}
