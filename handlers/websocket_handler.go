package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Dosada05/padel-system/live"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict to trusted origins once the frontend domain is fixed.
		return true
	},
}

type WebSocketHandler struct {
	hub *live.Hub
}

func NewWebSocketHandler(hub *live.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// ServeWs upgrades GET /ws/tournaments/{tournamentID} and subscribes the
// client to that tournament's event room.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	tournamentIDStr := chi.URLParam(r, "tournamentID")
	tournamentID, err := strconv.Atoi(tournamentIDStr)
	if err != nil || tournamentID <= 0 {
		http.Error(w, "invalid tournament id", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		slog.Error("websocket upgrade failed", "tournament_id", tournamentID, "error", err)
		return
	}

	client := &live.Client{
		ID:   uuid.NewString(),
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: live.TournamentRoom(tournamentID),
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
