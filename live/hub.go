package live

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Event types pushed to tournament rooms.
const (
	EventMatchUpdated     = "MATCH_UPDATED"
	EventOrderUpdated     = "ORDER_UPDATED"
	EventScheduleUpdated  = "SCHEDULE_UPDATED"
	EventStandingsUpdated = "STANDINGS_UPDATED"
)

// Event is the wire format for room broadcasts.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	Room    string      `json:"room_id,omitempty"`
}

// TournamentRoom names the room all watchers of a tournament join.
func TournamentRoom(tournamentID int) string {
	return fmt.Sprintf("tournament_%d", tournamentID)
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

type Client struct {
	ID   string
	Hub  *Hub
	Conn *websocket.Conn
	Send chan []byte
	Room string

	mu     sync.Mutex
	closed bool
}

type Hub struct {
	Register   chan *Client
	Unregister chan *Client
	broadcast  chan Event

	rooms map[string]map[*Client]bool
	mu    sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		broadcast:  make(chan Event),
		rooms:      make(map[string]map[*Client]bool),
	}
}

// Run owns the room registry. Start it once, in its own goroutine, before
// accepting connections or publishing events.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.rooms[client.Room]; !ok {
				h.rooms[client.Room] = make(map[*Client]bool)
			}
			h.rooms[client.Room][client] = true
			slog.Debug("live client registered", "room", client.Room, "client_id", client.ID, "room_size", len(h.rooms[client.Room]))
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if roomClients, ok := h.rooms[client.Room]; ok {
				if _, inRoom := roomClients[client]; inRoom {
					client.closeSend()
					delete(roomClients, client)
					if len(roomClients) == 0 {
						delete(h.rooms, client.Room)
					}
					slog.Debug("live client unregistered", "room", client.Room, "client_id", client.ID)
				}
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			h.deliver(event)
		}
	}
}

// Publish queues an event for every client in its room. Safe to call from
// any goroutine once Run is started.
func (h *Hub) Publish(event Event) {
	h.broadcast <- event
}

func (h *Hub) deliver(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	roomClients, ok := h.rooms[event.Room]
	if !ok {
		return
	}

	messageBytes, err := json.Marshal(event)
	if err != nil {
		slog.Error("live event marshal failed", "room", event.Room, "type", event.Type, "error", err)
		return
	}

	for client := range roomClients {
		client.mu.Lock()
		if client.closed {
			client.mu.Unlock()
			continue
		}
		select {
		case client.Send <- messageBytes:
		default:
			// Slow consumer, drop this event for it rather than block the hub.
			slog.Debug("live client send buffer full", "room", event.Room, "client_id", client.ID)
		}
		client.mu.Unlock()
	}
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		close(c.Send)
		c.closed = true
	}
}

// ReadPump drains inbound frames to keep the connection's pong handler
// alive. Client messages carry no meaning and are discarded.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Debug("live client read error", "room", c.Room, "client_id", c.ID, "error", err)
			}
			return
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
