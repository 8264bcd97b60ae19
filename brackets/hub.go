package brackets

import (
	"encoding/json"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Event types pushed to tournament subscribers.
const (
	EventMatchCompleted   = "MATCH_COMPLETED"
	EventStandingsUpdated = "STANDINGS_UPDATED"
	EventBracketGenerated = "BRACKET_GENERATED"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// TournamentEvent is the wire envelope for live updates. Payload carries the
// structured outcome data (what changed, old/new version) that collaborators
// may log; delivery is best effort and nothing depends on it succeeding.
type TournamentEvent struct {
	Type         string      `json:"type"`
	TournamentID int         `json:"tournament_id"`
	Payload      interface{} `json:"payload,omitempty"`
}

type Client struct {
	Hub      *Hub
	Conn     *websocket.Conn
	Send     chan []byte
	Room     string
	mu       sync.Mutex
	isClosed bool
}

// Hub fans tournament events out to websocket subscribers grouped by
// tournament room, so participants watching a bracket do not have to hammer
// the read endpoints.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	mu    sync.RWMutex
	rooms map[string]map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.rooms[client.Room]; !ok {
				h.rooms[client.Room] = make(map[*Client]bool)
			}
			h.rooms[client.Room][client] = true
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.Room]; ok {
				if _, registered := clients[client]; registered {
					client.close()
					delete(clients, client)
					if len(clients) == 0 {
						delete(h.rooms, client.Room)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastEvent sends the event to every subscriber of its tournament room.
// Slow clients are skipped rather than blocking the caller.
func (h *Hub) BroadcastEvent(event TournamentEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.rooms[RoomFor(event.TournamentID)]
	if !ok {
		return
	}

	message, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal %s event for tournament %d: %v", event.Type, event.TournamentID, err)
		return
	}

	for client := range clients {
		client.mu.Lock()
		if client.isClosed {
			client.mu.Unlock()
			continue
		}
		select {
		case client.Send <- message:
		default:
			// Send buffer full, drop the event for this client.
		}
		client.mu.Unlock()
	}
}

// RoomFor maps a tournament id to its hub room name.
func RoomFor(tournamentID int) string {
	return strconv.Itoa(tournamentID)
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isClosed {
		close(c.Send)
		c.isClosed = true
	}
}

func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket client in room %s closed unexpectedly: %v", c.Room, err)
			}
			break
		}
		// Subscribers are read-only; incoming messages are ignored.
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
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
