// Package hub pushes catalog events to the websocket connections of each user.
package hub

import (
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	EventCatalogChanged = "CATALOG_CHANGED"
)

const (
	sendBuffer = 8
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

type Event struct {
	Type string `json:"type"`
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID string
}

type Hub struct {
	mu    sync.Mutex
	users map[string]map[*Client]bool

	log *zap.Logger
}

func New(log *zap.Logger) *Hub {
	return &Hub{
		users: make(map[string]map[*Client]bool),
		log:   log,
	}
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.users[client.userID]; !ok {
		h.users[client.userID] = make(map[*Client]bool)
	}
	h.users[client.userID][client] = true

	h.log.Debug("client registered", zap.String("user_id", client.userID))
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.dropLocked(client)
	h.log.Debug("client unregistered", zap.String("user_id", client.userID))
}

func (h *Hub) dropLocked(client *Client) {
	clients, ok := h.users[client.userID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.users, client.userID)
	}
}

// Broadcast sends the event to every connection of the user. Clients that
// cannot keep up are dropped.
func (h *Hub) Broadcast(userID string, event Event) {
	message, err := json.Marshal(event)
	if err != nil {
		h.log.Error("failed to encode event", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.users[userID] {
		select {
		case client.send <- message:
		default:
			h.dropLocked(client)
		}
	}
}

func (h *Hub) CatalogChanged(userID string) {
	h.Broadcast(userID, Event{Type: EventCatalogChanged})
}

// Connections reports how many sockets the user holds.
func (h *Hub) Connections(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.users[userID])
}

// Serve attaches an upgraded connection to the user and blocks until it closes.
func (h *Hub) Serve(conn *websocket.Conn, userID string) {
	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		userID: userID,
	}
	h.register(client)

	go client.writeLoop()
	client.readLoop()
}

// readLoop only watches for close and pong frames; clients never send data.
func (c *Client) readLoop() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
