// Package notification pushes booking events to connected users over
// websockets.
package notification

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 10 * time.Second

// Message is the frame written to the client.
type Message struct {
	Event  string    `json:"event"`
	Data   any       `json:"data,omitempty"`
	SentAt time.Time `json:"sent_at"`
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(fn func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return fn()
}

// Hub keeps one live connection per user; a new connection replaces the old.
type Hub struct {
	connections map[int64]*client
	mutex       sync.RWMutex
	log         *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		connections: make(map[int64]*client),
		log:         log,
	}
}

func (h *Hub) Register(userID int64, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if old, exists := h.connections[userID]; exists {
		_ = old.conn.Close()
	}
	h.connections[userID] = &client{conn: conn}
}

// Unregister drops conn if it is still the user's current connection.
func (h *Hub) Unregister(userID int64, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if c, exists := h.connections[userID]; exists && c.conn == conn {
		_ = c.conn.Close()
		delete(h.connections, userID)
	}
}

// Notify delivers an event to the user if they are connected. An offline
// user is not an error.
func (h *Hub) Notify(_ context.Context, userID int64, event string, payload any) error {
	h.mutex.RLock()
	c, exists := h.connections[userID]
	h.mutex.RUnlock()
	if !exists {
		return nil
	}

	msg := Message{Event: event, Data: payload, SentAt: time.Now().UTC()}
	if err := c.write(func() error { return c.conn.WriteJSON(msg) }); err != nil {
		h.Unregister(userID, c.conn)
		return err
	}
	return nil
}

func (h *Hub) ping(userID int64) error {
	h.mutex.RLock()
	c, exists := h.connections[userID]
	h.mutex.RUnlock()
	if !exists {
		return websocket.ErrCloseSent
	}
	return c.write(func() error { return c.conn.WriteMessage(websocket.PingMessage, nil) })
}

func (h *Hub) IsOnline(userID int64) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	_, exists := h.connections[userID]
	return exists
}

func (h *Hub) OnlineCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.connections)
}

func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for userID, c := range h.connections {
		_ = c.conn.Close()
		delete(h.connections, userID)
	}
}
