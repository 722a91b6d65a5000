package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/ayusman/signcam/internal/log"
	"github.com/gorilla/websocket"
)

const writeWait = 2 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// sendBuffer is the number of messages queued per client before it is
// considered too slow and disconnected.
const sendBuffer = 16

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// writePump delivers queued messages until the queue is closed or a write fails.
func (c *wsClient) writePump() {
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Debug("websocket write failed", "remote", c.conn.RemoteAddr().String(), "err", err)
			c.conn.Close()
			return
		}
	}
}

// PredictionsHandler pushes recognized signs to WebSocket clients.
type PredictionsHandler struct {
	clients map[*wsClient]struct{}
	mu      sync.Mutex
}

// NewPredictionsHandler creates a handler with no clients.
func NewPredictionsHandler() *PredictionsHandler {
	return &PredictionsHandler{clients: make(map[*wsClient]struct{})}
}

// ServeHTTP upgrades the connection and keeps it registered until the client
// goes away.
func (h *PredictionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	c := &wsClient{conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	defer h.remove(c)

	go c.writePump()

	// Reads only detect the close; clients send nothing.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// remove unregisters c and stops its writer. It is safe to call twice.
func (h *PredictionsHandler) remove(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.drop(c)
}

// drop must be called with h.mu held.
func (h *PredictionsHandler) drop(c *wsClient) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// Broadcast queues v as JSON for every client without waiting for the
// network. Clients whose queue is full are disconnected.
func (h *PredictionsHandler) Broadcast(v any) error {
	msg, err := json.Marshal(v)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			log.Debug("dropping slow websocket client", "remote", c.conn.RemoteAddr().String())
			h.drop(c)
			c.conn.Close()
		}
	}
	return nil
}

// Clients returns the number of connected clients.
func (h *PredictionsHandler) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
