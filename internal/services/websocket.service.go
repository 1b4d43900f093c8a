package services

import (
	"sync"
	"time"

	"readiness/internal/models"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// WebSocketMessage represents a message sent over WebSocket
type WebSocketMessage struct {
	Type      string      `json:"type"` // "evaluation", "ping", "pong", "error"
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// ClientConnection represents a connected WebSocket client. Send is never
// closed; Close is closed once by Shutdown.
type ClientConnection struct {
	ID    string
	Conn  *websocket.Conn
	Send  chan WebSocketMessage
	Close chan struct{}

	closeOnce sync.Once
}

// Shutdown signals the client's pumps to stop. Safe to call more than once.
func (c *ClientConnection) Shutdown() {
	c.closeOnce.Do(func() { close(c.Close) })
}

// WebSocketHub fans evaluation snapshots out to connected clients
type WebSocketHub struct {
	clients    map[string]*ClientConnection
	broadcast  chan WebSocketMessage
	register   chan *ClientConnection
	unregister chan string
	done       chan struct{}
	stopOnce   sync.Once
	log        logrus.FieldLogger
}

// NewWebSocketHub creates a hub and starts its event loop
func NewWebSocketHub(log logrus.FieldLogger) *WebSocketHub {
	h := &WebSocketHub{
		clients:    make(map[string]*ClientConnection),
		broadcast:  make(chan WebSocketMessage, 256),
		register:   make(chan *ClientConnection),
		unregister: make(chan string),
		done:       make(chan struct{}),
		log:        log.WithField("component", "websocket"),
	}
	go h.run()
	return h
}

// run owns the clients map; all mutations go through its channels
func (h *WebSocketHub) run() {
	for {
		select {
		case <-h.done:
			for id, client := range h.clients {
				client.Shutdown()
				delete(h.clients, id)
			}
			return

		case client := <-h.register:
			if old, exists := h.clients[client.ID]; exists {
				old.Shutdown()
			}
			h.clients[client.ID] = client
			h.log.Infof("Client connected: %s (total: %d)", client.ID, len(h.clients))

		case clientID := <-h.unregister:
			delete(h.clients, clientID)
			h.log.Infof("Client disconnected: %s (total: %d)", clientID, len(h.clients))

		case msg := <-h.broadcast:
			for _, client := range h.clients {
				select {
				case client.Send <- msg:
				default:
					// Client's send channel is full, skip this message
				}
			}
		}
	}
}

// Register adds a new client to the hub
func (h *WebSocketHub) Register(client *ClientConnection) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister removes a client from the hub
func (h *WebSocketHub) Unregister(clientID string) {
	select {
	case h.unregister <- clientID:
	case <-h.done:
	}
}

// BroadcastSnapshot sends an evaluation snapshot to all clients
func (h *WebSocketHub) BroadcastSnapshot(snapshot models.EvaluationSnapshot) {
	msg := WebSocketMessage{
		Type:      "evaluation",
		Timestamp: snapshot.Timestamp,
		Data:      snapshot.Document,
	}
	select {
	case h.broadcast <- msg:
	default:
		h.log.Warn("Broadcast channel full, dropping evaluation")
	}
}

// Stop closes every client and ends the event loop
func (h *WebSocketHub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}
