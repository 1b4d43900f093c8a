package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"readiness/internal/middleware"
	"readiness/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// WebSocketController streams evaluations to authenticated clients
type WebSocketController struct {
	auth     *services.AuthService
	hub      *services.WebSocketHub
	cache    *services.EvaluationCache
	security *middleware.SecurityLogger
	upgrader websocket.Upgrader
	log      logrus.FieldLogger
}

// NewWebSocketController creates the controller. allowedOrigins restricts
// browser clients; non-browser clients send no Origin and are accepted.
func NewWebSocketController(auth *services.AuthService, hub *services.WebSocketHub, cache *services.EvaluationCache,
	security *middleware.SecurityLogger, allowedOrigins []string, log logrus.FieldLogger) *WebSocketController {
	wc := &WebSocketController{
		auth:     auth,
		hub:      hub,
		cache:    cache,
		security: security,
		log:      log.WithField("component", "websocket"),
	}
	wc.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := strings.TrimRight(r.Header.Get("Origin"), "/")
			if origin == "" {
				return true
			}
			for _, o := range allowedOrigins {
				o = strings.TrimRight(strings.TrimSpace(o), "/")
				if o == "*" || o == origin {
					return true
				}
			}
			return false
		},
	}
	return wc
}

// HandleWebSocket authenticates with the token query parameter and upgrades
func (wc *WebSocketController) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		wc.security.LogFailedAuth(c.ClientIP(), "missing token")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	claims, err := wc.auth.ValidateToken(token)
	if err != nil {
		wc.security.LogFailedAuth(c.ClientIP(), "invalid token: "+err.Error())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	ws, err := wc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		wc.log.Warnf("Upgrade error: %v", err)
		return
	}
	wc.security.LogWebSocketConnected(c.ClientIP(), claims.ServerName)

	client := &services.ClientConnection{
		ID:    fmt.Sprintf("%s-%s-%d", c.ClientIP(), claims.ServerName, time.Now().UnixNano()),
		Conn:  ws,
		Send:  make(chan services.WebSocketMessage, 16),
		Close: make(chan struct{}),
	}

	// New clients get the current evaluation without waiting for the next tick
	result, at := wc.cache.Get(c.Request.Context())
	client.Send <- services.WebSocketMessage{
		Type:      "evaluation",
		Timestamp: at,
		Data:      services.NewDocument(result),
	}

	wc.hub.Register(client)

	go wc.readPump(client, c.ClientIP())
	go wc.writePump(client)
}

// readPump handles control messages from the client until it goes away
func (wc *WebSocketController) readPump(client *services.ClientConnection, ip string) {
	defer func() {
		client.Shutdown()
		wc.hub.Unregister(client.ID)
		client.Conn.Close()
		wc.security.LogWebSocketDisconnected(ip, client.ID)
	}()

	client.Conn.SetReadLimit(4096)
	client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		return client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg services.WebSocketMessage
		if err := client.Conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wc.log.Warnf("Read error from %s: %v", client.ID, err)
			}
			return
		}

		switch msg.Type {
		case "ping":
			select {
			case client.Send <- services.WebSocketMessage{Type: "pong", Timestamp: time.Now()}:
			default:
			}
		case "unsubscribe":
			return
		default:
			wc.log.Debugf("Ignoring message type %q from %s", msg.Type, client.ID)
		}
	}
}

// writePump forwards hub messages to the connection and keeps it alive
func (wc *WebSocketController) writePump(client *services.ClientConnection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()

	for {
		select {
		case msg := <-client.Send:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteJSON(msg); err != nil {
				wc.log.Debugf("Write error to %s: %v", client.ID, err)
				return
			}

		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-client.Close:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
