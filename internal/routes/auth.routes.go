package routes

import (
	"readiness/internal/controllers"

	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registers the WebSocket stream. It authenticates with a
// token query parameter since browsers cannot set headers on upgrades.
// Tokens are minted with the token command only; there is no HTTP endpoint.
func RegisterAuthRoutes(r *gin.Engine, wc *controllers.WebSocketController) {
	r.GET("/ws", wc.HandleWebSocket)
}
