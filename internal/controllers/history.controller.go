package controllers

import (
	"net/http"
	"time"

	"readiness/internal/services"

	"github.com/gin-gonic/gin"
)

// HistoryController serves snapshots recorded by the background collector
type HistoryController struct {
	history *services.HistoryCollector
}

// NewHistoryController creates a controller reading from history
func NewHistoryController(history *services.HistoryCollector) *HistoryController {
	return &HistoryController{history: history}
}

// GetHistory returns the snapshots in a window
// Query params: duration=10m|1h|24h (default: 1h)
func (hc *HistoryController) GetHistory(c *gin.Context) {
	durationStr := c.DefaultQuery("duration", "1h")

	duration, err := time.ParseDuration(durationStr)
	if err != nil || duration <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid duration format"})
		return
	}

	window := hc.history.GetHistory(duration)
	c.JSON(http.StatusOK, gin.H{
		"duration": durationStr,
		"data":     window,
	})
}
