package services

import (
	"context"
	"sync"
	"time"

	"readiness/internal/models"

	"github.com/sirupsen/logrus"
)

// HistoryCollector re-evaluates the host on an interval and keeps a bounded
// list of snapshots
type HistoryCollector struct {
	mu            sync.RWMutex
	cache         *EvaluationCache
	hub           *WebSocketHub
	snapshots     []models.EvaluationSnapshot
	maxDataPoints int
	running       bool
	cancel        context.CancelFunc
	log           logrus.FieldLogger
}

// NewHistoryCollector returns a collector that records at most maxDataPoints
// snapshots and broadcasts each one on hub, if hub is not nil
func NewHistoryCollector(cache *EvaluationCache, hub *WebSocketHub, maxDataPoints int, log logrus.FieldLogger) *HistoryCollector {
	if maxDataPoints <= 0 {
		maxDataPoints = 1
	}
	return &HistoryCollector{
		cache:         cache,
		hub:           hub,
		snapshots:     []models.EvaluationSnapshot{},
		maxDataPoints: maxDataPoints,
		log:           log.WithField("component", "history"),
	}
}

// Start takes a snapshot immediately and then every interval until ctx is
// done or Stop is called
func (hc *HistoryCollector) Start(ctx context.Context, interval time.Duration) {
	hc.mu.Lock()
	if hc.running {
		hc.mu.Unlock()
		return
	}
	ctx, hc.cancel = context.WithCancel(ctx)
	hc.running = true
	hc.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		hc.CollectSnapshot(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				hc.CollectSnapshot(ctx)
			}
		}
	}()

	hc.log.Infof("History collector started (interval: %v)", interval)
}

// Stop stops the collector
func (hc *HistoryCollector) Stop() {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	if !hc.running {
		return
	}
	hc.cancel()
	hc.running = false
	hc.log.Info("History collector stopped")
}

// CollectSnapshot evaluates the host and records the result
func (hc *HistoryCollector) CollectSnapshot(ctx context.Context) models.EvaluationSnapshot {
	// Evaluation runs OUTSIDE the lock
	result, at := hc.cache.Refresh(ctx)
	snapshot := models.EvaluationSnapshot{
		Timestamp:  at,
		ReturnCode: result.ReturnCode,
		Failing:    result.Failing,
		Document:   NewDocument(result),
	}

	hc.mu.Lock()
	hc.snapshots = append(hc.snapshots, snapshot)
	if len(hc.snapshots) > hc.maxDataPoints {
		hc.snapshots = hc.snapshots[len(hc.snapshots)-hc.maxDataPoints:]
	}
	hc.mu.Unlock()

	if hc.hub != nil {
		hc.hub.BroadcastSnapshot(snapshot)
	}
	return snapshot
}

// GetHistory returns the snapshots taken within duration of the latest one
func (hc *HistoryCollector) GetHistory(duration time.Duration) models.HistoryWindow {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	window := models.HistoryWindow{Snapshots: []models.EvaluationSnapshot{}}
	if len(hc.snapshots) == 0 {
		return window
	}

	cutoff := hc.snapshots[len(hc.snapshots)-1].Timestamp.Add(-duration)
	for _, s := range hc.snapshots {
		if s.Timestamp.Before(cutoff) {
			continue
		}
		if n := len(window.Snapshots); n > 0 && window.Snapshots[n-1].ReturnCode != s.ReturnCode {
			window.Changes++
		}
		window.Snapshots = append(window.Snapshots, s)
	}
	return window
}
