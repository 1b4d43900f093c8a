package services

import (
	"context"
	"sync"
	"time"

	"readiness/internal/models"
)

// EvaluationCache holds the last evaluation with a TTL so that repeated
// requests do not re-query WMI and firmware each time.
type EvaluationCache struct {
	mu         sync.RWMutex
	checker    *Checker
	result     *models.EvaluationResult
	resultTime time.Time
	ttl        time.Duration
	now        func() time.Time
}

// NewEvaluationCache returns a cache in front of checker
func NewEvaluationCache(checker *Checker, ttl time.Duration) *EvaluationCache {
	return &EvaluationCache{
		checker: checker,
		ttl:     ttl,
		now:     time.Now,
	}
}

// isCacheValid checks if cache is still valid
func (ec *EvaluationCache) isCacheValid() bool {
	return ec.result != nil && ec.now().Sub(ec.resultTime) < ec.ttl
}

// Get returns the cached evaluation if valid, otherwise evaluates again
func (ec *EvaluationCache) Get(ctx context.Context) (*models.EvaluationResult, time.Time) {
	ec.mu.RLock()
	if ec.isCacheValid() {
		defer ec.mu.RUnlock()
		return ec.result, ec.resultTime
	}
	ec.mu.RUnlock()

	return ec.Refresh(ctx)
}

// Refresh evaluates the host and replaces the cached result
func (ec *EvaluationCache) Refresh(ctx context.Context) (*models.EvaluationResult, time.Time) {
	// Evaluate outside the lock, collection can take seconds on WMI
	result, _ := ec.checker.Run(ctx)
	now := ec.now()

	ec.mu.Lock()
	ec.result = result
	ec.resultTime = now
	ec.mu.Unlock()

	return result, now
}

// Clear drops the cached result
func (ec *EvaluationCache) Clear() {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	ec.result = nil
}
