package services

import (
	"context"
	"time"

	"readiness/internal/models"

	"github.com/sirupsen/logrus"
)

// Checker runs one full evaluation pass: collect, evaluate, aggregate
type Checker struct {
	platform Platform
	log      logrus.FieldLogger
}

// NewChecker returns a Checker reading facts from p
func NewChecker(p Platform, log logrus.FieldLogger) *Checker {
	return &Checker{platform: p, log: log.WithField("component", "checker")}
}

// Run collects every fact and evaluates it. It never fails: facts that
// cannot be collected are evaluated as absent.
func (c *Checker) Run(ctx context.Context) (*models.EvaluationResult, models.HostFacts) {
	start := time.Now()
	facts := Collect(ctx, c.platform, c.log)
	result := Evaluate(facts)

	c.log.WithFields(logrus.Fields{
		"overall":  result.Overall,
		"failing":  len(result.Failing),
		"duration": time.Since(start).Round(time.Millisecond),
	}).Info("Evaluation complete")
	return result, facts
}
