package controllers

import (
	"net/http"
	"strconv"

	"readiness/internal/services"

	"github.com/gin-gonic/gin"
)

// ReturnCodeHeader carries the evaluation return code on every result response
const ReturnCodeHeader = "X-Return-Code"

// CompatibilityController serves the cached evaluation
type CompatibilityController struct {
	cache *services.EvaluationCache
}

// NewCompatibilityController creates a controller reading from cache
func NewCompatibilityController(cache *services.EvaluationCache) *CompatibilityController {
	return &CompatibilityController{cache: cache}
}

// GetCompatibility returns the fleet-management document, byte for byte the
// record the CLI prints
func (cc *CompatibilityController) GetCompatibility(c *gin.Context) {
	result, _ := cc.cache.Get(c.Request.Context())
	data, err := services.MarshalDocument(services.NewDocument(result))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header(ReturnCodeHeader, strconv.Itoa(result.ReturnCode))
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// GetDetails returns the per-facet results behind the document
func (cc *CompatibilityController) GetDetails(c *gin.Context) {
	result, evaluatedAt := cc.cache.Get(c.Request.Context())
	c.Header(ReturnCodeHeader, strconv.Itoa(result.ReturnCode))
	c.PureJSON(http.StatusOK, gin.H{
		"evaluated_at": evaluatedAt,
		"overall":      result.Overall,
		"facets":       result.Facets,
		"failing":      result.Failing,
		"document":     services.NewDocument(result),
	})
}

// Healthz reports that the server is up. It never triggers an evaluation.
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
