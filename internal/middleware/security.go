package middleware

import (
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"readiness/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// ClaimsKey is the gin context key holding validated token claims
const ClaimsKey = "claims"

// RateLimiter implements token bucket rate limiting per IP
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
	mu       sync.Mutex
}

// NewRateLimiter creates a limiter allowing limit requests per second per IP
func NewRateLimiter(limit rate.Limit, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    burst,
	}
}

// GetLimiter gets or creates a limiter for an IP address
func (rl *RateLimiter) GetLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if limiter, exists := rl.limiters[ip]; exists {
		return limiter
	}
	limiter := rate.NewLimiter(rl.limit, rl.burst)
	rl.limiters[ip] = limiter
	return limiter
}

// RateLimitMiddleware enforces rate limiting per IP
func RateLimitMiddleware(limiter *RateLimiter, sl *SecurityLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !limiter.GetLimiter(ip).Allow() {
			sl.log.WithField("ip", ip).Warn("Rate limit exceeded")
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": 60,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// SecurityHeadersMiddleware adds security headers to all responses
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("Cache-Control", "no-store")
		c.Header("Content-Security-Policy", "default-src 'none'")
		c.Next()
	}
}

// CORSMiddleware allows the configured dashboard origins to read results.
// An empty list disables cross-origin access.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := strings.TrimRight(c.GetHeader("Origin"), "/")

		if origin != "" && originAllowed(origin, allowedOrigins) {
			c.Header("Vary", "Origin")
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization")
			c.Header("Access-Control-Expose-Headers", "X-Return-Code")
			c.Header("Access-Control-Max-Age", "86400")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func originAllowed(origin string, allowed []string) bool {
	for _, o := range allowed {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" {
			continue
		}
		if o == "*" || o == origin {
			return true
		}
		// Bare host entries match any scheme
		if !strings.Contains(o, "://") {
			if parsed, err := url.Parse(origin); err == nil && parsed.Host == o {
				return true
			}
		}
	}
	return false
}

// IPAllowList restricts access to a fixed set of client addresses
type IPAllowList struct {
	ips map[string]bool
}

// NewIPAllowList creates an allow-list. Loopback is always allowed and an
// empty list allows everyone.
func NewIPAllowList(ips []string) *IPAllowList {
	wl := &IPAllowList{ips: make(map[string]bool, len(ips))}
	for _, ip := range ips {
		if parsed := net.ParseIP(strings.TrimSpace(ip)); parsed != nil {
			wl.ips[parsed.String()] = true
		}
	}
	return wl
}

// IsAllowed checks if an IP may reach the server
func (wl *IPAllowList) IsAllowed(ip string) bool {
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	parsed := net.ParseIP(ip)
	if parsed != nil && parsed.IsLoopback() {
		return true
	}
	if len(wl.ips) == 0 {
		return true
	}
	return parsed != nil && wl.ips[parsed.String()]
}

// IPAllowListMiddleware rejects clients outside the allow-list
func IPAllowListMiddleware(list *IPAllowList, sl *SecurityLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !list.IsAllowed(ip) {
			sl.log.WithField("ip", ip).Warn("Access denied for address outside allow-list")
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// BearerAuthMiddleware requires a valid token in the Authorization header
func BearerAuthMiddleware(auth *services.AuthService, sl *SecurityLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			sl.LogFailedAuth(c.ClientIP(), "missing bearer token")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			c.Abort()
			return
		}

		claims, err := auth.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			sl.LogFailedAuth(c.ClientIP(), err.Error())
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// SecurityLogger records authentication and connection events
type SecurityLogger struct {
	log logrus.FieldLogger
}

// NewSecurityLogger creates a security logger on top of log
func NewSecurityLogger(log logrus.FieldLogger) *SecurityLogger {
	return &SecurityLogger{log: log.WithField("component", "security")}
}

// LogFailedAuth logs failed authentication attempts
func (sl *SecurityLogger) LogFailedAuth(ip string, reason string) {
	sl.log.WithFields(logrus.Fields{"ip": ip, "reason": reason}).Warn("Failed authentication")
}

// LogWebSocketConnected logs successful WebSocket connections
func (sl *SecurityLogger) LogWebSocketConnected(ip string, serverName string) {
	sl.log.WithFields(logrus.Fields{"ip": ip, "server": serverName}).Info("WebSocket connected")
}

// LogWebSocketDisconnected logs WebSocket disconnections
func (sl *SecurityLogger) LogWebSocketDisconnected(ip string, clientID string) {
	sl.log.WithFields(logrus.Fields{"ip": ip, "client": clientID}).Info("WebSocket disconnected")
}

// ValidServerName reports whether name is safe to embed in a token:
// 1-255 characters of letters, digits, '-', '_' or '.'
func ValidServerName(name string) bool {
	if len(name) < 1 || len(name) > 255 {
		return false
	}
	for _, c := range name {
		if !((c >= 'a' && c <= 'z') ||
			(c >= 'A' && c <= 'Z') ||
			(c >= '0' && c <= '9') ||
			c == '-' || c == '_' || c == '.') {
			return false
		}
	}
	return true
}
