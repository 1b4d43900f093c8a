package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"readiness/internal/config"
	"readiness/internal/controllers"
	"readiness/internal/middleware"
	"readiness/internal/routes"
	"readiness/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Server exposes evaluations over HTTP and WebSocket
type Server struct {
	cfg     config.ServerConfig
	cache   *services.EvaluationCache
	history *services.HistoryCollector
	hub     *services.WebSocketHub
	router  *gin.Engine
	log     logrus.FieldLogger
}

// New wires the cache, collector and routes around checker
func New(cfg config.ServerConfig, checker *services.Checker, auth *services.AuthService, log logrus.FieldLogger) (*Server, error) {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	// Forwarding headers are honored only from these peers; nil means none.
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	hub := services.NewWebSocketHub(log)
	cache := services.NewEvaluationCache(checker, cfg.CacheTTL)
	history := services.NewHistoryCollector(cache, hub, cfg.HistorySize, log)
	security := middleware.NewSecurityLogger(log)

	r.Use(gin.Recovery())
	r.Use(requestLogger(log))
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middleware.IPAllowListMiddleware(middleware.NewIPAllowList(cfg.AllowedIPs), security))
	r.Use(middleware.RateLimitMiddleware(middleware.NewRateLimiter(rate.Limit(10), 20), security))

	routes.RegisterCompatibilityRoutes(r,
		middleware.BearerAuthMiddleware(auth, security),
		controllers.NewCompatibilityController(cache),
		controllers.NewHistoryController(history),
	)
	routes.RegisterAuthRoutes(r,
		controllers.NewWebSocketController(auth, hub, cache, security, cfg.AllowedOrigins, log),
	)

	return &Server{
		cfg:     cfg,
		cache:   cache,
		history: history,
		hub:     hub,
		router:  r,
		log:     log.WithField("component", "server"),
	}, nil
}

// Handler returns the HTTP handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.history.Start(ctx, s.cfg.Interval)
	defer s.history.Stop()
	defer s.hub.Stop()

	serverErrors := make(chan error, 1)
	go func() {
		s.log.Infof("Listening on %s", s.cfg.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		s.log.Info("Shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("Server shutdown error: %v", err)
			return err
		}
		return nil
	}
}

func requestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"ip":       c.ClientIP(),
			"duration": time.Since(start).Round(time.Microsecond),
		}).Debug("Request")
	}
}
