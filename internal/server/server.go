// Package server is the HTTP API of the engagement service.
// server.go builds the gin engine, mounts feature routes under /api/v1 and
// runs the listener.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"bahth.org/engagement/internal/config"
	"bahth.org/engagement/internal/server/middleware"
)

// RouteRegistrar is a feature handler that mounts its own routes.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Pinger reports database health. *pgxpool.Pool implements it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server wraps the gin engine and its http.Server.
type Server struct {
	engine      *gin.Engine
	http        *http.Server
	rateLimiter *middleware.RateLimiter
	authLimiter *middleware.RateLimiter
}

// New builds the engine. verifier checks the gateway bearer token.
func New(cfg *config.Config, db Pinger, verifier middleware.TokenVerifier, handlers ...RouteRegistrar) *Server {
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	// Rejected gateway tokens per client IP.
	authLimiter := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)

	engine := gin.New()
	engine.Use(
		middleware.Recovery(),
		middleware.RequestLogger(),
	)

	engine.GET("/healthz", healthHandler(db))
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api/v1")
	api.Use(
		middleware.GatewayAuth(verifier, authLimiter),
		middleware.RateLimit(limiter),
	)
	for _, h := range handlers {
		h.RegisterRoutes(api)
	}

	return &Server{
		engine:      engine,
		rateLimiter: limiter,
		authLimiter: authLimiter,
		http: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       2 * time.Minute,
		},
	}
}

// Handler returns the root handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start listens until Shutdown. It returns nil after a clean shutdown.
func (s *Server) Start() error {
	log.WithField("addr", s.http.Addr).Info("HTTP server listening")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the rate limiters.
func (s *Server) Shutdown(ctx context.Context) error {
	defer s.authLimiter.Close()
	defer s.rateLimiter.Close()
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	log.Info("HTTP server stopped")
	return nil
}

func healthHandler(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			log.WithError(err).Warn("health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
