// Package api serves the dashboard state and map overlay selection as JSON
// for browser map widgets.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ngmaloney/weather-terminal/internal/logger"
)

const (
	defaultShutdownTimeout = 5 * time.Second
	defaultRPS             = 10
	defaultBurst           = 20
)

type Server struct {
	server          *http.Server
	router          *gin.Engine
	handler         *Handler
	middleware      *Middleware
	addr            string
	shutdownTimeout time.Duration
	logger          logger.Logger
}

// NewServer wires the routes for dashboard and selector on addr
func NewServer(addr string, shutdownTimeout time.Duration, dashboard Dashboard, selector LayerSelector, log logger.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}

	s := &Server{
		router:          gin.New(),
		handler:         NewHandler(dashboard, selector, log),
		middleware:      NewMiddleware(defaultRPS, defaultBurst, log),
		addr:            addr,
		shutdownTimeout: shutdownTimeout,
		logger:          logger.Component(log, "api_server"),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(s.middleware.Recovery())
	s.router.Use(s.middleware.Logging())
	s.router.Use(s.middleware.CORS())

	s.router.GET("/health", s.handler.HealthCheck)

	api := s.router.Group("/api")
	api.Use(s.middleware.RateLimit())
	api.Use(s.middleware.NoCache())
	{
		api.GET("/dashboard", s.handler.GetDashboard)
		api.GET("/layers", s.handler.GetLayers)
		api.POST("/viewport", s.handler.PostViewport)
	}

	s.router.NoRoute(s.handler.NotFound)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start binds the listener and serves in the background. Bind errors are
// returned directly.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	s.server = &http.Server{
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		s.logger.Infof("Starting API server on %s", ln.Addr())
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Errorf("API server stopped: %v", err)
		}
	}()

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	s.logger.Info("Shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server gracefully: %w", err)
	}

	s.logger.Info("API server stopped")
	return nil
}
