package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"gscgateway/internal/app/health"
	"gscgateway/internal/app/middleware"
	"gscgateway/internal/app/routes"
	"gscgateway/internal/cfg"
	"gscgateway/internal/service/auth"
	"gscgateway/internal/service/search"
	"gscgateway/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Server is the HTTP transport. Business logic lives in the services the
// Provider builds.
type Server struct {
	config     *cfg.Config
	provider   *Provider
	httpServer *http.Server
	router     *gin.Engine
	logger     logger.Logger
}

// NewServer creates the HTTP server from the dependencies in provider.
func NewServer(provider *Provider) (*Server, error) {
	s := &Server{
		config:   provider.Config,
		provider: provider,
		logger:   provider.Infra.Logger,
	}

	s.logger.Info(context.Background(), "Creating HTTP server...")

	if s.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := s.setupRoutes(); err != nil {
		return nil, err
	}
	s.setupHTTPServer()

	s.logger.Info(context.Background(), "HTTP server created successfully")
	return s, nil
}

// setupRoutes configures all HTTP routes for the application.
func (s *Server) setupRoutes() error {
	r := gin.New()

	// ClientIP only honours X-Forwarded-For from these peers.
	if err := r.SetTrustedProxies(s.config.HTTPServer.TrustedProxies); err != nil {
		return fmt.Errorf("trusted proxies: %w", err)
	}

	limiter := middleware.NewRateLimiter(s.config.HTTPServer.RateLimitRPS, s.config.HTTPServer.RateLimitBurst)

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(s.config.Observability.ServiceName))
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggingMiddleware(s.logger))
	r.Use(middleware.CORSMiddleware(s.config.AllowedOrigins()))
	r.Use(limiter.Limit())

	infra := s.provider.Infra
	services := s.provider.Services

	healthChecker := health.NewChecker(infra.Cache, infra.OAuth2Manager, s.logger)
	routes.SetupInfra(r, healthChecker, infra.MetricsHandler)

	authHandler := auth.NewHandler(services.Auth, s.logger, s.config.IsProduction())
	routes.SetupAuth(r, authHandler)

	searchHandler := search.NewHandler(services.Search, s.logger)
	routes.SetupAnalytics(r, searchHandler, middleware.SessionGate(services.Codec, s.logger))

	s.router = r
	return nil
}

// setupHTTPServer creates the underlying HTTP server.
func (s *Server) setupHTTPServer() {
	s.httpServer = &http.Server{
		Addr:         ":" + s.config.HTTPServer.Port,
		Handler:      s.router,
		ReadTimeout:  s.config.HTTPServer.ReadTimeout,
		WriteTimeout: s.config.HTTPServer.WriteTimeout,
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the HTTP server and blocks until it shuts down.
func (s *Server) Run() error {
	s.logger.Info(context.Background(), "HTTP server listening",
		logger.Field{Key: "addr", Value: s.httpServer.Addr})

	err := s.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
// Infrastructure resources are managed separately by the Provider.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "Shutting down HTTP server")

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("HTTP server shutdown: %w", err)
		}
	}

	s.logger.Info(ctx, "HTTP server shutdown complete")
	return nil
}
