package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	ginhandler "dynamo-user-service/internal/adapter/gin/handler"
	"dynamo-user-service/internal/adapter/gin/middleware"
	"dynamo-user-service/internal/config"
)

// Server owns the HTTP listener for the user API
type Server struct {
	Config *config.Config
	Logger *zap.Logger
	HTTP   *http.Server
}

// New creates a new server instance
func New(cfg *config.Config, l *zap.Logger, handler *ginhandler.UserHandler, rateLimiter *middleware.RateLimiter) *Server {
	return &Server{
		Config: cfg,
		Logger: l,
		HTTP:   SetupGinServer(handler, rateLimiter, cfg.App.APIPrefix, httpAddress(cfg), l),
	}
}

// Start serves until Shutdown is called. A clean shutdown returns nil.
func (s *Server) Start() error {
	s.Logger.Info("HTTP server running",
		zap.String("address", s.HTTP.Addr),
		zap.String("prefix", s.Config.App.APIPrefix),
	)

	if err := s.HTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve HTTP: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.HTTP.Shutdown(ctx)
}

func httpAddress(cfg *config.Config) string {
	return ":" + cfg.App.HTTPPort
}
