package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Project-Sylos/Specular/internal/auth"
	"github.com/Project-Sylos/Specular/internal/logging"
	"github.com/Project-Sylos/Specular/internal/store"
	"github.com/Project-Sylos/Specular/internal/types"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Server represents the HTTP API server
type Server struct {
	router *chi.Mux
	store  *store.Store
	config *types.APIConfig
	http   *http.Server
}

// NewServer creates a new API server
func NewServer(s *store.Store, config *types.APIConfig) *Server {
	var a *auth.Auth
	if config.JWTSecret != "" {
		a = auth.New(config.JWTSecret)
	}
	router := NewRouter(s, a).SetupRoutes()

	return &Server{
		router: router,
		store:  s,
		config: config,
		http: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", config.Host, config.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	log := logging.L()
	log.Info("Starting Specular API server",
		zap.String("addr", s.http.Addr),
		zap.Bool("auth", s.config.JWTSecret != ""))

	errCh := make(chan error, 1)
	go func() {
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("API server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}

// GetRouter returns the configured router
func (s *Server) GetRouter() *chi.Mux {
	return s.router
}

// Stop closes the store connection
func (s *Server) Stop() error {
	return s.store.Close()
}
