// Package server provides the HTTP REST API for the job search pipeline.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/jonathan/job-finder/internal/types"
)

// Searcher runs one search request through the pipeline.
type Searcher interface {
	Search(ctx context.Context, criteria types.SearchCriteria) (*types.SearchResult, error)
}

// Server represents the HTTP server.
type Server struct {
	httpServer *http.Server
	searcher   Searcher
	logger     zerolog.Logger
}

// Config holds server configuration.
type Config struct {
	Port   int
	Logger zerolog.Logger
}

// New creates a new server instance.
func New(searcher Searcher, cfg Config) *Server {
	s := &Server{
		searcher: searcher,
		logger:   cfg.Logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /search-jobs", s.handleSearchJobs)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleRoot)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withLogging(corsHandler.Handler(mux)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // searches can run the full pipeline deadline
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler exposes the configured HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening for requests and blocks until an interrupt or
// SIGTERM triggers a graceful shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.httpServer.Addr).Msg("server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}

	s.logger.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info().Msg("server stopped")
	return nil
}
