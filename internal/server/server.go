// Package server implements the Meridian HTTP API server.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/meridian-dr/meridian/internal/backup"
	"github.com/meridian-dr/meridian/internal/failover"
	"github.com/meridian-dr/meridian/internal/region"
	"github.com/meridian-dr/meridian/internal/validator"
	"github.com/meridian-dr/meridian/pkg/types"
)

// Services are the domain components the API exposes. Backup may be nil when
// no bucket is configured; the backups route then reports the omission.
type Services struct {
	Validator    *validator.Validator
	Orchestrator *failover.Orchestrator
	Backup       *backup.Manager
	Checkers     map[types.Region]*region.Checker
	SourceRegion types.Region
}

// Server is the Meridian HTTP API server.
type Server struct {
	services Services
	router   chi.Router
	addr     string
	logger   *slog.Logger
	srv      *http.Server
}

// New creates a new HTTP server.
func New(addr string, services Services, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		services: services,
		addr:     addr,
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(MaxBodyMiddleware(1 << 20))
	r.Use(middleware.SetHeader("Content-Type", "application/json"))

	s.router = r
	s.registerRoutes(r)
	return s
}

// Handler exposes the router; used by tests and embedding servers.
func (s *Server) Handler() http.Handler { return s.router }

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	s.logger.Info("meridian server listening", "addr", s.addr)
	return s.srv.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv != nil {
		return s.srv.Shutdown(ctx)
	}
	return nil
}
