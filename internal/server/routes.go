package server

import (
	"github.com/go-chi/chi/v5"

	"github.com/meridian-dr/meridian/internal/server/handlers"
)

func (s *Server) registerRoutes(r chi.Router) {
	h := handlers.New(s.services.Validator, s.services.Orchestrator,
		s.services.Backup, s.services.Checkers, s.services.SourceRegion)
	h.SetLogger(s.logger)

	r.Route("/api", func(r chi.Router) {
		// Liveness
		r.Get("/health", h.Health)

		// Validation
		r.Post("/validate", h.Validate)

		// Failover
		r.Post("/failover", h.Failover)
		r.Get("/failover/status", h.FailoverStatus)

		// Backups
		r.Post("/backups", h.Backup)

		// Region health
		r.Get("/regions/{region}/health", h.RegionHealth)
	})
}
