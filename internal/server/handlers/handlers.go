// Package handlers implements HTTP request handlers for the Meridian API.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/meridian-dr/meridian/internal/backup"
	"github.com/meridian-dr/meridian/internal/failover"
	"github.com/meridian-dr/meridian/internal/region"
	"github.com/meridian-dr/meridian/internal/validator"
	"github.com/meridian-dr/meridian/pkg/types"
)

// Handlers contains all HTTP handler dependencies.
type Handlers struct {
	validator    *validator.Validator
	orchestrator *failover.Orchestrator
	backup       *backup.Manager
	checkers     map[types.Region]*region.Checker
	sourceRegion types.Region
	logger       *slog.Logger
}

// New creates a new Handlers instance.
func New(v *validator.Validator, o *failover.Orchestrator, b *backup.Manager, checkers map[types.Region]*region.Checker, source types.Region) *Handlers {
	return &Handlers{
		validator:    v,
		orchestrator: o,
		backup:       b,
		checkers:     checkers,
		sourceRegion: source,
		logger:       slog.Default(),
	}
}

// SetLogger overrides the default logger.
func (h *Handlers) SetLogger(l *slog.Logger) {
	if l != nil {
		h.logger = l
	}
}

// writeError logs the internal error and returns a sanitized JSON error to
// the client.
func (h *Handlers) writeError(w http.ResponseWriter, status int, msg string, err error) {
	if err != nil {
		h.logger.Error(msg, "error", err, "status", status)
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encoding response", "error", err)
	}
}
