package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-dr/meridian/pkg/types"
)

// Health returns the server liveness status.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// RegionHealth runs the full health check for the region named in the path.
func (h *Handlers) RegionHealth(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "region")
	parsed, err := types.ParseRegion(raw)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid region", err)
		return
	}
	checker, ok := h.checkers[parsed]
	if !ok {
		h.writeError(w, http.StatusNotFound, "region not managed", nil)
		return
	}
	h.writeJSON(w, http.StatusOK, checker.Check(r.Context()))
}
