package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/meridian-dr/meridian/pkg/types"
)

// Failover executes a region transition. Domain rejections (invalid action,
// unhealthy target) return 200 with a failed body, matching the Lambda
// surface; only malformed JSON is an HTTP error.
func (h *Handlers) Failover(w http.ResponseWriter, r *http.Request) {
	var req types.FailoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.orchestrator.Execute(r.Context(), req))
}

// FailoverStatus returns the latest committed transition.
func (h *Handlers) FailoverStatus(w http.ResponseWriter, r *http.Request) {
	rec, err := h.orchestrator.Status(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "reading failover status", err)
		return
	}
	if rec == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "none"})
		return
	}
	h.writeJSON(w, http.StatusOK, rec)
}
