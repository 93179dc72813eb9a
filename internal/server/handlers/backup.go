package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/meridian-dr/meridian/pkg/types"
)

// Backup extracts one table to blob storage.
func (h *Handlers) Backup(w http.ResponseWriter, r *http.Request) {
	if h.backup == nil {
		h.writeError(w, http.StatusServiceUnavailable, "backups not configured", nil)
		return
	}
	var req types.BackupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.TableName == "" {
		h.writeError(w, http.StatusBadRequest, "table_name is required", nil)
		return
	}
	resp, err := h.backup.Run(r.Context(), req)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "backup failed", err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}
