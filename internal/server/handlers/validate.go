package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/meridian-dr/meridian/pkg/types"
)

// Validate runs one consistency validation pass. The body is optional; an
// empty body runs with the documented defaults.
func (h *Handlers) Validate(w http.ResponseWriter, r *http.Request) {
	var req types.ValidationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.validator.Run(r.Context(), req))
}
