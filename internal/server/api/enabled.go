package api

import (
	"encoding/json"
	"net/http"
)

// Switch turns gesture forwarding on and off.
type Switch interface {
	IsEnabled() bool
	SetEnabled(enabled bool)
}

// EnabledHandler handles GET and PUT /api/enabled.
type EnabledHandler struct {
	sw Switch
}

// NewEnabledHandler creates a new EnabledHandler.
func NewEnabledHandler(sw Switch) *EnabledHandler {
	return &EnabledHandler{sw: sw}
}

type enabledBody struct {
	Enabled *bool `json:"enabled"`
}

// ServeHTTP implements the http.Handler interface.
func (h *EnabledHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPut:
		var req enabledBody
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if req.Enabled == nil {
			writeError(w, http.StatusBadRequest, "enabled is required")
			return
		}
		h.sw.SetEnabled(*req.Enabled)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	enabled := h.sw.IsEnabled()
	writeJSON(w, http.StatusOK, enabledBody{Enabled: &enabled})
}
