package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayusman/kinectosc/internal/forward"
)

// TargetSetter reads and changes the network target.
type TargetSetter interface {
	Target() (forward.Target, bool)
	SetTarget(octets [4]string, port string) (forward.Target, error)
}

// TargetHandler handles GET and PUT /api/target.
type TargetHandler struct {
	targets TargetSetter
}

// NewTargetHandler creates a new TargetHandler.
func NewTargetHandler(t TargetSetter) *TargetHandler {
	return &TargetHandler{targets: t}
}

type targetRequest struct {
	Octets [4]string `json:"octets"`
	Port   string    `json:"port"`
}

type targetResponse struct {
	Set     bool      `json:"set"`
	Address string    `json:"address"`
	Octets  [4]string `json:"octets"`
	Port    uint16    `json:"port"`
}

func toTargetResponse(t forward.Target, set bool) targetResponse {
	return targetResponse{
		Set:     set,
		Address: t.String(),
		Octets:  t.Octets(),
		Port:    t.Port,
	}
}

// ServeHTTP implements the http.Handler interface.
func (h *TargetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, toTargetResponse(h.targets.Target()))
	case http.MethodPut:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// update handles PUT /api/target. A malformed target leaves the current one in place.
func (h *TargetHandler) update(w http.ResponseWriter, r *http.Request) {
	var req targetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	t, err := h.targets.SetTarget(req.Octets, req.Port)
	if err != nil {
		if errors.Is(err, forward.ErrInvalidTarget) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to set target")
		return
	}

	writeJSON(w, http.StatusOK, toTargetResponse(t, true))
}
