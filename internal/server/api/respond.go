package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/ayusman/kinectosc/internal/store"
)

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

type errorResponse struct {
	Error string `json:"error"`
}

type eventResponse struct {
	ID          string  `json:"id"`
	GestureID   string  `json:"gesture_id,omitempty"`
	GestureName string  `json:"gesture_name"`
	Address     string  `json:"address"`
	Value       float64 `json:"value"`
	Slot        int     `json:"slot"`
	TrackingID  uint64  `json:"tracking_id"`
	Target      string  `json:"target"`
	CreatedAt   string  `json:"created_at"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// parseLimit reads ?limit=N. A missing value yields store.DefaultEventLimit.
func parseLimit(r *http.Request) (int, bool) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return store.DefaultEventLimit, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func formatTime(t time.Time) string {
	return t.Format(timeLayout)
}

func toEventResponses(events []*store.Event) []eventResponse {
	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, eventResponse{
			ID:          e.ID,
			GestureID:   e.GestureID,
			GestureName: e.GestureName,
			Address:     e.Address,
			Value:       e.Value,
			Slot:        e.Slot,
			TrackingID:  e.TrackingID,
			Target:      e.Target,
			CreatedAt:   formatTime(e.CreatedAt),
		})
	}
	return out
}
