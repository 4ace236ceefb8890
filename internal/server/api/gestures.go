// Package api provides HTTP API handlers for the kinectosc control surface.
package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ayusman/kinectosc/internal/store"
)

// GestureHandler serves the gesture catalog.
//
//	GET    /api/gestures[?all=true][&kind=discrete|continuous]
//	GET    /api/gestures/{id|name}
//	GET    /api/gestures/{id|name}/events[?limit=N]
//	DELETE /api/gestures/{id|name}
type GestureHandler struct {
	store *store.Store
}

// NewGestureHandler creates a new GestureHandler with the given store.
func NewGestureHandler(s *store.Store) *GestureHandler {
	return &GestureHandler{store: s}
}

type gestureResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Active    bool   `json:"active"`
	Events    int    `json:"events"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type listGesturesResponse struct {
	Gestures []gestureResponse `json:"gestures"`
}

type gestureEventsResponse struct {
	Gesture gestureResponse `json:"gesture"`
	Events  []eventResponse `json:"events"`
}

func toResponse(g *store.Gesture, events int) gestureResponse {
	return gestureResponse{
		ID:        g.ID,
		Name:      g.Name,
		Kind:      string(g.Kind),
		Active:    g.Active,
		Events:    events,
		CreatedAt: formatTime(g.CreatedAt),
		UpdatedAt: formatTime(g.UpdatedAt),
	}
}

// ServeHTTP routes catalog requests.
func (h *GestureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/gestures"), "/")
	if rest == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
		return
	}

	key, sub, _ := strings.Cut(rest, "/")
	switch {
	case sub == "" && r.Method == http.MethodGet:
		h.get(w, key)
	case sub == "" && r.Method == http.MethodDelete:
		h.delete(w, key)
	case sub == "events" && r.Method == http.MethodGet:
		h.events(w, r, key)
	case sub == "" || sub == "events":
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	default:
		http.NotFound(w, r)
	}
}

// list handles GET /api/gestures. Entries missing from the loaded database
// are hidden unless ?all=true.
func (h *GestureHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	all, _ := strconv.ParseBool(q.Get("all"))

	var kind store.GestureKind
	if v := q.Get("kind"); v != "" {
		kind = store.GestureKind(v)
		if kind != store.GestureKindDiscrete && kind != store.GestureKindContinuous {
			writeError(w, http.StatusBadRequest, "kind must be discrete or continuous")
			return
		}
	}

	gestures, err := h.store.Gestures().List(!all)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list gestures")
		return
	}
	counts, err := h.store.Events().CountByGesture()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count events")
		return
	}

	response := listGesturesResponse{
		Gestures: make([]gestureResponse, 0, len(gestures)),
	}
	for _, g := range gestures {
		if kind != "" && g.Kind != kind {
			continue
		}
		response.Gestures = append(response.Gestures, toResponse(g, counts[g.ID]))
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *GestureHandler) get(w http.ResponseWriter, key string) {
	g, ok := h.lookup(w, key)
	if !ok {
		return
	}
	counts, err := h.store.Events().CountByGesture()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count events")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(g, counts[g.ID]))
}

// events handles GET /api/gestures/{id|name}/events.
func (h *GestureHandler) events(w http.ResponseWriter, r *http.Request, key string) {
	limit, ok := parseLimit(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}

	g, ok := h.lookup(w, key)
	if !ok {
		return
	}

	events, err := h.store.Events().ListByGesture(g.ID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}

	writeJSON(w, http.StatusOK, gestureEventsResponse{
		Gesture: toResponse(g, len(events)),
		Events:  toEventResponses(events),
	})
}

// delete removes a catalog entry. Logged events keep their gesture name.
func (h *GestureHandler) delete(w http.ResponseWriter, key string) {
	g, ok := h.lookup(w, key)
	if !ok {
		return
	}

	if err := h.store.Gestures().Delete(g.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Gesture not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete gesture")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// lookup resolves key as an id first and then as a gesture name. It writes
// the error response itself and reports whether the caller should continue.
func (h *GestureHandler) lookup(w http.ResponseWriter, key string) (*store.Gesture, bool) {
	repo := h.store.Gestures()

	g, err := repo.GetByID(key)
	if errors.Is(err, store.ErrNotFound) {
		g, err = repo.GetByName(key)
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Gesture not found")
		return nil, false
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to get gesture")
		return nil, false
	}
	return g, true
}
