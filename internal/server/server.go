// Package server provides the HTTP control surface for the kinectosc gesture forwarder.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/kinectosc/internal/app"
	"github.com/ayusman/kinectosc/internal/server/api"
	"github.com/ayusman/kinectosc/internal/store"
	"github.com/ayusman/kinectosc/internal/tracker"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	App       *app.App
}

// Server represents the HTTP server for the kinectosc application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	bodies *BodiesHandler
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	// Catalog and event log need the store
	if s.config.Store != nil {
		gestureHandler := api.NewGestureHandler(s.config.Store)
		s.mux.Handle("/api/gestures", gestureHandler)
		s.mux.Handle("/api/gestures/", gestureHandler)
		s.mux.Handle("/api/events", api.NewEventHandler(s.config.Store))
	}

	// Live control and streams need the running application
	if a := s.config.App; a != nil {
		s.mux.HandleFunc("/api/status", s.handleStatus)
		s.mux.Handle("/api/target", api.NewTargetHandler(a))
		s.mux.Handle("/api/enabled", api.NewEnabledHandler(a))
		s.mux.Handle("/api/stream", NewStreamHandler(a.Presenter()))

		s.bodies = NewBodiesHandler()
		a.OnBodies(func(snap tracker.Snapshot) {
			s.bodies.Broadcast(MessageBodies, snap)
		})
		a.OnGesture(func(e app.GestureEvent) {
			s.bodies.Broadcast(MessageGesture, e)
		})
		s.mux.Handle("/api/bodies", s.bodies)
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status": "ok",
		"uptime": uptime.String(),
	}

	writeJSON(w, response)
}

// handleStatus handles GET requests to /api/status.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, s.config.App.Status())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}

// HTTPServer returns an http.Server serving s on addr, for callers that need
// graceful shutdown.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
