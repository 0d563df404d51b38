// Package http exposes the service API: overlay, stations, style, time, the
// enabled toggle, the clock offset, health/readiness, and metrics. It also
// serves the embedded map page.
package http

import (
	"context"
	"embed"
	"encoding/json"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/seislive/intensity-overlay/internal/domain"
)

//go:embed web
var webFS embed.FS

// OverlayState is the read/control surface of the overlay service.
type OverlayState interface {
	Overlay() domain.FeatureCollection
	DisplayTime() string
	Stations() domain.StationList
	Enabled() bool
	SetEnabled(bool)
	CheckReadiness(ctx context.Context) error
}

// ClockControl adjusts the application clock offset at runtime.
type ClockControl interface {
	Offset() time.Duration
	SetOffset(time.Duration)
}

// Server exposes the overlay API plus health, readiness, and metrics routes.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates the HTTP server and wires all routes.
func NewServer(addr string, state OverlayState, clk ClockControl, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(state))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/overlay", handleOverlay(state))
	mux.HandleFunc("GET /api/overlay/style", handleStyle)
	mux.HandleFunc("GET /api/overlay/enabled", handleGetEnabled(state))
	mux.HandleFunc("PUT /api/overlay/enabled", handleSetEnabled(state))
	mux.HandleFunc("GET /api/stations", handleStations(state))
	mux.HandleFunc("GET /api/time", handleTime(state))
	mux.HandleFunc("GET /api/clock/offset", handleGetOffset(clk))
	mux.HandleFunc("PUT /api/clock/offset", handleSetOffset(clk, logger))

	web, _ := fs.Sub(webFS, "web")
	mux.Handle("GET /", http.FileServerFS(web))

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(state OverlayState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := state.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func handleOverlay(state OverlayState) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, state.Overlay())
	}
}

func handleStyle(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, domain.OverlayStyle())
}

func handleStations(state OverlayState) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		stations := state.Stations()
		writeJSON(w, http.StatusOK, map[string]any{
			"count": len(stations),
			"items": stations,
		})
	}
}

func handleTime(state OverlayState) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"display_time": state.DisplayTime()})
	}
}

func handleGetEnabled(state OverlayState) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"enabled": state.Enabled()})
	}
}

func handleSetEnabled(state OverlayState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Enabled *bool `json:"enabled"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Enabled == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "body must be {\"enabled\": bool}"})
			return
		}
		state.SetEnabled(*body.Enabled)
		writeJSON(w, http.StatusOK, map[string]bool{"enabled": state.Enabled()})
	}
}

func handleGetOffset(clk ClockControl) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"offset": clk.Offset().String()})
	}
}

func handleSetOffset(clk ClockControl, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Offset string `json:"offset"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "body must be {\"offset\": \"<duration>\"}"})
			return
		}
		d, err := time.ParseDuration(body.Offset)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid duration: " + body.Offset})
			return
		}
		clk.SetOffset(d)
		logger.Info("application clock offset updated", "offset", d)
		writeJSON(w, http.StatusOK, map[string]string{"offset": clk.Offset().String()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
