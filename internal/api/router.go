package api

import (
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// Prometheus scrape endpoint, outside the API prefix.
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/status", s.handleStatus)
		r.Post("/refresh", s.handleRefresh)

		r.Route("/zones", func(r chi.Router) {
			r.Get("/", s.handleListZones)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetZone)
				r.Put("/temperature", s.handleSetTemperature)
				r.Put("/mode", s.handleSetMode)
			})
		})

		// WebSocket zone state push
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}

// handleStatus returns the sync runtime status plus process-level stats.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	writeJSON(w, http.StatusOK, map[string]any{
		"sync":              s.sync.Status(),
		"version":           s.version,
		"uptime_seconds":    int64(time.Since(s.started).Seconds()),
		"websocket_clients": s.hub.ClientCount(),
		"runtime": map[string]any{
			"goroutines":     runtime.NumGoroutine(),
			"heap_alloc_mb":  float64(mem.HeapAlloc) / (1 << 20),
			"total_alloc_mb": float64(mem.TotalAlloc) / (1 << 20),
			"num_gc":         mem.NumGC,
		},
	})
}
