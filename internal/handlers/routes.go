package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/canteenlab/mealqueue/internal/metrics"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger) // Custom conditional HTTP logger
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Timeout(60 * time.Second))

	// WebSocket
	if h.Hub != nil {
		r.Get("/ws", h.Hub.ServeWs)
	}

	// Operational endpoints
	r.Get("/healthz", h.handleHealthz)
	r.Handle("/metrics", metrics.Handler())

	// Vote ledger
	r.Post("/api/slots/open", h.handleOpenSlot)
	r.Post("/api/slots/close", h.handleCloseSlot)
	r.Get("/api/slots", h.handleGetSlots)
	r.Post("/api/votes", h.handleCastVote)

	// Pickup admission
	r.Post("/api/pickup", h.handleRequestPickup)
	r.Get("/api/pickup/qr/{studentId}", h.handlePickupQR)

	// Dispatch queue (actuator side + display)
	r.Get("/api/queue/next", h.handleNextJob)
	r.Post("/api/queue/complete", h.handleCompleteJob)
	r.Post("/api/queue/abandon", h.handleAbandonJob)
	r.Get("/api/queue", h.handleGetQueue)

	return r
}
