package handlers

import (
	"context"
	"net/http"

	"github.com/canteenlab/mealqueue/internal/models"
	"github.com/canteenlab/mealqueue/internal/services"
	"github.com/canteenlab/mealqueue/internal/websocket"
)

// Pinger checks durable store liveness for the health endpoint
type Pinger interface {
	Ping(ctx context.Context) error
}

// HTTPLogger is an interface for loggers that support HTTP logging control
type HTTPLogger interface {
	IsHTTPLoggingEnabled() bool
}

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Ledger    services.LedgerServicer
	Pickup    services.PickupServicer
	Directory services.DirectoryReader
	Hub       *websocket.Hub
	Store     Pinger
	Log       HTTPLogger
	// CandidateCount is how many menus get drawn as vote candidates when
	// a slot opens without an explicit count
	CandidateCount int
}

// New creates a new Handlers instance with all dependencies
func New(
	ledger services.LedgerServicer,
	pickup services.PickupServicer,
	dir services.DirectoryReader,
	hub *websocket.Hub,
	store Pinger,
	log HTTPLogger,
) *Handlers {
	return &Handlers{
		Ledger:         ledger,
		Pickup:         pickup,
		Directory:      dir,
		Hub:            hub,
		Store:          store,
		Log:            log,
		CandidateCount: 3,
	}
}

// NoopHTTPLogger is a test logger that always returns false for HTTP logging
type NoopHTTPLogger struct{}

func (NoopHTTPLogger) IsHTTPLoggingEnabled() bool { return false }

// NewForTesting creates a Handlers instance without hub or store wiring
func NewForTesting(
	ledger services.LedgerServicer,
	pickup services.PickupServicer,
	dir services.DirectoryReader,
) *Handlers {
	return &Handlers{
		Ledger:         ledger,
		Pickup:         pickup,
		Directory:      dir,
		Log:            NoopHTTPLogger{},
		CandidateCount: 3,
	}
}

// parseSlot extracts and validates the slot from date/type query parameters
func parseSlot(r *http.Request) (models.Slot, error) {
	date := r.URL.Query().Get("date")
	if date == "" {
		return models.Slot{}, BadRequest("Missing date parameter")
	}
	mealType, ok := models.ParseMealType(r.URL.Query().Get("type"))
	if !ok {
		return models.Slot{}, BadRequest("Invalid type parameter")
	}
	return models.Slot{Date: date, Type: mealType}, nil
}

// handleHealthz reports process and store liveness
func (h *Handlers) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if h.Store != nil {
		if err := h.Store.Ping(r.Context()); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
	}
	respondOK(w, map[string]string{"status": "ok"})
}
