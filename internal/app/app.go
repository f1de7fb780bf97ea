// Package app wires the store, services, websocket hub and HTTP handlers
// into a runnable server.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/canteenlab/mealqueue/internal/config"
	"github.com/canteenlab/mealqueue/internal/directory"
	"github.com/canteenlab/mealqueue/internal/handlers"
	"github.com/canteenlab/mealqueue/internal/logger"
	"github.com/canteenlab/mealqueue/internal/models"
	"github.com/canteenlab/mealqueue/internal/queue"
	"github.com/canteenlab/mealqueue/internal/services"
	"github.com/canteenlab/mealqueue/internal/store"
	"github.com/canteenlab/mealqueue/internal/websocket"
)

// App holds all application dependencies
type App struct {
	log      logger.Logger
	handlers *handlers.Handlers
	store    *store.SQLite
	hub      *websocket.Hub
}

// New creates and initializes a new application instance
func New(log logger.Logger, cfg config.Config) (*App, error) {
	st, err := store.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	if cfg.SeedFile != "" {
		if err := importDirectory(log, st, cfg.SeedFile); err != nil {
			st.Close()
			return nil, fmt.Errorf("failed to import directory seed: %w", err)
		}
	}

	dir := directory.New(st)

	q, err := queue.New(log, st, cfg.Retention)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to recover queue: %w", err)
	}

	ledger, err := services.NewLedgerService(log, st, dir)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to recover vote ledger: %w", err)
	}

	pickup := services.NewPickupService(log, dir, ledger, q, cfg.ServiceTime())

	// Hub pushes queue snapshots to counter displays and vote status to
	// voting screens
	hub := websocket.New(log, pickup)
	hub.Start()
	q.SetBroadcaster(hub)
	ledger.SetBroadcaster(hub)

	h := handlers.New(ledger, pickup, dir, hub, st, log)
	h.CandidateCount = cfg.Candidates

	return &App{
		log:      log,
		handlers: h,
		store:    st,
		hub:      hub,
	}, nil
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// Run starts the HTTP server
func (a *App) Run(addr string) error {
	a.log.Info("Server starting", "addr", addr)
	return http.ListenAndServe(addr, a.Router())
}

// Close releases app resources
func (a *App) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("Failed to close store", "error", err)
		}
	}
}

// seedFile is the on-disk shape of a directory import
type seedFile struct {
	Students []models.Student `json:"students"`
	Menus    []models.Menu    `json:"menus"`
}

// importDirectory replaces the student and menu directories from a JSON
// file. Directory mutation otherwise lives outside this service, so this
// is the supported way to load a school's roster at startup.
func importDirectory(log logger.Logger, st *store.SQLite, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var seed seedFile
	if err := json.Unmarshal(raw, &seed); err != nil {
		return fmt.Errorf("malformed seed file %s: %w", path, err)
	}

	ctx := context.Background()
	if len(seed.Students) > 0 {
		if err := st.SaveStudents(ctx, seed.Students); err != nil {
			return err
		}
	}
	if len(seed.Menus) > 0 {
		if err := st.SaveMenus(ctx, seed.Menus); err != nil {
			return err
		}
	}

	log.Info("Directory imported", "file", path, "students", len(seed.Students), "menus", len(seed.Menus))
	return nil
}
