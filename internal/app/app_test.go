package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/canteenlab/mealqueue/internal/config"
	"github.com/canteenlab/mealqueue/internal/logger"
	"github.com/canteenlab/mealqueue/internal/models"
)

func testConfig() config.Config {
	return config.Config{
		Port:           8081,
		DBPath:         ":memory:",
		LogLevel:       "error",
		Retention:      config.DefaultRetention,
		ServiceSeconds: config.DefaultServiceSeconds,
		Candidates:     config.DefaultCandidates,
	}
}

func TestNew_InitializesApp(t *testing.T) {
	log := logger.New()

	app, err := New(log, testConfig())
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	defer app.Close()

	if app.handlers == nil {
		t.Error("expected handlers to be initialized")
	}
	if app.store == nil {
		t.Error("expected store to be initialized")
	}
	if app.hub == nil {
		t.Error("expected hub to be initialized")
	}
}

func TestNew_FailsWithBadDBPath(t *testing.T) {
	cfg := testConfig()
	cfg.DBPath = "/nonexistent/path/db.sqlite"

	if _, err := New(logger.New(), cfg); err == nil {
		t.Error("expected error for invalid db path")
	}
}

func TestRouter_ServesHealthz(t *testing.T) {
	app, err := New(logger.New(), testConfig())
	if err != nil {
		t.Fatal(err)
	}
	defer app.Close()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestNew_ImportsSeedFile(t *testing.T) {
	seed := seedFile{
		Students: []models.Student{
			{StudentID: "S1", Name: "An Nguyen"},
		},
		Menus: []models.Menu{
			{MenuID: "m-pho", Name: "Pho Bo"},
		},
	}
	raw, err := json.Marshal(seed)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "seed.json")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig()
	cfg.SeedFile = path

	app, err := New(logger.New(), cfg)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	defer app.Close()

	req := httptest.NewRequest(http.MethodGet, "/api/pickup/qr/S1", nil)
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected imported student to resolve, got %d", rec.Code)
	}
}

func TestNew_RejectsMissingSeedFile(t *testing.T) {
	cfg := testConfig()
	cfg.SeedFile = filepath.Join(t.TempDir(), "absent.json")

	if _, err := New(logger.New(), cfg); err == nil {
		t.Error("expected error for missing seed file")
	}
}

func TestNew_RejectsMalformedSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig()
	cfg.SeedFile = path

	if _, err := New(logger.New(), cfg); err == nil {
		t.Error("expected error for malformed seed file")
	}
}
