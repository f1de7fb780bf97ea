package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/canteenlab/mealqueue/internal/models"
	"github.com/canteenlab/mealqueue/internal/store"
)

// NewTestStore creates a fresh in-memory store for testing.
func NewTestStore(t *testing.T) *store.SQLite {
	t.Helper()

	s, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}

	t.Cleanup(func() {
		s.Close()
	})

	return s
}

// SeedDirectory writes a small student/menu fixture used across service and
// handler tests: menu "m-pho" with three items, menu "m-com" with one, and
// students S1 (full config for m-pho), S2 (partial config), S3 (no config).
func SeedDirectory(t *testing.T, s store.DirectoryStore) {
	t.Helper()
	ctx := context.Background()

	menus := []models.Menu{
		{
			MenuID: "m-pho",
			Name:   "Pho Bo",
			Items: []models.MenuItem{
				{ItemID: "i-noodle", Name: "Noodles", Category: "carb"},
				{ItemID: "i-beef", Name: "Beef", Category: "protein"},
				{ItemID: "i-herbs", Name: "Herbs", Category: "veg"},
			},
		},
		{
			MenuID: "m-com",
			Name:   "Com Ga",
			Items: []models.MenuItem{
				{ItemID: "i-rice", Name: "Rice", Category: "carb"},
			},
		},
	}
	if err := s.SaveMenus(ctx, menus); err != nil {
		t.Fatalf("seed menus: %v", err)
	}

	students := []models.Student{
		{
			StudentID: "S1",
			Name:      "An Nguyen",
			MenuConfigs: map[string]map[string]models.PortionItem{
				"m-pho": {
					"i-noodle": {RawWeight: 100, Calories: 180},
					"i-beef":   {RawWeight: 150, Calories: 250},
					"i-herbs":  {RawWeight: 80, Calories: 20},
				},
			},
		},
		{
			StudentID: "S2",
			Name:      "Binh Tran",
			MenuConfigs: map[string]map[string]models.PortionItem{
				"m-pho": {
					"i-beef": {RawWeight: 120, Calories: 200},
				},
			},
		},
		{
			StudentID: "S3",
			Name:      "Chi Le",
		},
	}
	if err := s.SaveStudents(ctx, students); err != nil {
		t.Fatalf("seed students: %v", err)
	}
}

// JSONRequest builds an httptest request, marshaling body as JSON when
// it is non-nil.
func JSONRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()

	if body == nil {
		return httptest.NewRequest(method, target, nil)
	}
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}
