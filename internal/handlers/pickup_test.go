package handlers_test

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/canteenlab/mealqueue/internal/handlers"
	"github.com/canteenlab/mealqueue/internal/models"
)

func pickupBody(studentID string) handlers.PickupRequest {
	return handlers.PickupRequest{StudentID: studentID, Date: "2024-01-15", Type: "lunch"}
}

func TestHandleRequestPickup_Success(t *testing.T) {
	setup := newTestSetup(t)
	setup.resolveSlot(t)

	rec := setup.do(t, http.MethodPost, "/api/pickup", pickupBody("S1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var response handlers.PickupResponse
	decodeBody(t, rec, &response)
	if !response.Success {
		t.Error("expected success true")
	}
	if response.Message != "Added to queue" {
		t.Errorf("unexpected message: %q", response.Message)
	}
	if response.QueueItem == nil || response.QueueItem.FoodSlots != "2,100;5,150;8,80" {
		t.Errorf("unexpected queue item: %+v", response.QueueItem)
	}
	if response.EstimatedTime != 60 {
		t.Errorf("expected 60s estimate, got %d", response.EstimatedTime)
	}
}

func TestHandleRequestPickup_Validation(t *testing.T) {
	setup := newTestSetup(t)
	setup.resolveSlot(t)

	cases := []struct {
		name   string
		body   interface{}
		status int
	}{
		{"empty body", nil, http.StatusBadRequest},
		{"missing fields", handlers.PickupRequest{StudentID: "S1"}, http.StatusBadRequest},
		{"bad meal type", handlers.PickupRequest{StudentID: "S1", Date: "2024-01-15", Type: "brunch"}, http.StatusBadRequest},
		{"unknown student", pickupBody("S9"), http.StatusNotFound},
		{"no portion config", pickupBody("S3"), http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := setup.do(t, http.MethodPost, "/api/pickup", tc.body)
			if rec.Code != tc.status {
				t.Errorf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestHandleRequestPickup_UnresolvedSlot(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodPost, "/api/pickup", pickupBody("S1"))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unresolved slot, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleRequestPickup_Duplicate(t *testing.T) {
	setup := newTestSetup(t)
	setup.resolveSlot(t)

	if rec := setup.do(t, http.MethodPost, "/api/pickup", pickupBody("S1")); rec.Code != http.StatusOK {
		t.Fatalf("first pickup failed: %d", rec.Code)
	}

	rec := setup.do(t, http.MethodPost, "/api/pickup", pickupBody("S1"))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}

	var response handlers.PickupConflictResponse
	decodeBody(t, rec, &response)
	if response.Message != "Already in queue" {
		t.Errorf("unexpected message: %q", response.Message)
	}
	if response.QueueItem == nil || response.QueueItem.StudentID != "S1" {
		t.Error("conflict response should carry the existing queue item")
	}
	if response.QueueItem.Status != models.StatusPending {
		t.Errorf("expected pending item in conflict, got %s", response.QueueItem.Status)
	}
}

func TestHandleRequestPickup_StorageFailure(t *testing.T) {
	setup := newTestSetup(t)
	setup.resolveSlot(t)
	setup.store.SaveQueueError = bytes.ErrTooLarge

	rec := setup.do(t, http.MethodPost, "/api/pickup", pickupBody("S1"))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 on storage failure, got %d", rec.Code)
	}
}

func TestHandlePickupQR(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodGet, "/api/pickup/qr/S1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "image/png" {
		t.Errorf("expected image/png, got %q", got)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG\r\n\x1a\n")) {
		t.Error("expected a PNG payload")
	}
}

func TestHandlePickupQR_UnknownStudent(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodGet, "/api/pickup/qr/S9", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
