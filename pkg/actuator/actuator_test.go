package actuator

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/canteenlab/mealqueue/internal/logger"
	"github.com/canteenlab/mealqueue/internal/models"
)

// noopLogger implements logger.Logger but discards all output
type noopLogger struct{}

func (noopLogger) Debug(msg string, args ...any) {}
func (noopLogger) Info(msg string, args ...any)  {}
func (noopLogger) Warn(msg string, args ...any)  {}
func (noopLogger) Error(msg string, args ...any) {}

func (noopLogger) SetLevel(level slog.Level) {}

func (noopLogger) EnableHTTPLogging() {}

func (noopLogger) DisableHTTPLogging() {}

func (noopLogger) IsHTTPLoggingEnabled() bool { return false }

var _ logger.Logger = noopLogger{}

func testSlot() models.Slot {
	return models.Slot{Date: "2024-01-15", Type: models.MealLunch}
}

func TestHTTPClient_PollNext_ClaimsJob(t *testing.T) {
	job := models.DispenseJob{
		StudentID:   "S1",
		StudentName: "An Nguyen",
		Date:        "2024-01-15",
		Type:        models.MealLunch,
		MenuID:      "m-pho",
		MenuName:    "Pho Bo",
		FoodSlots:   "2,100;5,150;8,80",
		Status:      models.StatusProcessing,
		CreatedAt:   time.Date(2024, 1, 15, 11, 30, 0, 0, time.UTC),
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/api/queue/next" {
			t.Errorf("expected path /api/queue/next, got %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(NextJob{HasItem: true, Item: &job})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, noopLogger{})
	got, err := client.PollNext(context.Background())
	if err != nil {
		t.Fatalf("PollNext failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected a job, got nil")
	}
	if got.StudentID != "S1" {
		t.Errorf("expected StudentID 'S1', got %q", got.StudentID)
	}
	if got.FoodSlots != "2,100;5,150;8,80" {
		t.Errorf("unexpected food slots %q", got.FoodSlots)
	}
	if got.Status != models.StatusProcessing {
		t.Errorf("expected processing status, got %q", got.Status)
	}
}

func TestHTTPClient_PollNext_EmptyQueue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(NextJob{HasItem: false, Message: "No items in queue"})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, noopLogger{})
	got, err := client.PollNext(context.Background())
	if err != nil {
		t.Fatalf("PollNext failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil job for empty queue, got %+v", got)
	}
}

func TestHTTPClient_PollNext_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, noopLogger{})
	if _, err := client.PollNext(context.Background()); err == nil {
		t.Fatal("expected error for server error response")
	}
}

func TestHTTPClient_PollNext_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, noopLogger{})
	if _, err := client.PollNext(context.Background()); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestHTTPClient_Complete_SendsJobKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/api/queue/complete" {
			t.Errorf("expected path /api/queue/complete, got %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("studentId") != "S1" {
			t.Errorf("expected studentId=S1, got %q", q.Get("studentId"))
		}
		if q.Get("date") != "2024-01-15" {
			t.Errorf("expected date=2024-01-15, got %q", q.Get("date"))
		}
		if q.Get("type") != "lunch" {
			t.Errorf("expected type=lunch, got %q", q.Get("type"))
		}
		json.NewEncoder(w).Encode(Ack{Success: true, Message: "Queue item completed"})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, noopLogger{})
	if err := client.Complete(context.Background(), "S1", testSlot()); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
}

func TestHTTPClient_Complete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"code":"NOT_PROCESSING","error":"No processing job for student"}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, noopLogger{})
	err := client.Complete(context.Background(), "S1", testSlot())
	if err == nil {
		t.Fatal("expected error for API failure")
	}
	if got := err.Error(); got != "queue server error: No processing job for student (NOT_PROCESSING)" {
		t.Errorf("unexpected error message: %q", got)
	}
}

func TestHTTPClient_Abandon_SendsReason(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/queue/abandon" {
			t.Errorf("expected path /api/queue/abandon, got %s", r.URL.Path)
		}
		var body struct {
			Reason string `json:"reason"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode abandon body: %v", err)
		}
		if body.Reason != "bin jam" {
			t.Errorf("expected reason 'bin jam', got %q", body.Reason)
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, noopLogger{})
	if err := client.Abandon(context.Background(), "S1", testSlot(), "bin jam"); err != nil {
		t.Fatalf("Abandon failed: %v", err)
	}
}

func TestHTTPClient_ConnectionRefused(t *testing.T) {
	client := NewHTTPClient("http://127.0.0.1:1", noopLogger{})
	if _, err := client.PollNext(context.Background()); err == nil {
		t.Fatal("expected error when server is unreachable")
	}
}

func TestHTTPClient_SetBaseURL(t *testing.T) {
	client := NewHTTPClient("http://one.local", noopLogger{})
	if client.BaseURL() != "http://one.local" {
		t.Errorf("unexpected base URL %q", client.BaseURL())
	}
	client.SetBaseURL("http://two.local")
	if client.BaseURL() != "http://two.local" {
		t.Errorf("expected updated base URL, got %q", client.BaseURL())
	}
}

func TestMockClient_DrainsJobs(t *testing.T) {
	m := NewMockClient()

	first, err := m.PollNext(context.Background())
	if err != nil {
		t.Fatalf("PollNext failed: %v", err)
	}
	if first == nil || first.StudentID != "S1" {
		t.Fatalf("expected default job S1, got %+v", first)
	}
	if first.Status != models.StatusProcessing {
		t.Errorf("expected claimed job to be processing, got %q", first.Status)
	}

	second, _ := m.PollNext(context.Background())
	if second == nil || second.StudentID != "S2" {
		t.Fatalf("expected default job S2, got %+v", second)
	}

	drained, _ := m.PollNext(context.Background())
	if drained != nil {
		t.Errorf("expected nil after draining jobs, got %+v", drained)
	}
}

func TestMockClient_RecordsCallbacks(t *testing.T) {
	m := NewMockClient(WithJobs(nil))

	if err := m.Complete(context.Background(), "S1", testSlot()); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if err := m.Abandon(context.Background(), "S2", testSlot(), "timeout"); err != nil {
		t.Fatalf("Abandon failed: %v", err)
	}

	wantComplete := models.JobID("S1", testSlot())
	if got := m.CompletedJobIDs(); len(got) != 1 || got[0] != wantComplete {
		t.Errorf("unexpected completed ids %v", got)
	}
	wantAbandon := models.JobID("S2", testSlot())
	if got := m.AbandonedJobIDs(); len(got) != 1 || got[0] != wantAbandon {
		t.Errorf("unexpected abandoned ids %v", got)
	}
}

func TestMockClient_Errors(t *testing.T) {
	pollErr := errors.New("poll down")
	m := NewMockClient(WithPollError(pollErr), WithCompleteError(errors.New("complete down")), WithAbandonError(errors.New("abandon down")))

	if _, err := m.PollNext(context.Background()); !errors.Is(err, pollErr) {
		t.Errorf("expected configured poll error, got %v", err)
	}
	if err := m.Complete(context.Background(), "S1", testSlot()); err == nil {
		t.Error("expected configured complete error")
	}
	if err := m.Abandon(context.Background(), "S1", testSlot(), "x"); err == nil {
		t.Error("expected configured abandon error")
	}
}
