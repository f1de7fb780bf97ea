package actuator

import (
	"context"
	"time"

	"github.com/canteenlab/mealqueue/internal/models"
)

// MockClient is a mock queue client for testing
type MockClient struct {
	jobs        []models.DispenseJob
	baseURL     string
	pollErr     error
	completeErr error
	abandonErr  error
	completed   []string // job ids reported complete, in call order
	abandoned   []string
}

// MockOption configures the mock client
type MockOption func(*MockClient)

// WithJobs sets the jobs to hand out from PollNext, in order
func WithJobs(jobs []models.DispenseJob) MockOption {
	return func(m *MockClient) {
		m.jobs = jobs
	}
}

// WithPollError sets an error to return from PollNext
func WithPollError(err error) MockOption {
	return func(m *MockClient) {
		m.pollErr = err
	}
}

// WithCompleteError sets an error to return from Complete
func WithCompleteError(err error) MockOption {
	return func(m *MockClient) {
		m.completeErr = err
	}
}

// WithAbandonError sets an error to return from Abandon
func WithAbandonError(err error) MockOption {
	return func(m *MockClient) {
		m.abandonErr = err
	}
}

// WithBaseURL sets the base URL
func WithBaseURL(url string) MockOption {
	return func(m *MockClient) {
		m.baseURL = url
	}
}

// NewMockClient creates a new mock queue client
func NewMockClient(opts ...MockOption) *MockClient {
	m := &MockClient{
		baseURL: "http://mock-mealqueue.local",
		jobs:    DefaultMockJobs(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// BaseURL returns the configured base URL
func (m *MockClient) BaseURL() string {
	return m.baseURL
}

// SetBaseURL updates the base URL
func (m *MockClient) SetBaseURL(url string) {
	m.baseURL = url
}

// PollNext hands out the next configured job, or (nil, nil) when drained
func (m *MockClient) PollNext(ctx context.Context) (*models.DispenseJob, error) {
	if m.pollErr != nil {
		return nil, m.pollErr
	}
	if len(m.jobs) == 0 {
		return nil, nil
	}
	job := m.jobs[0]
	m.jobs = m.jobs[1:]
	job.Status = models.StatusProcessing
	return &job, nil
}

// Complete records the completion call
func (m *MockClient) Complete(ctx context.Context, studentID string, slot models.Slot) error {
	if m.completeErr != nil {
		return m.completeErr
	}
	m.completed = append(m.completed, models.JobID(studentID, slot))
	return nil
}

// Abandon records the abandon call
func (m *MockClient) Abandon(ctx context.Context, studentID string, slot models.Slot, reason string) error {
	if m.abandonErr != nil {
		return m.abandonErr
	}
	m.abandoned = append(m.abandoned, models.JobID(studentID, slot))
	return nil
}

// CompletedJobIDs returns the job ids reported complete, in call order
func (m *MockClient) CompletedJobIDs() []string {
	return m.completed
}

// AbandonedJobIDs returns the job ids abandoned, in call order
func (m *MockClient) AbandonedJobIDs() []string {
	return m.abandoned
}

// DefaultMockJobs returns a small queue of realistic dispense jobs
func DefaultMockJobs() []models.DispenseJob {
	created := time.Date(2024, 1, 15, 11, 30, 0, 0, time.UTC)
	return []models.DispenseJob{
		{
			StudentID:   "S1",
			StudentName: "An Nguyen",
			Date:        "2024-01-15",
			Type:        models.MealLunch,
			MenuID:      "m-pho",
			MenuName:    "Pho Bo",
			FoodSlots:   "2,100;5,150;8,80",
			Status:      models.StatusPending,
			CreatedAt:   created,
		},
		{
			StudentID:   "S2",
			StudentName: "Binh Tran",
			Date:        "2024-01-15",
			Type:        models.MealLunch,
			MenuID:      "m-pho",
			MenuName:    "Pho Bo",
			FoodSlots:   "2,100;5,150;8,80",
			Status:      models.StatusPending,
			CreatedAt:   created.Add(30 * time.Second),
		},
	}
}
