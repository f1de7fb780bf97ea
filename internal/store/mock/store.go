package mock

import (
	"context"

	"github.com/canteenlab/mealqueue/internal/models"
	"github.com/canteenlab/mealqueue/internal/store"
)

// Store wraps a real store and allows injecting errors for testing.
// This provides a flexible way to test error paths without manipulating
// the underlying database.
//
// Usage:
//
//	real := testutil.NewTestStore(t)
//	mockStore := mock.NewStore(real)
//	mockStore.SaveQueueError = errors.New("disk full")
//	q, _ := queue.New(log, mockStore, 0)
//	_, err := q.Enqueue(ctx, job)
//	// err will now surface the injected error
type Store struct {
	store.FullStore

	LoadVotesError    error
	SaveVotesError    error
	LoadQueueError    error
	SaveQueueError    error
	LoadStudentsError error
	SaveStudentsError error
	LoadMenusError    error
	SaveMenusError    error
	PingError         error

	// SaveQueueCalls counts successful SaveQueue invocations so tests can
	// assert that mutations were persisted
	SaveQueueCalls int
	SaveVotesCalls int
}

// NewStore creates a mock store wrapping a real one
func NewStore(real store.FullStore) *Store {
	return &Store{FullStore: real}
}

func (m *Store) LoadVotes(ctx context.Context) ([]models.VoteRecord, error) {
	if m.LoadVotesError != nil {
		return nil, m.LoadVotesError
	}
	return m.FullStore.LoadVotes(ctx)
}

func (m *Store) SaveVotes(ctx context.Context, votes []models.VoteRecord) error {
	if m.SaveVotesError != nil {
		return m.SaveVotesError
	}
	m.SaveVotesCalls++
	return m.FullStore.SaveVotes(ctx, votes)
}

func (m *Store) LoadQueue(ctx context.Context) (models.QueueState, error) {
	if m.LoadQueueError != nil {
		return models.QueueState{}, m.LoadQueueError
	}
	return m.FullStore.LoadQueue(ctx)
}

func (m *Store) SaveQueue(ctx context.Context, state models.QueueState) error {
	if m.SaveQueueError != nil {
		return m.SaveQueueError
	}
	m.SaveQueueCalls++
	return m.FullStore.SaveQueue(ctx, state)
}

func (m *Store) LoadStudents(ctx context.Context) ([]models.Student, error) {
	if m.LoadStudentsError != nil {
		return nil, m.LoadStudentsError
	}
	return m.FullStore.LoadStudents(ctx)
}

func (m *Store) SaveStudents(ctx context.Context, students []models.Student) error {
	if m.SaveStudentsError != nil {
		return m.SaveStudentsError
	}
	return m.FullStore.SaveStudents(ctx, students)
}

func (m *Store) LoadMenus(ctx context.Context) ([]models.Menu, error) {
	if m.LoadMenusError != nil {
		return nil, m.LoadMenusError
	}
	return m.FullStore.LoadMenus(ctx)
}

func (m *Store) SaveMenus(ctx context.Context, menus []models.Menu) error {
	if m.SaveMenusError != nil {
		return m.SaveMenusError
	}
	return m.FullStore.SaveMenus(ctx, menus)
}

func (m *Store) Ping(ctx context.Context) error {
	if m.PingError != nil {
		return m.PingError
	}
	return m.FullStore.Ping(ctx)
}
