package store

import (
	"context"

	"github.com/canteenlab/mealqueue/internal/models"
)

// Bucket names for the persisted state documents
const (
	BucketVotes    = "votes"
	BucketQueue    = "queue"
	BucketStudents = "students"
	BucketMenus    = "menus"
)

// VoteStore persists the vote ledger
type VoteStore interface {
	LoadVotes(ctx context.Context) ([]models.VoteRecord, error)
	SaveVotes(ctx context.Context, votes []models.VoteRecord) error
}

// QueueStore persists the dispatch queue state
type QueueStore interface {
	LoadQueue(ctx context.Context) (models.QueueState, error)
	SaveQueue(ctx context.Context, state models.QueueState) error
}

// DirectoryStore persists the student and menu records. The core only
// reads these; the save methods exist for seeding and the excluded
// admin surface.
type DirectoryStore interface {
	LoadStudents(ctx context.Context) ([]models.Student, error)
	SaveStudents(ctx context.Context, students []models.Student) error
	LoadMenus(ctx context.Context) ([]models.Menu, error)
	SaveMenus(ctx context.Context, menus []models.Menu) error
}

// FullStore combines all store interfaces.
// Use this when a component needs access to multiple documents.
type FullStore interface {
	VoteStore
	QueueStore
	DirectoryStore
	Ping(ctx context.Context) error
	Close() error
}

// Ensure SQLite implements all interfaces
var _ FullStore = (*SQLite)(nil)
