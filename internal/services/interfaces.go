package services

import (
	"context"

	"github.com/canteenlab/mealqueue/internal/models"
)

// LedgerServicer defines the interface for vote ledger operations
type LedgerServicer interface {
	OpenSlot(ctx context.Context, slot models.Slot, candidates []models.Menu) (*models.VoteRecord, error)
	CastVote(ctx context.Context, slot models.Slot, studentID, menuID string) error
	CloseSlot(ctx context.Context, slot models.Slot) (*models.VoteRecord, error)
	Get(ctx context.Context, slot models.Slot) (*models.VoteRecord, error)
	List(ctx context.Context) ([]models.VoteRecord, error)
}

// PickupServicer defines the interface for pickup and dispatch operations
type PickupServicer interface {
	RequestPickup(ctx context.Context, studentID string, slot models.Slot) (*PickupResult, error)
	PollNext(ctx context.Context) (*models.DispenseJob, bool, error)
	ReportComplete(ctx context.Context, studentID string, slot models.Slot) (*models.DispenseJob, error)
	Abandon(ctx context.Context, studentID string, slot models.Slot, reason string) (*models.DispenseJob, error)
	QueueSnapshot() models.QueueState
	PickupQR(studentID string) ([]byte, error)
}

// DirectoryReader is the read-only student/menu lookup the services need
type DirectoryReader interface {
	GetStudent(ctx context.Context, id string) (*models.Student, error)
	GetMenu(ctx context.Context, id string) (*models.Menu, error)
	ListMenus(ctx context.Context) ([]models.Menu, error)
	ListStudents(ctx context.Context) ([]models.Student, error)
	GetPortionConfig(ctx context.Context, studentID, menuID string) (map[string]models.PortionItem, error)
}

// Dispatcher is the queue surface the pickup service drives
type Dispatcher interface {
	Enqueue(ctx context.Context, job models.DispenseJob) (*models.DispenseJob, error)
	ClaimNext(ctx context.Context) (*models.DispenseJob, bool, error)
	Complete(ctx context.Context, jobID string) (*models.DispenseJob, error)
	Abandon(ctx context.Context, jobID, reason string) (*models.DispenseJob, error)
	ActiveCount() int
	Snapshot() models.QueueState
}

// Broadcaster pushes ledger changes to connected displays
type Broadcaster interface {
	VoteChanged(record models.VoteRecord)
}
