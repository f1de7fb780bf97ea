package services

import (
	"context"
	stderrors "errors"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/canteenlab/mealqueue/internal/errors"
	"github.com/canteenlab/mealqueue/internal/logger"
	"github.com/canteenlab/mealqueue/internal/models"
	"github.com/canteenlab/mealqueue/internal/queue"
)

const (
	// DefaultServiceTime is the per-job dispensing estimate used for wait
	// time projections
	DefaultServiceTime = 60 * time.Second

	// DefaultWeight is dispensed for an ingredient the student never
	// configured a portion for
	DefaultWeight = 150

	qrSize = 256
)

// slotPositions are the physical dispenser bins, assigned to the winning
// menu's ingredients in menu order
var slotPositions = []int{2, 5, 8}

// PickupResult is an admitted (or re-submitted) pickup: the job plus the
// projected wait across everything ahead of it, itself included.
type PickupResult struct {
	Job              *models.DispenseJob
	EstimatedSeconds int
}

// PickupService admits students into the dispatch queue and fronts the
// actuator-facing queue operations. Admission is where vote ledger,
// directory and queue meet: a student gets a job only for a resolved slot,
// and only one active job per (student, slot).
type PickupService struct {
	log         logger.Logger
	dir         DirectoryReader
	ledger      LedgerServicer
	queue       Dispatcher
	serviceTime time.Duration
	now         func() time.Time
}

// NewPickupService creates a PickupService. A non-positive serviceTime
// falls back to DefaultServiceTime.
func NewPickupService(log logger.Logger, dir DirectoryReader, ledger LedgerServicer, q Dispatcher, serviceTime time.Duration) *PickupService {
	if serviceTime <= 0 {
		serviceTime = DefaultServiceTime
	}
	return &PickupService{
		log:         log,
		dir:         dir,
		ledger:      ledger,
		queue:       q,
		serviceTime: serviceTime,
		now:         time.Now,
	}
}

// RequestPickup admits studentID for the given slot. The checks run in
// order: the student must exist, the slot's vote must be resolved, the
// winning menu must exist, and the student must have a portion config for
// it. A duplicate submission surfaces as DuplicateRequestError carrying the
// job already in flight, so a client retry gets the same answer.
func (s *PickupService) RequestPickup(ctx context.Context, studentID string, slot models.Slot) (*PickupResult, error) {
	student, err := s.dir.GetStudent(ctx, studentID)
	if err != nil {
		if errors.IsKind(err, errors.ErrNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	record, err := s.ledger.Get(ctx, slot)
	if err != nil || !record.Closed() {
		return nil, ErrSlotNotResolved
	}
	menuID := *record.Winner

	menu, err := s.dir.GetMenu(ctx, menuID)
	if err != nil {
		if errors.IsKind(err, errors.ErrNotFound) {
			return nil, ErrMenuNotFound
		}
		return nil, err
	}

	config := student.MenuConfigs[menuID]
	if config == nil {
		return nil, ErrConfigMissing
	}

	job := models.DispenseJob{
		StudentID:   student.StudentID,
		StudentName: student.Name,
		Date:        slot.Date,
		Type:        slot.Type,
		MenuID:      menu.MenuID,
		MenuName:    menu.Name,
		FoodSlots:   models.EncodeSlotPlan(buildSlotPlan(menu, config)),
		Status:      models.StatusPending,
		CreatedAt:   s.now().UTC(),
	}

	queued, err := s.queue.Enqueue(ctx, job)
	if err != nil {
		if stderrors.Is(err, queue.ErrDuplicate) {
			s.log.Info("Duplicate pickup request", "student", studentID, "slot", slot.String())
			return nil, &DuplicateRequestError{Job: queued}
		}
		return nil, err
	}

	return &PickupResult{
		Job:              queued,
		EstimatedSeconds: s.queue.ActiveCount() * int(s.serviceTime.Seconds()),
	}, nil
}

// buildSlotPlan assigns the winning menu's ingredients to dispenser bins in
// menu order. An ingredient the student left unconfigured (or configured at
// zero) gets the house default portion.
func buildSlotPlan(menu *models.Menu, config map[string]models.PortionItem) []models.SlotPortion {
	plan := make([]models.SlotPortion, 0, len(slotPositions))
	for i, item := range menu.Items {
		if i >= len(slotPositions) {
			break
		}
		weight := config[item.ItemID].RawWeight
		if weight <= 0 {
			weight = DefaultWeight
		}
		plan = append(plan, models.SlotPortion{Position: slotPositions[i], Weight: weight})
	}
	return plan
}

// PollNext claims the head pending job for the actuator. ok=false means
// nothing to do right now: the queue is empty or a job is mid-dispense.
func (s *PickupService) PollNext(ctx context.Context) (*models.DispenseJob, bool, error) {
	return s.queue.ClaimNext(ctx)
}

// ReportComplete marks the student's processing job for the slot as done
func (s *PickupService) ReportComplete(ctx context.Context, studentID string, slot models.Slot) (*models.DispenseJob, error) {
	job, err := s.queue.Complete(ctx, models.JobID(studentID, slot))
	if err != nil {
		if stderrors.Is(err, queue.ErrNotProcessing) {
			return nil, ErrNotProcessing
		}
		return nil, err
	}
	return job, nil
}

// Abandon returns the student's processing job for the slot to the tail of
// the pending sequence
func (s *PickupService) Abandon(ctx context.Context, studentID string, slot models.Slot, reason string) (*models.DispenseJob, error) {
	job, err := s.queue.Abandon(ctx, models.JobID(studentID, slot), reason)
	if err != nil {
		if stderrors.Is(err, queue.ErrNotProcessing) {
			return nil, ErrNotProcessing
		}
		return nil, err
	}
	return job, nil
}

// QueueSnapshot returns the current queue and completed history
func (s *PickupService) QueueSnapshot() models.QueueState {
	return s.queue.Snapshot()
}

// Estimate projects the wait for a job at the given queue position,
// counting the job itself
func (s *PickupService) Estimate(position int) int {
	return position * int(s.serviceTime.Seconds())
}

// PickupQR renders the student's pickup token as a PNG QR code
func (s *PickupService) PickupQR(studentID string) ([]byte, error) {
	png, err := qrcode.Encode(studentID, qrcode.Medium, qrSize)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return png, nil
}
