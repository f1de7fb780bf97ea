// Package queue implements the single-consumer dispatch queue feeding the
// physical dispenser. Jobs move Pending -> Processing -> Completed, strictly
// FIFO, with at most one Processing job at any instant because there is only
// one actuator. Every state change is written to the durable store before it
// is acknowledged, so a crash never leaves memory ahead of disk.
package queue

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/canteenlab/mealqueue/internal/errors"
	"github.com/canteenlab/mealqueue/internal/logger"
	"github.com/canteenlab/mealqueue/internal/metrics"
	"github.com/canteenlab/mealqueue/internal/models"
	"github.com/canteenlab/mealqueue/internal/store"
)

// DefaultRetention is how many completed jobs the history keeps
const DefaultRetention = 100

// Queue errors
var (
	// ErrNotProcessing guards Complete/Abandon against stale or duplicate
	// actuator callbacks: the named job is not the one being processed.
	ErrNotProcessing = stderrors.New("job is not processing")

	// ErrDuplicate rejects a second active job for the same (student, slot)
	ErrDuplicate = stderrors.New("active job already exists")
)

// Broadcaster pushes queue snapshots to interested observers (the
// serving-counter display). Implemented by the websocket hub.
type Broadcaster interface {
	QueueChanged(state models.QueueState)
}

// Queue is the dispatch queue state machine. The active slice holds jobs in
// enqueue order; index 0 is the head. The claimed job stays in the slice
// with status Processing until the actuator reports back, which is also
// exactly the persisted wire shape.
type Queue struct {
	log       logger.Logger
	store     store.QueueStore
	retention int

	mu          sync.Mutex
	active      []models.DispenseJob
	completed   []models.DispenseJob
	broadcaster Broadcaster
	now         func() time.Time
}

// New creates a Queue, recovering any persisted state from the store
func New(log logger.Logger, st store.QueueStore, retention int) (*Queue, error) {
	if retention <= 0 {
		retention = DefaultRetention
	}

	state, err := st.LoadQueue(context.Background())
	if err != nil {
		return nil, errors.Storage(err, "recover queue state")
	}

	q := &Queue{
		log:       log,
		store:     st,
		retention: retention,
		active:    state.Queue,
		completed: state.Completed,
		now:       time.Now,
	}

	if len(q.active) > 0 || len(q.completed) > 0 {
		log.Info("Recovered queue state", "active", len(q.active), "completed", len(q.completed))
	}
	q.publishMetricsLocked()

	return q, nil
}

// SetBroadcaster wires the observer notified after each state change
func (q *Queue) SetBroadcaster(b Broadcaster) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.broadcaster = b
}

// Enqueue appends a job to the tail of the pending sequence. If an active
// (pending or processing) job already exists for the same (student, slot),
// the existing job is returned alongside ErrDuplicate; the check runs under
// the queue lock so two concurrent submissions cannot both be admitted.
func (q *Queue) Enqueue(ctx context.Context, job models.DispenseJob) (*models.DispenseJob, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i := range q.active {
		if q.active[i].StudentID == job.StudentID && q.active[i].Slot() == job.Slot() {
			existing := q.active[i]
			return &existing, ErrDuplicate
		}
	}

	job.Status = models.StatusPending
	job.CompletedAt = nil

	q.active = append(q.active, job)
	if err := q.persistLocked(ctx); err != nil {
		q.active = q.active[:len(q.active)-1]
		return nil, err
	}

	metrics.JobsEnqueued.Inc()
	q.publishMetricsLocked()
	q.notifyLocked()
	q.log.Info("Job enqueued", "student", job.StudentID, "slot", job.Slot().String(), "depth", q.pendingLocked())

	queued := job
	return &queued, nil
}

// ClaimNext hands the oldest pending job to the actuator, marking it
// Processing. It returns ok=false when the queue is empty or a job is
// already being processed; both are normal poll outcomes, not errors.
func (q *Queue) ClaimNext(ctx context.Context) (*models.DispenseJob, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	head := -1
	for i := range q.active {
		switch q.active[i].Status {
		case models.StatusProcessing:
			// actuator must finish or abandon before claiming again
			return nil, false, nil
		case models.StatusPending:
			if head == -1 {
				head = i
			}
		}
	}
	if head == -1 {
		return nil, false, nil
	}

	q.active[head].Status = models.StatusProcessing
	if err := q.persistLocked(ctx); err != nil {
		q.active[head].Status = models.StatusPending
		return nil, false, err
	}

	q.publishMetricsLocked()
	q.notifyLocked()
	claimed := q.active[head]
	q.log.Info("Job claimed", "student", claimed.StudentID, "slot", claimed.Slot().String())
	return &claimed, true, nil
}

// Complete marks the currently processing job done, stamps completedAt and
// moves it into the bounded history. ErrNotProcessing when no processing job
// carries the given id.
func (q *Queue) Complete(ctx context.Context, jobID string) (*models.DispenseJob, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	idx := q.findProcessingLocked(jobID)
	if idx == -1 {
		return nil, ErrNotProcessing
	}

	job := q.active[idx]
	done := q.now().UTC()
	job.Status = models.StatusCompleted
	job.CompletedAt = &done

	prevActive, prevCompleted := q.active, q.completed

	q.active = append(append([]models.DispenseJob{}, q.active[:idx]...), q.active[idx+1:]...)
	q.completed = append(q.completed, job)
	if len(q.completed) > q.retention {
		q.completed = q.completed[len(q.completed)-q.retention:]
	}

	if err := q.persistLocked(ctx); err != nil {
		q.active, q.completed = prevActive, prevCompleted
		return nil, err
	}

	metrics.JobsCompleted.Inc()
	q.publishMetricsLocked()
	q.notifyLocked()
	q.log.Info("Job completed", "student", job.StudentID, "slot", job.Slot().String())
	return &job, nil
}

// Abandon returns a processing job to Pending at the tail of the queue so a
// stuck dispense cannot wedge the whole line. Tail, not head: jobs that
// arrived later have been waiting in the meantime. Whether the physical
// dispense actually happened is unknown; an operator adjudicates.
func (q *Queue) Abandon(ctx context.Context, jobID, reason string) (*models.DispenseJob, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	idx := q.findProcessingLocked(jobID)
	if idx == -1 {
		return nil, ErrNotProcessing
	}

	job := q.active[idx]
	job.Status = models.StatusPending
	job.CompletedAt = nil

	prevActive := q.active
	q.active = append(append([]models.DispenseJob{}, q.active[:idx]...), q.active[idx+1:]...)
	q.active = append(q.active, job)

	if err := q.persistLocked(ctx); err != nil {
		q.active = prevActive
		return nil, err
	}

	metrics.JobsAbandoned.WithLabelValues(reason).Inc()
	q.publishMetricsLocked()
	q.notifyLocked()
	q.log.Warn("Job abandoned", "student", job.StudentID, "slot", job.Slot().String(), "reason", reason)
	return &job, nil
}

// ActiveJob returns the pending or processing job for a (student, slot)
// pair, if any
func (q *Queue) ActiveJob(studentID string, slot models.Slot) (*models.DispenseJob, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i := range q.active {
		if q.active[i].StudentID == studentID && q.active[i].Slot() == slot {
			job := q.active[i]
			return &job, true
		}
	}
	return nil, false
}

// PendingDepth returns the number of jobs waiting to be claimed
func (q *Queue) PendingDepth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pendingLocked()
}

// ActiveCount returns the number of jobs not yet completed, the claimed
// one included. The wait estimate is based on this figure.
func (q *Queue) ActiveCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.active)
}

// Snapshot returns a copy of the full queue state
func (q *Queue) Snapshot() models.QueueState {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.snapshotLocked()
}

func (q *Queue) findProcessingLocked(jobID string) int {
	for i := range q.active {
		if q.active[i].Status == models.StatusProcessing && q.active[i].ID() == jobID {
			return i
		}
	}
	return -1
}

func (q *Queue) pendingLocked() int {
	n := 0
	for i := range q.active {
		if q.active[i].Status == models.StatusPending {
			n++
		}
	}
	return n
}

func (q *Queue) snapshotLocked() models.QueueState {
	return models.QueueState{
		Queue:     append([]models.DispenseJob{}, q.active...),
		Completed: append([]models.DispenseJob{}, q.completed...),
	}
}

// persistLocked writes the current state through to the store. Callers roll
// back their in-memory mutation when it fails, keeping the
// write-before-acknowledge contract.
func (q *Queue) persistLocked(ctx context.Context) error {
	if err := q.store.SaveQueue(ctx, q.snapshotLocked()); err != nil {
		return errors.Storage(err, "persist queue state")
	}
	return nil
}

func (q *Queue) publishMetricsLocked() {
	metrics.QueueDepth.Set(float64(q.pendingLocked()))
	processing := 0.0
	for i := range q.active {
		if q.active[i].Status == models.StatusProcessing {
			processing = 1.0
		}
	}
	metrics.ProcessingJobs.Set(processing)
}

func (q *Queue) notifyLocked() {
	if q.broadcaster != nil {
		q.broadcaster.QueueChanged(q.snapshotLocked())
	}
}
