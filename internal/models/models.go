package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MealType identifies which meal of the day a slot covers
type MealType string

const (
	MealLunch  MealType = "lunch"
	MealDinner MealType = "dinner"
)

// ParseMealType validates a meal type string from the wire
func ParseMealType(s string) (MealType, bool) {
	switch MealType(s) {
	case MealLunch, MealDinner:
		return MealType(s), true
	}
	return "", false
}

// Slot identifies one vote/dispense cycle: a calendar date plus a meal type
type Slot struct {
	Date string   `json:"date"` // YYYY-MM-DD
	Type MealType `json:"type"`
}

func (s Slot) String() string {
	return s.Date + "/" + string(s.Type)
}

// MenuItem is one dish within a menu
type MenuItem struct {
	ItemID   string `json:"itemId"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// Menu is a fixed combination of dishes students can vote for
type Menu struct {
	MenuID string     `json:"menuId"`
	Name   string     `json:"name"`
	Items  []MenuItem `json:"items"`
}

// PortionItem is a student's configured portion for one menu item
type PortionItem struct {
	RawWeight int `json:"rawWeight"` // grams, uncooked
	Calories  int `json:"calories"`
}

// Student holds identity plus per-menu portion configuration.
// MenuConfigs maps menuId -> itemId -> portion.
type Student struct {
	StudentID   string                            `json:"studentId"`
	Name        string                            `json:"name"`
	MenuConfigs map[string]map[string]PortionItem `json:"menuConfigs,omitempty"`
}

// VoteOption is one candidate menu within a slot's vote
type VoteOption struct {
	MenuID          string   `json:"menuId"`
	Name            string   `json:"name"`
	VotedStudentIDs []string `json:"votedStudentIds"`
}

// VoteRecord is the persisted vote state for one slot. Winner stays null
// until the slot is closed and is immutable afterwards.
type VoteRecord struct {
	Date     string         `json:"date"`
	Type     MealType       `json:"type"`
	Menus    []VoteOption   `json:"menus"`
	Winner   *string        `json:"winner"`
	TotalRaw map[string]int `json:"totalRaw"` // ingredient name -> total grams
}

// Slot returns the record's slot key
func (r *VoteRecord) Slot() Slot {
	return Slot{Date: r.Date, Type: r.Type}
}

// Closed reports whether the slot has been resolved
func (r *VoteRecord) Closed() bool {
	return r.Winner != nil
}

// JobStatus is the dispense job lifecycle state
type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
)

// SlotPortion is one physical dispenser bin assignment
type SlotPortion struct {
	Position int // fixed bin index on the dispenser
	Weight   int // grams
}

// EncodeSlotPlan renders a slot plan in the actuator wire format:
// semicolon-separated "position,grams" pairs, e.g. "2,100;5,150;8,80".
// The dispenser firmware parses this text verbatim.
func EncodeSlotPlan(plan []SlotPortion) string {
	parts := make([]string, len(plan))
	for i, p := range plan {
		parts[i] = fmt.Sprintf("%d,%d", p.Position, p.Weight)
	}
	return strings.Join(parts, ";")
}

// ParseSlotPlan decodes the actuator wire format back into bin assignments
func ParseSlotPlan(s string) ([]SlotPortion, error) {
	if s == "" {
		return nil, nil
	}
	var plan []SlotPortion
	for _, part := range strings.Split(s, ";") {
		pos, weight, ok := strings.Cut(part, ",")
		if !ok {
			return nil, fmt.Errorf("malformed slot pair %q", part)
		}
		p, err := strconv.Atoi(pos)
		if err != nil {
			return nil, fmt.Errorf("malformed position in %q", part)
		}
		w, err := strconv.Atoi(weight)
		if err != nil {
			return nil, fmt.Errorf("malformed weight in %q", part)
		}
		plan = append(plan, SlotPortion{Position: p, Weight: w})
	}
	return plan, nil
}

// DispenseJob is one student's queued physical dispense request.
// The JSON shape is the actuator wire format and must stay stable.
type DispenseJob struct {
	StudentID   string     `json:"studentId"`
	StudentName string     `json:"studentName"`
	Date        string     `json:"date"`
	Type        MealType   `json:"type"`
	MenuID      string     `json:"menuId"`
	MenuName    string     `json:"menuName"`
	FoodSlots   string     `json:"foodSlots"`
	Status      JobStatus  `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Slot returns the job's slot key
func (j *DispenseJob) Slot() Slot {
	return Slot{Date: j.Date, Type: j.Type}
}

// jobNamespace seeds deterministic job IDs. Never change it: resubmitted
// requests must keep mapping to the same job.
var jobNamespace = uuid.MustParse("9f2c1a4e-58d3-4e71-b2a0-3c61c3f0b9d4")

// JobID derives the deterministic id for a (student, slot) pair. Submitting
// the same pickup twice therefore names the same job, which is what makes
// client retries idempotent.
func JobID(studentID string, slot Slot) string {
	name := studentID + "|" + slot.Date + "|" + string(slot.Type)
	return uuid.NewSHA1(jobNamespace, []byte(name)).String()
}

// ID returns the job's deterministic id
func (j *DispenseJob) ID() string {
	return JobID(j.StudentID, j.Slot())
}

// QueueState is the persisted queue document: active jobs in FIFO order
// plus a bounded completed history.
type QueueState struct {
	Queue     []DispenseJob `json:"queue"`
	Completed []DispenseJob `json:"completed"`
}

// StudentList is the persisted student directory document
type StudentList struct {
	Students []Student `json:"students"`
}

// MenuList is the persisted menu catalog document
type MenuList struct {
	Menus []Menu `json:"menus"`
}

// WSMessage is an event pushed to websocket clients
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
