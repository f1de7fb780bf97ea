package services

import (
	"fmt"

	"github.com/canteenlab/mealqueue/internal/models"
)

// Service errors
var (
	ErrAlreadyOpen     = &ServiceError{Message: "a vote already exists for this slot"}
	ErrSlotNotFound    = &ServiceError{Message: "no vote exists for this slot"}
	ErrSlotClosed      = &ServiceError{Message: "voting for this slot is closed"}
	ErrAlreadyClosed   = &ServiceError{Message: "this slot has already been resolved"}
	ErrUnknownOption   = &ServiceError{Message: "menu is not a candidate in this slot"}
	ErrNoCandidates    = &ServiceError{Message: "a vote needs at least one candidate menu"}
	ErrStudentNotFound = &ServiceError{Message: "student not found"}
	ErrSlotNotResolved = &ServiceError{Message: "no resolved vote for this slot"}
	ErrMenuNotFound    = &ServiceError{Message: "winning menu not found"}
	ErrConfigMissing   = &ServiceError{Message: "student has no portion configuration for the winning menu"}
	ErrNotProcessing   = &ServiceError{Message: "no matching job is being processed"}
)

// ServiceError represents a service-level error
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// DuplicateRequestError signals that an active job already exists for the
// (student, slot) pair. It carries the existing job so a client retry gets
// the same answer as the original submission.
type DuplicateRequestError struct {
	Job *models.DispenseJob
}

func (e *DuplicateRequestError) Error() string {
	return fmt.Sprintf("pickup already queued for student %s", e.Job.StudentID)
}
