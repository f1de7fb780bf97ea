package handlers

import "github.com/canteenlab/mealqueue/internal/models"

// PickupResponse is the response for an admitted pickup request
type PickupResponse struct {
	Success       bool                `json:"success"`
	Message       string              `json:"message"`
	QueueItem     *models.DispenseJob `json:"queueItem"`
	EstimatedTime int                 `json:"estimatedTime"` // seconds
}

// PickupConflictResponse is returned when an active job already exists for
// the (student, slot) pair. It carries the existing item so the client can
// keep showing the original queue position.
type PickupConflictResponse struct {
	Code      string              `json:"code"`
	Message   string              `json:"error"`
	QueueItem *models.DispenseJob `json:"queueItem"`
}

// NextJobResponse is the actuator poll response
type NextJobResponse struct {
	HasItem bool                `json:"hasItem"`
	Item    *models.DispenseJob `json:"item,omitempty"`
	Message string              `json:"message,omitempty"`
}

// MessageResponse is a generic success acknowledgement
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CloseSlotResponse is the response for resolving a slot's vote
type CloseSlotResponse struct {
	Winner   string         `json:"winner"`
	TotalRaw map[string]int `json:"totalRaw"`
}
