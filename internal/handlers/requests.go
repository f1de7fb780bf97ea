package handlers

// PickupRequest represents a student's meal pickup submission
type PickupRequest struct {
	StudentID string `json:"studentId"`
	Date      string `json:"date"`
	Type      string `json:"type"`
}

// AbandonRequest carries the operator-supplied reason for returning a
// processing job to the queue
type AbandonRequest struct {
	Reason string `json:"reason"`
}
