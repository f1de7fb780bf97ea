package handlers

import (
	"net/http"

	"github.com/canteenlab/mealqueue/internal/models"
)

// handleNextJob is the actuator poll: claim the head pending job if the
// dispenser is free. Both "queue empty" and "job mid-dispense" answer
// hasItem=false; the firmware just polls again.
func (h *Handlers) handleNextJob(w http.ResponseWriter, r *http.Request) {
	job, ok, err := h.Pickup.PollNext(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	if !ok {
		respondOK(w, NextJobResponse{HasItem: false, Message: "No items in queue"})
		return
	}
	respondOK(w, NextJobResponse{HasItem: true, Item: job})
}

// handleCompleteJob records the dispenser's completion callback
func (h *Handlers) handleCompleteJob(w http.ResponseWriter, r *http.Request) {
	studentID, slot, err := parseJobParams(r)
	if err != nil {
		respondError(w, err)
		return
	}

	if _, err := h.Pickup.ReportComplete(r.Context(), studentID, slot); err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, MessageResponse{Success: true, Message: "Queue item completed"})
}

// handleAbandonJob returns a processing job to the tail of the queue
func (h *Handlers) handleAbandonJob(w http.ResponseWriter, r *http.Request) {
	studentID, slot, err := parseJobParams(r)
	if err != nil {
		respondError(w, err)
		return
	}

	reason := "unspecified"
	var req AbandonRequest
	if decodeErr := decodeJSON(r, &req); decodeErr == nil && req.Reason != "" {
		reason = req.Reason
	}

	job, err := h.Pickup.Abandon(r.Context(), studentID, slot, reason)
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, PickupResponse{
		Success:   true,
		Message:   "Queue item returned to queue",
		QueueItem: job,
	})
}

// handleGetQueue returns the queue snapshot for the serving-counter display
func (h *Handlers) handleGetQueue(w http.ResponseWriter, r *http.Request) {
	respondOK(w, h.Pickup.QueueSnapshot())
}

// parseJobParams extracts the (studentId, slot) job key from query params
func parseJobParams(r *http.Request) (string, models.Slot, error) {
	studentID := r.URL.Query().Get("studentId")
	if studentID == "" {
		return "", models.Slot{}, BadRequest("Missing parameters")
	}
	slot, err := parseSlot(r)
	if err != nil {
		return "", models.Slot{}, err
	}
	return studentID, slot, nil
}
