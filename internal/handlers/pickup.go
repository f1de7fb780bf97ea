package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/canteenlab/mealqueue/internal/models"
	"github.com/canteenlab/mealqueue/internal/services"
)

// handleRequestPickup admits a student into the dispense queue
func (h *Handlers) handleRequestPickup(w http.ResponseWriter, r *http.Request) {
	var req PickupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.StudentID == "" || req.Date == "" || req.Type == "" {
		respondError(w, BadRequest("Missing required fields"))
		return
	}
	mealType, ok := models.ParseMealType(req.Type)
	if !ok {
		respondError(w, BadRequest("Invalid meal type"))
		return
	}
	slot := models.Slot{Date: req.Date, Type: mealType}

	result, err := h.Pickup.RequestPickup(r.Context(), req.StudentID, slot)
	if err != nil {
		var dup *services.DuplicateRequestError
		if stderrors.As(err, &dup) {
			respondJSON(w, http.StatusConflict, PickupConflictResponse{
				Code:      ErrCodeAlreadyQueued,
				Message:   "Already in queue",
				QueueItem: dup.Job,
			})
			return
		}
		respondError(w, err)
		return
	}

	respondOK(w, PickupResponse{
		Success:       true,
		Message:       "Added to queue",
		QueueItem:     result.Job,
		EstimatedTime: result.EstimatedSeconds,
	})
}

// handlePickupQR serves the student's pickup token as a PNG QR code
func (h *Handlers) handlePickupQR(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "studentId")
	if studentID == "" {
		respondError(w, BadRequest("Missing studentId parameter"))
		return
	}
	if _, err := h.Directory.GetStudent(r.Context(), studentID); err != nil {
		respondError(w, err)
		return
	}

	png, err := h.Pickup.PickupQR(studentID)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(png)
}
