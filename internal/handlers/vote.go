package handlers

import (
	"net/http"
	"strconv"

	"github.com/canteenlab/mealqueue/internal/services"
)

// handleOpenSlot creates the vote for a slot with a random candidate draw
// from the menu catalog
func (h *Handlers) handleOpenSlot(w http.ResponseWriter, r *http.Request) {
	slot, err := parseSlot(r)
	if err != nil {
		respondError(w, err)
		return
	}

	count := h.CandidateCount
	if raw := r.URL.Query().Get("count"); raw != "" {
		count, err = strconv.Atoi(raw)
		if err != nil || count < 1 {
			respondError(w, BadRequest("Invalid count parameter"))
			return
		}
	}

	menus, err := h.Directory.ListMenus(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	record, err := h.Ledger.OpenSlot(r.Context(), slot, services.PickCandidates(menus, count))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, record)
}

// handleCastVote records a student's vote for a candidate menu
func (h *Handlers) handleCastVote(w http.ResponseWriter, r *http.Request) {
	slot, err := parseSlot(r)
	if err != nil {
		respondError(w, err)
		return
	}
	studentID := r.URL.Query().Get("studentId")
	menuID := r.URL.Query().Get("menuId")
	if studentID == "" || menuID == "" {
		respondError(w, BadRequest("Missing studentId or menuId parameter"))
		return
	}

	if err := h.Ledger.CastVote(r.Context(), slot, studentID, menuID); err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, MessageResponse{Success: true, Message: "Vote recorded"})
}

// handleCloseSlot resolves the winner and returns the kitchen's aggregated
// raw weights
func (h *Handlers) handleCloseSlot(w http.ResponseWriter, r *http.Request) {
	slot, err := parseSlot(r)
	if err != nil {
		respondError(w, err)
		return
	}

	record, err := h.Ledger.CloseSlot(r.Context(), slot)
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, CloseSlotResponse{Winner: *record.Winner, TotalRaw: record.TotalRaw})
}

// handleGetSlots returns one vote record when date/type are given, or every
// record otherwise
func (h *Handlers) handleGetSlots(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("date") == "" && r.URL.Query().Get("type") == "" {
		records, err := h.Ledger.List(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}
		respondOK(w, records)
		return
	}

	slot, err := parseSlot(r)
	if err != nil {
		respondError(w, err)
		return
	}

	record, err := h.Ledger.Get(r.Context(), slot)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, record)
}
