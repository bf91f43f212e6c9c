package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/bra3n/bra3n/internal/database"
	"github.com/bra3n/bra3n/internal/middleware"
)

// SummaryHandler serves saved note summaries
type SummaryHandler struct {
	summaryRepo database.SummaryRepositoryInterface
	noteRepo    database.NoteRepositoryInterface
}

// NewSummaryHandler creates a new summary handler
func NewSummaryHandler(summaryRepo database.SummaryRepositoryInterface, noteRepo database.NoteRepositoryInterface) *SummaryHandler {
	return &SummaryHandler{summaryRepo: summaryRepo, noteRepo: noteRepo}
}

// RegisterRoutes registers summary routes on the given router
// The router should already have the /brains/{brain_id}/notes/{id}/summary prefix
func (h *SummaryHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.GetSummary).Methods("GET")
}

// GetSummary returns the saved summary for a note, or 204 when none is saved yet
func (h *SummaryHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	vars := mux.Vars(r)
	brainID, err := uuid.Parse(vars["brain_id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid brain ID")
		return
	}
	noteID, err := uuid.Parse(vars["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid note ID")
		return
	}

	note, err := h.noteRepo.GetByID(r.Context(), noteID)
	if err != nil || note.UserID != user.ID || note.BrainID != brainID {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Note not found")
		return
	}

	summary, err := h.summaryRepo.GetNoteSummary(r.Context(), noteID, brainID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve summary")
		return
	}
	if summary == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}
