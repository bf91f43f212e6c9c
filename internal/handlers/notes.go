package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/bra3n/bra3n/internal/database"
	"github.com/bra3n/bra3n/internal/middleware"
	"github.com/bra3n/bra3n/internal/models"
	"github.com/bra3n/bra3n/internal/notes"
	"github.com/bra3n/bra3n/internal/queue"
	"github.com/bra3n/bra3n/internal/validation"
)

const (
	// MaxNoteContentLength is the maximum length for note content
	MaxNoteContentLength = 100000
	// MaxNoteTags is the maximum number of tags per note
	MaxNoteTags = 50
)

// NoteHandler handles note-related requests
type NoteHandler struct {
	noteRepo  database.NoteRepositoryInterface
	brainRepo database.BrainRepositoryInterface
	jobQueue  queue.JobQueue
}

// NewNoteHandler creates a new note handler
func NewNoteHandler(noteRepo database.NoteRepositoryInterface, brainRepo database.BrainRepositoryInterface, jobQueue queue.JobQueue) *NoteHandler {
	return &NoteHandler{noteRepo: noteRepo, brainRepo: brainRepo, jobQueue: jobQueue}
}

// RegisterRoutes registers note routes on the given router
// The router should already have the /brains/{brain_id}/notes prefix
func (h *NoteHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListNotes).Methods("GET")
	r.HandleFunc("", h.CreateNote).Methods("POST")
	r.HandleFunc("/{id}", h.GetNote).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateNote).Methods("PATCH")
	r.HandleFunc("/{id}", h.DeleteNote).Methods("DELETE")
}

// CreateNoteRequest represents a create note request
type CreateNoteRequest struct {
	Title   string   `json:"title" validate:"required,min=1,max=500"`
	Content string   `json:"content" validate:"max=100000"`
	Tags    []string `json:"tags,omitempty" validate:"max=50,dive,min=1,max=100"`
	AIModel string   `json:"ai_model,omitempty" validate:"omitempty,ai_model"`
}

// UpdateNoteRequest represents an update note request
type UpdateNoteRequest struct {
	Title   *string   `json:"title,omitempty" validate:"omitempty,min=1,max=500"`
	Content *string   `json:"content,omitempty" validate:"omitempty,max=100000"`
	Tags    *[]string `json:"tags,omitempty" validate:"omitempty,max=50,dive,min=1,max=100"`
	AIModel *string   `json:"ai_model,omitempty" validate:"omitempty,ai_model"`
}

// ListNotes lists notes in a brain, optionally filtered by search query and tag
func (h *NoteHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	brain, ok := h.ownedBrain(w, r, user.ID)
	if !ok {
		return
	}

	var tag *string
	if t := r.URL.Query().Get("tag"); t != "" {
		tag = &t
	}

	list, err := h.noteRepo.GetByBrainID(r.Context(), brain.ID, tag)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve notes")
		return
	}

	// Search narrows within the tag-filtered set
	if query := r.URL.Query().Get("q"); query != "" {
		list = notes.Search(list, query)
	}

	respondJSON(w, http.StatusOK, list)
}

// CreateNote creates a note in a brain and queues a summary job for it
func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	brain, ok := h.ownedBrain(w, r, user.ID)
	if !ok {
		return
	}

	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	req.Title = validation.SanitizeText(req.Title)
	if err := validation.Validate.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	model := models.AIModelClaude
	if req.AIModel != "" {
		model = models.AIModel(req.AIModel)
	}

	note := &models.Note{
		ID:      uuid.New(),
		BrainID: brain.ID,
		UserID:  user.ID,
		Title:   req.Title,
		Content: req.Content,
		Tags:    normalizeTags(req.Tags),
		AIModel: model,
	}
	if err := h.noteRepo.Create(r.Context(), note); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create note")
		return
	}

	h.enqueueSummary(r, user.ID, note.ID)

	respondJSON(w, http.StatusCreated, note)
}

// GetNote retrieves a single note
func (h *NoteHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	note, ok := h.ownedNote(w, r, user.ID)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, note)
}

// UpdateNote updates a note's fields and re-queues summarization
func (h *NoteHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	note, ok := h.ownedNote(w, r, user.ID)
	if !ok {
		return
	}

	var req UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	if req.Title != nil {
		note.Title = validation.SanitizeText(*req.Title)
	}
	if req.Content != nil {
		note.Content = *req.Content
	}
	if req.Tags != nil {
		note.Tags = normalizeTags(*req.Tags)
	}
	if req.AIModel != nil {
		note.AIModel = models.AIModel(*req.AIModel)
	}

	if err := h.noteRepo.Update(r.Context(), note); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to update note")
		return
	}

	h.enqueueSummary(r, user.ID, note.ID)

	respondJSON(w, http.StatusOK, note)
}

// DeleteNote deletes a note
func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	note, ok := h.ownedNote(w, r, user.ID)
	if !ok {
		return
	}

	if err := h.noteRepo.DeleteNote(r.Context(), note.ID); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to delete note")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Note deleted"})
}

// enqueueSummary queues a background summary job; failures are logged, not surfaced
func (h *NoteHandler) enqueueSummary(r *http.Request, userID, noteID uuid.UUID) {
	if h.jobQueue == nil {
		return
	}
	job := queue.NewNoteSummaryJob(userID, noteID)
	if err := h.jobQueue.Enqueue(r.Context(), job); err != nil {
		log.Printf("Failed to enqueue note summary job for %s: %v", noteID, err)
	}
}

func (h *NoteHandler) ownedBrain(w http.ResponseWriter, r *http.Request, userID uuid.UUID) (*models.Brain, bool) {
	brainID, err := uuid.Parse(mux.Vars(r)["brain_id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid brain ID")
		return nil, false
	}

	brain, err := h.brainRepo.GetByID(r.Context(), brainID)
	if err != nil || brain.UserID != userID {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Brain not found")
		return nil, false
	}

	return brain, true
}

func (h *NoteHandler) ownedNote(w http.ResponseWriter, r *http.Request, userID uuid.UUID) (*models.Note, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid note ID")
		return nil, false
	}

	note, err := h.noteRepo.GetByID(r.Context(), id)
	if err != nil || note.UserID != userID {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Note not found")
		return nil, false
	}

	return note, true
}

// normalizeTags trims and dedupes tags, preserving first-seen order
func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = validation.SanitizeText(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
