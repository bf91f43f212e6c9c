package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/bra3n/bra3n/internal/database"
	"github.com/bra3n/bra3n/internal/middleware"
	"github.com/bra3n/bra3n/internal/models"
	"github.com/bra3n/bra3n/internal/queue"
	"github.com/bra3n/bra3n/internal/validation"
)

// MaxDocumentTextLength caps the extracted text accepted for a document upload
const MaxDocumentTextLength = 2_000_000

// DocumentTextStage stages extracted document text between upload and the
// summarization worker
type DocumentTextStage interface {
	Put(ctx context.Context, documentID uuid.UUID, text string) error
	Delete(ctx context.Context, documentID uuid.UUID) error
}

// DocumentHandler handles document upload and status requests
type DocumentHandler struct {
	docRepo   database.DocumentRepositoryInterface
	brainRepo database.BrainRepositoryInterface
	features  *FeatureHandler
	docText   DocumentTextStage
	jobQueue  queue.JobQueue
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(
	docRepo database.DocumentRepositoryInterface,
	brainRepo database.BrainRepositoryInterface,
	features *FeatureHandler,
	docText DocumentTextStage,
	jobQueue queue.JobQueue,
) *DocumentHandler {
	return &DocumentHandler{
		docRepo:   docRepo,
		brainRepo: brainRepo,
		features:  features,
		docText:   docText,
		jobQueue:  jobQueue,
	}
}

// RegisterRoutes registers document routes on the given router
// The router should already have the /brains/{brain_id}/documents prefix
func (h *DocumentHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListDocuments).Methods("GET")
	r.HandleFunc("", h.UploadDocument).Methods("POST")
	r.HandleFunc("/{id}", h.GetDocument).Methods("GET")
	r.HandleFunc("/{id}", h.DeleteDocument).Methods("DELETE")
}

// UploadDocumentRequest carries a document's metadata and extracted text
type UploadDocumentRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=500"`
	ContentType string `json:"content_type" validate:"required,max=200"`
	Text        string `json:"text" validate:"required,max=2000000"`
}

// ListDocuments lists documents in a brain
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	brain, ok := h.ownedBrain(w, r, user.ID)
	if !ok {
		return
	}

	docs, err := h.docRepo.GetByBrainID(r.Context(), brain.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve documents")
		return
	}

	respondJSON(w, http.StatusOK, docs)
}

// UploadDocument accepts a document for processing. Upload is a plan
// capability: starter users are rejected before anything is stored.
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	ctx := r.Context()

	features, err := h.features.Evaluate(ctx, user.ID, user.PlanType)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to evaluate plan limits")
		return
	}
	if !features.CanUploadDocuments {
		respondJSONError(w, http.StatusForbidden, "Plan Limit", "Document upload requires the pro plan")
		return
	}

	brain, ok := h.ownedBrain(w, r, user.ID)
	if !ok {
		return
	}

	var req UploadDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	req.Name = validation.SanitizeText(req.Name)
	if err := validation.Validate.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	doc := &models.Document{
		ID:          uuid.New(),
		BrainID:     brain.ID,
		UserID:      user.ID,
		Name:        req.Name,
		ContentType: req.ContentType,
		SizeBytes:   int64(len(req.Text)),
		Status:      models.DocumentStatusPending,
	}
	if err := h.docRepo.Create(ctx, doc); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create document")
		return
	}

	if err := h.docText.Put(ctx, doc.ID, req.Text); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to stage document text")
		return
	}

	if h.jobQueue != nil {
		job := queue.NewDocumentSummaryJob(user.ID, doc.ID)
		if err := h.jobQueue.Enqueue(ctx, job); err != nil {
			log.Printf("Failed to enqueue document summary job for %s: %v", doc.ID, err)
		}
	}

	respondJSON(w, http.StatusAccepted, doc)
}

// GetDocument retrieves a document's metadata and processing status
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	doc, ok := h.ownedDocument(w, r, user.ID)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, doc)
}

// DeleteDocument deletes a document and its staged text
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	doc, ok := h.ownedDocument(w, r, user.ID)
	if !ok {
		return
	}

	if err := h.docRepo.Delete(r.Context(), doc.ID); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to delete document")
		return
	}
	if err := h.docText.Delete(r.Context(), doc.ID); err != nil {
		log.Printf("Failed to delete staged text for %s: %v", doc.ID, err)
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Document deleted"})
}

func (h *DocumentHandler) ownedBrain(w http.ResponseWriter, r *http.Request, userID uuid.UUID) (*models.Brain, bool) {
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

func (h *DocumentHandler) ownedDocument(w http.ResponseWriter, r *http.Request, userID uuid.UUID) (*models.Document, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid document ID")
		return nil, false
	}

	doc, err := h.docRepo.GetByID(r.Context(), id)
	if err != nil || doc.UserID != userID {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Document not found")
		return nil, false
	}

	return doc, true
}
