package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/bra3n/bra3n/internal/database"
	"github.com/bra3n/bra3n/internal/middleware"
	"github.com/bra3n/bra3n/internal/models"
	"github.com/bra3n/bra3n/internal/validation"
)

// BrainHandler handles brain-related requests
type BrainHandler struct {
	brainRepo database.BrainRepositoryInterface
	features  *FeatureHandler
}

// NewBrainHandler creates a new brain handler
func NewBrainHandler(brainRepo database.BrainRepositoryInterface, features *FeatureHandler) *BrainHandler {
	return &BrainHandler{brainRepo: brainRepo, features: features}
}

// RegisterRoutes registers brain routes on the given router
// The router should already have the /brains prefix
func (h *BrainHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListBrains).Methods("GET")
	r.HandleFunc("", h.CreateBrain).Methods("POST")
	r.HandleFunc("/{id}", h.GetBrain).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateBrain).Methods("PATCH")
	r.HandleFunc("/{id}", h.DeleteBrain).Methods("DELETE")
}

// CreateBrainRequest represents a create brain request
type CreateBrainRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
}

// UpdateBrainRequest represents an update brain request
type UpdateBrainRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	IsShared    *bool   `json:"is_shared,omitempty"`
}

// ListBrains lists the authenticated user's brains
func (h *BrainHandler) ListBrains(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	brains, err := h.brainRepo.GetByUserID(r.Context(), user.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve brains")
		return
	}

	respondJSON(w, http.StatusOK, brains)
}

// CreateBrain creates a new brain, subject to the user's plan limits
func (h *BrainHandler) CreateBrain(w http.ResponseWriter, r *http.Request) {
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
	if !features.CanCreateBrains || features.BrainLimitReached {
		respondJSONError(w, http.StatusForbidden, "Plan Limit", "Brain limit reached for your plan")
		return
	}

	var req CreateBrainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	req.Name = validation.SanitizeText(req.Name)
	if err := validation.Validate.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	brain := &models.Brain{
		ID:          uuid.New(),
		UserID:      user.ID,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := h.brainRepo.Create(ctx, brain); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create brain")
		return
	}

	respondJSON(w, http.StatusCreated, brain)
}

// GetBrain retrieves a single brain owned by the user
func (h *BrainHandler) GetBrain(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	brain, ok := h.ownedBrain(w, r, user)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, brain)
}

// UpdateBrain updates a brain's name, description, or sharing flag
func (h *BrainHandler) UpdateBrain(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	brain, ok := h.ownedBrain(w, r, user)
	if !ok {
		return
	}

	var req UpdateBrainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	if req.Name != nil {
		brain.Name = validation.SanitizeText(*req.Name)
	}
	if req.Description != nil {
		brain.Description = req.Description
	}
	if req.IsShared != nil {
		// Sharing is a plan capability
		if *req.IsShared {
			features, err := h.features.Evaluate(r.Context(), user.ID, user.PlanType)
			if err != nil {
				respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to evaluate plan limits")
				return
			}
			if !features.CanShareBrains {
				respondJSONError(w, http.StatusForbidden, "Plan Limit", "Sharing brains requires the pro plan")
				return
			}
		}
		brain.IsShared = *req.IsShared
	}

	if err := h.brainRepo.Update(r.Context(), brain); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to update brain")
		return
	}

	respondJSON(w, http.StatusOK, brain)
}

// DeleteBrain deletes a brain and its contents
func (h *BrainHandler) DeleteBrain(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	brain, ok := h.ownedBrain(w, r, user)
	if !ok {
		return
	}

	if err := h.brainRepo.Delete(r.Context(), brain.ID); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to delete brain")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Brain deleted"})
}

// ownedBrain loads the brain from the path and verifies ownership, writing
// the error response itself when the lookup fails
func (h *BrainHandler) ownedBrain(w http.ResponseWriter, r *http.Request, user *models.User) (*models.Brain, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid brain ID")
		return nil, false
	}

	brain, err := h.brainRepo.GetByID(r.Context(), id)
	if err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Brain not found")
		return nil, false
	}
	if brain.UserID != user.ID {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Brain not found")
		return nil, false
	}

	return brain, true
}
