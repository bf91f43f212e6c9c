package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/bra3n/bra3n/internal/database"
	"github.com/bra3n/bra3n/internal/middleware"
	"github.com/bra3n/bra3n/internal/models"
	"github.com/bra3n/bra3n/internal/plans"
)

// FeatureHandler evaluates and serves the caller's feature set
type FeatureHandler struct {
	evaluator plans.Evaluator
	usageRepo database.UsageRepositoryInterface
}

// NewFeatureHandler creates a new feature handler
func NewFeatureHandler(evaluator plans.Evaluator, usageRepo database.UsageRepositoryInterface) *FeatureHandler {
	return &FeatureHandler{evaluator: evaluator, usageRepo: usageRepo}
}

// RegisterRoutes registers feature routes on the given router
// The router should already have the /features prefix
func (h *FeatureHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.GetFeatures).Methods("GET")
}

// Evaluate resolves the feature set for a user using live usage counts
func (h *FeatureHandler) Evaluate(ctx context.Context, userID uuid.UUID, plan models.PlanType) (models.FeatureSet, error) {
	usage, err := h.usageRepo.GetUsage(ctx, userID)
	if err != nil {
		return models.FeatureSet{}, err
	}
	return h.evaluator.Evaluate(plan, usage), nil
}

// GetFeatures returns the evaluated feature set for the authenticated user
func (h *FeatureHandler) GetFeatures(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	features, err := h.Evaluate(r.Context(), user.ID, user.PlanType)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to evaluate features")
		return
	}

	respondJSON(w, http.StatusOK, features)
}
