package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/bra3n/bra3n/internal/middleware"
	"github.com/bra3n/bra3n/internal/services/billing"
)

// BillingHandler creates Stripe payment links for plan upgrades
type BillingHandler struct {
	billing *billing.Service
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(svc *billing.Service) *BillingHandler {
	return &BillingHandler{billing: svc}
}

// RegisterRoutes registers billing routes on the given router
// The router should already have the /billing prefix
func (h *BillingHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/payment-link", h.CreatePaymentLink).Methods("POST")
	r.HandleFunc("/payment-link", h.Preflight).Methods("OPTIONS")
}

// CreatePaymentLinkRequest identifies the user upgrading
type CreatePaymentLinkRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
}

// CreatePaymentLinkResponse carries the checkout URL
type CreatePaymentLinkResponse struct {
	PaymentURL string `json:"payment_url"`
}

// Preflight answers CORS preflight requests with a bare 200
func (h *BillingHandler) Preflight(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// CreatePaymentLink creates a payment link for upgrading to the pro plan.
// The user_id in the body must match the authenticated caller.
func (h *BillingHandler) CreatePaymentLink(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req CreatePaymentLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid user_id")
		return
	}
	if userID != user.ID {
		respondJSONError(w, http.StatusForbidden, "Forbidden", "Cannot create payment link for another user")
		return
	}

	url, err := h.billing.CreateUpgradeLink(user)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create payment link")
		return
	}

	respondJSON(w, http.StatusOK, CreatePaymentLinkResponse{PaymentURL: url})
}
