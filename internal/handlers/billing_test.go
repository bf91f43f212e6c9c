package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v81"
	"go.uber.org/zap"

	"github.com/bra3n/bra3n/internal/models"
	"github.com/bra3n/bra3n/internal/services/billing"
)

type stubPaymentLinkAPI struct {
	url string
}

func (s *stubPaymentLinkAPI) New(params *stripe.PaymentLinkParams) (*stripe.PaymentLink, error) {
	return &stripe.PaymentLink{URL: s.url}, nil
}

func newBillingHandler() *BillingHandler {
	svc := billing.NewWithAPI(&stubPaymentLinkAPI{url: "https://buy.stripe.com/test_link"}, "price_pro", zap.NewNop())
	return NewBillingHandler(svc)
}

func TestCreatePaymentLink(t *testing.T) {
	t.Parallel()

	user := testUser(models.PlanTypeStarter)
	router := routerFor("/billing", newBillingHandler().RegisterRoutes)

	req := authedRequest(t, "POST", "/billing/payment-link", CreatePaymentLinkRequest{UserID: user.ID.String()}, user)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	body := decodeEnvelope(t, rec)
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatal("Expected data in response envelope")
	}
	if data["payment_url"] != "https://buy.stripe.com/test_link" {
		t.Errorf("Unexpected payment_url: %v", data["payment_url"])
	}
}

func TestCreatePaymentLink_UserMismatch(t *testing.T) {
	t.Parallel()

	user := testUser(models.PlanTypeStarter)
	router := routerFor("/billing", newBillingHandler().RegisterRoutes)

	req := authedRequest(t, "POST", "/billing/payment-link", CreatePaymentLinkRequest{UserID: uuid.New().String()}, user)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected 403 when user_id does not match caller, got %d", rec.Code)
	}
}

func TestCreatePaymentLink_InvalidBody(t *testing.T) {
	t.Parallel()

	user := testUser(models.PlanTypeStarter)
	router := routerFor("/billing", newBillingHandler().RegisterRoutes)

	req := authedRequest(t, "POST", "/billing/payment-link", map[string]string{"user_id": "not-a-uuid"}, user)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid user_id, got %d", rec.Code)
	}
}

func TestPaymentLinkPreflight(t *testing.T) {
	t.Parallel()

	router := routerFor("/billing", newBillingHandler().RegisterRoutes)

	req := httptest.NewRequest("OPTIONS", "/billing/payment-link", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 for preflight, got %d", rec.Code)
	}
}
