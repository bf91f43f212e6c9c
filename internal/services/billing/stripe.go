package billing

import (
	"fmt"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"go.uber.org/zap"

	"github.com/bra3n/bra3n/internal/models"
)

// PaymentLinkAPI is the slice of the Stripe client used to create payment links
type PaymentLinkAPI interface {
	New(params *stripe.PaymentLinkParams) (*stripe.PaymentLink, error)
}

// Service creates checkout payment links for plan upgrades
type Service struct {
	paymentLinks PaymentLinkAPI
	proPriceID   string
	logger       *zap.Logger
}

// New creates a billing service backed by the Stripe API
func New(apiKey, proPriceID string, logger *zap.Logger) *Service {
	sc := &client.API{}
	sc.Init(apiKey, nil)
	return &Service{
		paymentLinks: sc.PaymentLinks,
		proPriceID:   proPriceID,
		logger:       logger,
	}
}

// NewWithAPI creates a billing service with a custom payment link API, used in tests
func NewWithAPI(api PaymentLinkAPI, proPriceID string, logger *zap.Logger) *Service {
	return &Service{
		paymentLinks: api,
		proPriceID:   proPriceID,
		logger:       logger,
	}
}

// CreateUpgradeLink creates a payment link for upgrading the user to the pro plan.
// The user ID travels in the link metadata so the fulfillment webhook can
// attribute the purchase.
func (s *Service) CreateUpgradeLink(user *models.User) (string, error) {
	if user == nil {
		return "", fmt.Errorf("user is required")
	}

	params := &stripe.PaymentLinkParams{
		LineItems: []*stripe.PaymentLinkLineItemParams{
			{
				Price:    stripe.String(s.proPriceID),
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.AddMetadata("user_id", user.ID.String())
	params.AddMetadata("plan_type", string(models.PlanTypePro))

	link, err := s.paymentLinks.New(params)
	if err != nil {
		s.logger.Error("failed_to_create_payment_link",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
		return "", fmt.Errorf("failed to create payment link: %w", err)
	}

	s.logger.Info("payment_link_created",
		zap.String("user_id", user.ID.String()),
		zap.String("payment_link_id", link.ID),
	)

	return link.URL, nil
}
