package services

import (
	"fmt"
	"time"

	"github.com/mycomize/mycomize-go/internal/domain/user"
	"github.com/mycomize/mycomize-go/internal/infrastructure/observability/logging"
	"github.com/mycomize/mycomize-go/internal/infrastructure/observability/performance"
	"github.com/mycomize/mycomize-go/internal/infrastructure/payments"
	"github.com/mycomize/mycomize-go/pkg/config"
)

// Plan is a purchasable access tier.
type Plan struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	AmountCents     int64  `json:"amount_cents"`
	Currency        string `json:"currency"`
	BillingInterval string `json:"billing_interval"`
}

// plans is the static catalog. A single lifetime tier for now.
var plans = []Plan{
	{
		ID:              "lifetime",
		Name:            "Lifetime Access",
		Description:     "One-time purchase, full access forever",
		AmountCents:     2999,
		Currency:        "usd",
		BillingInterval: "one_time",
	},
}

// PaymentService opens payment intents against the configured gateway and
// records the pending intent on the user so the webhook can map it back.
type PaymentService struct {
	gateway     payments.Gateway
	userRepo    user.Repository
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewPaymentService creates a new payment application service.
func NewPaymentService(gateway payments.Gateway, userRepo user.Repository, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *PaymentService {
	return &PaymentService{
		gateway:     gateway,
		userRepo:    userRepo,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// Plans returns the purchasable catalog.
func (s *PaymentService) Plans() []Plan {
	return plans
}

// PlanByID resolves a plan from the catalog.
func (s *PaymentService) PlanByID(id string) (*Plan, error) {
	for i := range plans {
		if plans[i].ID == id {
			return &plans[i], nil
		}
	}
	return nil, fmt.Errorf("%w: plan %q", ErrNotFound, id)
}

// StatusResult is the user's current payment state, the polled fallback for
// clients without an open payment-status stream.
type StatusResult struct {
	PaymentStatus string     `json:"payment_status"`
	PaymentMethod *string    `json:"payment_method,omitempty"`
	PaymentDate   *time.Time `json:"payment_date,omitempty"`
}

// Status returns the user's payment state.
func (s *PaymentService) Status(userID int64) (*StatusResult, error) {
	u, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if u == nil {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}
	return &StatusResult{
		PaymentStatus: u.PaymentStatus,
		PaymentMethod: u.PaymentMethod,
		PaymentDate:   u.PaymentDate,
	}, nil
}

// IntentResult is what the frontend needs to confirm a payment.
type IntentResult struct {
	ClientSecret    string `json:"client_secret"`
	PaymentIntentID string `json:"payment_intent_id"`
	PublishableKey  string `json:"publishable_key"`
}

// CreatePaymentIntent opens a Stripe payment intent for the plan, creating a
// Stripe customer for the user on first purchase, and stores the intent id on
// the user row for webhook correlation.
func (s *PaymentService) CreatePaymentIntent(userID int64, planID string) (*IntentResult, error) {
	marker := s.perfTracker.StartOperation("payment_create_intent")
	defer marker.Complete()

	plan, err := s.PlanByID(planID)
	if err != nil {
		marker.SetError(err)
		return nil, err
	}

	u, err := s.userRepo.FindByID(userID)
	if err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if u == nil {
		marker.SetError(ErrNotFound)
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}
	if u.PaymentStatus == user.PaymentStatusPaid {
		marker.SetError(ErrConflict)
		return nil, fmt.Errorf("%w: account is already paid", ErrConflict)
	}

	customerID := ""
	if u.StripeCustomerID != nil {
		customerID = *u.StripeCustomerID
	}
	if customerID == "" {
		customerID, err = s.gateway.CreateCustomer(u.Username)
		if err != nil {
			marker.SetError(err)
			return nil, err
		}
	}

	intent, err := s.gateway.CreatePaymentIntent(plan.AmountCents, plan.Currency, customerID, map[string]string{
		"user_id": fmt.Sprintf("%d", u.ID),
		"plan_id": plan.ID,
	})
	if err != nil {
		marker.SetError(err)
		return nil, err
	}

	method := user.PaymentMethodStripe
	if err := s.userRepo.UpdatePaymentStatus(u.ID, u.PaymentStatus, &method, &intent.ID, &customerID); err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to record payment intent: %w", err)
	}

	s.logger.Payment().Info("Payment intent opened", "userId", u.ID, "plan", plan.ID, "intentId", intent.ID)
	marker.SetSuccess(true)
	return &IntentResult{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
		PublishableKey:  config.StripePublishableKey,
	}, nil
}
