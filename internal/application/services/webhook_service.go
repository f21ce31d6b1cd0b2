package services

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v76"

	"github.com/mycomize/mycomize-go/internal/domain/entities/commerce"
	"github.com/mycomize/mycomize-go/internal/domain/repositories"
	"github.com/mycomize/mycomize-go/internal/domain/user"
	"github.com/mycomize/mycomize-go/internal/infrastructure/messaging"
	"github.com/mycomize/mycomize-go/internal/infrastructure/observability/logging"
	"github.com/mycomize/mycomize-go/internal/infrastructure/observability/performance"
	"github.com/mycomize/mycomize-go/internal/infrastructure/payments"
	"github.com/mycomize/mycomize-go/internal/infrastructure/security"
)

// WebhookService processes verified Stripe events: it updates the user's
// payment state, records the order, and pushes the outcome over the
// payment-status stream. Database writes land before the broadcast so a
// client that refreshes on receipt sees consistent state.
type WebhookService struct {
	gateway        payments.Gateway
	userRepo       user.Repository
	orderRepo      repositories.OrderRepository
	paymentService *PaymentService
	publisher      messaging.Publisher
	logger         *logging.ChanneledLogger
	perfTracker    *performance.Tracker
}

// NewWebhookService creates a new webhook application service.
func NewWebhookService(gateway payments.Gateway, userRepo user.Repository, orderRepo repositories.OrderRepository,
	paymentService *PaymentService, publisher messaging.Publisher, logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker) *WebhookService {
	return &WebhookService{
		gateway:        gateway,
		userRepo:       userRepo,
		orderRepo:      orderRepo,
		paymentService: paymentService,
		publisher:      publisher,
		logger:         logger,
		perfTracker:    perfTracker,
	}
}

// HandleEvent verifies the payload signature and dispatches the event.
// Unrecognized event types are acknowledged and ignored so Stripe stops
// retrying them.
func (s *WebhookService) HandleEvent(payload []byte, signature string) error {
	marker := s.perfTracker.StartOperation("webhook_handle_event")
	defer marker.Complete()

	event, err := s.gateway.VerifyWebhook(payload, signature)
	if err != nil {
		marker.SetError(err)
		return fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	marker.AddMetadata("eventType", string(event.Type))

	switch event.Type {
	case "payment_intent.succeeded":
		err = s.handlePaymentIntent(event, user.PaymentStatusPaid)
	case "payment_intent.payment_failed":
		err = s.handlePaymentIntent(event, user.PaymentStatusFailed)
	case "payment_intent.canceled":
		err = s.handlePaymentIntent(event, user.PaymentStatusUnpaid)
	default:
		s.logger.Payment().Debug("Ignoring webhook event", "type", string(event.Type))
	}

	if err != nil {
		marker.SetError(err)
		return err
	}
	marker.SetSuccess(true)
	return nil
}

func (s *WebhookService) handlePaymentIntent(event *stripe.Event, status string) error {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return fmt.Errorf("%w: malformed payment intent payload", ErrInvalidInput)
	}

	u, err := s.resolveUser(&intent)
	if err != nil {
		return err
	}
	if u == nil {
		// Intent from another environment or a deleted account. Acknowledge
		// so Stripe stops retrying.
		s.logger.Payment().Warn("Webhook intent matched no user", "intentId", intent.ID)
		return nil
	}

	if status == user.PaymentStatusPaid && u.PaymentStatus == user.PaymentStatusPaid {
		// Stripe redelivers events; the first success already did the work.
		s.logger.Payment().Info("Duplicate success event ignored", "userId", u.ID, "intentId", intent.ID)
		return nil
	}

	method := user.PaymentMethodStripe
	customerID := u.StripeCustomerID
	if intent.Customer != nil {
		customerID = &intent.Customer.ID
	}
	if err := s.userRepo.UpdatePaymentStatus(u.ID, status, &method, &intent.ID, customerID); err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	var confirmationCode *string
	if status == user.PaymentStatusPaid {
		code, err := s.recordOrder(u.ID, &intent)
		if err != nil {
			return err
		}
		confirmationCode = &code
	}

	s.logger.Payment().Info("Payment intent processed",
		"userId", u.ID, "intentId", intent.ID, "status", status)

	s.publisher.BroadcastPaymentStatus(u.ID, status, method, intent.ID, nil, confirmationCode)
	return nil
}

// resolveUser maps an intent back to a user, preferring the user_id metadata
// stamped at intent creation and falling back to the stored intent id.
func (s *WebhookService) resolveUser(intent *stripe.PaymentIntent) (*user.User, error) {
	if idStr, ok := intent.Metadata["user_id"]; ok {
		if id, err := strconv.ParseInt(idStr, 10, 64); err == nil {
			u, err := s.userRepo.FindByID(id)
			if err != nil {
				return nil, fmt.Errorf("failed to look up user: %w", err)
			}
			if u != nil {
				return u, nil
			}
		}
	}

	u, err := s.userRepo.FindByPaymentIntentID(intent.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user by intent: %w", err)
	}
	return u, nil
}

func (s *WebhookService) recordOrder(userID int64, intent *stripe.PaymentIntent) (string, error) {
	planID := intent.Metadata["plan_id"]
	plan, err := s.paymentService.PlanByID(planID)
	if err != nil {
		// Fall back to a snapshot of what Stripe charged when the metadata
		// is missing.
		plan = &Plan{
			ID:              planID,
			Name:            planID,
			AmountCents:     intent.Amount,
			Currency:        string(intent.Currency),
			BillingInterval: "one_time",
		}
	}

	order := &commerce.Order{
		UserID:             userID,
		PlanID:             plan.ID,
		PlanName:           plan.Name,
		PlanDescription:    plan.Description,
		Amount:             intent.Amount,
		Currency:           string(intent.Currency),
		BillingInterval:    plan.BillingInterval,
		ConfirmationNumber: security.GenerateConfirmationNumber(),
		PaymentMethod:      user.PaymentMethodStripe,
		PaymentIntentID:    intent.ID,
	}
	if err := s.orderRepo.Store(order); err != nil {
		return "", fmt.Errorf("failed to record order: %w", err)
	}

	s.logger.Payment().Info("Order recorded",
		"orderId", order.ID, "userId", userID, "confirmation", order.ConfirmationNumber)
	return order.ConfirmationNumber, nil
}
