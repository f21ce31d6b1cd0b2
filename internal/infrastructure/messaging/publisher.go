package messaging

import "github.com/mycomize/mycomize-go/internal/infrastructure/observability/logging"

// EventPublisher turns payment outcomes into payment_status events on the
// broadcaster. It is the only producer of payment events; the webhook
// service calls it after the database has been updated so a client that
// refreshes on receipt sees consistent state.
type EventPublisher struct {
	broadcaster Broadcaster
	logger      *logging.ChanneledLogger
}

// NewEventPublisher creates a publisher bound to a registry.
func NewEventPublisher(broadcaster Broadcaster, logger *logging.ChanneledLogger) *EventPublisher {
	return &EventPublisher{broadcaster: broadcaster, logger: logger}
}

// BroadcastPaymentStatus pushes a payment_status event to every open session
// for the user. Returns the number of sessions that accepted the event; zero
// means the user had no open stream, which is fine because clients poll
// their profile as a fallback.
func (p *EventPublisher) BroadcastPaymentStatus(userID int64, status, method, intentID string, subscriptionID, confirmationCode *string) int {
	event := PaymentStatusEvent{
		EventType:        "payment_status",
		PaymentStatus:    status,
		PaymentMethod:    method,
		PaymentIntentID:  intentID,
		SubscriptionID:   subscriptionID,
		ConfirmationCode: confirmationCode,
		Timestamp:        unixNow(),
		UserID:           userID,
	}

	delivered := p.broadcaster.Broadcast(userID, event)
	if p.logger != nil {
		p.logger.Payment().Info("Payment status published",
			"userId", userID,
			"status", status,
			"sessions", delivered)
	}
	return delivered
}
