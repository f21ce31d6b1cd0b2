package services

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"

	"github.com/mycomize/mycomize-go/internal/domain/user"
)

type webhookFixture struct {
	svc       *WebhookService
	gateway   *fakeGateway
	userRepo  *fakeUserRepo
	orderRepo *fakeOrderRepo
	publisher *recordingPublisher
}

func newWebhookFixture(t *testing.T) *webhookFixture {
	t.Helper()
	gateway := &fakeGateway{}
	userRepo := newFakeUserRepo()
	orderRepo := &fakeOrderRepo{}
	publisher := &recordingPublisher{}
	logger := newTestLogger(t)
	tracker := newTestTracker()

	paymentService := NewPaymentService(gateway, userRepo, logger, tracker)
	return &webhookFixture{
		svc:       NewWebhookService(gateway, userRepo, orderRepo, paymentService, publisher, logger, tracker),
		gateway:   gateway,
		userRepo:  userRepo,
		orderRepo: orderRepo,
		publisher: publisher,
	}
}

// intentEvent builds a verified-looking Stripe event wrapping a payment
// intent payload.
func intentEvent(t *testing.T, eventType string, intent map[string]any) *stripe.Event {
	t.Helper()
	raw, err := json.Marshal(intent)
	require.NoError(t, err)
	return &stripe.Event{
		Type: stripe.EventType(eventType),
		Data: &stripe.EventData{Raw: raw},
	}
}

func TestHandleEventRejectsBadSignature(t *testing.T) {
	f := newWebhookFixture(t)
	f.gateway.verifyErr = errors.New("signature mismatch")

	err := f.svc.HandleEvent([]byte("{}"), "t=1,v1=bad")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, f.publisher.published())
}

func TestPaymentSucceededUpdatesUserAndRecordsOrder(t *testing.T) {
	f := newWebhookFixture(t)
	u := storeTestUser(t, f.userRepo, "mycelia")

	f.gateway.verifyEvent = intentEvent(t, "payment_intent.succeeded", map[string]any{
		"id":       "pi_42",
		"amount":   2999,
		"currency": "usd",
		"metadata": map[string]string{"user_id": "1", "plan_id": "lifetime"},
	})

	require.NoError(t, f.svc.HandleEvent([]byte("{}"), "sig"))

	stored, err := f.userRepo.FindByID(u.ID)
	require.NoError(t, err)
	assert.Equal(t, user.PaymentStatusPaid, stored.PaymentStatus)
	require.NotNil(t, stored.PaymentMethod)
	assert.Equal(t, user.PaymentMethodStripe, *stored.PaymentMethod)
	require.NotNil(t, stored.StripePaymentIntentID)
	assert.Equal(t, "pi_42", *stored.StripePaymentIntentID)

	require.Len(t, f.orderRepo.orders, 1)
	order := f.orderRepo.orders[0]
	assert.Equal(t, u.ID, order.UserID)
	assert.Equal(t, "lifetime", order.PlanID)
	assert.Equal(t, "Lifetime Access", order.PlanName)
	assert.Equal(t, int64(2999), order.Amount)
	assert.Equal(t, "usd", order.Currency)
	assert.Len(t, order.ConfirmationNumber, 12)

	calls := f.publisher.published()
	require.Len(t, calls, 1)
	assert.Equal(t, u.ID, calls[0].UserID)
	assert.Equal(t, user.PaymentStatusPaid, calls[0].Status)
	assert.Equal(t, user.PaymentMethodStripe, calls[0].Method)
	assert.Equal(t, "pi_42", calls[0].IntentID)
	require.NotNil(t, calls[0].ConfirmationCode)
	assert.Equal(t, order.ConfirmationNumber, *calls[0].ConfirmationCode)
}

func TestDuplicateSuccessEventIgnored(t *testing.T) {
	f := newWebhookFixture(t)
	u := storeTestUser(t, f.userRepo, "mycelia")
	u.PaymentStatus = user.PaymentStatusPaid
	require.NoError(t, f.userRepo.Update(u))

	f.gateway.verifyEvent = intentEvent(t, "payment_intent.succeeded", map[string]any{
		"id":       "pi_42",
		"metadata": map[string]string{"user_id": "1", "plan_id": "lifetime"},
	})

	require.NoError(t, f.svc.HandleEvent([]byte("{}"), "sig"))

	assert.Empty(t, f.orderRepo.orders)
	assert.Empty(t, f.publisher.published())
}

func TestPaymentFailedBroadcastsFailure(t *testing.T) {
	f := newWebhookFixture(t)
	u := storeTestUser(t, f.userRepo, "mycelia")

	f.gateway.verifyEvent = intentEvent(t, "payment_intent.payment_failed", map[string]any{
		"id":       "pi_42",
		"metadata": map[string]string{"user_id": "1", "plan_id": "lifetime"},
	})

	require.NoError(t, f.svc.HandleEvent([]byte("{}"), "sig"))

	stored, err := f.userRepo.FindByID(u.ID)
	require.NoError(t, err)
	assert.Equal(t, user.PaymentStatusFailed, stored.PaymentStatus)

	// Failures never mint orders.
	assert.Empty(t, f.orderRepo.orders)

	calls := f.publisher.published()
	require.Len(t, calls, 1)
	assert.Equal(t, user.PaymentStatusFailed, calls[0].Status)
	assert.Nil(t, calls[0].ConfirmationCode)
}

func TestCanceledIntentResetsToUnpaid(t *testing.T) {
	f := newWebhookFixture(t)
	u := storeTestUser(t, f.userRepo, "mycelia")
	u.PaymentStatus = user.PaymentStatusFailed
	require.NoError(t, f.userRepo.Update(u))

	f.gateway.verifyEvent = intentEvent(t, "payment_intent.canceled", map[string]any{
		"id":       "pi_42",
		"metadata": map[string]string{"user_id": "1"},
	})

	require.NoError(t, f.svc.HandleEvent([]byte("{}"), "sig"))

	stored, err := f.userRepo.FindByID(u.ID)
	require.NoError(t, err)
	assert.Equal(t, user.PaymentStatusUnpaid, stored.PaymentStatus)
}

func TestUnknownIntentAcknowledged(t *testing.T) {
	f := newWebhookFixture(t)

	f.gateway.verifyEvent = intentEvent(t, "payment_intent.succeeded", map[string]any{
		"id": "pi_from_another_env",
	})

	// No matching user: the event is acknowledged so Stripe stops retrying.
	require.NoError(t, f.svc.HandleEvent([]byte("{}"), "sig"))
	assert.Empty(t, f.orderRepo.orders)
	assert.Empty(t, f.publisher.published())
}

func TestUnrecognizedEventTypeIgnored(t *testing.T) {
	f := newWebhookFixture(t)
	storeTestUser(t, f.userRepo, "mycelia")

	f.gateway.verifyEvent = &stripe.Event{
		Type: "charge.refunded",
		Data: &stripe.EventData{Raw: json.RawMessage(`{}`)},
	}

	require.NoError(t, f.svc.HandleEvent([]byte("{}"), "sig"))
	assert.Empty(t, f.publisher.published())
}

func TestResolveUserFallsBackToStoredIntentID(t *testing.T) {
	f := newWebhookFixture(t)
	u := storeTestUser(t, f.userRepo, "mycelia")
	intentID := "pi_stored"
	method := user.PaymentMethodStripe
	require.NoError(t, f.userRepo.UpdatePaymentStatus(u.ID, user.PaymentStatusUnpaid, &method, &intentID, nil))

	// No user_id metadata; resolution falls back to the recorded intent.
	f.gateway.verifyEvent = intentEvent(t, "payment_intent.succeeded", map[string]any{
		"id":       "pi_stored",
		"amount":   2999,
		"currency": "usd",
	})

	require.NoError(t, f.svc.HandleEvent([]byte("{}"), "sig"))

	stored, err := f.userRepo.FindByID(u.ID)
	require.NoError(t, err)
	assert.Equal(t, user.PaymentStatusPaid, stored.PaymentStatus)
	require.Len(t, f.orderRepo.orders, 1)
}

func TestRecordOrderSnapshotsUnknownPlan(t *testing.T) {
	f := newWebhookFixture(t)
	storeTestUser(t, f.userRepo, "mycelia")

	// Plan metadata that no longer resolves in the catalog; the order
	// snapshots what Stripe actually charged.
	f.gateway.verifyEvent = intentEvent(t, "payment_intent.succeeded", map[string]any{
		"id":       "pi_42",
		"amount":   4999,
		"currency": "eur",
		"metadata": map[string]string{"user_id": "1", "plan_id": "retired_plan"},
	})

	require.NoError(t, f.svc.HandleEvent([]byte("{}"), "sig"))

	require.Len(t, f.orderRepo.orders, 1)
	order := f.orderRepo.orders[0]
	assert.Equal(t, "retired_plan", order.PlanID)
	assert.Equal(t, int64(4999), order.Amount)
	assert.Equal(t, "eur", order.Currency)
	assert.Equal(t, "one_time", order.BillingInterval)
}
