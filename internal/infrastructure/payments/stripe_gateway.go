// Package payments wraps the Stripe client behind the narrow surface the
// payment services need: customers, payment intents, and webhook signature
// verification.
package payments

import (
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/mycomize/mycomize-go/internal/infrastructure/observability/logging"
)

// Gateway is the payment-provider contract the services consume. Tests
// substitute a fake; production wires the Stripe implementation.
type Gateway interface {
	CreateCustomer(username string) (string, error)
	CreatePaymentIntent(amountCents int64, currency, customerID string, metadata map[string]string) (*Intent, error)
	VerifyWebhook(payload []byte, signature string) (*stripe.Event, error)
}

// Intent is the slice of a Stripe payment intent the API surfaces to
// clients.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
}

// StripeGateway talks to the live Stripe API.
type StripeGateway struct {
	api           *client.API
	webhookSecret string
	logger        *logging.ChanneledLogger
}

// NewStripeGateway creates a gateway bound to one Stripe account.
func NewStripeGateway(secretKey, webhookSecret string, logger *logging.ChanneledLogger) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, nil)

	return &StripeGateway{
		api:           api,
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

// CreateCustomer registers a Stripe customer for the user and returns its id.
func (g *StripeGateway) CreateCustomer(username string) (string, error) {
	params := &stripe.CustomerParams{
		Name: stripe.String(username),
	}
	params.AddMetadata("username", username)

	cust, err := g.api.Customers.New(params)
	if err != nil {
		g.logger.Payment().Error("Stripe customer creation failed", "error", err.Error(), "username", username)
		return "", fmt.Errorf("failed to create stripe customer: %w", err)
	}

	g.logger.Payment().Info("Stripe customer created", "customerId", cust.ID)
	return cust.ID, nil
}

// CreatePaymentIntent opens a payment intent for the given amount and returns
// the client secret the frontend confirms with.
func (g *StripeGateway) CreatePaymentIntent(amountCents int64, currency, customerID string, metadata map[string]string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if customerID != "" {
		params.Customer = stripe.String(customerID)
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	intent, err := g.api.PaymentIntents.New(params)
	if err != nil {
		g.logger.Payment().Error("Stripe payment intent creation failed", "error", err.Error(), "amount", amountCents)
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	g.logger.Payment().Info("Stripe payment intent created", "intentId", intent.ID, "amount", amountCents)
	return &Intent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		Status:       string(intent.Status),
	}, nil
}

// VerifyWebhook checks the Stripe-Signature header against the endpoint
// secret and returns the decoded event. An invalid signature is an error;
// the handler answers 400 so Stripe retries nothing it shouldn't.
func (g *StripeGateway) VerifyWebhook(payload []byte, signature string) (*stripe.Event, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		g.logger.Payment().Warn("Webhook signature verification failed", "error", err.Error())
		return nil, fmt.Errorf("webhook signature verification failed: %w", err)
	}
	return &event, nil
}
