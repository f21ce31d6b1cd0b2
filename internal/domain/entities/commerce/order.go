// Package commerce provides the order domain entity.
package commerce

import "time"

// Order is a snapshot of a purchased plan, created when a payment succeeds.
// The confirmation number is the 12-character code surfaced to the user and
// pushed over the payment-status stream.
type Order struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"user_id"`
	PlanID             string    `json:"plan_id"`   // e.g. "lifetime"
	PlanName           string    `json:"plan_name"` // e.g. "Lifetime Access"
	PlanDescription    string    `json:"plan_description,omitempty"`
	Amount             int64     `json:"amount"` // cents
	Currency           string    `json:"currency"`
	BillingInterval    string    `json:"billing_interval"` // "one_time", "monthly"
	ConfirmationNumber string    `json:"confirmation_number"`
	PaymentMethod      string    `json:"payment_method"`
	PaymentIntentID    string    `json:"payment_intent_id,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
