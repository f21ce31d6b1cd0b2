// Package user provides the user domain entity and repository contract.
package user

import "time"

// Payment status values tracked on a user account.
const (
	PaymentStatusUnpaid = "unpaid"
	PaymentStatusPaid   = "paid"
	PaymentStatusFailed = "failed"
)

// Payment method values.
const (
	PaymentMethodStripe  = "stripe"
	PaymentMethodBitcoin = "bitcoin"
)

// User is an authenticated account. A user may have many grows, inventory
// items, IoT gateways, templates, and orders.
type User struct {
	ID                    int64      `json:"id"`
	Username              string     `json:"username"`
	HashedPassword        string     `json:"-"`
	IsActive              bool       `json:"is_active"`
	PaymentStatus         string     `json:"payment_status"`
	PaymentMethod         *string    `json:"payment_method,omitempty"`
	PaymentDate           *time.Time `json:"payment_date,omitempty"`
	StripeCustomerID      *string    `json:"-"`
	StripePaymentIntentID *string    `json:"-"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// Repository is the persistence contract for users.
type Repository interface {
	FindByID(id int64) (*User, error)
	FindByUsername(username string) (*User, error)
	FindByPaymentIntentID(intentID string) (*User, error)
	Store(u *User) error
	Update(u *User) error
	UpdatePaymentStatus(id int64, status string, method *string, intentID, customerID *string) error
}
