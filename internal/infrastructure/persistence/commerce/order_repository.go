// Package commerce provides the orders repository.
package commerce

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mycomize/mycomize-go/internal/domain/entities/commerce"
	"github.com/mycomize/mycomize-go/internal/infrastructure/observability/logging"
	"github.com/mycomize/mycomize-go/pkg/config"
)

type OrderRepository struct {
	db     *sql.DB
	logger *logging.ChanneledLogger
}

func NewOrderRepository(db *sql.DB, logger *logging.ChanneledLogger) *OrderRepository {
	return &OrderRepository{
		db:     db,
		logger: logger,
	}
}

// FindByUser returns a page of the user's orders newest-first plus the total
// count for pagination.
func (r *OrderRepository) FindByUser(userID int64, offset, limit int) ([]*commerce.Order, int64, error) {
	var total int64
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM orders WHERE user_id = ?`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query := `SELECT id, user_id, plan_id, plan_name, plan_description, amount, currency,
	          billing_interval, confirmation_number, payment_method, payment_intent_id,
	          created_at, updated_at
	          FROM orders WHERE user_id = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`

	start := time.Now()
	rows, err := r.db.Query(query, userID, limit, offset)
	if err != nil {
		r.logger.Database().Error("Failed to query orders", "error", err.Error(), "userId", userID)
		return nil, 0, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []*commerce.Order{}
	for rows.Next() {
		var o commerce.Order
		var planDescription, paymentIntentID sql.NullString
		err := rows.Scan(&o.ID, &o.UserID, &o.PlanID, &o.PlanName, &planDescription, &o.Amount,
			&o.Currency, &o.BillingInterval, &o.ConfirmationNumber, &o.PaymentMethod,
			&paymentIntentID, &o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		o.PlanDescription = planDescription.String
		o.PaymentIntentID = paymentIntentID.String
		orders = append(orders, &o)
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return orders, total, rows.Err()
}

func (r *OrderRepository) Store(o *commerce.Order) error {
	query := `INSERT INTO orders (user_id, plan_id, plan_name, plan_description, amount, currency,
	          billing_interval, confirmation_number, payment_method, payment_intent_id,
	          created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Executing order insert", "userId", o.UserID, "plan", o.PlanID)

	now := time.Now().UTC()
	result, err := r.db.Exec(query, o.UserID, o.PlanID, o.PlanName, nullableString(o.PlanDescription),
		o.Amount, o.Currency, o.BillingInterval, o.ConfirmationNumber, o.PaymentMethod,
		nullableString(o.PaymentIntentID), now, now)
	if err != nil {
		r.logger.Database().Error("Order insert failed", "error", err.Error(), "userId", o.UserID)
		return fmt.Errorf("failed to insert order: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read order id: %w", err)
	}
	o.ID = id
	o.CreatedAt = now
	o.UpdatedAt = now

	duration := time.Since(start)
	r.logger.Database().Info("Order insert completed", "id", o.ID, "duration", duration)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
