// Package user provides the users repository.
package user

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mycomize/mycomize-go/internal/domain/user"
	"github.com/mycomize/mycomize-go/internal/infrastructure/observability/logging"
	"github.com/mycomize/mycomize-go/pkg/config"
)

type UserRepository struct {
	db     *sql.DB
	logger *logging.ChanneledLogger
}

func NewUserRepository(db *sql.DB, logger *logging.ChanneledLogger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

const userColumns = `id, username, hashed_password, is_active, payment_status,
	payment_method, payment_date, stripe_customer_id, stripe_payment_intent_id,
	created_at, updated_at`

func (r *UserRepository) FindByID(id int64) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return r.scanOne(query, id)
}

func (r *UserRepository) FindByUsername(username string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ?`
	return r.scanOne(query, username)
}

func (r *UserRepository) FindByPaymentIntentID(intentID string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE stripe_payment_intent_id = ?`
	return r.scanOne(query, intentID)
}

func (r *UserRepository) Store(u *user.User) error {
	query := `INSERT INTO users (username, hashed_password, is_active, payment_status, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Executing user insert", "username", u.Username)

	now := time.Now().UTC()
	result, err := r.db.Exec(query, u.Username, u.HashedPassword, u.IsActive, u.PaymentStatus, now, now)
	if err != nil {
		r.logger.Database().Error("User insert failed", "error", err.Error(), "username", u.Username)
		return fmt.Errorf("failed to insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read user id: %w", err)
	}
	u.ID = id
	u.CreatedAt = now
	u.UpdatedAt = now

	duration := time.Since(start)
	r.logger.Database().Info("User insert completed", "id", u.ID, "duration", duration)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return nil
}

func (r *UserRepository) Update(u *user.User) error {
	query := `UPDATE users SET hashed_password = ?, is_active = ?, payment_status = ?,
	          payment_method = ?, payment_date = ?, stripe_customer_id = ?,
	          stripe_payment_intent_id = ?, updated_at = ? WHERE id = ?`

	start := time.Now()
	now := time.Now().UTC()
	_, err := r.db.Exec(query, u.HashedPassword, u.IsActive, u.PaymentStatus,
		u.PaymentMethod, u.PaymentDate, u.StripeCustomerID, u.StripePaymentIntentID, now, u.ID)
	if err != nil {
		r.logger.Database().Error("User update failed", "error", err.Error(), "id", u.ID)
		return fmt.Errorf("failed to update user: %w", err)
	}
	u.UpdatedAt = now

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return nil
}

// UpdatePaymentStatus writes the payment outcome fields in one statement so a
// webhook retry cannot observe a half-updated row.
func (r *UserRepository) UpdatePaymentStatus(id int64, status string, method *string, intentID, customerID *string) error {
	query := `UPDATE users SET payment_status = ?, payment_method = ?, payment_date = ?,
	          stripe_payment_intent_id = ?, stripe_customer_id = ?, updated_at = ? WHERE id = ?`

	start := time.Now()
	r.logger.Database().Debug("Executing payment status update", "id", id, "status", status)

	now := time.Now().UTC()
	var paymentDate *time.Time
	if status == user.PaymentStatusPaid {
		paymentDate = &now
	}

	_, err := r.db.Exec(query, status, method, paymentDate, intentID, customerID, now, id)
	if err != nil {
		r.logger.Database().Error("Payment status update failed", "error", err.Error(), "id", id)
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	duration := time.Since(start)
	r.logger.Database().Info("Payment status update completed", "id", id, "status", status, "duration", duration)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return nil
}

func (r *UserRepository) scanOne(query string, arg any) (*user.User, error) {
	start := time.Now()

	row := r.db.QueryRow(query, arg)

	var u user.User
	err := row.Scan(&u.ID, &u.Username, &u.HashedPassword, &u.IsActive, &u.PaymentStatus,
		&u.PaymentMethod, &u.PaymentDate, &u.StripeCustomerID, &u.StripePaymentIntentID,
		&u.CreatedAt, &u.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Database().Error("Failed to scan user", "error", err.Error())
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return &u, nil
}
