package user

import (
	"database/sql"
	"log/slog"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	userdomain "github.com/mycomize/mycomize-go/internal/domain/user"
	"github.com/mycomize/mycomize-go/internal/infrastructure/database"
	"github.com/mycomize/mycomize-go/internal/infrastructure/observability/logging"
)

func newTestRepo(t *testing.T) *UserRepository {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// In-memory sqlite gives every connection its own database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.NewTableCreator().CreateSchema(db))

	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToFile:  true,
		LogDirectory:  t.TempDir(),
		JSONFormat:    true,
		DefaultLevel:  slog.LevelInfo,
		ChannelLevels: make(map[logging.Channel]slog.Level),
	})
	require.NoError(t, err)

	return NewUserRepository(db, logger)
}

func storeUser(t *testing.T, repo *UserRepository, username string) *userdomain.User {
	t.Helper()
	u := &userdomain.User{
		Username:       username,
		HashedPassword: "bcrypt-hash",
		IsActive:       true,
		PaymentStatus:  userdomain.PaymentStatusUnpaid,
	}
	require.NoError(t, repo.Store(u))
	return u
}

func TestStoreAndFindUser(t *testing.T) {
	repo := newTestRepo(t)

	stored := storeUser(t, repo, "mycelia")
	assert.NotZero(t, stored.ID)

	byID, err := repo.FindByID(stored.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "mycelia", byID.Username)
	assert.Equal(t, "bcrypt-hash", byID.HashedPassword)
	assert.True(t, byID.IsActive)
	assert.Equal(t, userdomain.PaymentStatusUnpaid, byID.PaymentStatus)
	assert.Nil(t, byID.PaymentMethod)
	assert.Nil(t, byID.PaymentDate)

	byName, err := repo.FindByUsername("mycelia")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, stored.ID, byName.ID)
}

func TestFindMissingUserReturnsNil(t *testing.T) {
	repo := newTestRepo(t)

	u, err := repo.FindByID(99)
	require.NoError(t, err)
	assert.Nil(t, u)

	u, err = repo.FindByUsername("nobody")
	require.NoError(t, err)
	assert.Nil(t, u)

	u, err = repo.FindByPaymentIntentID("pi_none")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestUsernameUniqueness(t *testing.T) {
	repo := newTestRepo(t)

	storeUser(t, repo, "mycelia")

	dup := &userdomain.User{
		Username:       "mycelia",
		HashedPassword: "other",
		IsActive:       true,
		PaymentStatus:  userdomain.PaymentStatusUnpaid,
	}
	assert.Error(t, repo.Store(dup))
}

func TestUpdateUser(t *testing.T) {
	repo := newTestRepo(t)
	stored := storeUser(t, repo, "mycelia")

	stored.IsActive = false
	stored.HashedPassword = "new-hash"
	require.NoError(t, repo.Update(stored))

	found, err := repo.FindByID(stored.ID)
	require.NoError(t, err)
	assert.False(t, found.IsActive)
	assert.Equal(t, "new-hash", found.HashedPassword)
}

func TestUpdatePaymentStatusPaidStampsDate(t *testing.T) {
	repo := newTestRepo(t)
	stored := storeUser(t, repo, "mycelia")

	method := userdomain.PaymentMethodStripe
	intentID := "pi_42"
	customerID := "cus_7"
	require.NoError(t, repo.UpdatePaymentStatus(stored.ID, userdomain.PaymentStatusPaid, &method, &intentID, &customerID))

	found, err := repo.FindByID(stored.ID)
	require.NoError(t, err)
	assert.Equal(t, userdomain.PaymentStatusPaid, found.PaymentStatus)
	require.NotNil(t, found.PaymentMethod)
	assert.Equal(t, userdomain.PaymentMethodStripe, *found.PaymentMethod)
	require.NotNil(t, found.PaymentDate)
	require.NotNil(t, found.StripePaymentIntentID)
	assert.Equal(t, "pi_42", *found.StripePaymentIntentID)
	require.NotNil(t, found.StripeCustomerID)
	assert.Equal(t, "cus_7", *found.StripeCustomerID)
}

func TestUpdatePaymentStatusFailedLeavesDateEmpty(t *testing.T) {
	repo := newTestRepo(t)
	stored := storeUser(t, repo, "mycelia")

	method := userdomain.PaymentMethodStripe
	intentID := "pi_42"
	require.NoError(t, repo.UpdatePaymentStatus(stored.ID, userdomain.PaymentStatusFailed, &method, &intentID, nil))

	found, err := repo.FindByID(stored.ID)
	require.NoError(t, err)
	assert.Equal(t, userdomain.PaymentStatusFailed, found.PaymentStatus)
	assert.Nil(t, found.PaymentDate)
}

func TestFindByPaymentIntentID(t *testing.T) {
	repo := newTestRepo(t)
	stored := storeUser(t, repo, "mycelia")

	method := userdomain.PaymentMethodStripe
	intentID := "pi_lookup"
	require.NoError(t, repo.UpdatePaymentStatus(stored.ID, userdomain.PaymentStatusUnpaid, &method, &intentID, nil))

	found, err := repo.FindByPaymentIntentID("pi_lookup")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, stored.ID, found.ID)
}
