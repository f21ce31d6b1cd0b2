package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mycomize/mycomize-go/internal/domain/user"
	"github.com/mycomize/mycomize-go/internal/infrastructure/security"
	"github.com/mycomize/mycomize-go/pkg/config"
)

func newTestAuthService(t *testing.T) (*AuthService, *fakeUserRepo) {
	t.Helper()
	repo := newFakeUserRepo()
	return NewAuthService(repo, newTestLogger(t), newTestTracker()), repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestAuthService(t)

	u, err := svc.Register("mycelia", "hunter2hunter2")
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.Equal(t, "mycelia", u.Username)
	assert.True(t, u.IsActive)
	assert.Equal(t, user.PaymentStatusUnpaid, u.PaymentStatus)
	assert.NotEqual(t, "hunter2hunter2", u.HashedPassword)

	result, err := svc.Login("mycelia", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, "bearer", result.TokenType)
	assert.NotEmpty(t, result.AccessToken)
}

func TestRegisterTrimsUsername(t *testing.T) {
	svc, _ := newTestAuthService(t)

	u, err := svc.Register("  mycelia  ", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, "mycelia", u.Username)
}

func TestRegisterRejectsEmptyInput(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.Register("", "hunter2hunter2")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Register("mycelia", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.Register("mycelia", "hunter2hunter2")
	require.NoError(t, err)

	_, err = svc.Register("mycelia", "otherpassword")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.Register("mycelia", "hunter2hunter2")
	require.NoError(t, err)

	_, err = svc.Login("mycelia", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownUser(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.Login("nobody", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginInactiveUser(t *testing.T) {
	svc, repo := newTestAuthService(t)

	u, err := svc.Register("mycelia", "hunter2hunter2")
	require.NoError(t, err)

	u.IsActive = false
	require.NoError(t, repo.Update(u))

	_, err = svc.Login("mycelia", "hunter2hunter2")
	assert.ErrorIs(t, err, ErrInactiveUser)
}

func TestValidateToken(t *testing.T) {
	svc, _ := newTestAuthService(t)

	registered, err := svc.Register("mycelia", "hunter2hunter2")
	require.NoError(t, err)

	result, err := svc.Login("mycelia", "hunter2hunter2")
	require.NoError(t, err)

	u, err := svc.ValidateToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, u.ID)
	assert.Equal(t, "mycelia", u.Username)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, security.ErrTokenInvalid)
}

func TestValidateTokenUnknownSubject(t *testing.T) {
	svc, _ := newTestAuthService(t)

	// A structurally valid token whose subject was never registered.
	token, err := security.GenerateAccessToken("ghost", config.JWTSecret, time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, security.ErrTokenInvalid)
}

func TestValidateTokenInactiveUser(t *testing.T) {
	svc, repo := newTestAuthService(t)

	u, err := svc.Register("mycelia", "hunter2hunter2")
	require.NoError(t, err)
	result, err := svc.Login("mycelia", "hunter2hunter2")
	require.NoError(t, err)

	u.IsActive = false
	require.NoError(t, repo.Update(u))

	_, err = svc.ValidateToken(result.AccessToken)
	assert.ErrorIs(t, err, ErrInactiveUser)
}

func TestGetProfile(t *testing.T) {
	svc, _ := newTestAuthService(t)

	registered, err := svc.Register("mycelia", "hunter2hunter2")
	require.NoError(t, err)

	u, err := svc.GetProfile(registered.ID)
	require.NoError(t, err)
	assert.Equal(t, "mycelia", u.Username)

	_, err = svc.GetProfile(registered.ID + 100)
	assert.ErrorIs(t, err, ErrNotFound)
}
