package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mycomize/mycomize-go/internal/application/services"
	"github.com/mycomize/mycomize-go/internal/domain/user"
	"github.com/mycomize/mycomize-go/internal/infrastructure/observability/logging"
	"github.com/mycomize/mycomize-go/internal/infrastructure/observability/performance"
	"github.com/mycomize/mycomize-go/internal/infrastructure/security"
	"github.com/mycomize/mycomize-go/pkg/config"
)

// singleUserRepo serves exactly one account; everything else misses.
type singleUserRepo struct {
	user *user.User
}

func (r *singleUserRepo) FindByID(id int64) (*user.User, error) {
	if r.user != nil && r.user.ID == id {
		clone := *r.user
		return &clone, nil
	}
	return nil, nil
}

func (r *singleUserRepo) FindByUsername(username string) (*user.User, error) {
	if r.user != nil && r.user.Username == username {
		clone := *r.user
		return &clone, nil
	}
	return nil, nil
}

func (r *singleUserRepo) FindByPaymentIntentID(intentID string) (*user.User, error) { return nil, nil }
func (r *singleUserRepo) Store(u *user.User) error                                 { return nil }
func (r *singleUserRepo) Update(u *user.User) error                                { return nil }
func (r *singleUserRepo) UpdatePaymentStatus(id int64, status string, method *string, intentID, customerID *string) error {
	return nil
}

func newAuthMiddlewareRouter(t *testing.T, repo *singleUserRepo) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToFile:  true,
		LogDirectory:  t.TempDir(),
		JSONFormat:    true,
		DefaultLevel:  slog.LevelInfo,
		ChannelLevels: make(map[logging.Channel]slog.Level),
	})
	require.NoError(t, err)

	authService := services.NewAuthService(repo, logger, performance.NewTracker(nil))

	r := gin.New()
	r.GET("/protected", BearerAuthMiddleware(authService), func(c *gin.Context) {
		u, ok := GetCurrentUser(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"username": u.Username})
	})
	return r
}

func activeUserRepo() *singleUserRepo {
	return &singleUserRepo{user: &user.User{
		ID:            1,
		Username:      "mycelia",
		IsActive:      true,
		PaymentStatus: user.PaymentStatusUnpaid,
	}}
}

func TestBearerAuthAcceptsValidToken(t *testing.T) {
	repo := activeUserRepo()
	router := newAuthMiddlewareRouter(t, repo)

	token, err := security.GenerateAccessToken("mycelia", config.JWTSecret, time.Minute)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "mycelia")
}

func TestBearerAuthRejectsMissingHeader(t *testing.T) {
	router := newAuthMiddlewareRouter(t, activeUserRepo())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
}

func TestBearerAuthRejectsMalformedHeader(t *testing.T) {
	router := newAuthMiddlewareRouter(t, activeUserRepo())

	for _, header := range []string{"Basic abc", "Bearer", "Bearer "} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", header)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
	}
}

func TestBearerAuthRejectsExpiredToken(t *testing.T) {
	router := newAuthMiddlewareRouter(t, activeUserRepo())

	token, err := security.GenerateAccessToken("mycelia", config.JWTSecret, -time.Minute)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "token expired")
}

func TestBearerAuthRejectsInactiveUser(t *testing.T) {
	repo := activeUserRepo()
	repo.user.IsActive = false
	router := newAuthMiddlewareRouter(t, repo)

	token, err := security.GenerateAccessToken("mycelia", config.JWTSecret, time.Minute)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "inactive user")
}
