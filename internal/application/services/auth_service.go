package services

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mycomize/mycomize-go/internal/domain/user"
	"github.com/mycomize/mycomize-go/internal/infrastructure/observability/logging"
	"github.com/mycomize/mycomize-go/internal/infrastructure/observability/performance"
	"github.com/mycomize/mycomize-go/internal/infrastructure/security"
	"github.com/mycomize/mycomize-go/pkg/config"
)

// AuthService handles registration, login, and token validation.
type AuthService struct {
	userRepo    user.Repository
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo user.Repository, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// TokenResult holds a successful login's access token.
type TokenResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Register creates a new user account with a bcrypt-hashed password.
func (s *AuthService) Register(username, password string) (*user.User, error) {
	marker := s.perfTracker.StartOperation("auth_register")
	defer marker.Complete()

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		marker.SetError(ErrInvalidInput)
		return nil, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}

	existing, err := s.userRepo.FindByUsername(username)
	if err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		marker.SetError(ErrConflict)
		return nil, fmt.Errorf("%w: username already registered", ErrConflict)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), config.BcryptCost)
	if err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &user.User{
		Username:       username,
		HashedPassword: string(hashed),
		IsActive:       true,
		PaymentStatus:  user.PaymentStatusUnpaid,
	}
	if err := s.userRepo.Store(u); err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to store user: %w", err)
	}

	s.logger.Auth().Info("User registered", "userId", u.ID, "username", u.Username)
	marker.SetSuccess(true)
	return u, nil
}

// Login verifies credentials and mints an access token.
func (s *AuthService) Login(username, password string) (*TokenResult, error) {
	marker := s.perfTracker.StartOperation("auth_login")
	defer marker.Complete()

	u, err := s.userRepo.FindByUsername(strings.TrimSpace(username))
	if err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if u == nil {
		marker.SetError(ErrInvalidCredentials)
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password)); err != nil {
		s.logger.Auth().Warn("Login rejected", "username", username)
		marker.SetError(ErrInvalidCredentials)
		return nil, ErrInvalidCredentials
	}

	if !u.IsActive {
		marker.SetError(ErrInactiveUser)
		return nil, ErrInactiveUser
	}

	token, err := security.GenerateAccessToken(u.Username, config.JWTSecret, config.AccessTokenExpiration)
	if err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Auth().Info("User logged in", "userId", u.ID)
	marker.SetSuccess(true)
	return &TokenResult{AccessToken: token, TokenType: "bearer"}, nil
}

// ValidateToken resolves an access token to an active user. Used by the
// bearer middleware and by the SSE endpoint's query-parameter auth.
func (s *AuthService) ValidateToken(tokenString string) (*user.User, error) {
	username, err := security.ValidateAccessToken(tokenString, config.JWTSecret)
	if err != nil {
		return nil, err
	}

	u, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if u == nil {
		return nil, security.ErrTokenInvalid
	}
	if !u.IsActive {
		return nil, ErrInactiveUser
	}
	return u, nil
}

// GetProfile returns the user's account, including payment state.
func (s *AuthService) GetProfile(userID int64) (*user.User, error) {
	u, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}
