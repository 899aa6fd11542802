package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/yourorg/taskmanager/internal/domain"
	"github.com/yourorg/taskmanager/internal/observability/metrics"
	"github.com/yourorg/taskmanager/internal/security/auth"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles authentication operations
type AuthService struct {
	accounts     *AccountService
	tokenManager *auth.TokenManager
	tokenTTL     time.Duration
	logger       *slog.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(accounts *AccountService, tokenManager *auth.TokenManager, tokenTTL time.Duration, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		accounts:     accounts,
		tokenManager: tokenManager,
		tokenTTL:     tokenTTL,
		logger:       logger,
	}
}

// LoginResult contains the issued bearer token
type LoginResult struct {
	Token     string    `json:"token"`
	TokenType string    `json:"tokenType"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Login verifies the submitted credentials and issues a signed token.
// Unknown emails and wrong passwords both surface as an authentication
// failure to prevent account enumeration.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	account, err := s.accounts.ResolveCredentials(ctx, email)
	if err != nil {
		s.logger.Info("login attempt with unknown email", slog.String("email", email))
		metrics.ObserveLogin("failure")
		return nil, domain.Authentication("Invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("login failed with wrong password", slog.String("email", email))
		metrics.ObserveLogin("failure")
		return nil, domain.Authentication("Invalid email or password")
	}

	token, err := s.tokenManager.GenerateToken(account.ID, account.Email, string(account.Role), s.tokenTTL)
	if err != nil {
		s.logger.Error("failed to sign token",
			slog.Int64("account_id", account.ID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("user logged in",
		slog.Int64("account_id", account.ID),
		slog.String("email", account.Email),
	)
	metrics.ObserveLogin("success")

	return &LoginResult{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: time.Now().Add(s.tokenTTL),
	}, nil
}
