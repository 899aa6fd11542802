package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/taskmanager/internal/domain"
	"github.com/yourorg/taskmanager/internal/security/auth"
)

func newAuthService(t *testing.T) (*AuthService, *AccountService) {
	t.Helper()
	accounts, _ := newTestServices(t)
	tm := auth.NewTokenManager("test-secret", "taskmanager-test")
	return NewAuthService(accounts, tm, time.Hour, nil), accounts
}

func TestLogin(t *testing.T) {
	authSvc, accounts := newAuthService(t)
	ctx := context.Background()

	createAccount(t, accounts, "alice@example.com")

	result, err := authSvc.Login(ctx, "alice@example.com", "Password1!")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "Bearer", result.TokenType)
	assert.True(t, result.ExpiresAt.After(time.Now()))
}

func TestLoginWrongPassword(t *testing.T) {
	authSvc, accounts := newAuthService(t)

	createAccount(t, accounts, "alice@example.com")

	_, err := authSvc.Login(context.Background(), "alice@example.com", "Wrong1!aa")
	require.Error(t, err)
	assert.Equal(t, domain.KindAuthentication, domain.ErrKind(err))
}

func TestLoginUnknownEmail(t *testing.T) {
	authSvc, _ := newAuthService(t)

	_, err := authSvc.Login(context.Background(), "ghost@example.com", "Password1!")
	require.Error(t, err)
	// indistinguishable from a wrong password
	assert.Equal(t, domain.KindAuthentication, domain.ErrKind(err))
	assert.Contains(t, err.Error(), "Invalid email or password")
}

func TestLoginTokenCarriesIdentity(t *testing.T) {
	authSvc, accounts := newAuthService(t)
	ctx := context.Background()

	created := createAccount(t, accounts, "alice@example.com")

	result, err := authSvc.Login(ctx, "alice@example.com", "Password1!")
	require.NoError(t, err)

	tm := auth.NewTokenManager("test-secret", "taskmanager-test")
	claims, err := tm.ValidateToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.AccountID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, string(domain.RoleUser), claims.Role)
}
