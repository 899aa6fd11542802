package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	tm := NewTokenManager("test-secret", "taskmanager-test")

	token, err := tm.GenerateToken(42, "alice@example.com", "USER", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.EqualValues(t, 42, claims.AccountID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "USER", claims.Role)
	assert.Equal(t, "taskmanager-test", claims.Issuer)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	tm := NewTokenManager("test-secret", "taskmanager-test")
	other := NewTokenManager("other-secret", "taskmanager-test")

	token, err := tm.GenerateToken(42, "alice@example.com", "USER", time.Hour)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateExpiredToken(t *testing.T) {
	tm := NewTokenManager("test-secret", "taskmanager-test")

	token, err := tm.GenerateToken(42, "alice@example.com", "USER", -time.Minute)
	require.NoError(t, err)

	_, err = tm.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateGarbageToken(t *testing.T) {
	tm := NewTokenManager("test-secret", "taskmanager-test")

	_, err := tm.ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestExtractToken(t *testing.T) {
	token, err := ExtractToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	_, err = ExtractToken("abc.def.ghi")
	assert.Error(t, err)

	_, err = ExtractToken("Basic dXNlcjpwYXNz")
	assert.Error(t, err)

	_, err = ExtractToken("")
	assert.Error(t, err)
}
