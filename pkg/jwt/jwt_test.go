package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	manager := NewManager("test-secret", time.Hour, "wizzchat")

	token, err := manager.Generate("user-1", "alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "wizzchat", claims.Issuer)
}

func TestValidateExpiredToken(t *testing.T) {
	manager := NewManager("test-secret", -time.Minute, "wizzchat")

	token, err := manager.Generate("user-1", "alice")
	require.NoError(t, err)

	_, err = manager.Validate(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateWrongSecret(t *testing.T) {
	manager := NewManager("test-secret", time.Hour, "wizzchat")
	other := NewManager("other-secret", time.Hour, "wizzchat")

	token, err := manager.Generate("user-1", "alice")
	require.NoError(t, err)

	_, err = other.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateGarbage(t *testing.T) {
	manager := NewManager("test-secret", time.Hour, "wizzchat")

	_, err := manager.Validate("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
