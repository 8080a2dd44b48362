package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderdesk/backend/internal/infrastructure/config"
)

func newTestService(expiration time.Duration) *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars-long",
		AccessTokenExpiration: expiration,
		Issuer:                "orderdesk-test",
	})
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := newTestService(15 * time.Minute)
	accountID := uuid.New()
	userID := uuid.New()

	token, expiresAt, err := svc.GenerateToken(accountID, userID, "ops@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, accountID.String(), claims.AccountID)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "ops@example.com", claims.Username)
	assert.Equal(t, "orderdesk-test", claims.Issuer)
}

func TestJWTService_ValidateAccessToken_Expired(t *testing.T) {
	svc := newTestService(-time.Minute)

	token, _, err := svc.GenerateToken(uuid.New(), uuid.New(), "u")
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_ValidateAccessToken_WrongSecret(t *testing.T) {
	svc := newTestService(15 * time.Minute)
	other := NewJWTService(config.JWTConfig{
		Secret:                "a-completely-different-secret-key-32ch",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "orderdesk-test",
	})

	token, _, err := svc.GenerateToken(uuid.New(), uuid.New(), "u")
	require.NoError(t, err)

	_, err = other.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_ValidateAccessToken_Garbage(t *testing.T) {
	svc := newTestService(15 * time.Minute)

	_, err := svc.ValidateAccessToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
