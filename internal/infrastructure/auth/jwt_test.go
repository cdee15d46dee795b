package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/iwaqasmaqbool/gms-sub002/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "gms-test",
	})
}

func TestJWTService_IssueAndValidate(t *testing.T) {
	svc := newTestJWTService()
	userID := uuid.New()

	session, err := svc.Issue(userID, "shop1", "shopkeeper")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.NotEmpty(t, session.ID)

	claims, err := svc.Validate(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "shop1", claims.Username)
	assert.Equal(t, "shopkeeper", claims.Role)
	assert.Equal(t, session.ID, claims.ID)

	parsed, err := claims.ParsedUserID()
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)
	assert.InDelta(t, (15 * time.Minute).Seconds(), claims.RemainingTTL(time.Now()).Seconds(), 5)
}

func TestJWTService_Validate_Errors(t *testing.T) {
	svc := newTestJWTService()
	session, err := svc.Issue(uuid.New(), "admin", "admin")
	require.NoError(t, err)

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Validate("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{Secret: "another-secret-key-at-least-32-chars", AccessTokenExpiration: time.Minute, Issuer: "gms-test"})
		_, err := other.Validate(session.Token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{Secret: "test-secret-key-at-least-32-chars", AccessTokenExpiration: time.Minute, Issuer: "someone-else"})
		_, err := other.Validate(session.Token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		svc.now = func() time.Time { return time.Now().Add(time.Hour) }
		defer func() { svc.now = time.Now }()
		_, err := svc.Validate(session.Token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})
}

func TestClaims_RemainingTTL_Expired(t *testing.T) {
	svc := newTestJWTService()
	session, err := svc.Issue(uuid.New(), "admin", "admin")
	require.NoError(t, err)
	claims, err := svc.Validate(session.Token)
	require.NoError(t, err)
	assert.Zero(t, claims.RemainingTTL(time.Now().Add(time.Hour)))
}
