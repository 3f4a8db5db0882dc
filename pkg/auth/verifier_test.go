package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret-key")

func signToken(t *testing.T, claims jwt.RegisteredClaims, secret []byte) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	require.NoError(t, err)
	return signed
}

func TestJWTVerifier_Verify(t *testing.T) {
	v := NewJWTVerifier(testSecret, "bookline-identity")

	t.Run("valid token returns subject", func(t *testing.T) {
		tokenStr := signToken(t, jwt.RegisteredClaims{
			Subject:   "user-123",
			Issuer:    "bookline-identity",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}, testSecret)

		subject, err := v.Verify(context.Background(), tokenStr)
		require.NoError(t, err)
		assert.Equal(t, "user-123", subject)
	})

	t.Run("verification is idempotent", func(t *testing.T) {
		tokenStr := signToken(t, jwt.RegisteredClaims{
			Subject:   "user-123",
			Issuer:    "bookline-identity",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}, testSecret)

		first, err := v.Verify(context.Background(), tokenStr)
		require.NoError(t, err)
		second, err := v.Verify(context.Background(), tokenStr)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("expired token rejected", func(t *testing.T) {
		tokenStr := signToken(t, jwt.RegisteredClaims{
			Subject:   "user-123",
			Issuer:    "bookline-identity",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		}, testSecret)

		_, err := v.Verify(context.Background(), tokenStr)
		assert.Error(t, err)
	})

	t.Run("wrong signing key rejected", func(t *testing.T) {
		tokenStr := signToken(t, jwt.RegisteredClaims{
			Subject:   "user-123",
			Issuer:    "bookline-identity",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}, []byte("other-secret"))

		_, err := v.Verify(context.Background(), tokenStr)
		assert.Error(t, err)
	})

	t.Run("wrong issuer rejected", func(t *testing.T) {
		tokenStr := signToken(t, jwt.RegisteredClaims{
			Subject:   "user-123",
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}, testSecret)

		_, err := v.Verify(context.Background(), tokenStr)
		assert.Error(t, err)
	})

	t.Run("missing subject rejected", func(t *testing.T) {
		tokenStr := signToken(t, jwt.RegisteredClaims{
			Issuer:    "bookline-identity",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}, testSecret)

		_, err := v.Verify(context.Background(), tokenStr)
		assert.Error(t, err)
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		_, err := v.Verify(context.Background(), "not-a-jwt")
		assert.Error(t, err)
	})
}
