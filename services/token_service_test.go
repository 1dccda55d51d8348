package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_RoundTrip(t *testing.T) {
	ts, err := NewTokenService("test-secret")
	require.NoError(t, err)

	for _, userID := range []string{"u1", "507f1f77bcf86cd799439011", "some-longer-user-id"} {
		token, err := ts.Issue(userID)
		require.NoError(t, err)

		got, err := ts.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, userID, got)
	}
}

func TestTokenService_EmptySecret(t *testing.T) {
	_, err := NewTokenService("")
	assert.Error(t, err)
}

func TestTokenService_Expired(t *testing.T) {
	ts, err := NewTokenService("test-secret")
	require.NoError(t, err)

	// Issue in the past so the token is already expired, signature still valid.
	ts.now = func() time.Time { return time.Now().Add(-TokenLifetime - time.Minute) }
	token, err := ts.Issue("u1")
	require.NoError(t, err)

	ts.now = time.Now
	_, err = ts.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenService_TamperedSignature(t *testing.T) {
	ts, err := NewTokenService("test-secret")
	require.NoError(t, err)
	other, err := NewTokenService("another-secret")
	require.NoError(t, err)

	token, err := other.Issue("u1")
	require.NoError(t, err)

	_, err = ts.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestTokenService_Garbage(t *testing.T) {
	ts, err := NewTokenService("test-secret")
	require.NoError(t, err)

	for _, bad := range []string{"", "not-a-token", "a.b.c"} {
		_, err := ts.Verify(bad)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	}
}

func TestTokenService_MissingUserIDClaim(t *testing.T) {
	ts, err := NewTokenService("test-secret")
	require.NoError(t, err)

	// Well-signed token without the userId claim must still be rejected.
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = ts.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}
