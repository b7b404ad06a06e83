package helpers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("secret", "expense-tracker", 24*time.Hour)

	tok, exp, err := m.GenerateToken("user-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), exp, 5*time.Second)

	claims, err := m.ParseToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
	assert.Equal(t, "expense-tracker", claims.Issuer)
}

func TestJWTManager_Expired(t *testing.T) {
	m := NewJWTManager("secret", "app", 24*time.Hour)
	issued := time.Now().Add(-25 * time.Hour)
	m.now = func() time.Time { return issued }
	tok, _, err := m.GenerateToken("user-1")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ParseToken(tok)
	require.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager("secret", "app", time.Hour)
	other := NewJWTManager("other-secret", "app", time.Hour)
	foreign := NewJWTManager("secret", "someone-else", time.Hour)

	tok, _, err := other.GenerateToken("user-1")
	require.NoError(t, err)
	_, err = m.ParseToken(tok)
	assert.Error(t, err, "wrong secret")

	tok, _, err = foreign.GenerateToken("user-1")
	require.NoError(t, err)
	_, err = m.ParseToken(tok)
	assert.Error(t, err, "wrong issuer")

	_, err = m.ParseToken("not-a-token")
	assert.Error(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    "app",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.ParseToken(unsigned)
	assert.Error(t, err, "alg none")

	_, _, err = m.GenerateToken("")
	assert.Error(t, err)
}
