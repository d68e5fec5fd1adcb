package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	h1, err := HashPassword("hunter22", bcrypt.MinCost)
	require.NoError(t, err)
	h2, err := HashPassword("hunter22", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2, "hashes should be salted")
	assert.True(t, CheckPasswordHash("hunter22", h1))
	assert.False(t, CheckPasswordHash("hunter23", h1))
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", 7*24*time.Hour)
	tok, err := issuer.GenerateJWT("abc", "doctor")
	require.NoError(t, err)

	claims, err := issuer.ValidateJWT(tok)
	require.NoError(t, err)
	assert.Equal(t, "abc", claims.UserID)
	assert.Equal(t, "doctor", claims.Role)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestTokenExpired(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, err := issuer.GenerateJWT("abc", "patient")
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.ValidateJWT(tok)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestTokenWrongSecret(t *testing.T) {
	tok, err := NewTokenIssuer("one", time.Hour).GenerateJWT("abc", "admin")
	require.NoError(t, err)

	_, err = NewTokenIssuer("two", time.Hour).ValidateJWT(tok)
	assert.Error(t, err)
}

func TestTokenRejectsNoneAlg(t *testing.T) {
	claims := &Claims{UserID: "abc", Role: "admin", RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenIssuer("secret", time.Hour).ValidateJWT(tok)
	assert.Error(t, err)
}

func TestTokenNoSecret(t *testing.T) {
	_, err := NewTokenIssuer("", time.Hour).GenerateJWT("abc", "admin")
	assert.ErrorIs(t, err, ErrNoSecret)
}
