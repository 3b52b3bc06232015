package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT(42, "user", "test-secret")
	require.NoError(t, err)

	claims, err := ParseJWT(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, float64(42), claims["user_id"])
	assert.Equal(t, "user", claims["role"])
}

func TestJWTWrongSecret(t *testing.T) {
	token, err := GenerateJWT(42, "user", "test-secret")
	require.NoError(t, err)

	_, err = ParseJWT(token, "other-secret")
	assert.Error(t, err)
}

func TestRefreshTokenCarriesType(t *testing.T) {
	token, exp, err := GenerateRefreshToken(7, "test-secret")
	require.NoError(t, err)
	assert.Greater(t, exp, int64(0))

	claims, err := ParseJWT(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, "refresh", claims["type"])
	assert.Equal(t, float64(7), claims["user_id"])
}
