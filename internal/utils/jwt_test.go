package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateJWTValidateJWT_RoundTrips(t *testing.T) {
	token, err := GenerateJWT("member-1", "organizer", "secret", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, role, err := ValidateJWT(token, "secret")

	require.NoError(t, err)
	assert.Equal(t, "member-1", userID)
	assert.Equal(t, "organizer", role)
}

func TestValidateJWT_RejectsWrongSecret(t *testing.T) {
	token, err := GenerateJWT("member-1", "organizer", "secret", time.Hour)
	require.NoError(t, err)

	_, _, err = ValidateJWT(token, "wrong-secret")

	assert.Error(t, err)
}

func TestValidateJWT_RejectsExpiredToken(t *testing.T) {
	token, err := GenerateJWT("member-1", "organizer", "secret", -time.Hour)
	require.NoError(t, err)

	_, _, err = ValidateJWT(token, "secret")

	assert.Error(t, err)
}

func TestValidateJWT_RejectsGarbageToken(t *testing.T) {
	_, _, err := ValidateJWT("not-a-jwt", "secret")

	assert.Error(t, err)
}
