package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateUUID_ProducesDistinctValues(t *testing.T) {
	a := GenerateUUID()
	b := GenerateUUID()

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestGenerateRequestID_IsPrefixed(t *testing.T) {
	id := GenerateRequestID()

	assert.Regexp(t, `^req_`, id)
}

func TestGenerateRefreshToken_Is64HexChars(t *testing.T) {
	token, err := GenerateRefreshToken()

	assert.NoError(t, err)
	assert.Len(t, token, 64)
	assert.Regexp(t, `^[0-9a-f]+$`, token)
}

func TestGenerateSecureToken_Is32HexChars(t *testing.T) {
	token := GenerateSecureToken()

	assert.Len(t, token, 32)
	assert.Regexp(t, `^[0-9a-f]+$`, token)
}
