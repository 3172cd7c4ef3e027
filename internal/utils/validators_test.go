package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("Abcdef12"))
	assert.ErrorContains(t, ValidatePassword("short1A"), "at least 8 characters")
	assert.ErrorContains(t, ValidatePassword("abcdefg1"), "uppercase")
	assert.ErrorContains(t, ValidatePassword("ABCDEFG1"), "lowercase")
	assert.ErrorContains(t, ValidatePassword("Abcdefgh"), "number")
}

func TestValidateTournamentName(t *testing.T) {
	assert.NoError(t, ValidateTournamentName("Summer Open"))
	assert.ErrorContains(t, ValidateTournamentName("ab"), "at least 3")
	assert.ErrorContains(t, ValidateTournamentName(string(make([]byte, 256))), "not exceed 255")
}
