package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTournamentKind_IsBasic(t *testing.T) {
	basic := []TournamentKind{KindRoundRobin, KindPlayoff, KindSwiss, KindSingleMatch}
	for _, k := range basic {
		assert.True(t, k.IsBasic(), "%s should be basic", k)
	}

	compound := []TournamentKind{KindPrelimWithFinalRR, KindPrelimWithFinalPlayoff}
	for _, k := range compound {
		assert.False(t, k.IsBasic(), "%s should not be basic", k)
	}
}

func TestTournamentConfig_ValueThenScanRoundTrips(t *testing.T) {
	protected := 4
	swissRounds := 6
	original := TournamentConfig{
		ProtectedSeeds: &protected,
		SwissRounds:    &swissRounds,
		NumberOfGroups: 2,
		FinalSize:      8,
		AutoQualifiers: 1,
		FinalIsPlayoff: true,
	}

	raw, err := original.Value()
	require.NoError(t, err)

	var scanned TournamentConfig
	require.NoError(t, scanned.Scan(raw))

	require.NotNil(t, scanned.ProtectedSeeds)
	assert.Equal(t, protected, *scanned.ProtectedSeeds)
	require.NotNil(t, scanned.SwissRounds)
	assert.Equal(t, swissRounds, *scanned.SwissRounds)
	assert.Equal(t, original.NumberOfGroups, scanned.NumberOfGroups)
	assert.Equal(t, original.FinalSize, scanned.FinalSize)
	assert.Equal(t, original.AutoQualifiers, scanned.AutoQualifiers)
	assert.Equal(t, original.FinalIsPlayoff, scanned.FinalIsPlayoff)
}

func TestTournamentConfig_ScanNilIsNoOp(t *testing.T) {
	var c TournamentConfig
	assert.NoError(t, c.Scan(nil))
	assert.Equal(t, TournamentConfig{}, c)
}

func TestTournamentConfig_ScanRejectsNonByteSlice(t *testing.T) {
	var c TournamentConfig
	err := c.Scan(42)
	assert.Error(t, err)
}
