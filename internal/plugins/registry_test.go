package plugins

import (
	"testing"

	"tournament-planner/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_WiresEveryKindToItself(t *testing.T) {
	reg := NewRegistry(nil, nil, nil, nil)

	for _, kind := range []models.TournamentKind{
		models.KindRoundRobin,
		models.KindPlayoff,
		models.KindSwiss,
		models.KindSingleMatch,
		models.KindPrelimWithFinalRR,
		models.KindPrelimWithFinalPlayoff,
	} {
		plugin, err := reg.Get(kind)
		require.NoError(t, err)
		assert.Equal(t, kind, plugin.Kind())
	}
}

func TestNewRegistry_PrelimPluginsDifferOnlyByFinalKind(t *testing.T) {
	reg := NewRegistry(nil, nil, nil, nil)

	rr, err := reg.Get(models.KindPrelimWithFinalRR)
	require.NoError(t, err)
	playoff, err := reg.Get(models.KindPrelimWithFinalPlayoff)
	require.NoError(t, err)

	assert.Equal(t, models.KindRoundRobin, rr.(*PrelimFinalPlugin).finalKind)
	assert.Equal(t, models.KindPlayoff, playoff.(*PrelimFinalPlugin).finalKind)
}

func TestRegistry_Get_UnknownKindReturnsError(t *testing.T) {
	reg := NewRegistry(nil, nil, nil, nil)

	_, err := reg.Get(models.TournamentKind("nonexistent"))

	assert.Error(t, err)
}
