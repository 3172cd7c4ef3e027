package plugins

import (
	"context"
	"testing"

	"tournament-planner/internal/engine"
	"tournament-planner/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memberParticipants(ids ...string) []*models.TournamentParticipant {
	out := make([]*models.TournamentParticipant, len(ids))
	for i, id := range ids {
		out[i] = &models.TournamentParticipant{MemberID: id}
	}
	return out
}

func TestSnakeDraft_DistributesInSerpentineOrder(t *testing.T) {
	ordered := memberParticipants("a", "b", "c", "d", "e", "f")

	buckets := snakeDraft(ordered, 2)

	require.Len(t, buckets, 2)
	assert.Equal(t, []string{"a", "d", "e"}, memberIDs(buckets[0]))
	assert.Equal(t, []string{"b", "c", "f"}, memberIDs(buckets[1]))
}

func TestSnakeDraft_SingleGroupGetsEveryone(t *testing.T) {
	ordered := memberParticipants("a", "b", "c")

	buckets := snakeDraft(ordered, 1)

	require.Len(t, buckets, 1)
	assert.Equal(t, []string{"a", "b", "c"}, memberIDs(buckets[0]))
}

func TestSnakeDraft_EmptyInputProducesEmptyBuckets(t *testing.T) {
	buckets := snakeDraft(nil, 3)

	require.Len(t, buckets, 3)
	for _, b := range buckets {
		assert.Empty(t, b)
	}
}

func memberIDs(pts []*models.TournamentParticipant) []string {
	out := make([]string, len(pts))
	for i, pt := range pts {
		out[i] = pt.MemberID
	}
	return out
}

func TestPrelimFinalPlugin_UpdateMatch_AlwaysRejected(t *testing.T) {
	p := &PrelimFinalPlugin{}

	_, _, err := p.UpdateMatch(context.Background(), nil, &models.Tournament{}, engine.UpdateMatchInput{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "group or final child tournament")
}

func TestPrelimFinalPlugin_CanCancel_AlwaysTrue(t *testing.T) {
	p := &PrelimFinalPlugin{}

	assert.True(t, p.CanCancel(&models.Tournament{}))
}
