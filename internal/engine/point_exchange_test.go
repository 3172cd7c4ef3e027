package engine

import (
	"testing"
	"time"

	"tournament-planner/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRuleSetCache is a minimal in-memory RuleSetCache so PointExchangeTable
// can be exercised without a real repository or database connection: a hit
// here short-circuits EffectiveRuleSet before it ever touches the repo.
type fakeRuleSetCache struct {
	rules []models.PointExchangeRule
}

func (f *fakeRuleSetCache) Get(key string, dest interface{}) error {
	out, ok := dest.(*[]models.PointExchangeRule)
	if !ok || f.rules == nil {
		return assert.AnError
	}
	*out = f.rules
	return nil
}

func (f *fakeRuleSetCache) Set(key string, value interface{}, expiration time.Duration) error {
	if rules, ok := value.([]models.PointExchangeRule); ok {
		f.rules = rules
	}
	return nil
}

func TestIsUpset_WinnerRatedLowerThanLoser(t *testing.T) {
	assert.True(t, IsUpset(1400, 1600))
	assert.False(t, IsUpset(1600, 1400))
	assert.False(t, IsUpset(1500, 1500))
}

func TestPointExchangeTable_Lookup_UsesUpsetPointsWhenFlagged(t *testing.T) {
	cache := &fakeRuleSetCache{rules: models.FallbackPointExchangeTable()}
	table := NewPointExchangeTable(nil, cache)

	points, err := table.Lookup(t.Context(), time.Now(), 10, true)

	require.NoError(t, err)
	assert.Equal(t, 8, points)
}

func TestPointExchangeTable_Lookup_UsesExpectedPointsWhenNotFlagged(t *testing.T) {
	cache := &fakeRuleSetCache{rules: models.FallbackPointExchangeTable()}
	table := NewPointExchangeTable(nil, cache)

	points, err := table.Lookup(t.Context(), time.Now(), 10, false)

	require.NoError(t, err)
	assert.Equal(t, 8, points)
}

func TestPointExchangeTable_Lookup_TakesTheAbsoluteValueOfTheGap(t *testing.T) {
	cache := &fakeRuleSetCache{rules: models.FallbackPointExchangeTable()}
	table := NewPointExchangeTable(nil, cache)

	positive, err1 := table.Lookup(t.Context(), time.Now(), 60, false)
	negative, err2 := table.Lookup(t.Context(), time.Now(), -60, false)

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, positive, negative)
	assert.Equal(t, 6, positive)
}

func TestPointExchangeTable_Lookup_FallsBackToTheOpenEndedTailBeyondTheTable(t *testing.T) {
	cache := &fakeRuleSetCache{rules: models.FallbackPointExchangeTable()}
	table := NewPointExchangeTable(nil, cache)

	points, err := table.Lookup(t.Context(), time.Now(), 10000, true)

	require.NoError(t, err)
	assert.Equal(t, 100, points)
}

func TestPointExchangeTable_MatchPoints_AwardsEqualAndOppositePoints(t *testing.T) {
	cache := &fakeRuleSetCache{rules: models.FallbackPointExchangeTable()}
	table := NewPointExchangeTable(nil, cache)

	// winner rated below loser -> an upset win, so the upset column applies.
	winnerPoints, loserPoints, err := table.MatchPoints(t.Context(), time.Now(), 1500, 1510)

	require.NoError(t, err)
	assert.True(t, winnerPoints > 0)
	assert.Equal(t, -winnerPoints, loserPoints)
	assert.Equal(t, 8, winnerPoints)
}

func TestPointExchangeTable_MatchPoints_ExpectedWinUsesExpectedColumn(t *testing.T) {
	cache := &fakeRuleSetCache{rules: models.FallbackPointExchangeTable()}
	table := NewPointExchangeTable(nil, cache)

	winnerPoints, loserPoints, err := table.MatchPoints(t.Context(), time.Now(), 1520, 1500)

	require.NoError(t, err)
	assert.Equal(t, 8, winnerPoints)
	assert.Equal(t, -8, loserPoints)
}
