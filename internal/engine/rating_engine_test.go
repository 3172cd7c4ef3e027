package engine

import (
	"testing"

	"tournament-planner/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestClampNonNegative(t *testing.T) {
	assert.Equal(t, 0, clampNonNegative(-5))
	assert.Equal(t, 0, clampNonNegative(0))
	assert.Equal(t, 10, clampNonNegative(10))
}

func TestCurrentRating_DefaultsToUnratedValue(t *testing.T) {
	assert.Equal(t, models.DefaultUnratedValue, currentRating(nil))
	assert.Equal(t, models.DefaultUnratedValue, currentRating(&models.Member{}))

	rating := 1700
	assert.Equal(t, 1700, currentRating(&models.Member{Rating: &rating}))
}

func TestRound_HalfAwayFromZero(t *testing.T) {
	assert.Equal(t, 3, round(2.5))
	assert.Equal(t, 2, round(2.4))
	assert.Equal(t, -3, round(-2.5))
	assert.Equal(t, -2, round(-2.4))
}

func TestMedian_OddAndEvenCounts(t *testing.T) {
	assert.Equal(t, 3, median([]int{5, 1, 3}))
	assert.Equal(t, 3, median([]int{1, 2, 3, 4}))
}

func TestMaxOfMinOf(t *testing.T) {
	assert.Equal(t, 30, maxOf([]int{10, 30, 20}))
	assert.Equal(t, 10, minOf([]int{10, 30, 20}))
}

func TestIntermediate_BucketsBySpread(t *testing.T) {
	assert.Equal(t, 0, intermediate(0))
	assert.Equal(t, 10, intermediate(25))
	assert.Equal(t, 5, intermediate(75))
	assert.Equal(t, 1, intermediate(125))
	assert.Equal(t, 0, intermediate(200))
	// symmetric in the sign of diff.
	assert.Equal(t, 10, intermediate(-25))
}

func TestResolvePass2_FallsBackWhenRivalHasNoEntry(t *testing.T) {
	out := resolvePass2([]string{"a", "b"}, []int{10, 20}, map[string]int{"a": 100})

	assert.Equal(t, []int{100, 20}, out)
}

func TestPass2Rated_SmallGainKeepsInitialRating(t *testing.T) {
	initial := 1500
	r := &participantResult{initial: &initial}

	got := pass2Rated(r, 1520) // gained = 20, < 50

	assert.Equal(t, 1500, got)
}

func TestPass2Rated_ModerateGainUsesPass1Directly(t *testing.T) {
	initial := 1500
	r := &participantResult{initial: &initial}

	got := pass2Rated(r, 1560) // gained = 60, in [50,74]

	assert.Equal(t, 1560, got)
}

func TestPass2Rated_SingleMatchGuardCapsSwingAt100(t *testing.T) {
	initial := 1000
	r := &participantResult{
		initial: &initial,
		winIDs:  []string{"w"},
		wins:    []int{900},
	}

	got := pass2Rated(r, 1150) // gained = 150, played() == 1

	assert.Equal(t, 1100, got) // capped delta of +100
}

func TestPass2Rated_SingleMatchLossNeverIncreasesRating(t *testing.T) {
	initial := 1500
	r := &participantResult{
		initial: &initial,
		lossIDs: []string{"l"},
		losses:  []int{1550},
	}

	got := pass2Rated(r, 1650) // gained = 150, but this was a pure loss

	assert.Equal(t, 1500, got) // zeroed out, not bumped up
}

func TestPass2Rated_MixedRecordAveragesBestWinAndWorstLoss(t *testing.T) {
	initial := 1500
	r := &participantResult{
		initial: &initial,
		winIDs:  []string{"w"},
		wins:    []int{1600},
		lossIDs: []string{"l"},
		losses:  []int{1400},
	}

	got := pass2Rated(r, 1700) // gained = 200, played() == 2

	assert.Equal(t, 1600, got)
}

func TestPass2Rated_AllWinsUsesMedianOfOpponents(t *testing.T) {
	initial := 1500
	r := &participantResult{
		initial: &initial,
		winIDs:  []string{"w1", "w2"},
		wins:    []int{1600, 1650},
	}

	got := pass2Rated(r, 1800) // gained = 300, all-wins branch

	assert.Equal(t, 1625, got)
}

func TestPass2Unrated_NoAnchorsReturnsDefaultUnratedValue(t *testing.T) {
	r := &participantResult{}

	got := pass2Unrated(r, map[string]int{})

	assert.Equal(t, models.DefaultUnratedValue, got)
}

func TestPass2Unrated_MixedRecordAveragesBestWinAndWorstLoss(t *testing.T) {
	r := &participantResult{
		winIDs:  []string{"w1"},
		wins:    []int{1600},
		lossIDs: []string{"l1"},
		losses:  []int{1400},
	}
	rivalPass2 := map[string]int{"w1": 1650}

	got := pass2Unrated(r, rivalPass2)

	assert.Equal(t, 1525, got)
}

func TestPass2Unrated_AllWinsAddsIntermediateBonus(t *testing.T) {
	r := &participantResult{
		winIDs: []string{"w1", "w2"},
		wins:   []int{1600, 1650},
	}
	rivalPass2 := map[string]int{"w1": 1620, "w2": 1680}

	got := pass2Unrated(r, rivalPass2)

	assert.Equal(t, 1685, got) // bestWin 1680 + intermediate(60) == 5
}

func TestPass2Unrated_AllLossesSubtractsIntermediatePenalty(t *testing.T) {
	r := &participantResult{
		lossIDs: []string{"l1", "l2"},
		losses:  []int{1400, 1450},
	}

	got := pass2Unrated(r, map[string]int{})

	assert.Equal(t, 1390, got) // worstLoss 1400 - intermediate(50) == 10
}
