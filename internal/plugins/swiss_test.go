package plugins

import (
	"testing"

	"tournament-planner/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRounds_IsFloorLog2PlusTwo(t *testing.T) {
	assert.Equal(t, 2, defaultRounds(0))
	assert.Equal(t, 2, defaultRounds(1))
	assert.Equal(t, 3, defaultRounds(2))
	assert.Equal(t, 4, defaultRounds(4))
	assert.Equal(t, 5, defaultRounds(8))
	assert.Equal(t, 5, defaultRounds(15))
	assert.Equal(t, 6, defaultRounds(16))
}

func TestRatingOf_FallsBackToDefaultUnratedValue(t *testing.T) {
	rating := 1700
	assert.Equal(t, 1700, ratingOf(&models.TournamentParticipant{RatingAtTime: &rating}))
	assert.Equal(t, models.DefaultUnratedValue, ratingOf(&models.TournamentParticipant{}))
}

func TestSeedFirstRound_PairsTopHalfAgainstBottomHalf(t *testing.T) {
	ordered := []*models.TournamentParticipant{
		{MemberID: "a"}, {MemberID: "b"}, {MemberID: "c"}, {MemberID: "d"},
	}

	pairings := seedFirstRound("t1", ordered)

	require.Len(t, pairings, 2)
	assert.Equal(t, "a", pairings[0].Member1ID)
	assert.Equal(t, "c", pairings[0].Member2ID)
	assert.Equal(t, "b", pairings[1].Member1ID)
	assert.Equal(t, "d", pairings[1].Member2ID)
	for _, pr := range pairings {
		assert.Equal(t, 1, pr.Round)
		assert.Equal(t, "t1", pr.TournamentID)
	}
}

func TestSeedFirstRound_OddCountGivesTheLowestRankABye(t *testing.T) {
	ordered := []*models.TournamentParticipant{
		{MemberID: "a"}, {MemberID: "b"}, {MemberID: "c"},
	}

	pairings := seedFirstRound("t1", ordered)

	require.Len(t, pairings, 2)
	last := pairings[len(pairings)-1]
	assert.Equal(t, "c", last.Member1ID)
	assert.Equal(t, "", last.Member2ID)
}

func TestFindPairing_MatchesByMatchIDFirst(t *testing.T) {
	matchID := "m1"
	pairings := []*models.SwissPairing{
		{Member1ID: "a", Member2ID: "b", MatchID: &matchID},
		{Member1ID: "c", Member2ID: "d"},
	}

	found := findPairing(pairings, "m1", "", "")

	require.NotNil(t, found)
	assert.Equal(t, "a", found.Member1ID)
}

func TestFindPairing_MatchesByMemberPairRegardlessOfOrder(t *testing.T) {
	pairings := []*models.SwissPairing{
		{Member1ID: "a", Member2ID: "b"},
		{Member1ID: "c", Member2ID: "d"},
	}

	found := findPairing(pairings, "", "d", "c")

	require.NotNil(t, found)
	assert.Equal(t, "c", found.Member1ID)
	assert.Equal(t, "d", found.Member2ID)
}

func TestFindPairing_ReturnsNilWhenNothingMatches(t *testing.T) {
	pairings := []*models.SwissPairing{{Member1ID: "a", Member2ID: "b"}}

	assert.Nil(t, findPairing(pairings, "missing", "x", "y"))
}

func TestFindBestOpponent_PrefersSameScoreAndUnplayed(t *testing.T) {
	ordered := []string{"a", "b", "c", "d"}
	paired := map[string]bool{}
	played := map[string]bool{}
	score := map[string]int{"a": 2, "b": 2, "c": 1, "d": 1}

	opponent := findBestOpponent("a", ordered, paired, played, score)

	assert.Equal(t, "b", opponent)
}

func TestFindBestOpponent_FallsBackToAnyUnplayedWhenNoSameScoreOptionExists(t *testing.T) {
	ordered := []string{"a", "b", "c"}
	paired := map[string]bool{}
	played := map[string]bool{pairKey("a", "b"): true}
	score := map[string]int{"a": 2, "b": 2, "c": 1}

	opponent := findBestOpponent("a", ordered, paired, played, score)

	assert.Equal(t, "c", opponent)
}

func TestFindBestOpponent_FallsBackToARematchAsLastResort(t *testing.T) {
	ordered := []string{"a", "b"}
	paired := map[string]bool{}
	played := map[string]bool{pairKey("a", "b"): true}
	score := map[string]int{"a": 2, "b": 2}

	opponent := findBestOpponent("a", ordered, paired, played, score)

	assert.Equal(t, "b", opponent)
}

func TestFindBestOpponent_ReturnsEmptyWhenEveryoneElseIsAlreadyPaired(t *testing.T) {
	ordered := []string{"a", "b"}
	paired := map[string]bool{"b": true}
	played := map[string]bool{}
	score := map[string]int{"a": 2, "b": 2}

	opponent := findBestOpponent("a", ordered, paired, played, score)

	assert.Equal(t, "", opponent)
}
