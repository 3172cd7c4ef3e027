package engine

import (
	"math/rand"
	"testing"

	"tournament-planner/internal/engine/errs"
	"tournament-planner/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ratedParticipant(id string, rating int) *models.TournamentParticipant {
	r := rating
	return &models.TournamentParticipant{ID: id, MemberID: id, RatingAtTime: &r}
}

func unratedParticipant(id string) *models.TournamentParticipant {
	return &models.TournamentParticipant{ID: id, MemberID: id}
}

func countOccupants(slots []string) (players, byes int) {
	for _, s := range slots {
		if s == models.BracketSlotBye {
			byes++
		} else {
			players++
		}
	}
	return
}

func TestBracketBuilder_Build_RejectsSingleParticipant(t *testing.T) {
	bb := NewBracketBuilder()

	layout, err := bb.Build([]*models.TournamentParticipant{ratedParticipant("a", 1500)}, nil, nil)

	require.Error(t, err)
	assert.Nil(t, layout)
	assert.Equal(t, errs.Validation, errs.KindOf(err))
}

func TestBracketBuilder_Build_PowerOfTwoFieldHasNoByes(t *testing.T) {
	bb := NewBracketBuilder()
	participants := []*models.TournamentParticipant{
		ratedParticipant("a", 2000),
		ratedParticipant("b", 1900),
		ratedParticipant("c", 1800),
		ratedParticipant("d", 1700),
	}

	layout, err := bb.Build(participants, nil, rand.New(rand.NewSource(1)))

	require.NoError(t, err)
	assert.Equal(t, 4, layout.BracketSize)
	players, byes := countOccupants(layout.Slots)
	assert.Equal(t, 4, players)
	assert.Equal(t, 0, byes)
}

func TestBracketBuilder_Build_RoundsUpToNextPowerOfTwoAndPlacesByes(t *testing.T) {
	bb := NewBracketBuilder()
	participants := []*models.TournamentParticipant{
		ratedParticipant("a", 2000),
		ratedParticipant("b", 1900),
		ratedParticipant("c", 1800),
		ratedParticipant("d", 1700),
		ratedParticipant("e", 1600),
	}

	layout, err := bb.Build(participants, nil, rand.New(rand.NewSource(1)))

	require.NoError(t, err)
	assert.Equal(t, 8, layout.BracketSize)
	players, byes := countOccupants(layout.Slots)
	assert.Equal(t, 5, players)
	assert.Equal(t, 3, byes)
}

func TestBracketBuilder_Build_NeverProducesADoubleBye(t *testing.T) {
	bb := NewBracketBuilder()

	for n := 2; n <= 12; n++ {
		participants := make([]*models.TournamentParticipant, n)
		for i := 0; i < n; i++ {
			participants[i] = ratedParticipant(string(rune('a'+i)), 1000+i*7)
		}

		layout, err := bb.Build(participants, nil, rand.New(rand.NewSource(int64(n))))
		require.NoError(t, err, "n=%d", n)

		for m := 0; m < len(layout.Slots)/2; m++ {
			a, b := layout.Slots[2*m], layout.Slots[2*m+1]
			assert.False(t, a == models.BracketSlotBye && b == models.BracketSlotBye,
				"n=%d match %d has a double BYE", n, m)
		}
	}
}

func TestBracketBuilder_Build_ByeNeverOccupiesTheFirstSlotOfAMatch(t *testing.T) {
	bb := NewBracketBuilder()

	for n := 2; n <= 12; n++ {
		participants := make([]*models.TournamentParticipant, n)
		for i := 0; i < n; i++ {
			participants[i] = ratedParticipant(string(rune('a'+i)), 1000+i*7)
		}

		layout, err := bb.Build(participants, nil, rand.New(rand.NewSource(int64(n*31))))
		require.NoError(t, err, "n=%d", n)

		for m := 0; m < len(layout.Slots)/2; m++ {
			a, b := layout.Slots[2*m], layout.Slots[2*m+1]
			if a == models.BracketSlotBye {
				assert.Equal(t, models.BracketSlotBye, b, "n=%d match %d has the BYE in the first slot with an occupant in the second", n, m)
			}
		}
	}
}

func TestBracketBuilder_Build_UnratedParticipantsDefaultToUnratedValue(t *testing.T) {
	bb := NewBracketBuilder()
	participants := []*models.TournamentParticipant{
		unratedParticipant("a"),
		unratedParticipant("b"),
		unratedParticipant("c"),
		unratedParticipant("d"),
	}

	layout, err := bb.Build(participants, nil, rand.New(rand.NewSource(3)))

	require.NoError(t, err)
	players, _ := countOccupants(layout.Slots)
	assert.Equal(t, 4, players)
}

func TestBracketBuilder_Build_ProtectedSeedsPlacedAtStandardPositions(t *testing.T) {
	bb := NewBracketBuilder()
	participants := []*models.TournamentParticipant{
		ratedParticipant("a", 2000),
		ratedParticipant("b", 1900),
		ratedParticipant("c", 1800),
		ratedParticipant("d", 1700),
		ratedParticipant("e", 1600),
		ratedParticipant("f", 1500),
		ratedParticipant("g", 1400),
		ratedParticipant("h", 1300),
	}
	two := 2

	layout, err := bb.Build(participants, &two, rand.New(rand.NewSource(5)))

	require.NoError(t, err)
	assert.Equal(t, 8, layout.BracketSize)
	// Standard 8-slot seeding places seed 1 at position 1 and seed 2 at
	// position 8 (opposite ends of the bracket).
	assert.Equal(t, "a", layout.Slots[0])
	assert.Equal(t, "b", layout.Slots[7])
}

func TestBracketBuilder_Build_RejectsNonPowerOfTwoProtectedSeedCount(t *testing.T) {
	bb := NewBracketBuilder()
	participants := make([]*models.TournamentParticipant, 16)
	for i := range participants {
		participants[i] = ratedParticipant(string(rune('a'+i)), 2000-i)
	}
	three := 3

	layout, err := bb.Build(participants, &three, rand.New(rand.NewSource(1)))

	require.Error(t, err)
	assert.Nil(t, layout)
	assert.Equal(t, errs.Validation, errs.KindOf(err))
}

func TestBracketBuilder_Build_RejectsProtectedSeedCountAboveMaximum(t *testing.T) {
	bb := NewBracketBuilder()
	// n=5 -> maxProtectedSeeds = largestPowerOfTwoLE(5/4) = largestPowerOfTwoLE(1) = 1 -> 0.
	participants := []*models.TournamentParticipant{
		ratedParticipant("a", 2000),
		ratedParticipant("b", 1900),
		ratedParticipant("c", 1800),
		ratedParticipant("d", 1700),
		ratedParticipant("e", 1600),
	}
	two := 2

	layout, err := bb.Build(participants, &two, rand.New(rand.NewSource(1)))

	require.Error(t, err)
	assert.Nil(t, layout)
	assert.Equal(t, errs.Validation, errs.KindOf(err))
}

func TestBracketBuilder_Build_IsDeterministicGivenTheSameRandSource(t *testing.T) {
	bb := NewBracketBuilder()
	participants := []*models.TournamentParticipant{
		ratedParticipant("a", 2000),
		ratedParticipant("b", 1900),
		ratedParticipant("c", 1800),
		ratedParticipant("d", 1700),
		ratedParticipant("e", 1600),
		ratedParticipant("f", 1500),
	}

	layout1, err1 := bb.Build(participants, nil, rand.New(rand.NewSource(99)))
	layout2, err2 := bb.Build(participants, nil, rand.New(rand.NewSource(99)))

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, layout1.Slots, layout2.Slots)
}

func TestStandardSeedPositions_TopTwoSeedsAreOppositeHalves(t *testing.T) {
	seedPosition := standardSeedPositions(16)

	assert.Equal(t, 1, seedPosition[0])
	assert.Equal(t, 16, seedPosition[1])
}

func TestMaxProtectedSeeds_BelowThresholdIsZero(t *testing.T) {
	assert.Equal(t, 0, maxProtectedSeeds(4))
	assert.Equal(t, 0, maxProtectedSeeds(7))
	assert.Equal(t, 2, maxProtectedSeeds(8))
	assert.Equal(t, 4, maxProtectedSeeds(16))
}

func TestValidateProtectedSeeds_ZeroIsAlwaysAllowed(t *testing.T) {
	assert.NoError(t, validateProtectedSeeds(0, 0))
	assert.NoError(t, validateProtectedSeeds(0, 4))
}
