package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundCount_IsLog2OfBracketSize(t *testing.T) {
	assert.Equal(t, 0, roundCount(1))
	assert.Equal(t, 1, roundCount(2))
	assert.Equal(t, 2, roundCount(4))
	assert.Equal(t, 3, roundCount(8))
	assert.Equal(t, 4, roundCount(16))
}

func TestPow2(t *testing.T) {
	assert.Equal(t, 1, pow2(0))
	assert.Equal(t, 2, pow2(1))
	assert.Equal(t, 4, pow2(2))
	assert.Equal(t, 8, pow2(3))
}

func TestMatchesInRound_HalvesEachRoundTowardTheFinal(t *testing.T) {
	const bracketSize, totalRounds = 8, 3

	assert.Equal(t, 4, matchesInRound(bracketSize, totalRounds, 3)) // first round
	assert.Equal(t, 2, matchesInRound(bracketSize, totalRounds, 2))
	assert.Equal(t, 1, matchesInRound(bracketSize, totalRounds, 1)) // final
}

func TestNextSlotFor_OddPositionsFeedSlotOneEvenFeedSlotTwo(t *testing.T) {
	assert.Equal(t, 1, nextSlotFor(1))
	assert.Equal(t, 2, nextSlotFor(2))
	assert.Equal(t, 1, nextSlotFor(3))
	assert.Equal(t, 2, nextSlotFor(4))
}
