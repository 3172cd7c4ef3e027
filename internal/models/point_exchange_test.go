package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackPointExchangeTable_CoversDisjointRangesStartingAtZero(t *testing.T) {
	rules := FallbackPointExchangeTable()
	require.Len(t, rules, 21)

	assert.Equal(t, 0, rules[0].MinDiff)
	for i := 1; i < len(rules); i++ {
		assert.Equal(t, rules[i-1].MaxDiff+1, rules[i].MinDiff, "rule %d should start where rule %d ends", i, i-1)
	}
}

func TestFallbackPointExchangeTable_TailRowIsOpenEndedAndCapped(t *testing.T) {
	rules := FallbackPointExchangeTable()
	tail := rules[len(rules)-1]

	assert.Equal(t, 500, tail.MinDiff)
	assert.Equal(t, 0, tail.ExpectedPoints)
	assert.Equal(t, 100, tail.UpsetPoints)
}

func TestFallbackPointExchangeTable_ExpectedAndUpsetPointsDescendAndAscend(t *testing.T) {
	rules := FallbackPointExchangeTable()
	for i := 1; i < len(rules)-1; i++ {
		assert.LessOrEqual(t, rules[i].ExpectedPoints, rules[i-1].ExpectedPoints)
		assert.GreaterOrEqual(t, rules[i].UpsetPoints, rules[i-1].UpsetPoints)
	}
}
