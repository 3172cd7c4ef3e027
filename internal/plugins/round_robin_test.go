package plugins

import (
	"testing"

	"tournament-planner/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestPairKey_IsOrderIndependent(t *testing.T) {
	assert.Equal(t, pairKey("a", "b"), pairKey("b", "a"))
	assert.NotEqual(t, pairKey("a", "b"), pairKey("a", "c"))
}

func TestRoundRobinPlugin_Standings_CountsWinsOnly(t *testing.T) {
	p := &RoundRobinPlugin{}
	matches := []*models.Match{
		{Member1ID: "a", Member2ID: "b", P1Sets: 3, P2Sets: 0},
		{Member1ID: "a", Member2ID: "c", P1Sets: 3, P2Sets: 1},
		{Member1ID: "b", Member2ID: "c", P1Sets: 1, P2Sets: 3},
		{Member1ID: "a", Member2ID: "d"}, // not yet played, no declared winner
	}

	standings := p.standings(nil, "t1", matches)

	assert.Equal(t, 2, standings["a"])
	assert.Equal(t, 1, standings["c"])
	assert.Equal(t, 0, standings["b"])
	assert.NotContains(t, standings, "d")
}
