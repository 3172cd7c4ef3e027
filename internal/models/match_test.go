package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatch_WinnerID_ForfeitTakesPrecedenceOverSets(t *testing.T) {
	m := &Match{Member1ID: "p1", Member2ID: "p2", P1Sets: 0, P2Sets: 3, P1Forfeit: true}
	assert.Equal(t, "p2", m.WinnerID())
	assert.Equal(t, "p1", m.LoserID())
}

func TestMatch_WinnerID_BySetsWhenNoForfeit(t *testing.T) {
	m := &Match{Member1ID: "p1", Member2ID: "p2", P1Sets: 3, P2Sets: 1}
	assert.Equal(t, "p1", m.WinnerID())
	assert.Equal(t, "p2", m.LoserID())
}

func TestMatch_HasDeclaredWinner(t *testing.T) {
	cases := []struct {
		name string
		m    Match
		want bool
	}{
		{"unequal sets, no forfeit", Match{P1Sets: 3, P2Sets: 1}, true},
		{"equal sets, no forfeit", Match{P1Sets: 2, P2Sets: 2}, false},
		{"single forfeit", Match{P1Forfeit: true}, true},
		{"double forfeit", Match{P1Forfeit: true, P2Forfeit: true}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.m.HasDeclaredWinner())
		})
	}
}
