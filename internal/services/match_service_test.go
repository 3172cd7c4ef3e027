package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchService_CreateStandalone_RejectsSameMemberOnBothSides(t *testing.T) {
	s := &MatchService{}
	_, err := s.CreateStandalone(context.Background(), CreateStandaloneInput{
		Member1ID: "m1",
		Member2ID: "m1",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestMatchService_CreateStandalone_RejectsUndeclaredWinner(t *testing.T) {
	s := &MatchService{}
	_, err := s.CreateStandalone(context.Background(), CreateStandaloneInput{
		CreatorIsOrganizer: true,
		Member1ID:          "m1",
		Member2ID:          "m2",
		P1Sets:             2,
		P2Sets:             2,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Contains(t, err.Error(), "no declared winner")
}
