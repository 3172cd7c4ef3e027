package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTournamentService_UpdateName_RejectsNameBelowMinLengthBeforeTouchingRepos(t *testing.T) {
	s := &TournamentService{}
	err := s.UpdateName(context.Background(), "t1", "ab")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestTournamentService_UpdateName_RejectsNameAboveMaxLengthBeforeTouchingRepos(t *testing.T) {
	s := &TournamentService{}
	err := s.UpdateName(context.Background(), "t1", string(make([]byte, 256)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}
