package plugins

import (
	"context"
	"testing"

	"tournament-planner/internal/engine"
	"tournament-planner/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingleMatchPlugin_CanCancel_FalseOnceCompleted(t *testing.T) {
	p := &SingleMatchPlugin{}

	assert.True(t, p.CanCancel(&models.Tournament{Status: models.StatusActive}))
	assert.False(t, p.CanCancel(&models.Tournament{Status: models.StatusCompleted}))
}

func TestSingleMatchPlugin_CreateTournament_RequiresExactlyTwoParticipants(t *testing.T) {
	p := &SingleMatchPlugin{}

	err := p.CreateTournament(context.Background(), nil, engine.CreateTournamentInput{
		Participants: []*models.TournamentParticipant{{MemberID: "a"}},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly two participants")
}

func TestSingleMatchPlugin_CreateTournament_AcceptsTwoParticipants(t *testing.T) {
	p := &SingleMatchPlugin{}

	err := p.CreateTournament(context.Background(), nil, engine.CreateTournamentInput{
		Participants: []*models.TournamentParticipant{{MemberID: "a"}, {MemberID: "b"}},
	})

	assert.NoError(t, err)
}

func TestSingleMatchPlugin_OnChildTournamentCompleted_RejectsChildren(t *testing.T) {
	p := &SingleMatchPlugin{}

	_, err := p.OnChildTournamentCompleted(context.Background(), nil, &models.Tournament{}, &models.Tournament{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no children")
}

func TestSingleMatchPlugin_HandlePluginRequest_RejectsEveryAction(t *testing.T) {
	p := &SingleMatchPlugin{}

	_, err := p.HandlePluginRequest(context.Background(), nil, &models.Tournament{}, "preview", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no plugin actions")
}
