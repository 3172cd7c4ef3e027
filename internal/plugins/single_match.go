// internal/plugins/single_match.go
// Single-Match plugin: the degenerate one-match
// kind backing an organizer-created two-player tournament. Always rates
// with Mode A; standalone matches with tournamentId = nil never go
// through this plugin at all — they are created directly by
// MatchService.CreateStandalone and rated the same way inline.
package plugins

import (
	"context"
	"database/sql"

	"tournament-planner/internal/engine"
	"tournament-planner/internal/engine/errs"
	"tournament-planner/internal/models"
	"tournament-planner/internal/repositories"
	"tournament-planner/internal/utils"
)

// SingleMatchPlugin implements engine.Plugin for KindSingleMatch.
type SingleMatchPlugin struct {
	repos  *repositories.Container
	rating *engine.RatingEngine
}

// NewSingleMatchPlugin constructs a SingleMatchPlugin.
func NewSingleMatchPlugin(repos *repositories.Container, rating *engine.RatingEngine) *SingleMatchPlugin {
	return &SingleMatchPlugin{repos: repos, rating: rating}
}

func (p *SingleMatchPlugin) Kind() models.TournamentKind { return models.KindSingleMatch }
func (p *SingleMatchPlugin) IsBasic() bool               { return true }

func (p *SingleMatchPlugin) CanDelete(ctx context.Context, t *models.Tournament) (bool, error) {
	matches, err := p.repos.Match.GetByTournamentID(ctx, t.ID)
	if err != nil {
		return false, errs.Wrap(errs.Dependency, err, "failed to check existing matches")
	}
	return len(matches) == 0, nil
}

func (p *SingleMatchPlugin) CanCancel(t *models.Tournament) bool { return t.Status != models.StatusCompleted }

func (p *SingleMatchPlugin) IsComplete(ctx context.Context, tx *sql.Tx, t *models.Tournament) (bool, error) {
	matches, err := p.repos.Match.GetByTournamentID(ctx, t.ID)
	if err != nil {
		return false, errs.Wrap(errs.Dependency, err, "failed to load match")
	}
	if len(matches) == 0 {
		return false, nil
	}
	return matches[0].HasDeclaredWinner(), nil
}

func (p *SingleMatchPlugin) MatchesRemaining(ctx context.Context, t *models.Tournament) (int, error) {
	complete, err := p.IsComplete(ctx, nil, t)
	if err != nil {
		return 0, err
	}
	if complete {
		return 0, nil
	}
	return 1, nil
}

// CreateTournament enrolls the two participants; the Match row itself is
// created by the first UpdateMatch call.
func (p *SingleMatchPlugin) CreateTournament(ctx context.Context, tx *sql.Tx, in engine.CreateTournamentInput) error {
	if len(in.Participants) != 2 {
		return errs.NewValidation("a single-match tournament requires exactly two participants, got %d", len(in.Participants))
	}
	return nil
}

func (p *SingleMatchPlugin) UpdateMatch(ctx context.Context, tx *sql.Tx, t *models.Tournament, in engine.UpdateMatchInput) (*models.Match, *engine.StateChangeDescriptor, error) {
	var match *models.Match
	if in.MatchOrBracketMatchID != "" {
		if err := p.repos.Match.UpdateScoreWithTx(tx, in.MatchOrBracketMatchID, in.P1Sets, in.P2Sets, in.P1Forfeit, in.P2Forfeit); err != nil {
			return nil, nil, errs.Wrap(errs.Dependency, err, "failed to update match score")
		}
		m, err := p.repos.Match.GetByID(ctx, in.MatchOrBracketMatchID)
		if err != nil {
			return nil, nil, errs.NewNotFound("match %s not found", in.MatchOrBracketMatchID)
		}
		match = m
	} else {
		match = &models.Match{
			ID:           utils.GenerateUUID(),
			TournamentID: &t.ID,
			Member1ID:    in.Member1ID,
			Member2ID:    in.Member2ID,
			P1Sets:       in.P1Sets,
			P2Sets:       in.P2Sets,
			P1Forfeit:    in.P1Forfeit,
			P2Forfeit:    in.P2Forfeit,
		}
		if err := p.repos.Match.CreateWithTx(tx, match); err != nil {
			return nil, nil, errs.Wrap(errs.Dependency, err, "failed to create match")
		}
	}

	if !match.HasDeclaredWinner() {
		return match, nil, errs.NewValidation("match has no declared winner: equal sets without a forfeit")
	}
	return match, &engine.StateChangeDescriptor{ShouldMarkComplete: true}, nil
}

func (p *SingleMatchPlugin) OnMatchCompleted(ctx context.Context, tx *sql.Tx, t *models.Tournament, match *models.Match) (*engine.StateChangeDescriptor, error) {
	return nil, nil
}

func (p *SingleMatchPlugin) OnChildTournamentCompleted(ctx context.Context, tx *sql.Tx, parent, child *models.Tournament) (*engine.StateChangeDescriptor, error) {
	return nil, errs.NewIntegrity("single-match tournaments have no children")
}

func (p *SingleMatchPlugin) OnMatchRatingCalculation(ctx context.Context, tx *sql.Tx, t *models.Tournament, match *models.Match) error {
	return p.rating.ApplyModeAWithTx(ctx, tx, match, models.ReasonMatchCompleted)
}

// OnTournamentCompletionRatingCalculation is a no-op: single matches always
// rate via Mode A in OnMatchRatingCalculation, never via a Mode B batch —
// per the REDESIGN note that Pass 2's single-match guard is defensive
// dead code once dispatch is correct.
func (p *SingleMatchPlugin) OnTournamentCompletionRatingCalculation(ctx context.Context, tx *sql.Tx, t *models.Tournament) error {
	return nil
}

func (p *SingleMatchPlugin) EnrichActiveTournament(ctx context.Context, t *models.Tournament) (map[string]interface{}, error) {
	matches, err := p.repos.Match.GetByTournamentID(ctx, t.ID)
	if err != nil {
		return nil, errs.Wrap(errs.Dependency, err, "failed to load match")
	}
	return map[string]interface{}{"matches": matches}, nil
}

func (p *SingleMatchPlugin) EnrichCompletedTournament(ctx context.Context, t *models.Tournament) (map[string]interface{}, error) {
	return p.EnrichActiveTournament(ctx, t)
}

func (p *SingleMatchPlugin) HandlePluginRequest(ctx context.Context, tx *sql.Tx, t *models.Tournament, action string, payload map[string]interface{}) (map[string]interface{}, error) {
	return nil, errs.NewValidation("single-match tournaments support no plugin actions, got %q", action)
}
