// internal/plugins/playoff.go
// Playoff plugin: delegates structure to the Bracket Builder and
// Bracket Runtime, rates incrementally (Mode A) per match.
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

// PlayoffPlugin implements engine.Plugin for KindPlayoff.
type PlayoffPlugin struct {
	repos   *repositories.Container
	builder *engine.BracketBuilder
	runtime *engine.BracketRuntime
	rating  *engine.RatingEngine
}

// NewPlayoffPlugin constructs a PlayoffPlugin.
func NewPlayoffPlugin(repos *repositories.Container, builder *engine.BracketBuilder, runtime *engine.BracketRuntime, rating *engine.RatingEngine) *PlayoffPlugin {
	return &PlayoffPlugin{repos: repos, builder: builder, runtime: runtime, rating: rating}
}

func (p *PlayoffPlugin) Kind() models.TournamentKind { return models.KindPlayoff }
func (p *PlayoffPlugin) IsBasic() bool               { return true }

func (p *PlayoffPlugin) CanDelete(ctx context.Context, t *models.Tournament) (bool, error) {
	matches, err := p.repos.Match.GetByTournamentID(ctx, t.ID)
	if err != nil {
		return false, errs.Wrap(errs.Dependency, err, "failed to check existing matches")
	}
	return len(matches) == 0, nil
}

func (p *PlayoffPlugin) CanCancel(t *models.Tournament) bool { return true }

func (p *PlayoffPlugin) IsComplete(ctx context.Context, tx *sql.Tx, t *models.Tournament) (bool, error) {
	bm, err := p.repos.BracketMatch.GetFinalWithTx(tx, t.ID)
	if err != nil {
		return false, errs.NewNotFound("tournament %s has no final bracket match", t.ID)
	}
	if bm.MatchID == nil {
		return false, nil
	}
	m, err := p.repos.Match.GetByID(ctx, *bm.MatchID)
	if err != nil {
		return false, errs.Wrap(errs.Dependency, err, "failed to load final match")
	}
	return m.HasDeclaredWinner(), nil
}

func (p *PlayoffPlugin) MatchesRemaining(ctx context.Context, t *models.Tournament) (int, error) {
	slots, err := p.repos.BracketMatch.GetByTournamentID(ctx, t.ID)
	if err != nil {
		return 0, errs.Wrap(errs.Dependency, err, "failed to load bracket matches")
	}
	remaining := 0
	for _, bm := range slots {
		if bm.IsBye() {
			continue
		}
		if bm.MatchID == nil {
			remaining++
		}
	}
	return remaining, nil
}

// CreateTournament builds the bracket layout via the builder, then
// materializes it via the runtime.
func (p *PlayoffPlugin) CreateTournament(ctx context.Context, tx *sql.Tx, in engine.CreateTournamentInput) error {
	layout, err := p.builder.Build(in.Participants, in.Tournament.Config.ProtectedSeeds, nil)
	if err != nil {
		return err
	}
	return p.runtime.Construct(ctx, tx, in.Tournament.ID, layout)
}

// UpdateMatch resolves matchId as either a Match ID or a BracketMatch ID,
// rejects BYE slot updates, and creates or edits the Match row before
// advancing the bracket.
func (p *PlayoffPlugin) UpdateMatch(ctx context.Context, tx *sql.Tx, t *models.Tournament, in engine.UpdateMatchInput) (*models.Match, *engine.StateChangeDescriptor, error) {
	bm, err := p.runtime.ResolveBracketMatch(ctx, t.ID, in.MatchOrBracketMatchID)
	if err != nil {
		return nil, nil, err
	}
	if bm.IsBye() || bm.IsDoubleBye() {
		return nil, nil, errs.NewValidation("cannot record a result against a BYE bracket match")
	}

	match := &models.Match{
		ID:             utils.GenerateUUID(),
		TournamentID:   &t.ID,
		BracketMatchID: &bm.ID,
		Round:          &bm.Round,
		Member1ID:      bm.Member1ID,
		Member2ID:      bm.Member2ID,
		P1Sets:         in.P1Sets,
		P2Sets:         in.P2Sets,
		P1Forfeit:      in.P1Forfeit,
		P2Forfeit:      in.P2Forfeit,
	}
	if bm.MatchID != nil {
		// Editing an already-recorded result.
		if err := p.repos.Match.UpdateScoreWithTx(tx, *bm.MatchID, in.P1Sets, in.P2Sets, in.P1Forfeit, in.P2Forfeit); err != nil {
			return nil, nil, errs.Wrap(errs.Dependency, err, "failed to update match score")
		}
		match.ID = *bm.MatchID
	} else {
		if err := p.repos.Match.CreateWithTx(tx, match); err != nil {
			return nil, nil, errs.Wrap(errs.Dependency, err, "failed to create match")
		}
	}

	if !match.HasDeclaredWinner() {
		return match, nil, errs.NewValidation("match has no declared winner: equal sets without a forfeit")
	}

	result, err := p.runtime.Advance(ctx, tx, bm.ID, match)
	if err != nil {
		return nil, nil, err
	}
	return match, &engine.StateChangeDescriptor{ShouldMarkComplete: result.TournamentComplete}, nil
}

// OnMatchCompleted has no further structural follow-on for Playoff beyond
// the advancement UpdateMatch already performed.
func (p *PlayoffPlugin) OnMatchCompleted(ctx context.Context, tx *sql.Tx, t *models.Tournament, match *models.Match) (*engine.StateChangeDescriptor, error) {
	return nil, nil
}

func (p *PlayoffPlugin) OnChildTournamentCompleted(ctx context.Context, tx *sql.Tx, parent, child *models.Tournament) (*engine.StateChangeDescriptor, error) {
	return nil, errs.NewIntegrity("playoff tournaments have no children")
}

// OnMatchRatingCalculation applies Mode A immediately per match.
func (p *PlayoffPlugin) OnMatchRatingCalculation(ctx context.Context, tx *sql.Tx, t *models.Tournament, match *models.Match) error {
	return p.rating.ApplyModeAWithTx(ctx, tx, match, models.ReasonPlayoffMatchCompleted)
}

// OnTournamentCompletionRatingCalculation is a no-op: Playoff rates
// incrementally, never in a completion batch.
func (p *PlayoffPlugin) OnTournamentCompletionRatingCalculation(ctx context.Context, tx *sql.Tx, t *models.Tournament) error {
	return nil
}

func (p *PlayoffPlugin) EnrichActiveTournament(ctx context.Context, t *models.Tournament) (map[string]interface{}, error) {
	slots, err := p.repos.BracketMatch.GetByTournamentID(ctx, t.ID)
	if err != nil {
		return nil, errs.Wrap(errs.Dependency, err, "failed to load bracket matches")
	}
	return map[string]interface{}{"bracketMatches": slots}, nil
}

func (p *PlayoffPlugin) EnrichCompletedTournament(ctx context.Context, t *models.Tournament) (map[string]interface{}, error) {
	return p.EnrichActiveTournament(ctx, t)
}

// HandlePluginRequest implements the Playoff-only `reseed` and
// `preview-bracket` plugin resources.
func (p *PlayoffPlugin) HandlePluginRequest(ctx context.Context, tx *sql.Tx, t *models.Tournament, action string, payload map[string]interface{}) (map[string]interface{}, error) {
	switch action {
	case "preview-bracket":
		participants, err := p.repos.TournamentParticipant.GetByTournamentID(ctx, t.ID)
		if err != nil {
			return nil, errs.Wrap(errs.Dependency, err, "failed to load participants")
		}
		layout, err := p.builder.Build(participants, t.Config.ProtectedSeeds, nil)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"bracketSize": layout.BracketSize, "slots": layout.Slots}, nil
	case "reseed":
		if t.Status == models.StatusCompleted {
			return nil, errs.NewState("cannot reseed a completed tournament")
		}
		matches, err := p.repos.Match.GetByTournamentID(ctx, t.ID)
		if err != nil {
			return nil, errs.Wrap(errs.Dependency, err, "failed to check existing matches")
		}
		if len(matches) > 0 {
			return nil, errs.NewState("cannot reseed a bracket that already has recorded matches")
		}
		participants, err := p.repos.TournamentParticipant.GetByTournamentID(ctx, t.ID)
		if err != nil {
			return nil, errs.Wrap(errs.Dependency, err, "failed to load participants")
		}
		layout, err := p.builder.Build(participants, t.Config.ProtectedSeeds, nil)
		if err != nil {
			return nil, err
		}
		if err := p.repos.BracketMatch.DeleteForTournamentWithTx(tx, t.ID); err != nil {
			return nil, errs.Wrap(errs.Dependency, err, "failed to clear existing bracket slots")
		}
		if err := p.runtime.Construct(ctx, tx, t.ID, layout); err != nil {
			return nil, err
		}
		return map[string]interface{}{"bracketSize": layout.BracketSize}, nil
	default:
		return nil, errs.NewValidation("unknown playoff plugin action %q", action)
	}
}
