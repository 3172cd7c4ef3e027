// internal/plugins/round_robin.go
// Round-Robin plugin: every ordered pair plays exactly once, rated
// in a single Mode B batch on completion.
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

// RoundRobinPlugin implements engine.Plugin for KindRoundRobin.
type RoundRobinPlugin struct {
	repos  *repositories.Container
	rating *engine.RatingEngine
}

// NewRoundRobinPlugin constructs a RoundRobinPlugin.
func NewRoundRobinPlugin(repos *repositories.Container, rating *engine.RatingEngine) *RoundRobinPlugin {
	return &RoundRobinPlugin{repos: repos, rating: rating}
}

func (p *RoundRobinPlugin) Kind() models.TournamentKind { return models.KindRoundRobin }
func (p *RoundRobinPlugin) IsBasic() bool               { return true }

func (p *RoundRobinPlugin) CanDelete(ctx context.Context, t *models.Tournament) (bool, error) {
	matches, err := p.repos.Match.GetByTournamentID(ctx, t.ID)
	if err != nil {
		return false, errs.Wrap(errs.Dependency, err, "failed to check existing matches")
	}
	for _, m := range matches {
		if m.HasDeclaredWinner() {
			return false, nil
		}
	}
	return true, nil
}

func (p *RoundRobinPlugin) CanCancel(t *models.Tournament) bool { return true }

// IsComplete iff every ordered pair has a recorded (non-equal, non-forfeit-
// tied) result.
func (p *RoundRobinPlugin) IsComplete(ctx context.Context, tx *sql.Tx, t *models.Tournament) (bool, error) {
	remaining, err := p.matchesRemainingTx(ctx, tx, t.ID)
	if err != nil {
		return false, err
	}
	return remaining == 0, nil
}

func (p *RoundRobinPlugin) MatchesRemaining(ctx context.Context, t *models.Tournament) (int, error) {
	return p.matchesRemainingTx(ctx, nil, t.ID)
}

func (p *RoundRobinPlugin) matchesRemainingTx(ctx context.Context, tx *sql.Tx, tournamentID string) (int, error) {
	participants, err := p.repos.TournamentParticipant.GetByTournamentID(ctx, tournamentID)
	if err != nil {
		return 0, errs.Wrap(errs.Dependency, err, "failed to load participants")
	}
	matches, err := p.repos.Match.GetByTournamentID(ctx, tournamentID)
	if err != nil {
		return 0, errs.Wrap(errs.Dependency, err, "failed to load matches")
	}
	played := make(map[string]bool, len(matches))
	for _, m := range matches {
		if !m.HasDeclaredWinner() {
			continue
		}
		played[pairKey(m.Member1ID, m.Member2ID)] = true
	}
	remaining := 0
	for i := 0; i < len(participants); i++ {
		for j := i + 1; j < len(participants); j++ {
			if !played[pairKey(participants[i].MemberID, participants[j].MemberID)] {
				remaining++
			}
		}
	}
	return remaining, nil
}

func pairKey(a, b string) string {
	if a < b {
		return a + "|" + b
	}
	return b + "|" + a
}

// CreateTournament enrolls participants (already persisted by the
// dispatcher) — Round Robin generates pairings lazily, on first
// UpdateMatch, rather than eagerly creating every Match row.
func (p *RoundRobinPlugin) CreateTournament(ctx context.Context, tx *sql.Tx, in engine.CreateTournamentInput) error {
	return nil
}

// UpdateMatch creates a new Match for matchId = "0" or "" (every ordered pair
// plays exactly once), or edits an existing one otherwise.
func (p *RoundRobinPlugin) UpdateMatch(ctx context.Context, tx *sql.Tx, t *models.Tournament, in engine.UpdateMatchInput) (*models.Match, *engine.StateChangeDescriptor, error) {
	if in.MatchOrBracketMatchID == "" || in.MatchOrBracketMatchID == "0" {
		existing, err := p.repos.Match.GetPairWithTx(tx, t.ID, in.Member1ID, in.Member2ID)
		if err != nil {
			return nil, nil, errs.Wrap(errs.Dependency, err, "failed to check for an existing pairing")
		}
		if existing != nil {
			return nil, nil, errs.NewValidation("a match between these two members already exists in this tournament")
		}
		match := &models.Match{
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
		if !match.HasDeclaredWinner() {
			return match, nil, errs.NewValidation("match has no declared winner: equal sets without a forfeit")
		}
		return match, nil, nil
	}

	if err := p.repos.Match.UpdateScoreWithTx(tx, in.MatchOrBracketMatchID, in.P1Sets, in.P2Sets, in.P1Forfeit, in.P2Forfeit); err != nil {
		return nil, nil, errs.Wrap(errs.Dependency, err, "failed to update match score")
	}
	match, err := p.repos.Match.GetByID(ctx, in.MatchOrBracketMatchID)
	if err != nil {
		return nil, nil, errs.NewNotFound("match %s not found", in.MatchOrBracketMatchID)
	}
	return match, nil, nil
}

// OnMatchCompleted signals completion once every pair has been played.
func (p *RoundRobinPlugin) OnMatchCompleted(ctx context.Context, tx *sql.Tx, t *models.Tournament, match *models.Match) (*engine.StateChangeDescriptor, error) {
	complete, err := p.IsComplete(ctx, tx, t)
	if err != nil {
		return nil, err
	}
	return &engine.StateChangeDescriptor{ShouldMarkComplete: complete}, nil
}

func (p *RoundRobinPlugin) OnChildTournamentCompleted(ctx context.Context, tx *sql.Tx, parent, child *models.Tournament) (*engine.StateChangeDescriptor, error) {
	return nil, errs.NewIntegrity("round-robin tournaments have no children")
}

// OnMatchRatingCalculation is a no-op: Round Robin rates in a single
// completion batch (Mode B), never per match.
func (p *RoundRobinPlugin) OnMatchRatingCalculation(ctx context.Context, tx *sql.Tx, t *models.Tournament, match *models.Match) error {
	return nil
}

// OnTournamentCompletionRatingCalculation runs the four-pass algorithm.
func (p *RoundRobinPlugin) OnTournamentCompletionRatingCalculation(ctx context.Context, tx *sql.Tx, t *models.Tournament) error {
	return p.rating.ApplyModeBWithTx(ctx, tx, t)
}

func (p *RoundRobinPlugin) EnrichActiveTournament(ctx context.Context, t *models.Tournament) (map[string]interface{}, error) {
	matches, err := p.repos.Match.GetByTournamentID(ctx, t.ID)
	if err != nil {
		return nil, errs.Wrap(errs.Dependency, err, "failed to load matches")
	}
	return map[string]interface{}{"matches": matches, "standings": p.standings(ctx, t.ID, matches)}, nil
}

func (p *RoundRobinPlugin) EnrichCompletedTournament(ctx context.Context, t *models.Tournament) (map[string]interface{}, error) {
	return p.EnrichActiveTournament(ctx, t)
}

// standings is a simple win-count table, the read-model data
// enrichActiveTournament/enrichCompletedTournament attach.
func (p *RoundRobinPlugin) standings(ctx context.Context, tournamentID string, matches []*models.Match) map[string]int {
	wins := make(map[string]int)
	for _, m := range matches {
		if !m.HasDeclaredWinner() {
			continue
		}
		wins[m.WinnerID()]++
	}
	return wins
}

// HandlePluginRequest: Round Robin has no kind-specific plugin resources.
func (p *RoundRobinPlugin) HandlePluginRequest(ctx context.Context, tx *sql.Tx, t *models.Tournament, action string, payload map[string]interface{}) (map[string]interface{}, error) {
	return nil, errs.NewValidation("round-robin tournaments support no plugin actions, got %q", action)
}
