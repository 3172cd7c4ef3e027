// internal/engine/plugin.go
// The tournament-kind plugin capability set. Every TournamentKind
// registers exactly one implementation; the dispatcher never branches on
// kind itself, only ever calling through this interface.
package engine

import (
	"context"
	"database/sql"

	"tournament-planner/internal/engine/errs"
	"tournament-planner/internal/models"
)

// CreateTournamentInput carries everything a plugin needs to stand up a new
// tournament of its kind: the enrolling participants plus the kind-specific
// config bag already parsed onto the Tournament model.
type CreateTournamentInput struct {
	Tournament   *models.Tournament
	Participants []*models.TournamentParticipant
}

// UpdateMatchInput carries a reported result. MatchOrBracketMatchID may
// name either a Match ID (editing an already-played result) or a
// BracketMatch/SwissPairing slot ID (recording a result for the first
// time) — plugins resolve which via BracketRuntime.ResolveBracketMatch or
// their own Swiss pairing lookup.
type UpdateMatchInput struct {
	MatchOrBracketMatchID string
	Member1ID             string
	Member2ID             string
	P1Sets                int
	P2Sets                int
	P1Forfeit             bool
	P2Forfeit             bool
}

// StateChangeDescriptor is the uniform shape every plugin hook returns,
// letting the dispatcher drive completion and final-tournament creation
// without knowing which plugin produced it.
type StateChangeDescriptor struct {
	ShouldMarkComplete          bool                   `json:"should_mark_complete"`
	ShouldCreateFinalTournament bool                   `json:"should_create_final_tournament"`
	FinalConfig                 *CreateTournamentInput `json:"-"`
	Message                     string                 `json:"message,omitempty"`
}

// Plugin is the uniform capability set every tournament kind implements.
// All methods that touch storage take the caller's transaction so the
// dispatcher can compose several plugin calls (e.g. a child's completion
// cascading into its parent) inside one atomic unit.
type Plugin interface {
	Kind() models.TournamentKind
	IsBasic() bool

	// CanDelete reports whether the tournament can still be deleted
	// outright (no match has ever been recorded against it).
	CanDelete(ctx context.Context, t *models.Tournament) (bool, error)
	// CanCancel reports whether the tournament can transition to
	// cancelled from its current state.
	CanCancel(t *models.Tournament) bool
	// IsComplete reports whether every match this kind requires has been
	// recorded.
	IsComplete(ctx context.Context, tx *sql.Tx, t *models.Tournament) (bool, error)
	// MatchesRemaining reports how many results are still outstanding.
	MatchesRemaining(ctx context.Context, t *models.Tournament) (int, error)

	// CreateTournament builds the kind-specific substructure (bracket
	// slots, Swiss round 1 pairings, or child tournaments for a compound
	// kind) inside the caller's transaction. Round Robin and Single Match
	// create no rows here; their Match rows appear on UpdateMatch.
	CreateTournament(ctx context.Context, tx *sql.Tx, in CreateTournamentInput) error

	// UpdateMatch records or edits a result and returns the persisted
	// Match plus a descriptor of what changed structurally (bracket
	// advancement, next Swiss round unlocked, etc.).
	UpdateMatch(ctx context.Context, tx *sql.Tx, t *models.Tournament, in UpdateMatchInput) (*models.Match, *StateChangeDescriptor, error)

	// OnMatchCompleted runs once per recorded match, after UpdateMatch,
	// to drive any follow-on structural change (e.g. generating the next
	// Swiss round once every pairing in the current one is in).
	OnMatchCompleted(ctx context.Context, tx *sql.Tx, t *models.Tournament, match *models.Match) (*StateChangeDescriptor, error)
	// OnChildTournamentCompleted fires on the parent's plugin when one of
	// its preliminary children finishes, typically seeding the final.
	OnChildTournamentCompleted(ctx context.Context, tx *sql.Tx, parent *models.Tournament, child *models.Tournament) (*StateChangeDescriptor, error)

	// OnMatchRatingCalculation applies Mode A immediately after a match is
	// recorded, for kinds that rate incrementally; kinds using Mode B at
	// completion implement this as a no-op.
	OnMatchRatingCalculation(ctx context.Context, tx *sql.Tx, t *models.Tournament, match *models.Match) error
	// OnTournamentCompletionRatingCalculation applies Mode B once the
	// whole tournament completes, for kinds that rate in a batch; kinds
	// using Mode A implement this as a no-op.
	OnTournamentCompletionRatingCalculation(ctx context.Context, tx *sql.Tx, t *models.Tournament) error

	// EnrichActiveTournament/EnrichCompletedTournament attach kind-specific
	// read-model data (standings, bracket tree, Swiss pairing history) to
	// an API response.
	EnrichActiveTournament(ctx context.Context, t *models.Tournament) (map[string]interface{}, error)
	EnrichCompletedTournament(ctx context.Context, t *models.Tournament) (map[string]interface{}, error)

	// HandlePluginRequest is the escape hatch for kind-specific actions
	// that don't fit the uniform surface, e.g. Playoff's reseed and
	// preview-bracket actions.
	HandlePluginRequest(ctx context.Context, tx *sql.Tx, t *models.Tournament, action string, payload map[string]interface{}) (map[string]interface{}, error)
}

// Registry maps a TournamentKind to its plugin implementation. The engine
// package never constructs one itself — internal/plugins builds and
// populates it, keeping the plugin implementations' own dependencies
// (repos, BracketBuilder, BracketRuntime, RatingEngine) out of this
// package's import graph.
type Registry map[models.TournamentKind]Plugin

// Get resolves a kind to its plugin, or an Integrity error if no plugin
// registered for it — every TournamentKind stored in the database must
// have a registered plugin by construction.
func (reg Registry) Get(kind models.TournamentKind) (Plugin, error) {
	p, ok := reg[kind]
	if !ok {
		return nil, errs.NewIntegrity("no plugin registered for tournament kind %q", kind)
	}
	return p, nil
}
