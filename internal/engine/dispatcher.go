// internal/engine/dispatcher.go
// Event Dispatcher: the single entry point that drives a reported
// match result through a plugin, rating calculation, completion and
// final-tournament creation, parent cascading, and post-rating cache
// invalidation — all inside one transaction, with cache effects applied
// after commit.
package engine

import (
	"context"
	"database/sql"
	"log"
	"time"

	"tournament-planner/internal/engine/errs"
	"tournament-planner/internal/models"
	"tournament-planner/internal/repositories"
)

// Dispatcher wires a plugin Registry to the repositories it drives, and
// owns the post-rating cache invalidation side effect.
type Dispatcher struct {
	repos       *repositories.Container
	registry    Registry
	rating      *RatingEngine
	ratingCache PostRatingCache
	logger      *log.Logger
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(repos *repositories.Container, registry Registry, rating *RatingEngine, ratingCache PostRatingCache, logger *log.Logger) *Dispatcher {
	return &Dispatcher{repos: repos, registry: registry, rating: rating, ratingCache: ratingCache, logger: logger}
}

// mergeDescriptor folds a possibly-nil descriptor's flags into the running
// result of a single RecordResult call — both updateMatch and
// onMatchCompleted may independently signal a transition.
func mergeDescriptor(into *StateChangeDescriptor, from *StateChangeDescriptor) *StateChangeDescriptor {
	if from == nil {
		return into
	}
	if into == nil {
		into = &StateChangeDescriptor{}
	}
	into.ShouldMarkComplete = into.ShouldMarkComplete || from.ShouldMarkComplete
	into.ShouldCreateFinalTournament = into.ShouldCreateFinalTournament || from.ShouldCreateFinalTournament
	if from.FinalConfig != nil {
		into.FinalConfig = from.FinalConfig
	}
	if from.Message != "" {
		into.Message = from.Message
	}
	return into
}

// RecordResult is the match-completed flow:
//  1. load the tournament and resolve its plugin
//  2. call UpdateMatch to persist/edit the result
//  3. if the match has a declared winner, call OnMatchRatingCalculation
//     (a no-op for Mode-B kinds)
//  4. call OnMatchCompleted and merge its descriptor with UpdateMatch's
//  5. apply the merged state-change: mark complete, run the kind's batch
//     rating calculation, and cascade completion to a parent if any
//  6. commit, then invalidate the post-rating cache from every completed
//     tournament's CreatedAt forward
//
// A retroactive edit — a score correction to a match inside a tournament
// that was already COMPLETED before this call — never re-enters step 5's
// mark-complete path (the tournament is already marked), so it gets its
// own pass after commit: invalidate the post-rating cache for this
// tournament and everything after it, then replay Mode B chronologically
// from here forward.
func (d *Dispatcher) RecordResult(ctx context.Context, tournamentID string, in UpdateMatchInput) (*StateChangeDescriptor, error) {
	tx, err := d.repos.BeginTx(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.Dependency, err, "failed to start transaction")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	ratedTournamentIDs := make([]string, 0, 1)

	t, err := d.repos.Tournament.GetByIDWithTx(tx, tournamentID)
	if err != nil {
		return nil, errs.NewNotFound("tournament %s not found", tournamentID)
	}
	if t.Cancelled {
		return nil, errs.NewState("tournament %s is cancelled", tournamentID)
	}
	wasCompleted := t.Status == models.StatusCompleted

	plugin, err := d.registry.Get(t.Kind)
	if err != nil {
		return nil, err
	}

	match, desc, err := plugin.UpdateMatch(ctx, tx, t, in)
	if err != nil {
		return nil, err
	}

	// A BYE never produces a Match row, so any persisted match is
	// necessarily between two real members; only the declared-winner
	// condition needs checking here.
	if match.HasDeclaredWinner() {
		if err := plugin.OnMatchRatingCalculation(ctx, tx, t, match); err != nil {
			return nil, err
		}
	}

	completedDesc, err := plugin.OnMatchCompleted(ctx, tx, t, match)
	if err != nil {
		return nil, err
	}
	desc = mergeDescriptor(desc, completedDesc)

	if desc != nil && desc.ShouldMarkComplete {
		rated, err := d.applyCompletion(ctx, tx, plugin, t)
		if err != nil {
			return nil, err
		}
		ratedTournamentIDs = append(ratedTournamentIDs, rated...)
	}

	if err := tx.Commit(); err != nil {
		return nil, errs.Wrap(errs.Dependency, err, "failed to commit match result")
	}
	committed = true

	for _, id := range ratedTournamentIDs {
		d.invalidateAfterCompletion(ctx, id)
	}

	if wasCompleted && match.HasDeclaredWinner() {
		if err := d.replayRetroactiveEdit(ctx, t); err != nil {
			return desc, err
		}
	}

	return desc, nil
}

// replayRetroactiveEdit handles a score correction to a match inside a
// tournament that was already COMPLETED: that tournament's own Mode B
// rating row is now stale, and so is every later tournament's, since Mode
// B's four-pass algorithm reads each participant's rating as of
// tournament start. Invalidates the post-rating cache for t and
// everything after it, then replays the chronological rating history
// from t forward (inclusive) so every affected Mode B tournament
// recomputes against the corrected result. Mode A kinds (Playoff,
// standalone matches) are skipped by ReplayFrom itself — their per-match
// history is never replayed, only invalidated.
func (d *Dispatcher) replayRetroactiveEdit(ctx context.Context, t *models.Tournament) error {
	if d.ratingCache != nil {
		if _, err := d.ratingCache.InvalidateFrom(ctx, t.ID, t.CreatedAt); err != nil {
			d.logger.Printf("retroactive-edit cache invalidation failed for %s (non-fatal): %v", t.ID, err)
		}
	}
	if _, err := d.rating.ReplayFrom(ctx, t.CreatedAt); err != nil {
		return errs.Wrap(errs.Dependency, err, "chronological replay failed after retroactive edit")
	}
	return nil
}

// applyCompletion marks t COMPLETED (idempotently), runs its batch rating
// calculation, and cascades to a parent compound tournament — creating its
// final child or completing it in turn — recursively up the chain.
func (d *Dispatcher) applyCompletion(ctx context.Context, tx *sql.Tx, plugin Plugin, t *models.Tournament) ([]string, error) {
	now := time.Now()
	marked, err := d.repos.Tournament.MarkCompletedWithTx(tx, t.ID, now)
	if err != nil {
		return nil, errs.Wrap(errs.Dependency, err, "failed to mark tournament completed")
	}
	if !marked {
		// Already completed by a concurrent/earlier call — idempotent no-op.
		return nil, nil
	}
	t.Status = models.StatusCompleted
	t.RecordedAt = &now

	if err := plugin.OnTournamentCompletionRatingCalculation(ctx, tx, t); err != nil {
		return nil, err
	}
	ratedIDs := []string{t.ID}

	if t.ParentID == nil {
		return ratedIDs, nil
	}

	parent, err := d.repos.Tournament.GetByIDWithTx(tx, *t.ParentID)
	if err != nil {
		return nil, errs.NewNotFound("parent tournament %s not found", *t.ParentID)
	}
	parentPlugin, err := d.registry.Get(parent.Kind)
	if err != nil {
		return nil, err
	}
	desc, err := parentPlugin.OnChildTournamentCompleted(ctx, tx, parent, t)
	if err != nil {
		return nil, err
	}
	if desc == nil {
		return ratedIDs, nil
	}

	if desc.ShouldCreateFinalTournament && desc.FinalConfig != nil {
		if err := d.createTournamentTx(ctx, tx, *desc.FinalConfig); err != nil {
			return nil, err
		}
	}

	if desc.ShouldMarkComplete {
		parentRated, err := d.applyCompletion(ctx, tx, parentPlugin, parent)
		if err != nil {
			return nil, err
		}
		ratedIDs = append(ratedIDs, parentRated...)
	}

	return ratedIDs, nil
}

// invalidateAfterCompletion drops the post-rating cache for tournamentID
// and every tournament created after it, logging failures non-fatally:
// a dirty cache degrades reads, it never blocks a write.
func (d *Dispatcher) invalidateAfterCompletion(ctx context.Context, tournamentID string) {
	if d.ratingCache == nil {
		return
	}
	t, err := d.repos.Tournament.GetByID(ctx, tournamentID)
	if err != nil {
		d.logger.Printf("post-completion cache invalidation: failed to reload tournament %s: %v", tournamentID, err)
		return
	}
	if _, err := d.ratingCache.InvalidateFrom(ctx, tournamentID, t.CreatedAt); err != nil {
		d.logger.Printf("post-completion cache invalidation failed for %s (non-fatal): %v", tournamentID, err)
	}
	if err := d.ratingCache.IndexTournament(ctx, tournamentID, t.CreatedAt); err != nil {
		d.logger.Printf("tournament order index write failed for %s (non-fatal): %v", tournamentID, err)
	}
}

// createTournamentTx is CreateTournament's core, reusable inside an
// already-open transaction (compound plugins creating a final child
// mid-cascade) or wrapped standalone by CreateTournament itself.
func (d *Dispatcher) createTournamentTx(ctx context.Context, tx *sql.Tx, in CreateTournamentInput) error {
	plugin, err := d.registry.Get(in.Tournament.Kind)
	if err != nil {
		return err
	}
	if err := d.repos.Tournament.CreateWithTx(tx, in.Tournament); err != nil {
		return errs.Wrap(errs.Dependency, err, "failed to create tournament")
	}
	for _, p := range in.Participants {
		if err := d.repos.TournamentParticipant.CreateWithTx(tx, p); err != nil {
			return errs.Wrap(errs.Dependency, err, "failed to enroll participant")
		}
	}
	return plugin.CreateTournament(ctx, tx, in)
}

// CreateTournament delegates to the kind's plugin inside its own
// transaction, then indexes the new tournament for cache invalidation
// ordering.
func (d *Dispatcher) CreateTournament(ctx context.Context, in CreateTournamentInput) error {
	tx, err := d.repos.BeginTx(ctx)
	if err != nil {
		return errs.Wrap(errs.Dependency, err, "failed to start transaction")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := d.createTournamentTx(ctx, tx, in); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errs.Wrap(errs.Dependency, err, "failed to commit tournament creation")
	}
	committed = true

	if d.ratingCache != nil {
		if err := d.ratingCache.IndexTournament(ctx, in.Tournament.ID, in.Tournament.CreatedAt); err != nil {
			d.logger.Printf("tournament order index write failed for %s (non-fatal): %v", in.Tournament.ID, err)
		}
	}
	return nil
}
