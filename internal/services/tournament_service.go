// internal/services/tournament_service.go
// Tournament CRUD and read-model enrichment. Creation and match recording
// both delegate to engine.Dispatcher, which resolves the tournament kind's
// plugin; this service never branches on kind itself.

package services

import (
	"context"
	"fmt"
	"time"

	"tournament-planner/internal/engine"
	"tournament-planner/internal/models"
	"tournament-planner/internal/repositories"
	"tournament-planner/internal/utils"
)

// TournamentService handles tournament CRUD and read-model enrichment.
type TournamentService struct {
	repos      *repositories.Container
	dispatcher *engine.Dispatcher
	registry   engine.Registry
	cache      *CacheService
}

// NewTournamentService creates a new tournament service.
func NewTournamentService(repos *repositories.Container, dispatcher *engine.Dispatcher, registry engine.Registry, cache *CacheService) *TournamentService {
	return &TournamentService{repos: repos, dispatcher: dispatcher, registry: registry, cache: cache}
}

// CreateTournamentRequest carries the data needed to create a tournament of
// any kind; Config fields unused by a given kind are ignored by its plugin.
type CreateTournamentRequest struct {
	Name           string                  `json:"name" binding:"required,min=3,max=255"`
	Kind           models.TournamentKind   `json:"kind" binding:"required"`
	ParticipantIDs []string                `json:"participant_ids" binding:"required,min=1"`
	Config         models.TournamentConfig `json:"config"`
}

// Create builds and persists a new tournament via the dispatcher, which
// delegates to the kind's plugin for any kind-specific substructure.
func (s *TournamentService) Create(ctx context.Context, organizerID string, req CreateTournamentRequest) (*models.Tournament, error) {
	now := time.Now()
	tournament := &models.Tournament{
		ID:          utils.GenerateUUID(),
		Kind:        req.Kind,
		Name:        req.Name,
		OrganizerID: organizerID,
		Status:      models.StatusActive,
		Config:      req.Config,
		CreatedAt:   now,
	}

	participants := make([]*models.TournamentParticipant, 0, len(req.ParticipantIDs))
	for _, memberID := range req.ParticipantIDs {
		member, err := s.repos.Member.GetByID(ctx, memberID)
		if err != nil {
			return nil, fmt.Errorf("participant %s not found: %w", memberID, err)
		}
		participants = append(participants, &models.TournamentParticipant{
			ID:           utils.GenerateUUID(),
			TournamentID: tournament.ID,
			MemberID:     memberID,
			RatingAtTime: member.Rating,
			CreatedAt:    now,
		})
	}

	if err := s.dispatcher.CreateTournament(ctx, engine.CreateTournamentInput{
		Tournament:   tournament,
		Participants: participants,
	}); err != nil {
		return nil, err
	}

	return tournament, nil
}

// RecordResult reports a match result against a tournament, delegating the
// entire completion/rating/cascade flow to the dispatcher.
func (s *TournamentService) RecordResult(ctx context.Context, tournamentID string, in engine.UpdateMatchInput) (*engine.StateChangeDescriptor, error) {
	return s.dispatcher.RecordResult(ctx, tournamentID, in)
}

// GetByID retrieves a tournament by ID, cached for 5 minutes like every
// other hot read path in this service layer.
func (s *TournamentService) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	cacheKey := fmt.Sprintf("tournament_%s", id)
	var tournament models.Tournament
	if err := s.cache.Get(cacheKey, &tournament); err == nil {
		return &tournament, nil
	}

	t, err := s.repos.Tournament.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(cacheKey, t, 5*time.Minute)
	return t, nil
}

// List returns a page of tournaments ordered most-recent first.
func (s *TournamentService) List(ctx context.Context, limit, offset int) ([]*models.Tournament, error) {
	return s.repos.Tournament.List(ctx, limit, offset)
}

// ListByOrganizer returns every tournament an organizer created.
func (s *TournamentService) ListByOrganizer(ctx context.Context, organizerID string) ([]*models.Tournament, error) {
	return s.repos.Tournament.ListByOrganizer(ctx, organizerID)
}

// UpdateName renames a tournament, the update-name lifecycle operation
// exposed by the HTTP layer.
func (s *TournamentService) UpdateName(ctx context.Context, tournamentID, name string) error {
	if err := utils.ValidateTournamentName(name); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}
	if err := s.repos.Tournament.UpdateName(ctx, tournamentID, name); err != nil {
		return err
	}
	s.cache.Delete(fmt.Sprintf("tournament_%s", tournamentID))
	return nil
}

// AddParticipant enrolls a member into an already-created tournament, the
// update-participants lifecycle operation. It applies to every kind: no
// plugin is consulted and the tournament's state is not checked.
func (s *TournamentService) AddParticipant(ctx context.Context, tournamentID, memberID string) (*models.TournamentParticipant, error) {
	member, err := s.repos.Member.GetByID(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("member not found: %w", err)
	}
	p := &models.TournamentParticipant{
		ID:           utils.GenerateUUID(),
		TournamentID: tournamentID,
		MemberID:     memberID,
		RatingAtTime: member.Rating,
		CreatedAt:    time.Now(),
	}

	tx, err := s.repos.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := s.repos.TournamentParticipant.CreateWithTx(tx, p); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit participant enrollment: %w", err)
	}
	committed = true

	s.cache.Delete(fmt.Sprintf("tournament_%s", tournamentID))
	return p, nil
}

// IsOwner checks if a member organizes a tournament.
func (s *TournamentService) IsOwner(ctx context.Context, tournamentID, memberID string) (bool, error) {
	tournament, err := s.repos.Tournament.GetByID(ctx, tournamentID)
	if err != nil {
		return false, err
	}
	return tournament.OrganizerID == memberID, nil
}

// Cancel cancels a tournament if its plugin reports the transition is legal
// from its current state.
func (s *TournamentService) Cancel(ctx context.Context, tournamentID string) error {
	t, err := s.repos.Tournament.GetByID(ctx, tournamentID)
	if err != nil {
		return err
	}
	plugin, err := s.registry.Get(t.Kind)
	if err != nil {
		return err
	}
	if !plugin.CanCancel(t) {
		return fmt.Errorf("%w: tournament cannot be cancelled from its current state", ErrInvalidInput)
	}

	tx, err := s.repos.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := s.repos.Tournament.CancelWithTx(tx, tournamentID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cancellation: %w", err)
	}
	committed = true

	s.cache.Delete(fmt.Sprintf("tournament_%s", tournamentID))
	return nil
}

// Delete removes a tournament outright if its plugin reports no match has
// ever been recorded against it.
func (s *TournamentService) Delete(ctx context.Context, tournamentID string) error {
	t, err := s.repos.Tournament.GetByID(ctx, tournamentID)
	if err != nil {
		return err
	}
	plugin, err := s.registry.Get(t.Kind)
	if err != nil {
		return err
	}
	canDelete, err := plugin.CanDelete(ctx, t)
	if err != nil {
		return err
	}
	if !canDelete {
		return fmt.Errorf("%w: tournament has recorded matches and cannot be deleted", ErrInvalidInput)
	}

	tx, err := s.repos.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := s.repos.Tournament.DeleteWithTx(tx, tournamentID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit deletion: %w", err)
	}
	committed = true

	s.cache.Delete(fmt.Sprintf("tournament_%s", tournamentID))
	return nil
}

// Enrich attaches kind-specific read-model data (bracket tree, standings,
// Swiss pairing history) to a tournament via its plugin.
func (s *TournamentService) Enrich(ctx context.Context, t *models.Tournament) (map[string]interface{}, error) {
	plugin, err := s.registry.Get(t.Kind)
	if err != nil {
		return nil, err
	}
	if t.Status == models.StatusCompleted {
		return plugin.EnrichCompletedTournament(ctx, t)
	}
	return plugin.EnrichActiveTournament(ctx, t)
}

// GetParticipants returns every participant enrolled in a tournament.
func (s *TournamentService) GetParticipants(ctx context.Context, tournamentID string) ([]*models.TournamentParticipant, error) {
	return s.repos.TournamentParticipant.GetByTournamentID(ctx, tournamentID)
}

// HandlePluginRequest is the escape hatch for kind-specific actions that
// don't fit the uniform create/update/enrich surface: Playoff's reseed and
// preview-bracket actions. Every other kind rejects all actions.
func (s *TournamentService) HandlePluginRequest(ctx context.Context, tournamentID, action string, payload map[string]interface{}) (map[string]interface{}, error) {
	t, err := s.repos.Tournament.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	plugin, err := s.registry.Get(t.Kind)
	if err != nil {
		return nil, err
	}

	tx, err := s.repos.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	result, err := plugin.HandlePluginRequest(ctx, tx, t, action, payload)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit plugin request: %w", err)
	}
	committed = true

	s.cache.Delete(fmt.Sprintf("tournament_%s", tournamentID))
	return result, nil
}
