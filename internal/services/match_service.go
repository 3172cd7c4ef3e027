// internal/services/match_service.go
// Standalone match creation and match reads. Results
// recorded against a tournament are never handled here — those go through
// engine.Dispatcher.RecordResult, which resolves the tournament's plugin.

package services

import (
	"context"
	"fmt"
	"time"

	"tournament-planner/internal/engine"
	"tournament-planner/internal/models"
	"tournament-planner/internal/repositories"
	"tournament-planner/internal/utils"

	"golang.org/x/crypto/bcrypt"
)

// MatchService handles standalone match creation and match reads.
type MatchService struct {
	repos  *repositories.Container
	rating *engine.RatingEngine
	cache  *CacheService
}

// NewMatchService creates a new match service.
func NewMatchService(repos *repositories.Container, rating *engine.RatingEngine, cache *CacheService) *MatchService {
	return &MatchService{repos: repos, rating: rating, cache: cache}
}

// GetByID retrieves a match by ID.
func (s *MatchService) GetByID(ctx context.Context, id string) (*models.Match, error) {
	return s.repos.Match.GetByID(ctx, id)
}

// GetByTournamentID retrieves every match recorded in a tournament, with a
// short cache in front of the read (the write path invalidates the
// post-rating cache, not this key directly, so the TTL here is short on
// purpose).
func (s *MatchService) GetByTournamentID(ctx context.Context, tournamentID string) ([]*models.Match, error) {
	cacheKey := fmt.Sprintf("tournament_matches_%s", tournamentID)
	var matches []*models.Match
	if err := s.cache.Get(cacheKey, &matches); err == nil {
		return matches, nil
	}

	matches, err := s.repos.Match.GetByTournamentID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(cacheKey, matches, 30*time.Second)
	return matches, nil
}

// HasAccess reports whether a member played in a match, i.e. is its
// Member1 or Member2.
func (s *MatchService) HasAccess(ctx context.Context, matchID, memberID string) (bool, error) {
	match, err := s.repos.Match.GetByID(ctx, matchID)
	if err != nil {
		return false, err
	}
	return match.Member1ID == memberID || match.Member2ID == memberID, nil
}

// CreateStandaloneInput carries a reported standalone result.
type CreateStandaloneInput struct {
	CreatorMemberID    string
	CreatorIsOrganizer bool
	Member1ID          string
	Member2ID          string
	P1Sets             int
	P2Sets             int
	P1Forfeit          bool
	P2Forfeit          bool
	OpponentPassword   string
}

// CreateStandalone creates a tournamentId = nil match. A
// non-organizer creator must supply the opponent's password as proof of
// mutual consent; an organizer may record the result unilaterally.
func (s *MatchService) CreateStandalone(ctx context.Context, in CreateStandaloneInput) (*models.Match, error) {
	if in.Member1ID == in.Member2ID {
		return nil, fmt.Errorf("%w: a match requires two distinct members", ErrInvalidInput)
	}

	if !in.CreatorIsOrganizer {
		opponentID := in.Member2ID
		if in.CreatorMemberID == in.Member2ID {
			opponentID = in.Member1ID
		}
		opponent, err := s.repos.Member.GetByID(ctx, opponentID)
		if err != nil {
			return nil, fmt.Errorf("opponent not found: %w", err)
		}
		if err := bcrypt.CompareHashAndPassword([]byte(opponent.PasswordHash), []byte(in.OpponentPassword)); err != nil {
			return nil, ErrForbidden
		}
	}

	match := &models.Match{
		ID:        utils.GenerateUUID(),
		Member1ID: in.Member1ID,
		Member2ID: in.Member2ID,
		P1Sets:    in.P1Sets,
		P2Sets:    in.P2Sets,
		P1Forfeit: in.P1Forfeit,
		P2Forfeit: in.P2Forfeit,
		CreatedAt: time.Now(),
	}
	if !match.HasDeclaredWinner() {
		return nil, fmt.Errorf("%w: match has no declared winner", ErrInvalidInput)
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

	if err := s.repos.Match.CreateWithTx(tx, match); err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}
	if err := s.rating.ApplyModeAWithTx(ctx, tx, match, models.ReasonMatchCompleted); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit standalone match: %w", err)
	}
	committed = true

	return match, nil
}
