// internal/services/member_service.go
// Member profile and lifecycle management (profile updates, promotion,
// deactivate/reactivate); accounts are created by AuthService.Register.
// Deletion
// proper is never exposed: a member who has ever played a non-BYE match is
// load-bearing history for the rating ledger, so the lifecycle bottoms out
// at deactivation.

package services

import (
	"context"
	"fmt"
	"log"

	"tournament-planner/internal/models"
	"tournament-planner/internal/repositories"
)

// MemberService handles member profile and lifecycle operations.
type MemberService struct {
	memberRepo *repositories.MemberRepository
	matchRepo  *repositories.MatchRepository
	logger     *log.Logger
}

// NewMemberService creates a new member service.
func NewMemberService(
	memberRepo *repositories.MemberRepository,
	matchRepo *repositories.MatchRepository,
	logger *log.Logger,
) *MemberService {
	return &MemberService{
		memberRepo: memberRepo,
		matchRepo:  matchRepo,
		logger:     logger,
	}
}

// GetByID retrieves a member by ID, never exposing the password hash.
func (s *MemberService) GetByID(ctx context.Context, id string) (*models.Member, error) {
	member, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	member.PasswordHash = ""
	return member, nil
}

// UpdateProfile updates a member's name.
func (s *MemberService) UpdateProfile(ctx context.Context, memberID string, updates map[string]interface{}) (*models.Member, error) {
	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	if firstName, ok := updates["first_name"].(string); ok && firstName != "" {
		member.FirstName = firstName
	}
	if lastName, ok := updates["last_name"].(string); ok && lastName != "" {
		member.LastName = lastName
	}

	if err := s.memberRepo.UpdateName(ctx, member.ID, member.FirstName, member.LastName); err != nil {
		return nil, fmt.Errorf("failed to update member: %w", err)
	}

	member.PasswordHash = ""
	return member, nil
}

// PromoteToOrganizer elevates a member to the ORGANIZER role. Only an admin
// caller may invoke this; role gating itself is the HTTP layer's job.
func (s *MemberService) PromoteToOrganizer(ctx context.Context, memberID string) error {
	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		return err
	}
	if member.Role != models.RoleMember {
		return fmt.Errorf("member is already an organizer or admin")
	}
	return s.memberRepo.UpdateRole(ctx, memberID, models.RoleOrganizer)
}

// Deactivate disables a member's account. Blocked if the member has ever
// played a non-BYE match, since RatingHistory and Match rows reference the
// member by ID and must remain reconstructible.
func (s *MemberService) Deactivate(ctx context.Context, memberID string) error {
	matches, err := s.matchRepo.GetByMemberID(ctx, memberID)
	if err != nil {
		return fmt.Errorf("failed to check member match history: %w", err)
	}
	if len(matches) > 0 {
		return fmt.Errorf("%w: member has played matches and cannot be deactivated", ErrForbidden)
	}
	return s.memberRepo.Deactivate(ctx, memberID)
}

// Reactivate re-enables a previously deactivated member.
func (s *MemberService) Reactivate(ctx context.Context, memberID string) error {
	return s.memberRepo.Reactivate(ctx, memberID)
}
