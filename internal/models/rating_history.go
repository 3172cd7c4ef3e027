// internal/models/rating_history.go
// RatingHistory domain model — the append-only ledger of every rating
// change.

package models

import "time"

// RatingChangeReason enumerates why a RatingHistory row was written.
type RatingChangeReason string

const (
	ReasonMatchCompleted         RatingChangeReason = "MATCH_COMPLETED"
	ReasonPlayoffMatchCompleted  RatingChangeReason = "PLAYOFF_MATCH_COMPLETED"
	ReasonTournamentCompleted    RatingChangeReason = "TOURNAMENT_COMPLETED"
	ReasonManualAdjustment       RatingChangeReason = "MANUAL_ADJUSTMENT"
	ReasonMemberDeactivated      RatingChangeReason = "MEMBER_DEACTIVATED"
)

// RatingHistory is never updated or deleted except by cascade from member
// deletion. Rating - RatingChange reconstructs the pre-change value. Entries
// are ordered by the owning match's CreatedAt, not by Timestamp, when
// reconstructing per-match progression.
type RatingHistory struct {
	ID            string             `json:"id" db:"id"`
	MemberID      string             `json:"member_id" db:"member_id"`
	Rating        int                `json:"rating" db:"rating"`
	RatingChange  int                `json:"rating_change" db:"rating_change"`
	Timestamp     time.Time          `json:"timestamp" db:"timestamp"`
	Reason        RatingChangeReason `json:"reason" db:"reason"`
	TournamentID  *string            `json:"tournament_id,omitempty" db:"tournament_id"`
	MatchID       *string            `json:"match_id,omitempty" db:"match_id"`
	// MatchCreatedAt backs chronological (not Timestamp-based) ordering of
	// per-match progression within a tournament.
	MatchCreatedAt *time.Time `json:"match_created_at,omitempty" db:"match_created_at"`
}

// PriorRating reconstructs the member's rating immediately before this
// change.
func (h *RatingHistory) PriorRating() int {
	return h.Rating - h.RatingChange
}
