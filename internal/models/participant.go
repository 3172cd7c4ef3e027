// internal/models/participant.go
// TournamentParticipant domain model.

package models

import "time"

// TournamentParticipant binds a Member to a Tournament. RatingAtTime is
// captured once at enrollment and never mutated afterward: it is the basis
// of all subsequent rating recomputation for this tournament.
type TournamentParticipant struct {
	ID           string    `json:"id" db:"id"`
	TournamentID string    `json:"tournament_id" db:"tournament_id"`
	MemberID     string    `json:"member_id" db:"member_id"`
	RatingAtTime *int      `json:"rating_at_time,omitempty" db:"rating_at_time"`
	Seed         *int      `json:"seed,omitempty" db:"seed"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// IsRated reports whether this participant had a rating at enrollment time.
func (p *TournamentParticipant) IsRated() bool {
	return p.RatingAtTime != nil
}
