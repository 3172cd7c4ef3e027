// internal/models/match.go
// Match domain model — the actually-played result, distinct from
// BracketMatch which is the structural bracket slot.

package models

import "time"

// Match represents a played (or forfeited) result between two members.
// TournamentID is nil for standalone matches. A BYE never produces a Match
// row.
type Match struct {
	ID             string    `json:"id" db:"id"`
	TournamentID   *string   `json:"tournament_id,omitempty" db:"tournament_id"`
	BracketMatchID *string   `json:"bracket_match_id,omitempty" db:"bracket_match_id"`
	Round          *int      `json:"round,omitempty" db:"round"`
	Member1ID      string    `json:"member1_id" db:"member1_id"`
	Member2ID      string    `json:"member2_id" db:"member2_id"`
	P1Sets         int       `json:"p1_sets" db:"p1_sets"`
	P2Sets         int       `json:"p2_sets" db:"p2_sets"`
	P1Forfeit      bool      `json:"p1_forfeit" db:"p1_forfeit"`
	P2Forfeit      bool      `json:"p2_forfeit" db:"p2_forfeit"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// WinnerID returns the winning member's ID. Precondition: the match has a
// declared winner.
func (m *Match) WinnerID() string {
	if m.P1Forfeit {
		return m.Member2ID
	}
	if m.P2Forfeit {
		return m.Member1ID
	}
	if m.P1Sets > m.P2Sets {
		return m.Member1ID
	}
	return m.Member2ID
}

// LoserID returns the losing member's ID, symmetric to WinnerID.
func (m *Match) LoserID() string {
	winner := m.WinnerID()
	if winner == m.Member1ID {
		return m.Member2ID
	}
	return m.Member1ID
}

// HasDeclaredWinner reports whether a winner can be resolved: unequal set
// counts, unless resolved instead by exactly one forfeit flag.
func (m *Match) HasDeclaredWinner() bool {
	if m.P1Forfeit != m.P2Forfeit {
		return true
	}
	if m.P1Forfeit && m.P2Forfeit {
		return false
	}
	return m.P1Sets != m.P2Sets
}
