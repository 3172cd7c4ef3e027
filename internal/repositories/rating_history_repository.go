// internal/repositories/rating_history_repository.go
// RatingHistory data access layer — the append-only rating-change ledger.

package repositories

import (
	"context"
	"database/sql"

	"tournament-planner/internal/models"
)

// RatingHistoryRepository handles the append-only rating ledger.
type RatingHistoryRepository struct {
	db *sql.DB
}

// NewRatingHistoryRepository creates a new repository.
func NewRatingHistoryRepository(db *sql.DB) *RatingHistoryRepository {
	return &RatingHistoryRepository{db: db}
}

const ratingHistoryColumns = `
	id, member_id, rating, rating_change, timestamp, reason, tournament_id,
	match_id, match_created_at
`

// CreateWithTx appends one rating-history row.
func (r *RatingHistoryRepository) CreateWithTx(tx *sql.Tx, h *models.RatingHistory) error {
	query := `
		INSERT INTO rating_history (` + ratingHistoryColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := tx.ExecContext(context.Background(), query,
		h.ID, h.MemberID, h.Rating, h.RatingChange, h.Timestamp, h.Reason,
		h.TournamentID, h.MatchID, h.MatchCreatedAt,
	)
	return err
}

// ExistsTournamentCompletionRowWithTx implements the idempotency check
// Mode B requires before inserting a TOURNAMENT_COMPLETED row: at most one
// (memberId, tournamentId, reason=TOURNAMENT_COMPLETED, matchId=NULL) row
// may exist.
func (r *RatingHistoryRepository) ExistsTournamentCompletionRowWithTx(tx *sql.Tx, memberID, tournamentID string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM rating_history
			WHERE member_id = ? AND tournament_id = ? AND reason = ? AND match_id IS NULL
		)
	`
	var exists bool
	err := tx.QueryRowContext(context.Background(), query, memberID, tournamentID, models.ReasonTournamentCompleted).Scan(&exists)
	return exists, err
}

// GetByMemberID retrieves a member's full history ordered by MatchCreatedAt
// where present, falling back to Timestamp.
func (r *RatingHistoryRepository) GetByMemberID(ctx context.Context, memberID string) ([]*models.RatingHistory, error) {
	query := `
		SELECT ` + ratingHistoryColumns + ` FROM rating_history
		WHERE member_id = ?
		ORDER BY COALESCE(match_created_at, timestamp) ASC
	`
	rows, err := r.db.QueryContext(ctx, query, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*models.RatingHistory, 0)
	for rows.Next() {
		var h models.RatingHistory
		if err := rows.Scan(&h.ID, &h.MemberID, &h.Rating, &h.RatingChange, &h.Timestamp, &h.Reason, &h.TournamentID, &h.MatchID, &h.MatchCreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &h)
	}
	return out, nil
}

// DeleteForTournamentWithTx removes every history row tied to a tournament
// completion, used when a retroactive replay needs to rewrite a
// TOURNAMENT_COMPLETED row.
func (r *RatingHistoryRepository) DeleteForTournamentWithTx(tx *sql.Tx, tournamentID string) error {
	query := `DELETE FROM rating_history WHERE tournament_id = ? AND reason = ? AND match_id IS NULL`
	_, err := tx.ExecContext(context.Background(), query, tournamentID, models.ReasonTournamentCompleted)
	return err
}
