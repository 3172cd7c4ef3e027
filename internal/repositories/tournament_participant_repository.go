// internal/repositories/tournament_participant_repository.go
// TournamentParticipant data access layer.

package repositories

import (
	"context"
	"database/sql"

	"tournament-planner/internal/models"
)

// TournamentParticipantRepository handles tournament enrollment records.
type TournamentParticipantRepository struct {
	db *sql.DB
}

// NewTournamentParticipantRepository creates a new repository.
func NewTournamentParticipantRepository(db *sql.DB) *TournamentParticipantRepository {
	return &TournamentParticipantRepository{db: db}
}

const participantColumns = `
	id, tournament_id, member_id, rating_at_time, seed, created_at
`

func scanParticipant(row interface{ Scan(...interface{}) error }) (*models.TournamentParticipant, error) {
	var p models.TournamentParticipant
	err := row.Scan(&p.ID, &p.TournamentID, &p.MemberID, &p.RatingAtTime, &p.Seed, &p.CreatedAt)
	return &p, err
}

// CreateWithTx enrolls a member, capturing RatingAtTime once — it is never
// mutated again.
func (r *TournamentParticipantRepository) CreateWithTx(tx *sql.Tx, p *models.TournamentParticipant) error {
	query := `
		INSERT INTO tournament_participants (` + participantColumns + `)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := tx.ExecContext(context.Background(), query,
		p.ID, p.TournamentID, p.MemberID, p.RatingAtTime, p.Seed, p.CreatedAt,
	)
	return err
}

// GetByTournamentID retrieves all participants of a tournament, ordered by
// seed (nulls last) then creation order.
func (r *TournamentParticipantRepository) GetByTournamentID(ctx context.Context, tournamentID string) ([]*models.TournamentParticipant, error) {
	query := `
		SELECT ` + participantColumns + `
		FROM tournament_participants
		WHERE tournament_id = ?
		ORDER BY seed IS NULL, seed, created_at
	`
	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*models.TournamentParticipant, 0)
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// GetByMemberAndTournament looks up a single enrollment, used to confirm
// both members of a match are in the tournament.
func (r *TournamentParticipantRepository) GetByMemberAndTournament(ctx context.Context, tournamentID, memberID string) (*models.TournamentParticipant, error) {
	query := `
		SELECT ` + participantColumns + `
		FROM tournament_participants
		WHERE tournament_id = ? AND member_id = ?
	`
	p, err := scanParticipant(r.db.QueryRowContext(ctx, query, tournamentID, memberID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

// UpdateSeed sets a participant's bracket seed.
func (r *TournamentParticipantRepository) UpdateSeed(ctx context.Context, id string, seed int) error {
	query := `UPDATE tournament_participants SET seed = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, seed, id)
	return err
}

// CountMatchesForMember reports whether any non-BYE Match references a
// member, backing the member-deletion guard.
func (r *TournamentParticipantRepository) CountMatchesForMember(ctx context.Context, memberID string) (int, error) {
	query := `SELECT COUNT(*) FROM matches WHERE member1_id = ? OR member2_id = ?`
	var count int
	err := r.db.QueryRowContext(ctx, query, memberID, memberID).Scan(&count)
	return count, err
}
