// internal/repositories/bracket_match_repository.go
// BracketMatch data access layer.

package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"tournament-planner/internal/models"
)

// BracketMatchRepository handles bracket-slot data access.
type BracketMatchRepository struct {
	db *sql.DB
}

// NewBracketMatchRepository creates a new repository.
func NewBracketMatchRepository(db *sql.DB) *BracketMatchRepository {
	return &BracketMatchRepository{db: db}
}

const bracketMatchColumns = `
	id, tournament_id, round, position, member1_id, member2_id, match_id, next_match_id
`

func scanBracketMatch(row interface{ Scan(...interface{}) error }) (*models.BracketMatch, error) {
	var b models.BracketMatch
	err := row.Scan(
		&b.ID, &b.TournamentID, &b.Round, &b.Position, &b.Member1ID, &b.Member2ID,
		&b.MatchID, &b.NextMatchID,
	)
	return &b, err
}

// CreateWithTx inserts one bracket slot.
func (r *BracketMatchRepository) CreateWithTx(tx *sql.Tx, b *models.BracketMatch) error {
	query := `
		INSERT INTO bracket_matches (` + bracketMatchColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := tx.ExecContext(context.Background(), query,
		b.ID, b.TournamentID, b.Round, b.Position, b.Member1ID, b.Member2ID,
		b.MatchID, b.NextMatchID,
	)
	return err
}

// SetNextMatchIDWithTx links a slot to its successor once both are created
// (the builder's two-phase generate-then-link pattern).
func (r *BracketMatchRepository) SetNextMatchIDWithTx(tx *sql.Tx, id, nextMatchID string) error {
	query := `UPDATE bracket_matches SET next_match_id = ? WHERE id = ?`
	_, err := tx.ExecContext(context.Background(), query, nextMatchID, id)
	return err
}

// GetByID retrieves a bracket slot by ID.
func (r *BracketMatchRepository) GetByID(ctx context.Context, id string) (*models.BracketMatch, error) {
	query := `SELECT ` + bracketMatchColumns + ` FROM bracket_matches WHERE id = ?`
	b, err := scanBracketMatch(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("bracket match not found")
	}
	return b, err
}

// GetByIDWithTx is the locking read used during advancement.
func (r *BracketMatchRepository) GetByIDWithTx(tx *sql.Tx, id string) (*models.BracketMatch, error) {
	query := `SELECT ` + bracketMatchColumns + ` FROM bracket_matches WHERE id = ? FOR UPDATE`
	b, err := scanBracketMatch(tx.QueryRowContext(context.Background(), query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("bracket match not found")
	}
	return b, err
}

// GetByTournamentID retrieves every bracket slot, ordered by round
// descending (first round first) then position.
func (r *BracketMatchRepository) GetByTournamentID(ctx context.Context, tournamentID string) ([]*models.BracketMatch, error) {
	query := `
		SELECT ` + bracketMatchColumns + ` FROM bracket_matches
		WHERE tournament_id = ?
		ORDER BY round DESC, position ASC
	`
	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*models.BracketMatch, 0)
	for rows.Next() {
		b, err := scanBracketMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// GetFinalWithTx retrieves the (round=1, position=1) slot, used by the
// bracket's completion predicate.
func (r *BracketMatchRepository) GetFinalWithTx(tx *sql.Tx, tournamentID string) (*models.BracketMatch, error) {
	query := `
		SELECT ` + bracketMatchColumns + ` FROM bracket_matches
		WHERE tournament_id = ? AND round = 1 AND position = 1
	`
	b, err := scanBracketMatch(tx.QueryRowContext(context.Background(), query, tournamentID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("final bracket match not found")
	}
	return b, err
}

// SetSlotWithTx writes a member ID into one slot of a bracket match (used
// both for pre-filling a BYE's next-round slot and for writing advancement
// winners). slot is 1 or 2.
func (r *BracketMatchRepository) SetSlotWithTx(tx *sql.Tx, id string, slot int, memberID string) error {
	col := "member1_id"
	if slot == 2 {
		col = "member2_id"
	}
	query := `UPDATE bracket_matches SET ` + col + ` = ? WHERE id = ?`
	_, err := tx.ExecContext(context.Background(), query, memberID, id)
	return err
}

// SetMatchIDWithTx links a bracket slot to the Match row recording its result.
func (r *BracketMatchRepository) SetMatchIDWithTx(tx *sql.Tx, id, matchID string) error {
	query := `UPDATE bracket_matches SET match_id = ? WHERE id = ?`
	_, err := tx.ExecContext(context.Background(), query, matchID, id)
	return err
}

// DeleteForTournamentWithTx removes every bracket slot of a tournament,
// used by the Playoff plugin's reseed action — only ever called before any
// match has been recorded (the caller enforces this).
func (r *BracketMatchRepository) DeleteForTournamentWithTx(tx *sql.Tx, tournamentID string) error {
	query := `DELETE FROM bracket_matches WHERE tournament_id = ?`
	_, err := tx.ExecContext(context.Background(), query, tournamentID)
	return err
}
