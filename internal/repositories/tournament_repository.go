// internal/repositories/tournament_repository.go
// Tournament data access layer.

package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tournament-planner/internal/models"
)

// TournamentRepository handles tournament data access.
type TournamentRepository struct {
	db *sql.DB
}

// NewTournamentRepository creates a new tournament repository.
func NewTournamentRepository(db *sql.DB) *TournamentRepository {
	return &TournamentRepository{db: db}
}

const tournamentColumns = `
	id, kind, name, organizer_id, status, cancelled, parent_id, group_number,
	config, created_at, recorded_at
`

func scanTournament(row interface{ Scan(...interface{}) error }) (*models.Tournament, error) {
	var t models.Tournament
	err := row.Scan(
		&t.ID, &t.Kind, &t.Name, &t.OrganizerID, &t.Status, &t.Cancelled,
		&t.ParentID, &t.GroupNumber, &t.Config, &t.CreatedAt, &t.RecordedAt,
	)
	return &t, err
}

// CreateWithTx inserts a new tournament inside the caller's transaction —
// tournament creation always also writes participants and type-specific
// substructure, so it is never a standalone Create.
func (r *TournamentRepository) CreateWithTx(tx *sql.Tx, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (` + tournamentColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := tx.ExecContext(context.Background(), query,
		t.ID, t.Kind, t.Name, t.OrganizerID, t.Status, t.Cancelled,
		t.ParentID, t.GroupNumber, t.Config, t.CreatedAt, t.RecordedAt,
	)
	return err
}

// GetByID retrieves a tournament by ID.
func (r *TournamentRepository) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = ?`
	t, err := scanTournament(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("tournament not found")
	}
	return t, err
}

// GetByIDWithTx is the transactional read used by the dispatcher when it
// needs a consistent snapshot across the completion check-and-update.
func (r *TournamentRepository) GetByIDWithTx(tx *sql.Tx, id string) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = ? FOR UPDATE`
	t, err := scanTournament(tx.QueryRowContext(context.Background(), query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("tournament not found")
	}
	return t, err
}

// ListChildren retrieves every child of a compound tournament, ordered by
// group number (nulls — the final child — sort last).
func (r *TournamentRepository) ListChildren(ctx context.Context, parentID string) ([]*models.Tournament, error) {
	query := `
		SELECT ` + tournamentColumns + `
		FROM tournaments
		WHERE parent_id = ?
		ORDER BY group_number IS NULL, group_number
	`
	rows, err := r.db.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*models.Tournament, 0)
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// ListCompletedChronological returns every completed, non-cancelled
// tournament ordered by CreatedAt — the traversal order the chronological
// rating replay requires.
func (r *TournamentRepository) ListCompletedChronological(ctx context.Context) ([]*models.Tournament, error) {
	query := `
		SELECT ` + tournamentColumns + `
		FROM tournaments
		WHERE status = ? AND cancelled = FALSE
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, models.StatusCompleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*models.Tournament, 0)
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// ListCompletedAfter returns completed tournaments with CreatedAt greater
// than or equal to `after`, used by replay resuming from a single edited
// tournament forward — inclusive, so the edited tournament itself is
// re-rated along with everything after it.
func (r *TournamentRepository) ListCompletedAfter(ctx context.Context, after time.Time) ([]*models.Tournament, error) {
	query := `
		SELECT ` + tournamentColumns + `
		FROM tournaments
		WHERE status = ? AND cancelled = FALSE AND created_at >= ?
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, models.StatusCompleted, after)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*models.Tournament, 0)
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// List returns tournaments ordered by CreatedAt descending, most-recent
// first, paginated for the tournament listing endpoint.
func (r *TournamentRepository) List(ctx context.Context, limit, offset int) ([]*models.Tournament, error) {
	query := `
		SELECT ` + tournamentColumns + `
		FROM tournaments
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*models.Tournament, 0)
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// ListByOrganizer returns every tournament a given organizer created,
// most-recent first.
func (r *TournamentRepository) ListByOrganizer(ctx context.Context, organizerID string) ([]*models.Tournament, error) {
	query := `
		SELECT ` + tournamentColumns + `
		FROM tournaments
		WHERE organizer_id = ?
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, organizerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*models.Tournament, 0)
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// MarkCompletedWithTx transitions ACTIVE -> COMPLETED and stamps RecordedAt.
// It is a no-op (zero rows affected) if the tournament is already completed,
// which is how "completion idempotence" is enforced at the storage
// layer: the caller checks affected-rows to decide whether to proceed with
// the rest of the completion flow.
func (r *TournamentRepository) MarkCompletedWithTx(tx *sql.Tx, id string, recordedAt time.Time) (bool, error) {
	query := `
		UPDATE tournaments SET status = ?, recorded_at = ?
		WHERE id = ? AND status = ?
	`
	res, err := tx.ExecContext(context.Background(), query, models.StatusCompleted, recordedAt, id, models.StatusActive)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	return rows > 0, err
}

// Count returns the total number of tournaments, for the admin
// platform-stats endpoint.
func (r *TournamentRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tournaments`).Scan(&count)
	return count, err
}

// CountActive returns the number of non-completed, non-cancelled
// tournaments, for the admin platform-stats endpoint.
func (r *TournamentRepository) CountActive(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tournaments WHERE status = ? AND cancelled = FALSE`, models.StatusActive).Scan(&count)
	return count, err
}

// UpdateName renames a tournament.
func (r *TournamentRepository) UpdateName(ctx context.Context, id, name string) error {
	query := `UPDATE tournaments SET name = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, name, id)
	return err
}

// CancelWithTx marks a tournament cancelled.
func (r *TournamentRepository) CancelWithTx(tx *sql.Tx, id string) error {
	query := `UPDATE tournaments SET cancelled = TRUE WHERE id = ?`
	_, err := tx.ExecContext(context.Background(), query, id)
	return err
}

// DeleteWithTx removes a tournament; callers must have already verified
// canDelete (no matches exist).
func (r *TournamentRepository) DeleteWithTx(tx *sql.Tx, id string) error {
	query := `DELETE FROM tournaments WHERE id = ?`
	_, err := tx.ExecContext(context.Background(), query, id)
	return err
}
