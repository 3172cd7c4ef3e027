// internal/repositories/match_repository.go
// Match data access layer.

package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"tournament-planner/internal/models"
)

// MatchRepository handles played-match data access.
type MatchRepository struct {
	db *sql.DB
}

// NewMatchRepository creates a new match repository.
func NewMatchRepository(db *sql.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

const matchColumns = `
	id, tournament_id, bracket_match_id, round, member1_id, member2_id,
	p1_sets, p2_sets, p1_forfeit, p2_forfeit, created_at
`

func scanMatch(row interface{ Scan(...interface{}) error }) (*models.Match, error) {
	var m models.Match
	err := row.Scan(
		&m.ID, &m.TournamentID, &m.BracketMatchID, &m.Round, &m.Member1ID,
		&m.Member2ID, &m.P1Sets, &m.P2Sets, &m.P1Forfeit, &m.P2Forfeit, &m.CreatedAt,
	)
	return &m, err
}

// CreateWithTx inserts a new Match row. A BYE never produces one.
func (r *MatchRepository) CreateWithTx(tx *sql.Tx, m *models.Match) error {
	query := `
		INSERT INTO matches (` + matchColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := tx.ExecContext(context.Background(), query,
		m.ID, m.TournamentID, m.BracketMatchID, m.Round, m.Member1ID, m.Member2ID,
		m.P1Sets, m.P2Sets, m.P1Forfeit, m.P2Forfeit, m.CreatedAt,
	)
	return err
}

// UpdateScoreWithTx overwrites an existing Match's result (re-entry / score
// correction path, including retroactive edits to an already-rated match).
func (r *MatchRepository) UpdateScoreWithTx(tx *sql.Tx, id string, p1Sets, p2Sets int, p1Forfeit, p2Forfeit bool) error {
	query := `
		UPDATE matches SET p1_sets = ?, p2_sets = ?, p1_forfeit = ?, p2_forfeit = ?
		WHERE id = ?
	`
	_, err := tx.ExecContext(context.Background(), query, p1Sets, p2Sets, p1Forfeit, p2Forfeit, id)
	return err
}

// GetByID retrieves a match by ID.
func (r *MatchRepository) GetByID(ctx context.Context, id string) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = ?`
	m, err := scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("match not found")
	}
	return m, err
}

// GetByBracketMatchID finds the played Match linked to a bracket slot, if any.
func (r *MatchRepository) GetByBracketMatchID(ctx context.Context, bracketMatchID string) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE bracket_match_id = ?`
	m, err := scanMatch(r.db.QueryRowContext(ctx, query, bracketMatchID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return m, err
}

// GetByTournamentID retrieves every played match of a tournament, ordered by
// CreatedAt — the ordering RatingHistory's per-match progression and Mode
// B's Pass 1 both rely on.
func (r *MatchRepository) GetByTournamentID(ctx context.Context, tournamentID string) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = ? ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*models.Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// GetByMemberID retrieves every match (tournament or standalone) a member
// has ever played, used by MemberService.Deactivate to enforce the
// member-deletion boundary: deactivation is blocked iff any non-BYE match
// references the member.
func (r *MatchRepository) GetByMemberID(ctx context.Context, memberID string) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE member1_id = ? OR member2_id = ?`
	rows, err := r.db.QueryContext(ctx, query, memberID, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*models.Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// Count returns the total number of recorded matches, for the admin
// platform-stats endpoint.
func (r *MatchRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM matches`).Scan(&count)
	return count, err
}

// GetPairWithTx finds an existing Match between two members within a
// tournament, used by the Round-Robin plugin to decide create-vs-update and
// to enforce exactly one Match per pair.
func (r *MatchRepository) GetPairWithTx(tx *sql.Tx, tournamentID, memberA, memberB string) (*models.Match, error) {
	query := `
		SELECT ` + matchColumns + ` FROM matches
		WHERE tournament_id = ? AND ((member1_id = ? AND member2_id = ?) OR (member1_id = ? AND member2_id = ?))
	`
	m, err := scanMatch(tx.QueryRowContext(context.Background(), query, tournamentID, memberA, memberB, memberB, memberA))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return m, err
}
