// internal/repositories/member_repository.go
// Member data access layer.

package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tournament-planner/internal/models"
)

// MemberRepository handles member data access.
type MemberRepository struct {
	db *sql.DB
}

// NewMemberRepository creates a new member repository.
func NewMemberRepository(db *sql.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

const memberColumns = `
	id, first_name, last_name, email, password_hash, rating, active, role,
	created_at, updated_at
`

func scanMember(row interface{ Scan(...interface{}) error }) (*models.Member, error) {
	var m models.Member
	err := row.Scan(
		&m.ID, &m.FirstName, &m.LastName, &m.Email, &m.PasswordHash,
		&m.Rating, &m.Active, &m.Role, &m.CreatedAt, &m.UpdatedAt,
	)
	return &m, err
}

// Create inserts a new member.
func (r *MemberRepository) Create(ctx context.Context, m *models.Member) error {
	query := `
		INSERT INTO members (` + memberColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.FirstName, m.LastName, m.Email, m.PasswordHash,
		m.Rating, m.Active, m.Role, m.CreatedAt, m.UpdatedAt,
	)
	return err
}

// GetByID retrieves a member by ID.
func (r *MemberRepository) GetByID(ctx context.Context, id string) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = ?`
	m, err := scanMember(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("member not found")
	}
	return m, err
}

// GetByEmail retrieves a member by email.
func (r *MemberRepository) GetByEmail(ctx context.Context, email string) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE email = ?`
	m, err := scanMember(r.db.QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("member not found")
	}
	return m, err
}

// GetByIDs retrieves several members in one round trip, used heavily by the
// rating engine when it needs a batch of ratingAtTime-less lookups.
func (r *MemberRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*models.Member, error) {
	out := make(map[string]*models.Member, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	placeholders := make([]interface{}, len(ids))
	query := `SELECT ` + memberColumns + ` FROM members WHERE id IN (`
	for i, id := range ids {
		if i > 0 {
			query += ","
		}
		query += "?"
		placeholders[i] = id
	}
	query += ")"

	rows, err := r.db.QueryContext(ctx, query, placeholders...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out[m.ID] = m
	}
	return out, nil
}

// UpdateRating sets a member's denormalized current rating.
func (r *MemberRepository) UpdateRating(ctx context.Context, id string, rating int) error {
	query := `UPDATE members SET rating = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, rating, time.Now(), id)
	return err
}

// UpdateRatingWithTx is the transactional variant used from Mode A/B rating
// writes so the RatingHistory insert and the denormalized rating update
// commit atomically.
func (r *MemberRepository) UpdateRatingWithTx(tx *sql.Tx, id string, rating int) error {
	query := `UPDATE members SET rating = ?, updated_at = ? WHERE id = ?`
	_, err := tx.ExecContext(context.Background(), query, rating, time.Now(), id)
	return err
}

// UpdateName updates a member's first and last name.
func (r *MemberRepository) UpdateName(ctx context.Context, id, firstName, lastName string) error {
	query := `UPDATE members SET first_name = ?, last_name = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, firstName, lastName, time.Now(), id)
	return err
}

// UpdateRole changes a member's role.
func (r *MemberRepository) UpdateRole(ctx context.Context, id string, role models.MemberRole) error {
	query := `UPDATE members SET role = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, role, time.Now(), id)
	return err
}

// UpdatePasswordHash replaces a member's stored password hash, used by both
// a self-service password change and an admin-driven reset.
func (r *MemberRepository) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	query := `UPDATE members SET password_hash = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, passwordHash, time.Now(), id)
	return err
}

// Reactivate flips Active back to true.
func (r *MemberRepository) Reactivate(ctx context.Context, id string) error {
	query := `UPDATE members SET active = TRUE, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, time.Now(), id)
	return err
}

// Deactivate flips Active to false; the caller (MemberService) is
// responsible for first checking no non-BYE Match references the member.
func (r *MemberRepository) Deactivate(ctx context.Context, id string) error {
	query := `UPDATE members SET active = FALSE, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, time.Now(), id)
	return err
}

// ExistsByEmail checks if a member exists with the given email.
func (r *MemberRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM members WHERE email = ?)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, email).Scan(&exists)
	return exists, err
}

// Count returns the total number of registered members, for the admin
// platform-stats endpoint.
func (r *MemberRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM members`).Scan(&count)
	return count, err
}
