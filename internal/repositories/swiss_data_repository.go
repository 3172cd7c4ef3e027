// internal/repositories/swiss_data_repository.go
// SwissData and SwissPairing data access layer.

package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"tournament-planner/internal/models"
)

// SwissDataRepository handles Swiss round bookkeeping.
type SwissDataRepository struct {
	db *sql.DB
}

// NewSwissDataRepository creates a new repository.
func NewSwissDataRepository(db *sql.DB) *SwissDataRepository {
	return &SwissDataRepository{db: db}
}

// CreateWithTx inserts the SwissData row at tournament creation.
func (r *SwissDataRepository) CreateWithTx(tx *sql.Tx, d *models.SwissData) error {
	query := `
		INSERT INTO swiss_data (tournament_id, rounds, current_round, complete)
		VALUES (?, ?, ?, ?)
	`
	_, err := tx.ExecContext(context.Background(), query, d.TournamentID, d.Rounds, d.CurrentRound, d.Complete)
	return err
}

// GetWithTx retrieves and locks the SwissData row for a tournament.
func (r *SwissDataRepository) GetWithTx(tx *sql.Tx, tournamentID string) (*models.SwissData, error) {
	query := `
		SELECT tournament_id, rounds, current_round, complete
		FROM swiss_data WHERE tournament_id = ? FOR UPDATE
	`
	var d models.SwissData
	err := tx.QueryRowContext(context.Background(), query, tournamentID).Scan(
		&d.TournamentID, &d.Rounds, &d.CurrentRound, &d.Complete,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("swiss data not found")
	}
	return &d, err
}

// Get retrieves the SwissData row outside a transaction (read paths).
func (r *SwissDataRepository) Get(ctx context.Context, tournamentID string) (*models.SwissData, error) {
	query := `SELECT tournament_id, rounds, current_round, complete FROM swiss_data WHERE tournament_id = ?`
	var d models.SwissData
	err := r.db.QueryRowContext(ctx, query, tournamentID).Scan(
		&d.TournamentID, &d.Rounds, &d.CurrentRound, &d.Complete,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("swiss data not found")
	}
	return &d, err
}

// AdvanceRoundWithTx sets CurrentRound to newRound and Complete to complete;
// the caller decides both.
func (r *SwissDataRepository) AdvanceRoundWithTx(tx *sql.Tx, tournamentID string, newRound int, complete bool) error {
	query := `UPDATE swiss_data SET current_round = ?, complete = ? WHERE tournament_id = ?`
	_, err := tx.ExecContext(context.Background(), query, newRound, complete, tournamentID)
	return err
}

// CreatePairingsWithTx writes one round's pairings in bulk.
func (r *SwissDataRepository) CreatePairingsWithTx(tx *sql.Tx, pairings []*models.SwissPairing) error {
	query := `
		INSERT INTO swiss_pairings (tournament_id, round, member1_id, member2_id, match_id)
		VALUES (?, ?, ?, ?, ?)
	`
	for _, p := range pairings {
		if _, err := tx.ExecContext(context.Background(), query, p.TournamentID, p.Round, p.Member1ID, p.Member2ID, p.MatchID); err != nil {
			return err
		}
	}
	return nil
}

// GetPairingsByRound retrieves one round's pairings.
func (r *SwissDataRepository) GetPairingsByRound(ctx context.Context, tournamentID string, round int) ([]*models.SwissPairing, error) {
	query := `
		SELECT tournament_id, round, member1_id, member2_id, match_id
		FROM swiss_pairings WHERE tournament_id = ? AND round = ?
	`
	rows, err := r.db.QueryContext(ctx, query, tournamentID, round)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*models.SwissPairing, 0)
	for rows.Next() {
		var p models.SwissPairing
		if err := rows.Scan(&p.TournamentID, &p.Round, &p.Member1ID, &p.Member2ID, &p.MatchID); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, nil
}

// GetAllPairings retrieves every pairing ever made in the tournament, used
// by the "avoid repeated pairings" rule when building the next round.
func (r *SwissDataRepository) GetAllPairings(ctx context.Context, tournamentID string) ([]*models.SwissPairing, error) {
	query := `
		SELECT tournament_id, round, member1_id, member2_id, match_id
		FROM swiss_pairings WHERE tournament_id = ?
	`
	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*models.SwissPairing, 0)
	for rows.Next() {
		var p models.SwissPairing
		if err := rows.Scan(&p.TournamentID, &p.Round, &p.Member1ID, &p.Member2ID, &p.MatchID); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, nil
}

// SetPairingMatchIDWithTx links a pairing to the Match row recording its result.
func (r *SwissDataRepository) SetPairingMatchIDWithTx(tx *sql.Tx, tournamentID string, round int, member1ID, member2ID, matchID string) error {
	query := `
		UPDATE swiss_pairings SET match_id = ?
		WHERE tournament_id = ? AND round = ? AND member1_id = ? AND member2_id = ?
	`
	_, err := tx.ExecContext(context.Background(), query, matchID, tournamentID, round, member1ID, member2ID)
	return err
}
