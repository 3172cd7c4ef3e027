// internal/repositories/container.go
// Repository container for dependency injection.

package repositories

import (
	"context"
	"database/sql"

	"tournament-planner/internal/database"
)

// Container holds all repository instances.
type Container struct {
	Member                *MemberRepository
	Tournament            *TournamentRepository
	TournamentParticipant *TournamentParticipantRepository
	Match                 *MatchRepository
	BracketMatch          *BracketMatchRepository
	SwissData             *SwissDataRepository
	PointExchange         *PointExchangeRepository
	RatingHistory         *RatingHistoryRepository
	db                    *sql.DB
}

// NewContainer creates a new repository container.
func NewContainer(conn *database.Connections) *Container {
	return &Container{
		Member:                NewMemberRepository(conn.MySQL),
		Tournament:            NewTournamentRepository(conn.MySQL),
		TournamentParticipant: NewTournamentParticipantRepository(conn.MySQL),
		Match:                 NewMatchRepository(conn.MySQL),
		BracketMatch:          NewBracketMatchRepository(conn.MySQL),
		SwissData:             NewSwissDataRepository(conn.MySQL),
		PointExchange:         NewPointExchangeRepository(conn.MySQL),
		RatingHistory:         NewRatingHistoryRepository(conn.MySQL),
		db:                    conn.MySQL,
	}
}

// BeginTx starts a new database transaction. Per-tournament operations
// serialize on the tournament's identity by taking a row lock via
// `SELECT ... FOR UPDATE` inside this transaction.
func (c *Container) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return c.db.BeginTx(ctx, nil)
}
