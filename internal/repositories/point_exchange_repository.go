// internal/repositories/point_exchange_repository.go
// PointExchangeRule data access layer.

package repositories

import (
	"context"
	"database/sql"
	"time"

	"tournament-planner/internal/models"
)

// PointExchangeRepository handles the point-exchange rule table.
type PointExchangeRepository struct {
	db *sql.DB
}

// NewPointExchangeRepository creates a new repository.
func NewPointExchangeRepository(db *sql.DB) *PointExchangeRepository {
	return &PointExchangeRepository{db: db}
}

// ActiveRuleSet returns the rule rows whose EffectiveFrom is the latest date
// <= asOf. The table is small (typically <=22 rows); a single ordered query
// plus in-process grouping is simpler than a correlated-subquery MAX(date)
// join and matches the expected scale: a short, largely static rule list.
func (r *PointExchangeRepository) ActiveRuleSet(ctx context.Context, asOf time.Time) ([]models.PointExchangeRule, error) {
	query := `
		SELECT id, min_diff, max_diff, expected_points, upset_points, effective_from
		FROM point_exchange_rules
		WHERE effective_from <= ?
		ORDER BY effective_from DESC, min_diff ASC
	`
	rows, err := r.db.QueryContext(ctx, query, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all []models.PointExchangeRule
	for rows.Next() {
		var rule models.PointExchangeRule
		if err := rows.Scan(&rule.ID, &rule.MinDiff, &rule.MaxDiff, &rule.ExpectedPoints, &rule.UpsetPoints, &rule.EffectiveFrom); err != nil {
			return nil, err
		}
		all = append(all, rule)
	}
	if len(all) == 0 {
		return nil, nil
	}

	latest := all[0].EffectiveFrom
	var active []models.PointExchangeRule
	for _, rule := range all {
		if rule.EffectiveFrom.Equal(latest) {
			active = append(active, rule)
		}
	}
	return active, nil
}
