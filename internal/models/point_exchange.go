// internal/models/point_exchange.go
// PointExchangeRule domain model.

package models

import "time"

// PointExchangeRule is one row of a versioned rating-gap -> points lookup
// table. Rules whose EffectiveFrom is the latest <= now form the active set;
// ranges in an active set partition [0, inf) disjointly.
type PointExchangeRule struct {
	ID             string    `json:"id" db:"id"`
	MinDiff        int       `json:"min_diff" db:"min_diff"`
	MaxDiff        int       `json:"max_diff" db:"max_diff"`
	ExpectedPoints int       `json:"expected_points" db:"expected_points"`
	UpsetPoints    int       `json:"upset_points" db:"upset_points"`
	EffectiveFrom  time.Time `json:"effective_from" db:"effective_from"`
}

// FallbackPointExchangeTable is used when no rule rows exist for any
// effective date. Ranges are 25 rating points wide.
func FallbackPointExchangeTable() []PointExchangeRule {
	expected := []int{8, 7, 6, 5, 4, 3, 2, 2, 1, 1, 0}
	upset := []int{8, 10, 13, 16, 20, 25, 30, 35, 40, 45, 50}
	rules := make([]PointExchangeRule, 0, len(expected)+1)
	for i := range expected {
		rules = append(rules, PointExchangeRule{
			MinDiff:        i * 25,
			MaxDiff:        (i+1)*25 - 1,
			ExpectedPoints: expected[i],
			UpsetPoints:    upset[i],
		})
	}
	// Beyond the last tabulated range: expected points stay at 0, upset
	// points keep climbing by 5 per 25-point range up to 100; the row that
	// reaches 100 is open-ended.
	for up := upset[len(upset)-1] + 5; up <= 100; up += 5 {
		minDiff := len(rules) * 25
		maxDiff := minDiff + 24
		if up == 100 {
			maxDiff = 1 << 30
		}
		rules = append(rules, PointExchangeRule{
			MinDiff:        minDiff,
			MaxDiff:        maxDiff,
			ExpectedPoints: 0,
			UpsetPoints:    up,
		})
	}
	return rules
}
