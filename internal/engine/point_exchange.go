// internal/engine/point_exchange.go
// Point-Exchange Table: a versioned rating-gap + upset-flag -> points
// lookup, backing both Rating Engine modes.
package engine

import (
	"context"
	"sort"
	"time"

	"tournament-planner/internal/models"
	"tournament-planner/internal/repositories"
)

// PointExchangeTable resolves rating gaps to point transfers.
type PointExchangeTable struct {
	repo  *repositories.PointExchangeRepository
	cache RuleSetCache
}

// NewPointExchangeTable builds a table backed by the repository and a
// 5-minute rule cache held in cache (not in process memory).
func NewPointExchangeTable(repo *repositories.PointExchangeRepository, cache RuleSetCache) *PointExchangeTable {
	return &PointExchangeTable{repo: repo, cache: cache}
}

// EffectiveRuleSet returns the rule rows effective as of asOf, consulting
// the cache first and falling back to FallbackPointExchangeTable if no rows
// exist in storage at all.
func (t *PointExchangeTable) EffectiveRuleSet(ctx context.Context, asOf time.Time) ([]models.PointExchangeRule, error) {
	key := cachedRuleSetKey(asOf)
	var rules []models.PointExchangeRule
	if t.cache != nil {
		if err := t.cache.Get(key, &rules); err == nil && len(rules) > 0 {
			return rules, nil
		}
	}

	rules, err := t.repo.ActiveRuleSet(ctx, asOf)
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		rules = models.FallbackPointExchangeTable()
	}

	sort.Slice(rules, func(i, j int) bool { return rules[i].MinDiff < rules[j].MinDiff })

	if t.cache != nil {
		_ = t.cache.Set(key, rules, ruleSetTTL)
	}
	return rules, nil
}

// Lookup linear-searches the active rule set for the first row where
// minDiff <= |gap| <= maxDiff, returning upsetPoints if isUpset else
// expectedPoints.
func (t *PointExchangeTable) Lookup(ctx context.Context, asOf time.Time, gap int, isUpset bool) (int, error) {
	if gap < 0 {
		gap = -gap
	}
	rules, err := t.EffectiveRuleSet(ctx, asOf)
	if err != nil {
		return 0, err
	}
	for _, rule := range rules {
		if gap >= rule.MinDiff && gap <= rule.MaxDiff {
			if isUpset {
				return rule.UpsetPoints, nil
			}
			return rule.ExpectedPoints, nil
		}
	}
	// The ranges of an active set partition [0, inf) disjointly; a
	// miss here means a malformed rule set. Fall back rather than error,
	// since point-exchange lookups must never block a match result.
	fallback := models.FallbackPointExchangeTable()
	last := fallback[len(fallback)-1]
	if isUpset {
		return last.UpsetPoints, nil
	}
	return last.ExpectedPoints, nil
}

// IsUpset reports, from the winner's perspective, whether the winner's
// rating was strictly lower than the loser's (an upset win).
func IsUpset(winnerRating, loserRating int) bool {
	return winnerRating < loserRating
}

// MatchPoints computes the (winnerPoints, loserPoints) pair for one result,
// given both players' ratings at the moment of the match.
func (t *PointExchangeTable) MatchPoints(ctx context.Context, asOf time.Time, winnerRating, loserRating int) (winnerPoints, loserPoints int, err error) {
	gap := winnerRating - loserRating
	upset := IsUpset(winnerRating, loserRating)
	points, err := t.Lookup(ctx, asOf, gap, upset)
	if err != nil {
		return 0, 0, err
	}
	return points, -points, nil
}
