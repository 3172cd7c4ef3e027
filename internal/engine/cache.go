// internal/engine/cache.go
// Cache dependencies the engine package needs, expressed as interfaces so
// this package never imports internal/services directly — services.
// MatchService depends on engine.RatingEngine, so the dependency can only
// run one way. services.CacheService and services.RatingCacheService
// satisfy these interfaces structurally.
package engine

import (
	"context"
	"time"
)

// RuleSetCache is the narrow slice of services.CacheService the
// Point-Exchange Table needs for its 5-minute rule-set cache.
type RuleSetCache interface {
	Get(key string, dest interface{}) error
	Set(key string, value interface{}, expiration time.Duration) error
}

// PostRatingCache is the narrow slice of services.RatingCacheService the
// Rating Engine and Dispatcher need for the post-rating cache.
type PostRatingCache interface {
	Get(ctx context.Context, tournamentID, memberID string) (rating int, ok bool, err error)
	Put(ctx context.Context, tournamentID, memberID string, rating int, ttl time.Duration) error
	InvalidateFrom(ctx context.Context, tournamentID string, createdAt time.Time) ([]string, error)
	IndexTournament(ctx context.Context, tournamentID string, createdAt time.Time) error
}

const ruleSetCacheKeyPrefix = "pxrules:"

// ruleSetTTL is the fixed cache window for point-exchange rules. Entries
// live in whatever RuleSetCache backs the table (the Redis-backed
// services.CacheService in the server); nothing is held in process memory.
const ruleSetTTL = 5 * time.Minute

func cachedRuleSetKey(asOf time.Time) string {
	return ruleSetCacheKeyPrefix + asOf.Format("2006-01-02")
}
