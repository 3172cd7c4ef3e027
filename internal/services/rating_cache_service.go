// internal/services/rating_cache_service.go
// Post-rating cache, backed by Redis through its own client rather than the
// CacheService wrapper, plus key and TTL helpers for point-exchange rule
// sets (the rule sets themselves are cached through CacheService). Kept as
// a separate file because its invalidation semantics
// ("drop this tournament and every later one") are specific to the rating
// domain rather than a generic cache operation.

package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	postRatingKeyPrefix   = "rating:"
	ratingMembersPrefix   = "rating:members:"
	tournamentOrderZSet   = "tournament:order"
	ruleSetCacheKeyPrefix = "pxrules:"
	ruleSetCacheTTL       = 5 * time.Minute
)

// RatingCacheService maintains the (tournamentId, memberId) -> post-rating
// cache invalidated and repopulated by the dispatcher on every rating run.
type RatingCacheService struct {
	client *redis.Client
	logger *log.Logger
}

// NewRatingCacheService creates a new rating cache service.
func NewRatingCacheService(client *redis.Client, logger *log.Logger) *RatingCacheService {
	return &RatingCacheService{client: client, logger: logger}
}

func postRatingKey(tournamentID, memberID string) string {
	return fmt.Sprintf("%s%s:%s", postRatingKeyPrefix, tournamentID, memberID)
}

func ratingMembersKey(tournamentID string) string {
	return ratingMembersPrefix + tournamentID
}

// IndexTournament records a tournament's creation order so invalidation can
// later resolve "every tournament with createdAt > T.createdAt" without a
// Redis-side range-over-time query: Redis's own KEYS pattern matching has no
// notion of numeric/time comparison, so a sorted set keyed by Unix
// nanoseconds stands in for that index.
func (s *RatingCacheService) IndexTournament(ctx context.Context, tournamentID string, createdAt time.Time) error {
	return s.client.ZAdd(ctx, tournamentOrderZSet, redis.Z{
		Score:  float64(createdAt.UnixNano()),
		Member: tournamentID,
	}).Err()
}

// Put stores a member's post-rating for a tournament and records the member
// against the tournament's membership set so InvalidateFrom can later find
// every key belonging to that tournament without a KEYS scan.
func (s *RatingCacheService) Put(ctx context.Context, tournamentID, memberID string, rating int, ttl time.Duration) error {
	pipe := s.client.Pipeline()
	pipe.Set(ctx, postRatingKey(tournamentID, memberID), rating, ttl)
	pipe.SAdd(ctx, ratingMembersKey(tournamentID), memberID)
	_, err := pipe.Exec(ctx)
	return err
}

// Get retrieves a cached post-rating. ok is false on cache miss, signalling
// the caller to recompute chronologically from the affected tournament
// forward.
func (s *RatingCacheService) Get(ctx context.Context, tournamentID, memberID string) (rating int, ok bool, err error) {
	val, err := s.client.Get(ctx, postRatingKey(tournamentID, memberID)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	rating, err = strconv.Atoi(val)
	if err != nil {
		return 0, false, err
	}
	return rating, true, nil
}

// InvalidateFrom drops all post-rating cache entries for T and for every
// tournament with createdAt > T.createdAt. Returns the ordered list
// of affected tournament IDs so the caller can drive chronological replay
// over the same set without a second database query.
func (s *RatingCacheService) InvalidateFrom(ctx context.Context, tournamentID string, createdAt time.Time) ([]string, error) {
	members, err := s.client.ZRangeByScore(ctx, tournamentOrderZSet, &redis.ZRangeBy{
		Min: strconv.FormatInt(createdAt.UnixNano(), 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve later tournaments: %w", err)
	}

	affected := append([]string{tournamentID}, members...)
	for _, id := range affected {
		memberIDs, err := s.client.SMembers(ctx, ratingMembersKey(id)).Result()
		if err != nil {
			s.logger.Printf("post-rating cache invalidation failed reading membership for %s (non-fatal, degrades to a cache miss): %v", id, err)
			continue
		}
		if len(memberIDs) == 0 {
			continue
		}
		pipe := s.client.Pipeline()
		for _, memberID := range memberIDs {
			pipe.Del(ctx, postRatingKey(id, memberID))
		}
		pipe.Del(ctx, ratingMembersKey(id))
		if _, err := pipe.Exec(ctx); err != nil {
			s.logger.Printf("post-rating cache invalidation failed for tournament %s (non-fatal, degrades to a cache miss): %v", id, err)
		}
	}
	return affected, nil
}

func ruleSetCacheKey(effectiveDate string) string {
	return ruleSetCacheKeyPrefix + effectiveDate
}

// CachedRuleSetKey returns the cache key for the rule set effective as of a
// given calendar date.
func CachedRuleSetKey(asOf time.Time) string {
	return ruleSetCacheKey(asOf.Format("2006-01-02"))
}

// RuleSetTTL is the fixed 5-minute cache window for point-exchange rule sets.
func RuleSetTTL() time.Duration { return ruleSetCacheTTL }
