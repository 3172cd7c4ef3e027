// internal/services/other_services.go
// Analytics sink for dispatcher state-change events and rating-replay runs,
// the one place MongoDB is exercised in this domain.

package services

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// AnalyticsService handles analytics and event tracking.
type AnalyticsService struct {
	db     *mongo.Database
	cache  *CacheService
	logger *log.Logger
}

// NewAnalyticsService creates a new analytics service.
func NewAnalyticsService(db *mongo.Database, cache *CacheService, logger *log.Logger) *AnalyticsService {
	return &AnalyticsService{
		db:     db,
		cache:  cache,
		logger: logger,
	}
}

// LogEvent logs an analytics event. Failures are logged, never returned:
// analytics must never block a rating write or a replay run.
func (s *AnalyticsService) LogEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	event := bson.M{
		"type":       eventType,
		"data":       data,
		"created_at": time.Now(),
	}
	if _, err := s.db.Collection("analytics_events").InsertOne(ctx, event); err != nil {
		s.logger.Printf("failed to log analytics event %s: %v", eventType, err)
	}
}

// LogStateChange records a dispatcher state-change descriptor: which
// tournament fired it, whether it marked completion, and whether it spawned
// a final tournament.
func (s *AnalyticsService) LogStateChange(ctx context.Context, tournamentID string, shouldMarkComplete, shouldCreateFinal bool, message string) {
	s.LogEvent(ctx, "tournament_state_change", map[string]interface{}{
		"tournament_id":        tournamentID,
		"should_mark_complete": shouldMarkComplete,
		"should_create_final":  shouldCreateFinal,
		"message":              message,
	})
}

// LogReplayRun records a chronological rating replay's scope and outcome,
// letting an operator audit when and how far a replay reached.
func (s *AnalyticsService) LogReplayRun(ctx context.Context, after time.Time, tournamentsReplayed int) {
	s.LogEvent(ctx, "rating_replay_run", map[string]interface{}{
		"after":                after,
		"tournaments_replayed": tournamentsReplayed,
	})
}

// GetPlatformStats retrieves platform-wide aggregate counters, cached for
// 5 minutes the same way CacheService wraps every other read-through
// cache in this service layer.
func (s *AnalyticsService) GetPlatformStats(ctx context.Context, memberCount, tournamentCount, matchCount, activeTournamentCount int) map[string]interface{} {
	cacheKey := "platform_stats"
	var stats map[string]interface{}
	if err := s.cache.Get(cacheKey, &stats); err == nil {
		return stats
	}

	stats = map[string]interface{}{
		"total_members":      memberCount,
		"total_tournaments":  tournamentCount,
		"total_matches":      matchCount,
		"active_tournaments": activeTournamentCount,
	}
	s.cache.Set(cacheKey, stats, 5*time.Minute)
	return stats
}
