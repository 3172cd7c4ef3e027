// internal/services/container.go
// Service container provides dependency injection for all business logic
// services, plus the engine's composition root: the repositories, the
// Point-Exchange Table, the Rating Engine, the Bracket Builder/Runtime, the
// plugin Registry, and the Dispatcher that wires them to every HTTP
// handler.

package services

import (
	"errors"
	"log"

	"tournament-planner/internal/config"
	"tournament-planner/internal/database"
	"tournament-planner/internal/engine"
	"tournament-planner/internal/plugins"
	"tournament-planner/internal/repositories"
)

// Container holds all service instances and provides them to handlers.
type Container struct {
	Auth        *AuthService
	Member      *MemberService
	Match       *MatchService
	Tournament  *TournamentService
	Cache       *CacheService
	RatingCache *RatingCacheService
	Analytics   *AnalyticsService

	Repos      *repositories.Container
	Rating     *engine.RatingEngine
	Builder    *engine.BracketBuilder
	Runtime    *engine.BracketRuntime
	Registry   engine.Registry
	Dispatcher *engine.Dispatcher
}

// NewContainer creates a new service container with all dependencies.
func NewContainer(db *database.Connections, cfg *config.Config, logger *log.Logger) *Container {
	repos := repositories.NewContainer(db)

	cache := NewCacheService(db.Redis, logger)
	ratingCache := NewRatingCacheService(db.Redis, logger)

	pointTable := engine.NewPointExchangeTable(repos.PointExchange, cache)
	ratingEngine := engine.NewRatingEngine(repos, pointTable, ratingCache, logger)
	builder := engine.NewBracketBuilder()
	runtime := engine.NewBracketRuntime(repos)

	registry := plugins.NewRegistry(repos, builder, runtime, ratingEngine)
	dispatcher := engine.NewDispatcher(repos, registry, ratingEngine, ratingCache, logger)

	auth := NewAuthService(repos.Member, cfg.Auth, cache, logger)
	member := NewMemberService(repos.Member, repos.Match, logger)
	match := NewMatchService(repos, ratingEngine, cache)
	tournament := NewTournamentService(repos, dispatcher, registry, cache)
	analytics := NewAnalyticsService(db.MongoDB, cache, logger)

	return &Container{
		Auth:        auth,
		Member:      member,
		Match:       match,
		Tournament:  tournament,
		Cache:       cache,
		RatingCache: ratingCache,
		Analytics:   analytics,

		Repos:      repos,
		Rating:     ratingEngine,
		Builder:    builder,
		Runtime:    runtime,
		Registry:   registry,
		Dispatcher: dispatcher,
	}
}

// Common errors used across services.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)
