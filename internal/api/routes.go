// internal/api/routes.go
// Central route registration for all API endpoints.

package api

import (
	"tournament-planner/internal/middleware"
	"tournament-planner/internal/models"
	"tournament-planner/internal/services"
	"tournament-planner/internal/websocket"

	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registers authentication-related routes.
func RegisterAuthRoutes(router *gin.RouterGroup, services *services.Container, hub *websocket.Hub) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", HandleRegister(services.Auth, hub))
		auth.POST("/login", HandleLogin(services.Auth))
		auth.POST("/logout", middleware.RequireAuth(services.Auth), HandleLogout(services.Auth))
		auth.POST("/refresh", HandleRefreshToken(services.Auth))
		auth.POST("/forgot-password", HandleForgotPassword(services.Auth))
		auth.POST("/reset-password", HandleResetPassword(services.Auth))
	}
}

// RegisterMemberRoutes registers member profile and lifecycle routes.
func RegisterMemberRoutes(router *gin.RouterGroup, services *services.Container, hub *websocket.Hub) {
	members := router.Group("/members")
	members.Use(middleware.RequireAuth(services.Auth))
	{
		members.GET("/me", HandleGetCurrentMember(services.Member))
		members.PUT("/me", HandleUpdateProfile(services.Member, hub))
		members.PUT("/me/password", HandleChangePassword(services.Auth))
		members.DELETE("/me", HandleDeactivateMember(services.Member, hub))
		members.POST("/:id/promote", middleware.RequireRole(string(models.RoleAdmin)), HandlePromoteToOrganizer(services.Member, hub))
		members.POST("/:id/reactivate", middleware.RequireRole(string(models.RoleAdmin)), HandleReactivateMember(services.Member, hub))
	}
}

// RegisterTournamentRoutes registers tournament lifecycle, match-recording,
// and plugin-resource routes.
func RegisterTournamentRoutes(router *gin.RouterGroup, services *services.Container, hub *websocket.Hub) {
	tournaments := router.Group("/tournaments")
	{
		// Public reads.
		tournaments.GET("", HandleListTournaments(services.Tournament))
		tournaments.GET("/:id", HandleGetTournament(services.Tournament))
		tournaments.GET("/:id/participants", HandleGetParticipants(services.Tournament))
		tournaments.GET("/:id/matches", HandleGetTournamentMatches(services.Match))
		tournaments.GET("/:id/plugin/:resource", HandlePluginRequest(services.Tournament, hub))

		// Organizer-only writes.
		tournaments.Use(middleware.RequireAuth(services.Auth))
		tournaments.POST("", HandleCreateTournament(services.Tournament, hub))
		tournaments.PUT("/:id/name", middleware.RequireTournamentOwner(services), HandleUpdateTournamentName(services.Tournament, hub))
		tournaments.POST("/:id/participants", middleware.RequireTournamentOwner(services), HandleAddParticipant(services.Tournament, hub))
		tournaments.POST("/:id/cancel", middleware.RequireTournamentOwner(services), HandleCancelTournament(services.Tournament, hub))
		tournaments.DELETE("/:id", middleware.RequireTournamentOwner(services), HandleDeleteTournament(services.Tournament, hub))
		tournaments.PATCH("/:id/matches/:matchId", middleware.RequireTournamentOwner(services), HandleRecordMatch(services.Tournament, hub))
		tournaments.POST("/:id/plugin/:resource", middleware.RequireTournamentOwner(services), HandlePluginRequest(services.Tournament, hub))
		tournaments.PATCH("/:id/plugin/:resource", middleware.RequireTournamentOwner(services), HandlePluginRequest(services.Tournament, hub))
		tournaments.DELETE("/:id/plugin/:resource", middleware.RequireTournamentOwner(services), HandlePluginRequest(services.Tournament, hub))
	}
}

// RegisterMatchRoutes registers standalone match routes.
func RegisterMatchRoutes(router *gin.RouterGroup, services *services.Container, hub *websocket.Hub) {
	matches := router.Group("/matches")
	matches.Use(middleware.RequireAuth(services.Auth))
	{
		matches.GET("/:id", HandleGetMatch(services.Match))
		matches.POST("", HandleCreateStandaloneMatch(services.Match, hub))
	}
}

// RegisterAdminRoutes registers admin-only routes.
func RegisterAdminRoutes(router *gin.RouterGroup, services *services.Container) {
	admin := router.Group("/admin")
	admin.Use(middleware.RequireAuth(services.Auth))
	admin.Use(middleware.RequireRole(string(models.RoleAdmin)))
	{
		admin.GET("/stats", HandleGetPlatformStats(services.Analytics, services.Repos))
		admin.GET("/tournaments", HandleListAllTournaments(services.Tournament))
		admin.DELETE("/tournaments/:id", HandleForceDeleteTournament(services.Tournament))
	}
}
