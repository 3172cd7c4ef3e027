// internal/api/admin_handlers.go
// Admin-only HTTP handlers.

package api

import (
	"net/http"

	"tournament-planner/internal/repositories"
	"tournament-planner/internal/services"

	"github.com/gin-gonic/gin"
)

// HandleGetPlatformStats retrieves platform-wide aggregate statistics.
func HandleGetPlatformStats(analyticsService *services.AnalyticsService, repos *repositories.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		memberCount, err := repos.Member.Count(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve statistics"})
			return
		}
		tournamentCount, err := repos.Tournament.Count(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve statistics"})
			return
		}
		activeTournamentCount, err := repos.Tournament.CountActive(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve statistics"})
			return
		}
		matchCount, err := repos.Match.Count(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve statistics"})
			return
		}

		stats := analyticsService.GetPlatformStats(ctx, memberCount, tournamentCount, matchCount, activeTournamentCount)
		c.JSON(http.StatusOK, gin.H{"statistics": stats})
	}
}

// HandleListAllTournaments lists every tournament regardless of organizer
// (admin only).
func HandleListAllTournaments(tournamentService *services.TournamentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tournaments, err := tournamentService.List(c.Request.Context(), 100, 0)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list tournaments"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"tournaments": tournaments})
	}
}

// HandleForceDeleteTournament is the admin-only delete route. It calls
// TournamentService.Delete, so the plugin's CanDelete check still applies
// and a tournament with recorded matches is refused.
func HandleForceDeleteTournament(tournamentService *services.TournamentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tournamentID := c.Param("id")

		if err := tournamentService.Delete(c.Request.Context(), tournamentID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete tournament", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Tournament deleted successfully"})
	}
}
