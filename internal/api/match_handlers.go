// internal/api/match_handlers.go
// Standalone match HTTP handlers. Results recorded
// against a tournament go through HandleRecordMatch in
// tournament_handlers.go instead.

package api

import (
	"net/http"

	"tournament-planner/internal/engine/errs"
	"tournament-planner/internal/models"
	"tournament-planner/internal/services"
	"tournament-planner/internal/websocket"

	"github.com/gin-gonic/gin"
)

// HandleGetMatch retrieves a single match.
func HandleGetMatch(matchService *services.MatchService) gin.HandlerFunc {
	return func(c *gin.Context) {
		matchID := c.Param("id")

		match, err := matchService.GetByID(c.Request.Context(), matchID)
		if err != nil {
			c.JSON(errs.HTTPStatus(err), gin.H{"error": "Match not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"match": match})
	}
}

// HandleGetTournamentMatches retrieves every match recorded in a tournament.
func HandleGetTournamentMatches(matchService *services.MatchService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tournamentID := c.Param("id")

		matches, err := matchService.GetByTournamentID(c.Request.Context(), tournamentID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve matches"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"matches": matches})
	}
}

// HandleCreateStandaloneMatch creates a tournamentId = nil match between
// two members — POST /matches. A non-organizer creator must supply the
// opponent's password as proof of mutual consent.
func HandleCreateStandaloneMatch(matchService *services.MatchService, hub *websocket.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		creatorID := c.GetString("user_id")
		creatorRole := c.GetString("user_role")

		var req struct {
			Member1ID        string `json:"member1_id" binding:"required"`
			Member2ID        string `json:"member2_id" binding:"required"`
			P1Sets           int    `json:"player1_sets"`
			P2Sets           int    `json:"player2_sets"`
			P1Forfeit        bool   `json:"player1_forfeit"`
			P2Forfeit        bool   `json:"player2_forfeit"`
			OpponentPassword string `json:"opponent_password"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
			return
		}

		match, err := matchService.CreateStandalone(c.Request.Context(), services.CreateStandaloneInput{
			CreatorMemberID:    creatorID,
			CreatorIsOrganizer: creatorRole == string(models.RoleOrganizer) || creatorRole == string(models.RoleAdmin),
			Member1ID:          req.Member1ID,
			Member2ID:          req.Member2ID,
			P1Sets:             req.P1Sets,
			P2Sets:             req.P2Sets,
			P1Forfeit:          req.P1Forfeit,
			P2Forfeit:          req.P2Forfeit,
			OpponentPassword:   req.OpponentPassword,
		})
		if err != nil {
			if err == services.ErrForbidden {
				c.JSON(http.StatusForbidden, gin.H{"error": "Opponent password incorrect"})
				return
			}
			c.JSON(errs.HTTPStatus(err), gin.H{"error": err.Error()})
			return
		}

		hub.BroadcastGlobal(websocket.EventMatchUpdated, match)

		c.JSON(http.StatusCreated, gin.H{"match": match})
	}
}
