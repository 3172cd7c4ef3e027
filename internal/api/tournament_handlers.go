// internal/api/tournament_handlers.go
// Tournament lifecycle HTTP handlers.

package api

import (
	"net/http"
	"strconv"

	"tournament-planner/internal/engine"
	"tournament-planner/internal/engine/errs"
	"tournament-planner/internal/services"
	"tournament-planner/internal/websocket"

	"github.com/gin-gonic/gin"
)

func writeEngineError(c *gin.Context, err error) {
	c.JSON(errs.HTTPStatus(err), gin.H{"error": err.Error()})
}

// HandleCreateTournament creates a new tournament of any kind.
func HandleCreateTournament(tournamentService *services.TournamentService, hub *websocket.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		organizerID := c.GetString("user_id")

		var req services.CreateTournamentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
			return
		}

		tournament, err := tournamentService.Create(c.Request.Context(), organizerID, req)
		if err != nil {
			writeEngineError(c, err)
			return
		}

		hub.BroadcastTournamentUpdated(tournament.ID, tournament)

		c.JSON(http.StatusCreated, gin.H{"tournament": tournament})
	}
}

// HandleGetTournament retrieves a single tournament, enriched with its
// kind-specific read model (bracket tree, standings, pairing history).
func HandleGetTournament(tournamentService *services.TournamentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tournamentID := c.Param("id")

		tournament, err := tournamentService.GetByID(c.Request.Context(), tournamentID)
		if err != nil {
			writeEngineError(c, err)
			return
		}

		enriched, err := tournamentService.Enrich(c.Request.Context(), tournament)
		if err != nil {
			writeEngineError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"tournament": tournament,
			"detail":     enriched,
		})
	}
}

// HandleListTournaments lists tournaments, optionally filtered to one
// organizer.
func HandleListTournaments(tournamentService *services.TournamentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		if page < 1 {
			page = 1
		}
		if limit < 1 || limit > 100 {
			limit = 20
		}

		var (
			tournaments interface{}
			err         error
		)
		if organizerID := c.Query("organizer_id"); organizerID != "" {
			tournaments, err = tournamentService.ListByOrganizer(c.Request.Context(), organizerID)
		} else {
			tournaments, err = tournamentService.List(c.Request.Context(), limit, (page-1)*limit)
		}
		if err != nil {
			writeEngineError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"tournaments": tournaments,
			"page":        page,
			"limit":       limit,
		})
	}
}

// HandleUpdateTournamentName renames a tournament.
func HandleUpdateTournamentName(tournamentService *services.TournamentService, hub *websocket.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		tournamentID := c.Param("id")

		var req struct {
			Name string `json:"name" binding:"required,min=3,max=255"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
			return
		}

		if err := tournamentService.UpdateName(c.Request.Context(), tournamentID, req.Name); err != nil {
			writeEngineError(c, err)
			return
		}

		hub.BroadcastTournamentUpdated(tournamentID, gin.H{"id": tournamentID, "name": req.Name})
		hub.BroadcastCacheInvalidate(tournamentID)

		c.JSON(http.StatusOK, gin.H{"message": "Tournament renamed successfully"})
	}
}

// HandleAddParticipant enrolls a member into a tournament.
func HandleAddParticipant(tournamentService *services.TournamentService, hub *websocket.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		tournamentID := c.Param("id")

		var req struct {
			MemberID string `json:"member_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
			return
		}

		participant, err := tournamentService.AddParticipant(c.Request.Context(), tournamentID, req.MemberID)
		if err != nil {
			writeEngineError(c, err)
			return
		}

		hub.BroadcastTournamentUpdated(tournamentID, participant)
		hub.BroadcastCacheInvalidate(tournamentID)

		c.JSON(http.StatusCreated, gin.H{"participant": participant})
	}
}

// HandleGetParticipants retrieves every participant enrolled in a tournament.
func HandleGetParticipants(tournamentService *services.TournamentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tournamentID := c.Param("id")

		participants, err := tournamentService.GetParticipants(c.Request.Context(), tournamentID)
		if err != nil {
			writeEngineError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"participants": participants})
	}
}

// HandleCancelTournament cancels a tournament if its plugin permits the
// transition from its current state.
func HandleCancelTournament(tournamentService *services.TournamentService, hub *websocket.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		tournamentID := c.Param("id")

		if err := tournamentService.Cancel(c.Request.Context(), tournamentID); err != nil {
			writeEngineError(c, err)
			return
		}

		hub.BroadcastTournamentUpdated(tournamentID, gin.H{"id": tournamentID, "cancelled": true})
		hub.BroadcastCacheInvalidate(tournamentID)

		c.JSON(http.StatusOK, gin.H{"message": "Tournament cancelled successfully"})
	}
}

// HandleDeleteTournament deletes a tournament outright if no match has
// ever been recorded against it.
func HandleDeleteTournament(tournamentService *services.TournamentService, hub *websocket.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		tournamentID := c.Param("id")

		if err := tournamentService.Delete(c.Request.Context(), tournamentID); err != nil {
			writeEngineError(c, err)
			return
		}

		hub.BroadcastCacheInvalidate(tournamentID)

		c.JSON(http.StatusOK, gin.H{"message": "Tournament deleted successfully"})
	}
}

// HandleRecordMatch reports a match result against a tournament —
// PATCH /tournaments/{id}/matches/{matchId}. matchId may name a Match ID
// (editing an already-played result), a BracketMatch ID (a first Playoff
// result), or "0" (a new Round Robin match); Swiss finds the pairing by
// Match ID or by member1Id/member2Id. The resolved plugin decides which.
func HandleRecordMatch(tournamentService *services.TournamentService, hub *websocket.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		tournamentID := c.Param("id")
		matchID := c.Param("matchId")

		var req struct {
			Member1ID string `json:"member1Id"`
			Member2ID string `json:"member2Id"`
			P1Sets    int    `json:"player1Sets"`
			P2Sets    int    `json:"player2Sets"`
			P1Forfeit bool   `json:"player1Forfeit"`
			P2Forfeit bool   `json:"player2Forfeit"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
			return
		}

		desc, err := tournamentService.RecordResult(c.Request.Context(), tournamentID, engine.UpdateMatchInput{
			MatchOrBracketMatchID: matchID,
			Member1ID:             req.Member1ID,
			Member2ID:             req.Member2ID,
			P1Sets:                req.P1Sets,
			P2Sets:                req.P2Sets,
			P1Forfeit:             req.P1Forfeit,
			P2Forfeit:             req.P2Forfeit,
		})
		if err != nil {
			writeEngineError(c, err)
			return
		}

		hub.BroadcastMatchUpdated(tournamentID, gin.H{"tournamentId": tournamentID, "matchId": matchID, "stateChange": desc})
		hub.BroadcastTournamentUpdated(tournamentID, desc)
		hub.BroadcastCacheInvalidate(tournamentID)

		c.JSON(http.StatusOK, gin.H{"state_change": desc})
	}
}

// HandlePluginRequest is the uniform escape hatch for kind-specific
// actions (Playoff's reseed and preview-bracket; every other kind rejects
// all actions) — `GET|POST|PATCH|DELETE
// /tournaments/{id}/plugin/{resource}`.
func HandlePluginRequest(tournamentService *services.TournamentService, hub *websocket.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		tournamentID := c.Param("id")
		resource := c.Param("resource")

		payload := map[string]interface{}{}
		c.ShouldBindJSON(&payload)
		payload["method"] = c.Request.Method
		for _, p := range c.Params {
			if p.Key != "id" && p.Key != "resource" {
				payload[p.Key] = p.Value
			}
		}
		for k, v := range c.Request.URL.Query() {
			if len(v) > 0 {
				payload[k] = v[0]
			}
		}

		result, err := tournamentService.HandlePluginRequest(c.Request.Context(), tournamentID, resource, payload)
		if err != nil {
			writeEngineError(c, err)
			return
		}

		if c.Request.Method != http.MethodGet {
			hub.BroadcastTournamentUpdated(tournamentID, gin.H{"id": tournamentID, "resource": resource})
			hub.BroadcastCacheInvalidate(tournamentID)
		}

		c.JSON(http.StatusOK, result)
	}
}
