// internal/api/member_handlers.go
// Member profile and lifecycle HTTP handlers.

package api

import (
	"net/http"

	"tournament-planner/internal/services"
	"tournament-planner/internal/websocket"

	"github.com/gin-gonic/gin"
)

// HandleGetCurrentMember retrieves the current member's profile.
func HandleGetCurrentMember(memberService *services.MemberService) gin.HandlerFunc {
	return func(c *gin.Context) {
		memberID := c.GetString("user_id")

		member, err := memberService.GetByID(c.Request.Context(), memberID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve member"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"member": member})
	}
}

// HandleUpdateProfile updates the current member's profile.
func HandleUpdateProfile(memberService *services.MemberService, hub *websocket.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		memberID := c.GetString("user_id")

		var updates map[string]interface{}
		if err := c.ShouldBindJSON(&updates); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
			return
		}

		member, err := memberService.UpdateProfile(c.Request.Context(), memberID, updates)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
			return
		}

		hub.BroadcastGlobal(websocket.EventPlayerUpdated, member)

		c.JSON(http.StatusOK, gin.H{"member": member})
	}
}

// HandleDeactivateMember deactivates the current member, blocked iff any
// non-BYE match already references them.
func HandleDeactivateMember(memberService *services.MemberService, hub *websocket.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		memberID := c.GetString("user_id")

		if err := memberService.Deactivate(c.Request.Context(), memberID); err != nil {
			if err == services.ErrForbidden {
				c.JSON(http.StatusForbidden, gin.H{"error": "Member has played matches and cannot be deactivated"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate member"})
			return
		}

		hub.BroadcastGlobal(websocket.EventPlayerDeleted, gin.H{"id": memberID})

		c.JSON(http.StatusOK, gin.H{"message": "Member deactivated successfully"})
	}
}

// HandlePromoteToOrganizer elevates a member to the ORGANIZER role
// (admin-only).
func HandlePromoteToOrganizer(memberService *services.MemberService, hub *websocket.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		memberID := c.Param("id")

		if err := memberService.PromoteToOrganizer(c.Request.Context(), memberID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		hub.BroadcastGlobal(websocket.EventPlayerUpdated, gin.H{"id": memberID})

		c.JSON(http.StatusOK, gin.H{"message": "Member promoted to organizer"})
	}
}

// HandleReactivateMember reactivates a previously deactivated member
// (admin-only).
func HandleReactivateMember(memberService *services.MemberService, hub *websocket.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		memberID := c.Param("id")

		if err := memberService.Reactivate(c.Request.Context(), memberID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reactivate member"})
			return
		}

		hub.BroadcastGlobal(websocket.EventPlayerUpdated, gin.H{"id": memberID})

		c.JSON(http.StatusOK, gin.H{"message": "Member reactivated successfully"})
	}
}
