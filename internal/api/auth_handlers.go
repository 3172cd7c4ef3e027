// internal/api/auth_handlers.go
// Authentication-related HTTP handlers

package api

import (
	"net/http"

	"tournament-planner/internal/services"
	"tournament-planner/internal/websocket"

	"github.com/gin-gonic/gin"
)

// HandleRegister handles member registration.
func HandleRegister(authService *services.AuthService, hub *websocket.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req services.RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
			return
		}

		member, tokens, err := authService.Register(c.Request.Context(), req)
		if err != nil {
			if err == services.ErrEmailAlreadyExists {
				c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register member"})
			return
		}

		hub.BroadcastGlobal(websocket.EventPlayerCreated, member)

		c.JSON(http.StatusCreated, gin.H{
			"member": member,
			"auth":   tokens,
		})
	}
}

// HandleLogin handles member login.
func HandleLogin(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email    string `json:"email" binding:"required,email"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
			return
		}

		member, tokens, err := authService.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			if err == services.ErrInvalidCredentials {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
				return
			}
			if err == services.ErrForbidden {
				c.JSON(http.StatusForbidden, gin.H{"error": "Account is deactivated"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to login"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"member": member,
			"auth":   tokens,
		})
	}
}

// HandleLogout handles member logout.
func HandleLogout(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			RefreshToken string `json:"refresh_token"`
		}
		c.ShouldBindJSON(&req)

		authService.Logout(c.Request.Context(), req.RefreshToken)
		c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
	}
}

// HandleRefreshToken handles token refresh.
func HandleRefreshToken(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			RefreshToken string `json:"refresh_token" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
			return
		}

		tokens, err := authService.RefreshToken(c.Request.Context(), req.RefreshToken)
		if err != nil {
			if err == services.ErrInvalidToken {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refresh token"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"auth": tokens})
	}
}

// HandleForgotPassword handles password reset request.
func HandleForgotPassword(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email string `json:"email" binding:"required,email"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
			return
		}

		// Always return success to not reveal if the email is registered.
		authService.ForgotPassword(c.Request.Context(), req.Email)
		c.JSON(http.StatusOK, gin.H{"message": "If the email exists, a reset link has been sent"})
	}
}

// HandleResetPassword handles password reset.
func HandleResetPassword(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Token       string `json:"token" binding:"required"`
			NewPassword string `json:"new_password" binding:"required,min=8"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
			return
		}

		if err := authService.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
			if err == services.ErrInvalidToken {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired reset token"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
	}
}

// HandleChangePassword handles password change for authenticated members.
func HandleChangePassword(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		memberID := c.GetString("user_id")

		var req struct {
			CurrentPassword string `json:"current_password" binding:"required"`
			NewPassword     string `json:"new_password" binding:"required,min=8"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
			return
		}

		if err := authService.ChangePassword(c.Request.Context(), memberID, req.CurrentPassword, req.NewPassword); err != nil {
			if err == services.ErrInvalidCredentials {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Current password is incorrect"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change password"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
	}
}
