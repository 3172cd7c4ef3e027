// internal/websocket/handlers.go
// WebSocket connection handlers

package websocket

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// In production, implement proper origin checking
		return true
	},
}

// HandleConnection handles new WebSocket connections
func HandleConnection(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get user ID from context (set by auth middleware)
		userID, _ := c.Get("user_id")
		userIDStr := ""
		if userID != nil {
			userIDStr = userID.(string)
		}

		// Upgrade HTTP connection to WebSocket
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("Failed to upgrade connection: %v", err)
			return
		}

		// Create new client
		client := &Client{
			hub:         hub,
			conn:        conn,
			send:        make(chan []byte, 256),
			userID:      userIDStr,
			tournaments: make([]string, 0),
		}

		// Register client with hub
		hub.register <- client

		// Send welcome message
		welcomeMsg := Message{
			Type: "welcome",
			Data: map[string]interface{}{
				"message": "Connected to Tournament Planner WebSocket",
				"user_id": userIDStr,
			},
		}

		if data, err := json.Marshal(welcomeMsg); err == nil {
			client.send <- data
		}

		// Start client pumps in goroutines
		go client.writePump()
		go client.readPump()
	}
}

// Event types for WebSocket communication — the real-time event
// vocabulary. A match or tournament change publishes one of these; the
// cache:invalidate payload is {tournamentId?, timestamp}.
const (
	EventMatchUpdated      = "match:updated"
	EventTournamentUpdated = "tournament:updated"
	EventCacheInvalidate   = "cache:invalidate"
	EventPlayerCreated     = "player:created"
	EventPlayerUpdated     = "player:updated"
	EventPlayerDeleted     = "player:deleted"
	EventPlayersImported   = "players:imported"
)
