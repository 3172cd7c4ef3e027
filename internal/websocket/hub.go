// internal/websocket/hub.go
// WebSocket hub manages client connections and message broadcasting

package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"tournament-planner/internal/services"
)

// Hub maintains active websocket connections and broadcasts messages
type Hub struct {
	// Registered clients by tournament ID
	tournaments map[string]map[*Client]bool

	// Registered clients by user ID
	users map[string]*Client

	// Register client
	register chan *Client

	// Unregister client
	unregister chan *Client

	// Broadcast messages to tournament
	broadcast chan *Message

	// Services
	services *services.Container
	logger   *log.Logger

	// Mutex for concurrent access
	mu sync.RWMutex
}

// Message represents a WebSocket message
type Message struct {
	Type         string      `json:"type"`
	TournamentID string      `json:"tournament_id,omitempty"`
	UserID       string      `json:"user_id,omitempty"`
	Data         interface{} `json:"data"`

	// all marks a message for delivery to every connected client,
	// regardless of tournament subscription — used for platform-wide
	// events such as player:* and players:imported. Unexported so it
	// never leaks into the marshaled payload.
	all bool
}

// NewHub creates a new WebSocket hub
func NewHub(services *services.Container, logger *log.Logger) *Hub {
	return &Hub{
		tournaments: make(map[string]map[*Client]bool),
		users:       make(map[string]*Client),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcast:   make(chan *Message, 256),
		services:    services,
		logger:      logger,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// registerClient adds a new client to the hub
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Register user connection
	if client.userID != "" {
		// Close existing connection for this user
		if existing, exists := h.users[client.userID]; exists {
			existing.close()
			h.removeClient(existing)
		}
		h.users[client.userID] = client
	}

	// Register tournament connections
	for _, tournamentID := range client.tournaments {
		if h.tournaments[tournamentID] == nil {
			h.tournaments[tournamentID] = make(map[*Client]bool)
		}
		h.tournaments[tournamentID][client] = true
	}

	h.logger.Printf("Client registered: %s (tournaments: %v)", client.userID, client.tournaments)
}

// unregisterClient removes a client from the hub
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeClient(client)
	client.close()

	h.logger.Printf("Client unregistered: %s", client.userID)
}

// removeClient removes client from all registrations
func (h *Hub) removeClient(client *Client) {
	// Remove from user map
	if client.userID != "" {
		delete(h.users, client.userID)
	}

	// Remove from tournament maps
	for _, tournamentID := range client.tournaments {
		if clients, exists := h.tournaments[tournamentID]; exists {
			delete(clients, client)
			if len(clients) == 0 {
				delete(h.tournaments, tournamentID)
			}
		}
	}
}

// broadcastMessage sends a message to relevant clients
func (h *Hub) broadcastMessage(message *Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Printf("Failed to marshal message: %v", err)
		return
	}

	// Platform-wide event: every connected client, tournament room or not.
	if message.all {
		seen := make(map[*Client]bool)
		for _, clients := range h.tournaments {
			for client := range clients {
				if seen[client] {
					continue
				}
				seen[client] = true
				h.deliver(client, data)
			}
		}
		for _, client := range h.users {
			if seen[client] {
				continue
			}
			seen[client] = true
			h.deliver(client, data)
		}
		return
	}

	// Broadcast to tournament participants
	if message.TournamentID != "" {
		if clients, exists := h.tournaments[message.TournamentID]; exists {
			for client := range clients {
				select {
				case client.send <- data:
				default:
					// Client's send channel is full, close it
					h.removeClient(client)
					client.close()
				}
			}
		}
	}

	// Send to specific user
	if message.UserID != "" {
		if client, exists := h.users[message.UserID]; exists {
			select {
			case client.send <- data:
			default:
				// Client's send channel is full, close it
				h.removeClient(client)
				client.close()
			}
		}
	}
}

// deliver sends marshaled data to a client, dropping it and closing the
// connection if its send buffer is full. Caller must hold h.mu.
func (h *Hub) deliver(client *Client, data []byte) {
	select {
	case client.send <- data:
	default:
		h.removeClient(client)
		client.close()
	}
}

// BroadcastTournamentUpdate broadcasts an update to all tournament participants
func (h *Hub) BroadcastTournamentUpdate(tournamentID string, updateType string, data interface{}) {
	message := &Message{
		Type:         updateType,
		TournamentID: tournamentID,
		Data:         data,
	}
	h.broadcast <- message
}

// SendToUser sends a message to a specific user
func (h *Hub) SendToUser(userID string, messageType string, data interface{}) {
	message := &Message{
		Type:   messageType,
		UserID: userID,
		Data:   data,
	}
	h.broadcast <- message
}

// SubscribeToTournament subscribes a client to tournament updates
func (h *Hub) SubscribeToTournament(client *Client, tournamentID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Add tournament to client's list
	client.tournaments = append(client.tournaments, tournamentID)

	// Add client to tournament's subscriber list
	if h.tournaments[tournamentID] == nil {
		h.tournaments[tournamentID] = make(map[*Client]bool)
	}
	h.tournaments[tournamentID][client] = true

	h.logger.Printf("Client %s subscribed to tournament %s", client.userID, tournamentID)
}

// UnsubscribeFromTournament unsubscribes a client from tournament updates
func (h *Hub) UnsubscribeFromTournament(client *Client, tournamentID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Remove tournament from client's list
	for i, id := range client.tournaments {
		if id == tournamentID {
			client.tournaments = append(client.tournaments[:i], client.tournaments[i+1:]...)
			break
		}
	}

	// Remove client from tournament's subscriber list
	if clients, exists := h.tournaments[tournamentID]; exists {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.tournaments, tournamentID)
		}
	}

	h.logger.Printf("Client %s unsubscribed from tournament %s", client.userID, tournamentID)
}

// BroadcastMatchUpdated publishes match:updated to a tournament's
// subscribers once a match result is recorded. A nil hub is a no-op,
// so callers don't need to branch on whether websockets are enabled.
func (h *Hub) BroadcastMatchUpdated(tournamentID string, data interface{}) {
	if h == nil {
		return
	}
	h.BroadcastTournamentUpdate(tournamentID, EventMatchUpdated, data)
}

// BroadcastTournamentUpdated publishes tournament:updated to a tournament's
// subscribers after any lifecycle or state change.
func (h *Hub) BroadcastTournamentUpdated(tournamentID string, data interface{}) {
	if h == nil {
		return
	}
	h.BroadcastTournamentUpdate(tournamentID, EventTournamentUpdated, data)
}

// BroadcastCacheInvalidate publishes cache:invalidate with the
// {tournamentId?, timestamp} payload. An empty tournamentID broadcasts the
// invalidation to every connected client.
func (h *Hub) BroadcastCacheInvalidate(tournamentID string) {
	if h == nil {
		return
	}
	payload := map[string]interface{}{"timestamp": time.Now().Unix()}
	if tournamentID == "" {
		h.broadcast <- &Message{Type: EventCacheInvalidate, Data: payload, all: true}
		return
	}
	payload["tournamentId"] = tournamentID
	h.broadcast <- &Message{Type: EventCacheInvalidate, TournamentID: tournamentID, Data: payload}
}

// BroadcastGlobal publishes an event to every connected client,
// regardless of tournament subscription — player:created|updated|deleted,
// players:imported, and standalone match:updated events with no owning
// tournament to scope them to.
func (h *Hub) BroadcastGlobal(eventType string, data interface{}) {
	if h == nil {
		return
	}
	h.broadcast <- &Message{Type: eventType, Data: data, all: true}
}
