package websocket

import (
	"encoding/json"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub() *Hub {
	return NewHub(nil, log.New(logDiscard{}, "", 0))
}

type logDiscard struct{}

func (logDiscard) Write(p []byte) (int, error) { return len(p), nil }

func newTestClient(userID string, tournaments ...string) *Client {
	return &Client{
		send:        make(chan []byte, 4),
		userID:      userID,
		tournaments: tournaments,
	}
}

func TestHub_RegisterClient_TracksByUserAndTournament(t *testing.T) {
	h := newTestHub()
	c := newTestClient("u1", "t1", "t2")

	h.registerClient(c)

	assert.Same(t, c, h.users["u1"])
	assert.True(t, h.tournaments["t1"][c])
	assert.True(t, h.tournaments["t2"][c])
}

func TestHub_RegisterClient_ClosesPriorConnectionForSameUser(t *testing.T) {
	h := newTestHub()
	old := newTestClient("u1", "t1")
	h.registerClient(old)

	next := newTestClient("u1", "t1")
	h.registerClient(next)

	_, open := <-old.send
	assert.False(t, open, "old client's send channel should be closed")
	assert.Same(t, next, h.users["u1"])
}

func TestHub_UnregisterClient_RemovesFromAllMaps(t *testing.T) {
	h := newTestHub()
	c := newTestClient("u1", "t1")
	h.registerClient(c)

	h.unregisterClient(c)

	_, exists := h.users["u1"]
	assert.False(t, exists)
	_, exists = h.tournaments["t1"]
	assert.False(t, exists)
}

func TestHub_SubscribeAndUnsubscribeFromTournament(t *testing.T) {
	h := newTestHub()
	c := newTestClient("u1")

	h.SubscribeToTournament(c, "t1")
	assert.True(t, h.tournaments["t1"][c])
	assert.Contains(t, c.tournaments, "t1")

	h.UnsubscribeFromTournament(c, "t1")
	_, exists := h.tournaments["t1"]
	assert.False(t, exists)
	assert.NotContains(t, c.tournaments, "t1")
}

func TestHub_BroadcastMessage_DeliversOnlyToTournamentSubscribers(t *testing.T) {
	h := newTestHub()
	subscribed := newTestClient("u1", "t1")
	other := newTestClient("u2", "t2")
	h.registerClient(subscribed)
	h.registerClient(other)

	h.broadcastMessage(&Message{Type: "tournament:updated", TournamentID: "t1", Data: map[string]string{"a": "b"}})

	select {
	case data := <-subscribed.send:
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, "tournament:updated", msg.Type)
	default:
		t.Fatal("subscribed client should have received the message")
	}

	select {
	case <-other.send:
		t.Fatal("unrelated client should not have received the message")
	default:
	}
}

func TestHub_BroadcastMessage_AllFlagReachesEveryClientOnce(t *testing.T) {
	h := newTestHub()
	c1 := newTestClient("u1", "t1")
	c2 := newTestClient("u2")
	h.registerClient(c1)
	h.registerClient(c2)

	h.broadcastMessage(&Message{Type: "player:created", Data: map[string]string{"id": "m1"}, all: true})

	for _, c := range []*Client{c1, c2} {
		select {
		case <-c.send:
			assert.Len(t, c.send, 0, "client should receive the global broadcast only once")
		default:
			t.Fatalf("client should have received the global broadcast")
		}
	}
}

func TestHub_BroadcastHelpers_NilHubIsNoOp(t *testing.T) {
	var h *Hub
	assert.NotPanics(t, func() {
		h.BroadcastMatchUpdated("t1", nil)
		h.BroadcastTournamentUpdated("t1", nil)
		h.BroadcastCacheInvalidate("t1")
	})
}
