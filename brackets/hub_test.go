package brackets

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerClient(t *testing.T, hub *Hub, room string) *Client {
	t.Helper()
	client := &Client{Hub: hub, Send: make(chan []byte, 4), Room: room}
	hub.Register <- client
	require.Eventually(t, func() bool { return hub.ClientCount(room) > 0 }, time.Second, 5*time.Millisecond)
	return client
}

func TestHub_PublishReachesTournamentRoomOnly(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Stop()

	watched := uuid.New()
	client := registerClient(t, hub, TournamentRoom(watched))
	bystander := registerClient(t, hub, TournamentRoom(uuid.New()))

	hub.Publish(watched, EventRoundOrganized, map[string]int{"round": 2})

	select {
	case raw := <-client.Send:
		var msg struct {
			Type    string         `json:"type"`
			Payload map[string]int `json:"payload"`
			RoomID  string         `json:"room_id"`
		}
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, EventRoundOrganized, msg.Type)
		assert.Equal(t, 2, msg.Payload["round"])
		assert.Equal(t, TournamentRoom(watched), msg.RoomID)
	case <-time.After(time.Second):
		t.Fatal("message was not delivered")
	}

	assert.Empty(t, bystander.Send)
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Stop()

	room := TournamentRoom(uuid.New())
	client := registerClient(t, hub, room)

	hub.Unregister <- client
	require.Eventually(t, func() bool { return hub.ClientCount(room) == 0 }, time.Second, 5*time.Millisecond)

	_, open := <-client.Send
	assert.False(t, open)

	// Публикация в пустую комнату не должна паниковать.
	hub.BroadcastToRoom(room, WebSocketMessage{Type: EventGameResolved})
}

func TestHub_StopClosesAllClients(t *testing.T) {
	hub := NewHub(nil)
	done := make(chan struct{})
	go func() {
		hub.Run()
		close(done)
	}()

	client := registerClient(t, hub, TournamentRoom(uuid.New()))
	hub.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}
	_, open := <-client.Send
	assert.False(t, open)
}

func TestHub_FullBufferDropsMessage(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Stop()

	tournamentID := uuid.New()
	client := registerClient(t, hub, TournamentRoom(tournamentID))

	for i := 0; i < cap(client.Send)+3; i++ {
		hub.Publish(tournamentID, EventGameCreated, i)
	}

	assert.Len(t, client.Send, cap(client.Send))
}
