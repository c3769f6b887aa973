package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wizzchat/wizzchat/internal/config"
	"github.com/wizzchat/wizzchat/internal/domain"
)

func testConfig() config.WebSocketConfig {
	return config.WebSocketConfig{
		PingInterval:   30 * time.Second,
		PongWait:       60 * time.Second,
		WriteWait:      10 * time.Second,
		MaxMessageSize: 4096,
		SendBuffer:     8,
	}
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub(testConfig())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go h.Run(ctx)
	return h
}

func registerClient(t *testing.T, h *Hub, id string) *Client {
	t.Helper()
	before := h.ClientCount()
	c := NewClient(id, h, nil, testConfig())
	h.Register(c)
	require.Eventually(t, func() bool {
		return h.ClientCount() == before+1
	}, time.Second, 5*time.Millisecond)
	return c
}

func receive(t *testing.T, c *Client) domain.Envelope {
	t.Helper()
	select {
	case frame := <-c.Send:
		var env domain.Envelope
		require.NoError(t, json.Unmarshal(frame, &env))
		return env
	case <-time.After(time.Second):
		t.Fatalf("client %s received nothing", c.ID)
		return domain.Envelope{}
	}
}

func assertSilent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case frame := <-c.Send:
		t.Fatalf("client %s unexpectedly received %s", c.ID, frame)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBindIsIdempotent(t *testing.T) {
	h := startHub(t)
	c := registerClient(t, h, "client-1")
	room := domain.RoomForConversation("conv-1")

	h.Bind(c, room)
	h.Bind(c, room)

	assert.Equal(t, 1, h.RoomSize(room))
}

func TestEmitToRoomReachesOnlyBoundClients(t *testing.T) {
	h := startHub(t)
	inRoom := registerClient(t, h, "client-1")
	outside := registerClient(t, h, "client-2")
	room := domain.RoomForConversation("conv-1")

	h.Bind(inRoom, room)

	require.NoError(t, h.EmitToRoom(room, domain.EventWizzReceived, domain.WizzEvent{
		SenderID:       "user-2",
		ConversationID: "conv-1",
	}))

	env := receive(t, inRoom)
	assert.Equal(t, string(domain.EventWizzReceived), env.Event)

	var payload domain.WizzEvent
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.Equal(t, "user-2", payload.SenderID)

	assertSilent(t, outside)
}

func TestEmitReachesAllClients(t *testing.T) {
	h := startHub(t)
	a := registerClient(t, h, "client-1")
	b := registerClient(t, h, "client-2")

	require.NoError(t, h.Emit(domain.EventConversationList, domain.ConversationListEvent{
		ConversationID: "conv-1",
		Participants:   []string{"user-1", "user-2"},
	}))

	for _, c := range []*Client{a, b} {
		env := receive(t, c)
		assert.Equal(t, string(domain.EventConversationList), env.Event)
	}
}

func TestEmitToEmptyRoomIsNoop(t *testing.T) {
	h := startHub(t)
	c := registerClient(t, h, "client-1")

	require.NoError(t, h.EmitToRoom(domain.RoomForConversation("ghost"), domain.EventChatUpdate, nil))

	assertSilent(t, c)
}

func TestUnregisterCleansUpRoomBindings(t *testing.T) {
	h := startHub(t)
	c := registerClient(t, h, "client-1")
	room := domain.RoomForConversation("conv-1")

	h.Bind(c, room)
	require.Equal(t, 1, h.RoomSize(room))

	h.Unregister(c)
	require.Eventually(t, func() bool {
		return h.ClientCount() == 0
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, 0, h.RoomSize(room))
	assert.Equal(t, StateClosed, c.Session.State())
}

func TestSendEventAfterUnregister(t *testing.T) {
	h := startHub(t)
	c := registerClient(t, h, "client-1")

	h.Unregister(c)
	require.Eventually(t, func() bool {
		return h.ClientCount() == 0
	}, time.Second, 5*time.Millisecond)

	// The read pump may still be handling an inbound frame when the hub drops
	// the client; the reply must be dropped, not panic.
	assert.NotPanics(t, func() {
		require.NoError(t, c.SendEvent(domain.EventName(domain.ControlPong), nil))
	})
}

func TestConcurrentSendEventAndUnregister(t *testing.T) {
	h := startHub(t)

	for i := 0; i < 25; i++ {
		c := registerClient(t, h, fmt.Sprintf("client-%d", i))

		done := make(chan struct{})
		go func() {
			defer close(done)
			for j := 0; j < 100; j++ {
				c.SendEvent(domain.EventName(domain.ControlPong), nil)
			}
		}()

		h.Unregister(c)
		<-done

		require.Eventually(t, func() bool {
			return h.ClientCount() == 0
		}, time.Second, 5*time.Millisecond)
	}
}

func TestUnbindPrunesEmptyRoom(t *testing.T) {
	h := startHub(t)
	c := registerClient(t, h, "client-1")
	room := domain.RoomForConversation("conv-1")

	h.Bind(c, room)
	h.Unbind(c, room)

	assert.Equal(t, 0, h.RoomSize(room))
}
