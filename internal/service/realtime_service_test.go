package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wizzchat/wizzchat/internal/config"
	"github.com/wizzchat/wizzchat/internal/domain"
	"github.com/wizzchat/wizzchat/internal/hub"
	"github.com/wizzchat/wizzchat/pkg/jwt"
)

func newRealtimeFixture() (*fakeChatRepo, *fakeTokenValidator, *hub.Hub, RealtimeService) {
	chats := newFakeChatRepo()
	validator := &fakeTokenValidator{tokens: map[string]*jwt.Claims{
		"alice-token": {UserID: "user-1", Username: "alice"},
	}}
	h := hub.NewHub(config.WebSocketConfig{SendBuffer: 8, PingInterval: 30 * time.Second})
	return chats, validator, h, NewRealtimeService(validator, chats, h)
}

func newTestClient(h *hub.Hub, id string) *hub.Client {
	return hub.NewClient(id, h, nil, config.WebSocketConfig{SendBuffer: 8})
}

func TestHandleConnectBindsMembershipRooms(t *testing.T) {
	chats, _, h, svc := newRealtimeFixture()
	chats.addConversation("conv-1", "user-1", "user-2")
	chats.addConversation("conv-2", "user-1", "user-3")
	chats.addConversation("conv-3", "user-2", "user-3")

	client := newTestClient(h, "client-1")
	err := svc.HandleConnect(context.Background(), client, "alice-token")
	require.NoError(t, err)

	assert.Equal(t, hub.StateJoined, client.Session.State())
	assert.Equal(t, "user-1", client.Session.GetUserID())
	assert.Equal(t, 2, client.Session.RoomCount())
	assert.True(t, client.Session.InRoom(domain.RoomForConversation("conv-1")))
	assert.True(t, client.Session.InRoom(domain.RoomForConversation("conv-2")))
	assert.False(t, client.Session.InRoom(domain.RoomForConversation("conv-3")))

	assert.Equal(t, 1, h.RoomSize(domain.RoomForConversation("conv-1")))
	assert.Equal(t, 0, h.RoomSize(domain.RoomForConversation("conv-3")))
}

func TestHandleConnectMissingToken(t *testing.T) {
	_, _, h, svc := newRealtimeFixture()

	client := newTestClient(h, "client-1")
	err := svc.HandleConnect(context.Background(), client, "")
	assert.ErrorIs(t, err, ErrMissingToken)
	assert.Equal(t, 0, client.Session.RoomCount())
	assert.Equal(t, hub.StateConnecting, client.Session.State())
}

func TestHandleConnectInvalidToken(t *testing.T) {
	chats, _, h, svc := newRealtimeFixture()
	chats.addConversation("conv-1", "user-1", "user-2")

	client := newTestClient(h, "client-1")
	err := svc.HandleConnect(context.Background(), client, "forged-token")
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	assert.Equal(t, 0, client.Session.RoomCount())
	assert.Equal(t, 0, h.RoomSize(domain.RoomForConversation("conv-1")))
}

func TestHandleConnectMembershipLookupFailure(t *testing.T) {
	chats, _, h, svc := newRealtimeFixture()
	chats.listIDsErr = context.DeadlineExceeded

	client := newTestClient(h, "client-1")
	err := svc.HandleConnect(context.Background(), client, "alice-token")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, client.Session.RoomCount())
	assert.NotEqual(t, hub.StateJoined, client.Session.State())
}

func TestHandleJoinConversationRequiresAuthentication(t *testing.T) {
	_, _, h, svc := newRealtimeFixture()

	client := newTestClient(h, "client-1")
	err := svc.HandleJoinConversation(context.Background(), client, "conv-1")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestHandleJoinConversationRejectsNonParticipant(t *testing.T) {
	chats, _, h, svc := newRealtimeFixture()
	chats.addConversation("conv-1", "user-2", "user-3")

	client := newTestClient(h, "client-1")
	require.NoError(t, svc.HandleConnect(context.Background(), client, "alice-token"))

	err := svc.HandleJoinConversation(context.Background(), client, "conv-1")
	assert.ErrorIs(t, err, ErrNotParticipant)
	assert.Equal(t, 0, h.RoomSize(domain.RoomForConversation("conv-1")))
}

func TestHandleJoinConversationBindsNewRoom(t *testing.T) {
	chats, _, h, svc := newRealtimeFixture()

	client := newTestClient(h, "client-1")
	require.NoError(t, svc.HandleConnect(context.Background(), client, "alice-token"))
	require.Equal(t, 0, client.Session.RoomCount())

	// Conversation created after the client connected.
	chats.addConversation("conv-1", "user-1", "user-2")

	err := svc.HandleJoinConversation(context.Background(), client, "conv-1")
	require.NoError(t, err)

	room := domain.RoomForConversation("conv-1")
	assert.True(t, client.Session.InRoom(room))
	assert.Equal(t, 1, h.RoomSize(room))
}

func TestReconnectRecomputesBindings(t *testing.T) {
	chats, _, h, svc := newRealtimeFixture()
	chats.addConversation("conv-1", "user-1", "user-2")

	first := newTestClient(h, "client-1")
	require.NoError(t, svc.HandleConnect(context.Background(), first, "alice-token"))
	require.Equal(t, 1, first.Session.RoomCount())

	svc.HandleDisconnect(context.Background(), first)
	assert.Equal(t, hub.StateClosed, first.Session.State())

	// Membership grows between sessions; the new connection sees it all.
	chats.addConversation("conv-2", "user-1", "user-3")

	second := newTestClient(h, "client-2")
	require.NoError(t, svc.HandleConnect(context.Background(), second, "alice-token"))
	assert.Equal(t, 2, second.Session.RoomCount())
	assert.True(t, second.Session.InRoom(domain.RoomForConversation("conv-2")))
}
