package hub

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wizzchat/wizzchat/internal/domain"
)

func TestSessionLifecycle(t *testing.T) {
	s := NewSession("client-1")
	assert.Equal(t, StateConnecting, s.State())
	assert.False(t, s.IsAuthenticated())

	s.Authenticate("user-1", "alice")
	assert.Equal(t, StateAuthenticated, s.State())
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "user-1", s.GetUserID())
	assert.Equal(t, "alice", s.GetUsername())

	s.MarkJoined()
	assert.Equal(t, StateJoined, s.State())
	assert.True(t, s.IsAuthenticated())

	s.Close()
	assert.Equal(t, StateClosed, s.State())
	assert.False(t, s.IsAuthenticated())
}

func TestSessionMarkJoinedRequiresAuthentication(t *testing.T) {
	s := NewSession("client-1")

	s.MarkJoined()
	assert.Equal(t, StateConnecting, s.State())
}

func TestSessionRooms(t *testing.T) {
	s := NewSession("client-1")
	room := domain.RoomForConversation("conv-1")

	assert.True(t, s.JoinRoom(room))
	assert.False(t, s.JoinRoom(room), "joining the same room twice")
	assert.Equal(t, 1, s.RoomCount())
	assert.True(t, s.InRoom(room))

	s.LeaveRoom(room)
	assert.False(t, s.InRoom(room))
	assert.Equal(t, 0, s.RoomCount())
}
