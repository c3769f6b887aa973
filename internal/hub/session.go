package hub

import (
	"sync"
	"time"

	"github.com/wizzchat/wizzchat/internal/domain"
)

// SessionState tracks the connection lifecycle.
type SessionState int

const (
	StateConnecting SessionState = iota
	StateAuthenticated
	StateJoined
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthenticated:
		return "authenticated"
	case StateJoined:
		return "joined"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Session is the per-connection state: identity once authenticated, and the
// set of rooms the connection is bound to. It lives and dies with the
// connection; nothing is persisted on disconnect.
type Session struct {
	ID           string
	UserID       string
	Username     string
	CreatedAt    time.Time
	LastActiveAt time.Time

	state SessionState
	rooms map[domain.RoomID]struct{}
	mu    sync.RWMutex
}

func NewSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		CreatedAt:    now,
		LastActiveAt: now,
		state:        StateConnecting,
		rooms:        make(map[domain.RoomID]struct{}),
	}
}

// Authenticate records the resolved identity and advances the session.
func (s *Session) Authenticate(userID, username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UserID = userID
	s.Username = username
	s.state = StateAuthenticated
	s.LastActiveAt = time.Now()
}

// MarkJoined advances the session once membership binding is done, even if
// only a subset of rooms was bound.
func (s *Session) MarkJoined() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateAuthenticated {
		s.state = StateJoined
	}
}

// Close marks the session terminal.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateClosed
}

func (s *Session) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// GetUserID returns the authenticated user id, empty until Authenticate.
func (s *Session) GetUserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.UserID
}

// GetUsername returns the authenticated username, empty until Authenticate.
func (s *Session) GetUsername() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Username
}

func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == StateAuthenticated || s.state == StateJoined
}

// JoinRoom adds a room to the session's set. Returns false if the room was
// already present.
func (s *Session) JoinRoom(room domain.RoomID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[room]; ok {
		return false
	}
	s.rooms[room] = struct{}{}
	s.LastActiveAt = time.Now()
	return true
}

// LeaveRoom removes a room from the session's set.
func (s *Session) LeaveRoom(room domain.RoomID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, room)
}

// InRoom reports whether the session is bound to the room.
func (s *Session) InRoom(room domain.RoomID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[room]
	return ok
}

// Rooms returns a snapshot of the session's room set.
func (s *Session) Rooms() []domain.RoomID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rooms := make([]domain.RoomID, 0, len(s.rooms))
	for r := range s.rooms {
		rooms = append(rooms, r)
	}
	return rooms
}

// RoomCount returns the number of rooms the session is bound to.
func (s *Session) RoomCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// UpdateActivity refreshes the session's last-active timestamp.
func (s *Session) UpdateActivity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastActiveAt = time.Now()
}
