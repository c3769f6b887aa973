package service

import (
	"context"
	"errors"

	"github.com/wizzchat/wizzchat/internal/domain"
	"github.com/wizzchat/wizzchat/internal/hub"
	"github.com/wizzchat/wizzchat/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotParticipant     = errors.New("user is not a participant of this conversation")
	ErrNotAuthenticated   = errors.New("session is not authenticated")
	ErrMissingToken       = errors.New("missing token")
)

// Broadcaster is the fan-out capability. Delivery is fire-and-forget; a
// recipient that is offline at emit time never receives the event, and the
// client's own REST fetch is the recovery path.
type Broadcaster interface {
	Emit(event domain.EventName, payload interface{}) error
	EmitToRoom(room domain.RoomID, event domain.EventName, payload interface{}) error
}

// RoomBinder binds connections to rooms in the transport registry.
type RoomBinder interface {
	Bind(client *hub.Client, room domain.RoomID)
	Unbind(client *hub.Client, room domain.RoomID)
}

// TokenValidator resolves a bearer token to claims. Satisfied by *jwt.Manager.
type TokenValidator interface {
	Validate(token string) (*jwt.Claims, error)
}

// AuthService handles accounts and credentials.
type AuthService interface {
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthResponse, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error)
	Logout(ctx context.Context, userID string) error
	Profile(ctx context.Context, userID string) (*domain.UserResponse, error)
	UpdateProfile(ctx context.Context, userID string, req *domain.UpdateProfileRequest) (*domain.UserResponse, error)
	ListUsers(ctx context.Context) ([]domain.UserResponse, error)
}

// ChatService handles conversations, messages, reactions, and wizzes. Every
// successful write is followed by a broadcast to the relevant room.
type ChatService interface {
	CreateConversation(ctx context.Context, userID, recipientID string) (string, error)
	ListConversations(ctx context.Context, userID string) ([]domain.ConversationSummary, error)
	GetConversation(ctx context.Context, userID, conversationID string) (*domain.ConversationDetail, error)
	SendMessage(ctx context.Context, userID, conversationID, content string) error
	AddReaction(ctx context.Context, userID, messageID, emoji string) error
	RemoveReaction(ctx context.Context, userID, messageID, emoji string) error
	SendWizz(ctx context.Context, userID, conversationID string) error
}

// RealtimeService governs the websocket session lifecycle: authentication at
// connect time, membership resolution, and room binding.
type RealtimeService interface {
	HandleConnect(ctx context.Context, c *hub.Client, token string) error
	HandleJoinConversation(ctx context.Context, c *hub.Client, conversationID string) error
	HandleDisconnect(ctx context.Context, c *hub.Client)
}
