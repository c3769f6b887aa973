package repository

import (
	"context"
	"errors"

	"github.com/wizzchat/wizzchat/internal/domain"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailExists          = errors.New("email already exists")
	ErrUsernameExists       = errors.New("username already exists")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrMessageNotFound      = errors.New("message not found")
	ErrReactionExists       = errors.New("reaction already exists")
	ErrReactionNotFound     = errors.New("reaction not found")
)

// UserRepository defines the interface for user persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	SetOnline(ctx context.Context, id string, online bool) error
}

// ChatRepository defines the interface for conversation, message, and
// reaction persistence.
type ChatRepository interface {
	CreateConversation(ctx context.Context, participantIDs []string) (string, error)
	GetConversation(ctx context.Context, id string) (*domain.ConversationDetail, error)
	ListConversations(ctx context.Context, userID string) ([]domain.ConversationSummary, error)

	// ListConversationIDs returns ids only; connection-time membership
	// resolution must not front-load message history.
	ListConversationIDs(ctx context.Context, userID string) ([]string, error)
	IsParticipant(ctx context.Context, conversationID, userID string) (bool, error)

	CreateMessage(ctx context.Context, conversationID, senderID, content string) (string, error)
	ListMessages(ctx context.Context, conversationID string) ([]domain.MessageView, error)
	GetMessage(ctx context.Context, messageID string) (*domain.MessageView, error)
	GetMessageConversation(ctx context.Context, messageID string) (string, error)

	AddReaction(ctx context.Context, messageID, userID, emoji string) error
	RemoveReaction(ctx context.Context, messageID, userID, emoji string) error
}
