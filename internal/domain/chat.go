package domain

import (
	"time"
)

// ReactionUser is the user shape embedded in a reaction.
type ReactionUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// ReactionView is a single emoji reaction on a message.
type ReactionView struct {
	ID    string       `json:"id"`
	Emoji string       `json:"emoji"`
	User  ReactionUser `json:"user"`
}

// MessageView is the message shape returned by the API and carried in broadcasts.
type MessageView struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	Sender    UserSummary    `json:"sender"`
	Reactions []ReactionView `json:"reactions"`
}

// ConversationSummary is a conversation list entry: participants plus the
// latest message only.
type ConversationSummary struct {
	ID           string        `json:"id"`
	UpdatedAt    time.Time     `json:"updatedAt"`
	Participants []UserSummary `json:"participants"`
	Messages     []MessageView `json:"messages"`
}

// ConversationDetail is a full conversation with its ordered message history.
type ConversationDetail struct {
	ID           string        `json:"id"`
	UpdatedAt    time.Time     `json:"updatedAt"`
	Participants []UserSummary `json:"participants"`
	Messages     []MessageView `json:"messages"`
}

// CreateConversationRequest starts a one-to-one conversation.
type CreateConversationRequest struct {
	RecipientID string `json:"recipientId" binding:"required"`
}

// CreateConversationResponse is returned after a conversation is created.
type CreateConversationResponse struct {
	ConversationID string `json:"conversationId"`
}

// SendMessageRequest posts a message into a conversation.
type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// ReactionRequest adds or removes an emoji reaction on a message.
type ReactionRequest struct {
	Emoji string `json:"emoji" binding:"required"`
}
