package domain

import (
	"encoding/json"
	"time"
)

// RoomID is the typed identifier for a broadcast scope. Rooms are derived from
// conversation ids, never built ad hoc from raw strings.
type RoomID string

// RoomForConversation returns the room bound to a conversation.
func RoomForConversation(conversationID string) RoomID {
	return RoomID("conversation:" + conversationID)
}

func (r RoomID) String() string {
	return string(r)
}

// EventName names a server-to-client broadcast event.
type EventName string

const (
	EventChatUpdate       EventName = "send-chat-update"
	EventReactionUpdate   EventName = "reaction-update"
	EventConversationList EventName = "conversation-list-update"
	EventWizzReceived     EventName = "wizz-received"
)

// Envelope is the wire frame for every websocket message, in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Client -> server control events.
const (
	ControlJoinConversation = "join-conversation"
	ControlPing             = "ping"
	ControlPong             = "pong"
)

// JoinConversationPayload explicitly (re-)binds the connection to a
// conversation room.
type JoinConversationPayload struct {
	ConversationID string `json:"conversationId"`
}

// ReactionUpdateEvent is the payload of reaction-update.
type ReactionUpdateEvent struct {
	MessageID string      `json:"messageId"`
	Message   MessageView `json:"message"`
}

// ConversationListEvent is the payload of conversation-list-update. It carries
// participant ids only; clients filter by own membership and re-fetch.
type ConversationListEvent struct {
	ConversationID string   `json:"conversationId"`
	Participants   []string `json:"participants"`
}

// WizzEvent is the payload of wizz-received.
type WizzEvent struct {
	SenderID       string    `json:"senderId"`
	SenderUsername string    `json:"senderUsername"`
	ConversationID string    `json:"conversationId"`
	Timestamp      time.Time `json:"timestamp"`
}
