package service

import (
	"context"
	"time"

	"github.com/wizzchat/wizzchat/internal/domain"
	"github.com/wizzchat/wizzchat/internal/repository"
	"github.com/wizzchat/wizzchat/pkg/log"
)

type chatService struct {
	chats       repository.ChatRepository
	users       repository.UserRepository
	broadcaster Broadcaster
}

// NewChatService creates the chat service.
func NewChatService(chats repository.ChatRepository, users repository.UserRepository, broadcaster Broadcaster) ChatService {
	return &chatService{
		chats:       chats,
		users:       users,
		broadcaster: broadcaster,
	}
}

// CreateConversation starts a one-to-one conversation and notifies connected
// clients. The notice goes to every session because the new room has no
// bindings yet; it carries participant ids only.
func (s *chatService) CreateConversation(ctx context.Context, userID, recipientID string) (string, error) {
	l := log.Ctx(ctx)

	if _, err := s.users.GetByID(ctx, recipientID); err != nil {
		return "", err
	}

	conversationID, err := s.chats.CreateConversation(ctx, []string{userID, recipientID})
	if err != nil {
		return "", err
	}

	l.Info().Str(log.FieldConversationID, conversationID).Msg("conversation created")

	if err := s.broadcaster.Emit(domain.EventConversationList, domain.ConversationListEvent{
		ConversationID: conversationID,
		Participants:   []string{userID, recipientID},
	}); err != nil {
		l.Warn().Err(err).Str(log.FieldConversationID, conversationID).Msg("conversation-list broadcast failed")
	}

	return conversationID, nil
}

func (s *chatService) ListConversations(ctx context.Context, userID string) ([]domain.ConversationSummary, error) {
	return s.chats.ListConversations(ctx, userID)
}

func (s *chatService) GetConversation(ctx context.Context, userID, conversationID string) (*domain.ConversationDetail, error) {
	if err := s.requireParticipant(ctx, conversationID, userID); err != nil {
		return nil, err
	}
	return s.chats.GetConversation(ctx, conversationID)
}

// SendMessage persists the message and pushes the conversation's updated
// message list to the conversation room. A write can succeed and the push be
// missed by offline peers; their own refetch recovers the state.
func (s *chatService) SendMessage(ctx context.Context, userID, conversationID, content string) error {
	l := log.Ctx(ctx)

	if err := s.requireParticipant(ctx, conversationID, userID); err != nil {
		return err
	}

	messageID, err := s.chats.CreateMessage(ctx, conversationID, userID, content)
	if err != nil {
		return err
	}

	messages, err := s.chats.ListMessages(ctx, conversationID)
	if err != nil {
		l.Error().Err(err).Str(log.FieldConversationID, conversationID).Msg("failed to load messages for broadcast")
		return err
	}

	l.Info().
		Str(log.FieldConversationID, conversationID).
		Str(log.FieldMessageID, messageID).
		Msg("message sent")

	room := domain.RoomForConversation(conversationID)
	if err := s.broadcaster.EmitToRoom(room, domain.EventChatUpdate, messages); err != nil {
		l.Warn().Err(err).Str(log.FieldRoom, room.String()).Msg("chat-update broadcast failed")
	}

	return nil
}

func (s *chatService) AddReaction(ctx context.Context, userID, messageID, emoji string) error {
	conversationID, err := s.chats.GetMessageConversation(ctx, messageID)
	if err != nil {
		return err
	}
	if err := s.requireParticipant(ctx, conversationID, userID); err != nil {
		return err
	}

	if err := s.chats.AddReaction(ctx, messageID, userID, emoji); err != nil {
		return err
	}

	return s.broadcastReaction(ctx, conversationID, messageID)
}

func (s *chatService) RemoveReaction(ctx context.Context, userID, messageID, emoji string) error {
	conversationID, err := s.chats.GetMessageConversation(ctx, messageID)
	if err != nil {
		return err
	}
	if err := s.requireParticipant(ctx, conversationID, userID); err != nil {
		return err
	}

	if err := s.chats.RemoveReaction(ctx, messageID, userID, emoji); err != nil {
		return err
	}

	return s.broadcastReaction(ctx, conversationID, messageID)
}

// SendWizz pushes an attention ping to the conversation room. Nothing is
// persisted; a wizz missed is a wizz lost.
func (s *chatService) SendWizz(ctx context.Context, userID, conversationID string) error {
	l := log.Ctx(ctx)

	if err := s.requireParticipant(ctx, conversationID, userID); err != nil {
		return err
	}

	sender, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	room := domain.RoomForConversation(conversationID)
	if err := s.broadcaster.EmitToRoom(room, domain.EventWizzReceived, domain.WizzEvent{
		SenderID:       sender.ID,
		SenderUsername: sender.Username,
		ConversationID: conversationID,
		Timestamp:      time.Now().UTC(),
	}); err != nil {
		l.Warn().Err(err).Str(log.FieldRoom, room.String()).Msg("wizz broadcast failed")
		return err
	}

	l.Info().
		Str(log.FieldUserID, userID).
		Str(log.FieldConversationID, conversationID).
		Msg("wizz sent")
	return nil
}

func (s *chatService) broadcastReaction(ctx context.Context, conversationID, messageID string) error {
	l := log.Ctx(ctx)

	updated, err := s.chats.GetMessage(ctx, messageID)
	if err != nil {
		l.Error().Err(err).Str(log.FieldMessageID, messageID).Msg("failed to load message for broadcast")
		return err
	}

	room := domain.RoomForConversation(conversationID)
	if err := s.broadcaster.EmitToRoom(room, domain.EventReactionUpdate, domain.ReactionUpdateEvent{
		MessageID: messageID,
		Message:   *updated,
	}); err != nil {
		l.Warn().Err(err).Str(log.FieldRoom, room.String()).Msg("reaction-update broadcast failed")
	}

	return nil
}

func (s *chatService) requireParticipant(ctx context.Context, conversationID, userID string) error {
	ok, err := s.chats.IsParticipant(ctx, conversationID, userID)
	if err != nil {
		return err
	}
	if !ok {
		// Distinguish a missing conversation from a membership failure.
		if _, err := s.chats.GetConversation(ctx, conversationID); err != nil {
			return err
		}
		return ErrNotParticipant
	}
	return nil
}
