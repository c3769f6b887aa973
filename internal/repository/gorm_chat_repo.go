package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wizzchat/wizzchat/internal/domain"
)

// GormChatRepository implements ChatRepository using GORM.
type GormChatRepository struct {
	db *gorm.DB
}

// NewGormChatRepository creates a new GORM-based chat repository.
func NewGormChatRepository(db *gorm.DB) *GormChatRepository {
	return &GormChatRepository{db: db}
}

// CreateConversation creates a conversation with the given participants.
// Participants must already exist; only join rows are written for them.
func (r *GormChatRepository) CreateConversation(ctx context.Context, participantIDs []string) (string, error) {
	var users []domain.UserModel
	if err := r.db.WithContext(ctx).Find(&users, "id IN ?", participantIDs).Error; err != nil {
		return "", err
	}
	if len(users) != len(participantIDs) {
		return "", ErrUserNotFound
	}

	conv := domain.ConversationModel{
		ID:           uuid.New().String(),
		Participants: users,
	}
	if err := r.db.WithContext(ctx).Omit("Participants.*").Create(&conv).Error; err != nil {
		return "", err
	}

	return conv.ID, nil
}

// GetConversation returns a conversation with participants and its full
// ordered message history.
func (r *GormChatRepository) GetConversation(ctx context.Context, id string) (*domain.ConversationDetail, error) {
	var model domain.ConversationModel
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("messages.created_at asc")
		}).
		Preload("Messages.Sender").
		Preload("Messages.Reactions").
		Preload("Messages.Reactions.User").
		First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}

	return model.ToDetail(), nil
}

// ListConversations returns the user's conversations, most recently updated
// first, each with participants and its latest message.
func (r *GormChatRepository) ListConversations(ctx context.Context, userID string) ([]domain.ConversationSummary, error) {
	var models []domain.ConversationModel
	err := r.db.WithContext(ctx).
		Joins("JOIN conversation_participants cp ON cp.conversation_id = conversations.id").
		Where("cp.user_id = ?", userID).
		Order("conversations.updated_at desc").
		Preload("Participants").
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("messages.created_at desc")
		}).
		Preload("Messages.Sender").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.ConversationSummary, 0, len(models))
	for i := range models {
		detail := models[i].ToDetail()
		// Latest message only in the list view.
		if len(detail.Messages) > 1 {
			detail.Messages = detail.Messages[:1]
		}
		summaries = append(summaries, domain.ConversationSummary{
			ID:           detail.ID,
			UpdatedAt:    detail.UpdatedAt,
			Participants: detail.Participants,
			Messages:     detail.Messages,
		})
	}
	return summaries, nil
}

// ListConversationIDs returns the ids of all conversations the user
// participates in.
func (r *GormChatRepository) ListConversationIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Table("conversation_participants").
		Where("user_id = ?", userID).
		Pluck("conversation_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// IsParticipant reports whether the user participates in the conversation.
func (r *GormChatRepository) IsParticipant(ctx context.Context, conversationID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("conversation_participants").
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateMessage appends a message to a conversation and touches the
// conversation's updated_at so list ordering follows activity.
func (r *GormChatRepository) CreateMessage(ctx context.Context, conversationID, senderID, content string) (string, error) {
	msg := domain.MessageModel{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var conv domain.ConversationModel
		if err := tx.First(&conv, "id = ?", conversationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrConversationNotFound
			}
			return err
		}

		if err := tx.Omit("Sender", "Reactions").Create(&msg).Error; err != nil {
			return err
		}

		return tx.Model(&domain.ConversationModel{}).
			Where("id = ?", conversationID).
			Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return "", err
	}

	return msg.ID, nil
}

// ListMessages returns a conversation's messages in insertion order, with
// senders and reactions.
func (r *GormChatRepository) ListMessages(ctx context.Context, conversationID string) ([]domain.MessageView, error) {
	var models []domain.MessageModel
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at asc").
		Preload("Sender").
		Preload("Reactions").
		Preload("Reactions.User").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	views := make([]domain.MessageView, 0, len(models))
	for i := range models {
		views = append(views, models[i].ToView())
	}
	return views, nil
}

// GetMessage returns a single message with sender and reactions.
func (r *GormChatRepository) GetMessage(ctx context.Context, messageID string) (*domain.MessageView, error) {
	var model domain.MessageModel
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Preload("Reactions").
		Preload("Reactions.User").
		First(&model, "id = ?", messageID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}

	view := model.ToView()
	return &view, nil
}

// GetMessageConversation returns the id of the conversation a message
// belongs to.
func (r *GormChatRepository) GetMessageConversation(ctx context.Context, messageID string) (string, error) {
	var model domain.MessageModel
	err := r.db.WithContext(ctx).
		Select("id", "conversation_id").
		First(&model, "id = ?", messageID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrMessageNotFound
		}
		return "", err
	}
	return model.ConversationID, nil
}

// AddReaction records an emoji reaction. Adding the same emoji twice by the
// same user is a duplicate, not double-counted.
func (r *GormChatRepository) AddReaction(ctx context.Context, messageID, userID, emoji string) error {
	var existing domain.ReactionModel
	err := r.db.WithContext(ctx).
		First(&existing, "user_id = ? AND message_id = ? AND emoji = ?", userID, messageID, emoji).Error
	if err == nil {
		return ErrReactionExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	reaction := domain.ReactionModel{
		ID:        uuid.New().String(),
		UserID:    userID,
		MessageID: messageID,
		Emoji:     emoji,
	}
	if err := r.db.WithContext(ctx).Omit("User").Create(&reaction).Error; err != nil {
		// The composite unique index backs the existence check under races.
		if strings.Contains(err.Error(), "duplicate key") ||
			strings.Contains(err.Error(), "UNIQUE constraint") ||
			strings.Contains(err.Error(), "Duplicate entry") {
			return ErrReactionExists
		}
		return err
	}
	return nil
}

// RemoveReaction deletes a reaction; removing one that does not exist is an
// error, not a silent success.
func (r *GormChatRepository) RemoveReaction(ctx context.Context, messageID, userID, emoji string) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND message_id = ? AND emoji = ?", userID, messageID, emoji).
		Delete(&domain.ReactionModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrReactionNotFound
	}
	return nil
}
