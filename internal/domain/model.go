package domain

import (
	"time"
)

// UserModel is the GORM model for the users table.
type UserModel struct {
	ID           string    `gorm:"type:varchar(36);primaryKey"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Username     string    `gorm:"type:varchar(50);uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	MessageColor string    `gorm:"type:varchar(16);not null;default:'#3B82F6'"`
	IsOnline     bool      `gorm:"not null;default:false"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (UserModel) TableName() string {
	return "users"
}

// ConversationModel is the GORM model for conversations. Participants live in
// the conversation_participants join table.
type ConversationModel struct {
	ID           string         `gorm:"type:varchar(36);primaryKey"`
	Participants []UserModel    `gorm:"many2many:conversation_participants;joinForeignKey:ConversationID;joinReferences:UserID"`
	Messages     []MessageModel `gorm:"foreignKey:ConversationID"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
}

func (ConversationModel) TableName() string {
	return "conversations"
}

// MessageModel is the GORM model for messages.
type MessageModel struct {
	ID             string          `gorm:"type:varchar(36);primaryKey"`
	ConversationID string          `gorm:"type:varchar(36);index;not null"`
	SenderID       string          `gorm:"type:varchar(36);not null"`
	Sender         UserModel       `gorm:"foreignKey:SenderID"`
	Content        string          `gorm:"type:text;not null"`
	Reactions      []ReactionModel `gorm:"foreignKey:MessageID"`
	CreatedAt      time.Time       `gorm:"autoCreateTime;index"`
}

func (MessageModel) TableName() string {
	return "messages"
}

// ReactionModel is the GORM model for reactions. The composite unique index
// rejects the same emoji twice from one user on one message.
type ReactionModel struct {
	ID        string    `gorm:"type:varchar(36);primaryKey"`
	UserID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_reactions_user_message_emoji,priority:1"`
	MessageID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_reactions_user_message_emoji,priority:2"`
	Emoji     string    `gorm:"type:varchar(32);not null;uniqueIndex:idx_reactions_user_message_emoji,priority:3"`
	User      UserModel `gorm:"foreignKey:UserID"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (ReactionModel) TableName() string {
	return "reactions"
}

// ToDomain converts UserModel to a domain User.
func (m *UserModel) ToDomain() *User {
	return &User{
		ID:           m.ID,
		Email:        m.Email,
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		MessageColor: m.MessageColor,
		IsOnline:     m.IsOnline,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// UserToModel converts a domain User to UserModel.
func UserToModel(u *User) *UserModel {
	return &UserModel{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		MessageColor: u.MessageColor,
		IsOnline:     u.IsOnline,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// ToSummary converts UserModel to the short embedded shape.
func (m *UserModel) ToSummary() UserSummary {
	return UserSummary{
		ID:           m.ID,
		Username:     m.Username,
		MessageColor: m.MessageColor,
	}
}

// ToView converts MessageModel, with Sender and Reactions preloaded, to MessageView.
func (m *MessageModel) ToView() MessageView {
	reactions := make([]ReactionView, 0, len(m.Reactions))
	for _, r := range m.Reactions {
		reactions = append(reactions, ReactionView{
			ID:    r.ID,
			Emoji: r.Emoji,
			User: ReactionUser{
				ID:       r.User.ID,
				Username: r.User.Username,
			},
		})
	}

	return MessageView{
		ID:        m.ID,
		Content:   m.Content,
		Sender:    m.Sender.ToSummary(),
		Reactions: reactions,
	}
}

// ToDetail converts ConversationModel, fully preloaded, to ConversationDetail.
func (m *ConversationModel) ToDetail() *ConversationDetail {
	participants := make([]UserSummary, 0, len(m.Participants))
	for _, p := range m.Participants {
		participants = append(participants, p.ToSummary())
	}

	messages := make([]MessageView, 0, len(m.Messages))
	for _, msg := range m.Messages {
		messages = append(messages, msg.ToView())
	}

	return &ConversationDetail{
		ID:           m.ID,
		UpdatedAt:    m.UpdatedAt,
		Participants: participants,
		Messages:     messages,
	}
}
