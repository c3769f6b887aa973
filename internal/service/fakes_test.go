package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/wizzchat/wizzchat/internal/domain"
	"github.com/wizzchat/wizzchat/internal/repository"
	"github.com/wizzchat/wizzchat/pkg/jwt"
)

// fakeUserRepo is an in-memory UserRepository mirroring the GORM
// implementation's contract: Create assigns the id and default color.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) addUser(id, username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[id] = &domain.User{ID: id, Username: username, MessageColor: domain.DefaultMessageColor}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrEmailExists
		}
		if u.Username == user.Username {
			return repository.ErrUsernameExists
		}
	}
	user.ID = fmt.Sprintf("user-%d", len(r.users)+1)
	if user.MessageColor == "" {
		user.MessageColor = domain.DefaultMessageColor
	}
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) List(ctx context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, *u)
	}
	return users, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) SetOnline(ctx context.Context, id string, online bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.IsOnline = online
	return nil
}

// fakeChatRepo is an in-memory ChatRepository.
type fakeChatRepo struct {
	mu            sync.Mutex
	participants  map[string][]string // conversation id -> user ids
	messages      map[string]*domain.MessageView
	messageOrder  map[string][]string // conversation id -> message ids
	messageConv   map[string]string
	reactions     map[string]struct{} // messageID|userID|emoji
	listIDsErr    error
	nextMessageID int
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{
		participants: make(map[string][]string),
		messages:     make(map[string]*domain.MessageView),
		messageOrder: make(map[string][]string),
		messageConv:  make(map[string]string),
		reactions:    make(map[string]struct{}),
	}
}

func (r *fakeChatRepo) addConversation(id string, userIDs ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.participants[id] = userIDs
}

func (r *fakeChatRepo) CreateConversation(ctx context.Context, participantIDs []string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := fmt.Sprintf("conv-%d", len(r.participants)+1)
	r.participants[id] = participantIDs
	return id, nil
}

func (r *fakeChatRepo) GetConversation(ctx context.Context, id string) (*domain.ConversationDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.participants[id]; !ok {
		return nil, repository.ErrConversationNotFound
	}
	return &domain.ConversationDetail{ID: id}, nil
}

func (r *fakeChatRepo) ListConversations(ctx context.Context, userID string) ([]domain.ConversationSummary, error) {
	return nil, nil
}

func (r *fakeChatRepo) ListConversationIDs(ctx context.Context, userID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listIDsErr != nil {
		return nil, r.listIDsErr
	}
	var ids []string
	for id, users := range r.participants {
		for _, u := range users {
			if u == userID {
				ids = append(ids, id)
			}
		}
	}
	return ids, nil
}

func (r *fakeChatRepo) IsParticipant(ctx context.Context, conversationID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.participants[conversationID] {
		if u == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeChatRepo) CreateMessage(ctx context.Context, conversationID, senderID, content string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.participants[conversationID]; !ok {
		return "", repository.ErrConversationNotFound
	}
	r.nextMessageID++
	id := fmt.Sprintf("msg-%d", r.nextMessageID)
	r.messages[id] = &domain.MessageView{
		ID:        id,
		Content:   content,
		Sender:    domain.UserSummary{ID: senderID},
		Reactions: []domain.ReactionView{},
	}
	r.messageOrder[conversationID] = append(r.messageOrder[conversationID], id)
	r.messageConv[id] = conversationID
	return id, nil
}

func (r *fakeChatRepo) ListMessages(ctx context.Context, conversationID string) ([]domain.MessageView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var messages []domain.MessageView
	for _, id := range r.messageOrder[conversationID] {
		messages = append(messages, *r.messages[id])
	}
	return messages, nil
}

func (r *fakeChatRepo) GetMessage(ctx context.Context, messageID string) (*domain.MessageView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[messageID]
	if !ok {
		return nil, repository.ErrMessageNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *fakeChatRepo) GetMessageConversation(ctx context.Context, messageID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv, ok := r.messageConv[messageID]
	if !ok {
		return "", repository.ErrMessageNotFound
	}
	return conv, nil
}

func (r *fakeChatRepo) AddReaction(ctx context.Context, messageID, userID, emoji string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[messageID]
	if !ok {
		return repository.ErrMessageNotFound
	}
	key := messageID + "|" + userID + "|" + emoji
	if _, exists := r.reactions[key]; exists {
		return repository.ErrReactionExists
	}
	r.reactions[key] = struct{}{}
	m.Reactions = append(m.Reactions, domain.ReactionView{
		ID:    key,
		Emoji: emoji,
		User:  domain.ReactionUser{ID: userID},
	})
	return nil
}

func (r *fakeChatRepo) RemoveReaction(ctx context.Context, messageID, userID, emoji string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := messageID + "|" + userID + "|" + emoji
	if _, exists := r.reactions[key]; !exists {
		return repository.ErrReactionNotFound
	}
	delete(r.reactions, key)
	m := r.messages[messageID]
	for i, reaction := range m.Reactions {
		if reaction.ID == key {
			m.Reactions = append(m.Reactions[:i], m.Reactions[i+1:]...)
			break
		}
	}
	return nil
}

// fakeBroadcaster records emissions instead of delivering them.
type emission struct {
	room    domain.RoomID
	event   domain.EventName
	payload interface{}
}

type fakeBroadcaster struct {
	mu        sync.Mutex
	emissions []emission
}

func (b *fakeBroadcaster) Emit(event domain.EventName, payload interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.emissions = append(b.emissions, emission{event: event, payload: payload})
	return nil
}

func (b *fakeBroadcaster) EmitToRoom(room domain.RoomID, event domain.EventName, payload interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.emissions = append(b.emissions, emission{room: room, event: event, payload: payload})
	return nil
}

func (b *fakeBroadcaster) all() []emission {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]emission(nil), b.emissions...)
}

// fakeTokenValidator resolves tokens from a fixed table.
type fakeTokenValidator struct {
	tokens map[string]*jwt.Claims
}

func (v *fakeTokenValidator) Validate(token string) (*jwt.Claims, error) {
	claims, ok := v.tokens[token]
	if !ok {
		return nil, jwt.ErrInvalidToken
	}
	return claims, nil
}
