package service

import (
	"context"
	"fmt"

	"github.com/wizzchat/wizzchat/internal/domain"
	"github.com/wizzchat/wizzchat/internal/hub"
	"github.com/wizzchat/wizzchat/internal/repository"
	"github.com/wizzchat/wizzchat/pkg/log"
)

type realtimeService struct {
	tokens TokenValidator
	chats  repository.ChatRepository
	binder RoomBinder
}

// NewRealtimeService creates the realtime session service.
func NewRealtimeService(tokens TokenValidator, chats repository.ChatRepository, binder RoomBinder) RealtimeService {
	return &realtimeService{
		tokens: tokens,
		chats:  chats,
		binder: binder,
	}
}

// HandleConnect authenticates the connection and binds it to one room per
// conversation the user participates in. Any error is fatal to the attempt:
// the caller must drop the connection, and the client reconnects and
// re-resolves from scratch. Bindings are not re-validated afterwards; a
// session keeps stale rooms until reconnect if membership changes.
func (s *realtimeService) HandleConnect(ctx context.Context, c *hub.Client, token string) error {
	l := log.Ctx(ctx)

	if token == "" {
		return ErrMissingToken
	}

	claims, err := s.tokens.Validate(token)
	if err != nil {
		l.Warn().Err(err).Str(log.FieldClientID, c.ID).Msg("websocket authentication failed")
		return fmt.Errorf("authenticate connection: %w", err)
	}

	c.Session.Authenticate(claims.UserID, claims.Username)

	conversationIDs, err := s.chats.ListConversationIDs(ctx, claims.UserID)
	if err != nil {
		l.Error().Err(err).Str(log.FieldUserID, claims.UserID).Msg("membership lookup failed")
		return fmt.Errorf("resolve memberships: %w", err)
	}

	for _, id := range conversationIDs {
		room := domain.RoomForConversation(id)
		s.binder.Bind(c, room)
		c.Session.JoinRoom(room)
	}
	c.Session.MarkJoined()

	l.Info().
		Str(log.FieldClientID, c.ID).
		Str(log.FieldUserID, claims.UserID).
		Int("rooms", len(conversationIDs)).
		Msg("websocket session joined")

	return nil
}

// HandleJoinConversation explicitly (re-)binds the connection to a
// conversation room, after checking current membership. Used by clients that
// learned about a conversation created after they connected.
func (s *realtimeService) HandleJoinConversation(ctx context.Context, c *hub.Client, conversationID string) error {
	l := log.Ctx(ctx)

	if !c.Session.IsAuthenticated() {
		return ErrNotAuthenticated
	}

	ok, err := s.chats.IsParticipant(ctx, conversationID, c.Session.GetUserID())
	if err != nil {
		return fmt.Errorf("check membership: %w", err)
	}
	if !ok {
		return ErrNotParticipant
	}

	room := domain.RoomForConversation(conversationID)
	s.binder.Bind(c, room)
	c.Session.JoinRoom(room)

	l.Debug().
		Str(log.FieldClientID, c.ID).
		Str(log.FieldRoom, room.String()).
		Msg("client joined conversation room")
	return nil
}

// HandleDisconnect closes the session. Room bindings are cleaned up by the
// registry when the connection unregisters; nothing is persisted.
func (s *realtimeService) HandleDisconnect(ctx context.Context, c *hub.Client) {
	c.Session.Close()

	l := log.Ctx(ctx)
	l.Debug().Str(log.FieldClientID, c.ID).Msg("websocket session closed")
}
