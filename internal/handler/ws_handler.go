package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wizzchat/wizzchat/internal/config"
	"github.com/wizzchat/wizzchat/internal/domain"
	"github.com/wizzchat/wizzchat/internal/hub"
	"github.com/wizzchat/wizzchat/internal/service"
	"github.com/wizzchat/wizzchat/pkg/log"
)

// WSHandler upgrades connections into the realtime layer.
type WSHandler struct {
	hub      *hub.Hub
	realtime service.RealtimeService
	wsCfg    config.WebSocketConfig
	upgrader websocket.Upgrader
}

// NewWSHandler creates the websocket handler. The allowed origin must match
// the browser client.
func NewWSHandler(h *hub.Hub, realtime service.RealtimeService, wsCfg config.WebSocketConfig, allowedOrigin string) *WSHandler {
	return &WSHandler{
		hub:      h,
		realtime: realtime,
		wsCfg:    wsCfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origin == allowedOrigin
			},
		},
	}
}

// RegisterRoutes registers the websocket endpoint.
func (h *WSHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/ws", h.HandleWebSocket)
}

// HandleWebSocket runs the connect flow: upgrade, authenticate the token from
// the handshake query, resolve memberships, bind rooms, then start the pumps.
// Any failure before the pumps start terminates the connection with no
// structured payload; the client infers failure from the drop.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		l.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(uuid.New().String(), h.hub, conn, h.wsCfg)

	token := c.Query("token")
	if err := h.realtime.HandleConnect(ctx, client, token); err != nil {
		conn.Close()
		return
	}

	// Register only once authenticated; an anonymous socket must not receive
	// broadcast frames.
	h.hub.Register(client)

	go client.WritePump()
	go func() {
		client.ReadPump(h.handleMessage)
		h.realtime.HandleDisconnect(context.Background(), client)
	}()
}

func (h *WSHandler) handleMessage(client *hub.Client, message []byte) {
	l := log.L()

	var env domain.Envelope
	if err := json.Unmarshal(message, &env); err != nil {
		l.Debug().Err(err).Str(log.FieldClientID, client.ID).Msg("malformed websocket frame")
		return
	}

	ctx := log.WithLogger(context.Background(), l)

	switch env.Event {
	case domain.ControlJoinConversation:
		var payload domain.JoinConversationPayload
		if err := json.Unmarshal(env.Data, &payload); err != nil || payload.ConversationID == "" {
			l.Debug().Str(log.FieldClientID, client.ID).Msg("malformed join-conversation payload")
			return
		}
		if err := h.realtime.HandleJoinConversation(ctx, client, payload.ConversationID); err != nil {
			l.Warn().Err(err).
				Str(log.FieldClientID, client.ID).
				Str(log.FieldConversationID, payload.ConversationID).
				Msg("join-conversation rejected")
		}

	case domain.ControlPing:
		client.SendEvent(domain.EventName(domain.ControlPong), nil)

	default:
		l.Debug().
			Str(log.FieldClientID, client.ID).
			Str(log.FieldEvent, env.Event).
			Msg("unknown websocket event")
	}
}
