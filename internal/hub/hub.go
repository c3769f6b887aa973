package hub

import (
	"context"
	"sync"

	"github.com/wizzchat/wizzchat/internal/config"
	"github.com/wizzchat/wizzchat/internal/domain"
	"github.com/wizzchat/wizzchat/pkg/log"
)

// Hub is the connection/room registry and the single fan-out authority.
// Binding and emission are in-memory operations; delivery is fire-and-forget
// with no acknowledgement or queuing for disconnected recipients.
type Hub struct {
	clients map[string]*Client
	rooms   map[domain.RoomID]map[string]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan *broadcastMessage

	mu     sync.RWMutex
	config config.WebSocketConfig
}

// broadcastMessage targets one room, or every connected session when room is
// empty.
type broadcastMessage struct {
	room domain.RoomID
	data []byte
}

func NewHub(cfg config.WebSocketConfig) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[domain.RoomID]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *broadcastMessage, 256),
		config:     cfg,
	}
}

// Run processes registrations and broadcasts until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			l := log.L()
			l.Debug().Str(log.FieldClientID, client.ID).Msg("client registered")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				for room, members := range h.rooms {
					delete(members, client.ID)
					if len(members) == 0 {
						delete(h.rooms, room)
					}
				}
				delete(h.clients, client.ID)
				client.closeSend()
			}
			h.mu.Unlock()
			client.Session.Close()
			l := log.L()
			l.Debug().Str(log.FieldClientID, client.ID).Msg("client unregistered")

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

func (h *Hub) deliver(msg *broadcastMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	targets := h.clients
	if msg.room != "" {
		members, ok := h.rooms[msg.room]
		if !ok {
			// Emitting to a room with no bound connections is a no-op.
			return
		}
		targets = members
	}

	for _, client := range targets {
		if !client.enqueue(msg.data) {
			// Slow consumer: drop the connection rather than block fan-out.
			go h.Unregister(client)
		}
	}
}

// Register adds a connection to the registry.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a connection and all its room bindings.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Bind binds a connection to a room. Binding the same connection to the same
// room twice is a no-op.
func (h *Hub) Bind(client *Client, room domain.RoomID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[string]*Client)
		h.rooms[room] = members
	}
	if _, bound := members[client.ID]; bound {
		return
	}
	members[client.ID] = client

	l := log.L()
	l.Debug().Str(log.FieldClientID, client.ID).Str(log.FieldRoom, room.String()).Msg("client bound to room")
}

// Unbind removes a connection from a room, pruning the room once empty.
func (h *Hub) Unbind(client *Client, room domain.RoomID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.rooms[room]; ok {
		delete(members, client.ID)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// Emit delivers an event to every connected session. Reserved for
// low-sensitivity notices that carry no message content.
func (h *Hub) Emit(event domain.EventName, payload interface{}) error {
	frame, err := marshalEnvelope(event, payload)
	if err != nil {
		return err
	}
	h.broadcast <- &broadcastMessage{data: frame}
	return nil
}

// EmitToRoom delivers an event to every session currently bound to the room.
func (h *Hub) EmitToRoom(room domain.RoomID, event domain.EventName, payload interface{}) error {
	frame, err := marshalEnvelope(event, payload)
	if err != nil {
		return err
	}
	h.broadcast <- &broadcastMessage{room: room, data: frame}
	return nil
}

// RoomSize returns the number of connections bound to a room.
func (h *Hub) RoomSize(room domain.RoomID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// ClientCount returns the number of registered connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
