package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wizzchat/wizzchat/internal/config"
	"github.com/wizzchat/wizzchat/internal/domain"
	"github.com/wizzchat/wizzchat/pkg/log"
)

// Client is one physical websocket connection. Send is written through
// enqueue and closed through closeSend only; the mutex keeps the two from
// racing when the hub drops the client mid-frame.
type Client struct {
	ID      string
	Hub     *Hub
	Conn    *websocket.Conn
	Send    chan []byte
	Session *Session
	config  config.WebSocketConfig

	mu     sync.Mutex
	closed bool
}

func NewClient(id string, hub *Hub, conn *websocket.Conn, cfg config.WebSocketConfig) *Client {
	buffer := cfg.SendBuffer
	if buffer <= 0 {
		buffer = 256
	}
	return &Client{
		ID:      id,
		Hub:     hub,
		Conn:    conn,
		Send:    make(chan []byte, buffer),
		Session: NewSession(id),
		config:  cfg,
	}
}

// ReadPump reads frames from the connection and hands them to handler until
// the connection drops, then unregisters the client.
func (c *Client) ReadPump(handler func(*Client, []byte)) {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				l := log.L()
				l.Debug().Err(err).Str(log.FieldClientID, c.ID).Msg("websocket read error")
			}
			break
		}

		c.Session.UpdateActivity()
		handler(c, message)
	}
}

// WritePump drains the send buffer onto the connection and keeps the
// connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendEvent pushes one event frame to this client only. Best-effort: a full
// send buffer or a closed client drops the frame rather than blocking.
func (c *Client) SendEvent(event domain.EventName, payload interface{}) error {
	frame, err := marshalEnvelope(event, payload)
	if err != nil {
		return err
	}
	c.enqueue(frame)
	return nil
}

// enqueue pushes a frame onto the send buffer. Returns false when the client
// is closed or the buffer is full; the frame is dropped either way.
func (c *Client) enqueue(frame []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.Send <- frame:
		return true
	default:
		return false
	}
}

// closeSend closes the send channel exactly once. In-flight enqueue calls
// observe the closed flag instead of hitting a closed channel.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}

func marshalEnvelope(event domain.EventName, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(domain.Envelope{
		Event: string(event),
		Data:  data,
	})
}
