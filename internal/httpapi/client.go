package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Tab lists are the largest.
	maxMessageSize = 64 * 1024
)

// Client is one WebSocket front end.
type Client struct {
	ID     string
	hub    *Hub
	conn   *websocket.Conn
	engine Engine
	logger *slog.Logger

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

// NewClient creates a client for an upgraded connection
func NewClient(hub *Hub, conn *websocket.Conn, engine Engine, logger *slog.Logger) *Client {
	id := uuid.NewString()
	return &Client{
		ID:     id,
		hub:    hub,
		conn:   conn,
		engine: engine,
		logger: logger.With("client", id),
		send:   make(chan []byte, 256),
	}
}

// enqueue queues an encoded message without blocking.
func (c *Client) enqueue(b []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- b:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// ReadPump applies commands from the connection until it closes
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("websocket read error", "error", err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(message, &msg); err != nil {
			c.reply(Reply{Type: MessageError, Error: "invalid message: " + err.Error()})
			continue
		}

		data, err := dispatch(c.engine, msg)
		if err != nil {
			c.logger.Debug("websocket command failed", "type", msg.Type, "error", err)
			c.reply(Reply{Type: MessageError, For: msg.Type, Error: err.Error()})
			continue
		}
		c.reply(Reply{Type: MessageAck, For: msg.Type, Data: data})
	}
}

// WritePump pumps messages from the hub to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					c.logger.Warn("websocket write error", "error", err)
				}
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) reply(r Reply) {
	data, err := json.Marshal(r)
	if err != nil {
		c.logger.Error("failed to marshal reply", "error", err)
		return
	}
	if !c.enqueue(data) {
		c.logger.Warn("dropping reply for slow client", "type", r.Type)
	}
}
