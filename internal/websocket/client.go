// internal/websocket/client.go
package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

// ClientAuth is the identity bound to a websocket connection.
type ClientAuth struct {
	IdentityID string
	SessionID  string
	Role       string
	Device     string
	Email      string
}

type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	identityID string
	sessionID  string
	role       string
	device     string

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

func NewClient(hub *Hub, conn *websocket.Conn, auth *ClientAuth) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, 64),
		identityID: auth.IdentityID,
		sessionID:  auth.SessionID,
		role:       auth.Role,
		device:     auth.Device,
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (c *Client) IdentityID() string { return c.identityID }

// ReadPump consumes frames until the peer goes away. Incoming traffic
// is ping/pong only; the notification stream is one way.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					c.hub.logger.Debug("websocket read error", zap.Error(err))
				}
				return
			}
			c.handleMessage(data)
		}
	}
}

// WritePump drains the send queue and keeps the connection alive with
// pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(data []byte) {
	msg, err := ParseMessage(data)
	if err != nil {
		c.Send(NewMessage(EventError, map[string]interface{}{"message": "invalid message"}))
		return
	}

	if msg.Type == EventPing {
		c.Send(NewMessage(EventPong, nil))
	}
}

// Send queues a message for delivery. A full queue drops the
// connection rather than blocking the hub.
func (c *Client) Send(msg *Message) {
	data, err := msg.ToJSON()
	if err != nil {
		c.hub.logger.Warn("failed to marshal websocket message", zap.Error(err))
		return
	}

	select {
	case <-c.ctx.Done():
		return
	default:
	}

	select {
	case c.send <- data:
	case <-c.ctx.Done():
	default:
		c.Close()
		select {
		case c.hub.unregister <- c:
		default:
		}
	}
}

// Close tears down the connection exactly once. The send channel is
// never closed; cancellation stops the pumps and the channel is
// collected with the client.
func (c *Client) Close() {
	c.closeOnce.Do(c.cancel)
}
