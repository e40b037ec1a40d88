// internal/websocket/hub.go
package websocket

import (
	"context"
	"sync"

	"fleetwash-service/internal/pkg/jwt"
	"fleetwash-service/internal/pkg/session"

	"go.uber.org/zap"
)

// Hub fans wash lifecycle events out to the connected clients of each
// identity. An identity may hold several connections (one per device).
type Hub struct {
	clients map[string]map[*Client]bool
	mu      sync.RWMutex

	Register   chan *Client
	unregister chan *Client

	broadcast chan *broadcastMessage

	jwtVerifier *jwt.Verifier
	sessions    *session.Manager
	logger      *zap.Logger
}

type broadcastMessage struct {
	// IdentityIDs nil means every connected client.
	IdentityIDs []string
	Message     *Message
}

func NewHub(jwtVerifier *jwt.Verifier, sessions *session.Manager, logger *zap.Logger) *Hub {
	return &Hub{
		clients:     make(map[string]map[*Client]bool),
		Register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcast:   make(chan *broadcastMessage, 256),
		jwtVerifier: jwtVerifier,
		sessions:    sessions,
		logger:      logger,
	}
}

// Authenticate verifies the connection token and returns the client
// identity bound to it.
func (h *Hub) Authenticate(ctx context.Context, token string) (*ClientAuth, error) {
	claims, err := h.jwtVerifier.VerifyAccessToken(token)
	if err != nil {
		return nil, err
	}

	data, err := h.sessions.Validate(ctx, claims.ID)
	if err != nil {
		return nil, err
	}

	return &ClientAuth{
		IdentityID: claims.IdentityID,
		SessionID:  claims.ID,
		Role:       claims.Role,
		Device:     claims.Device,
		Email:      data.Email,
	}, nil
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

// Notify pushes a wash lifecycle toast to one identity. It never
// blocks and never fails: an offline user simply misses the toast.
func (h *Hub) Notify(userID string, event, message string, success bool) {
	msg := NewMessage(EventWashUpdate, &WashEvent{
		Event:   event,
		Message: message,
		Success: success,
	})
	select {
	case h.broadcast <- &broadcastMessage{IdentityIDs: []string{userID}, Message: msg}:
	default:
		h.logger.Warn("websocket broadcast queue full, dropping event",
			zap.String("identity_id", userID),
			zap.String("event", event),
		)
	}
}

// BroadcastSystemAlert sends an alert to every connected client. Like
// Notify it never blocks the caller.
func (h *Hub) BroadcastSystemAlert(message string) {
	select {
	case h.broadcast <- &broadcastMessage{
		IdentityIDs: nil,
		Message:     NewMessage(EventSystemAlert, map[string]interface{}{"message": message}),
	}:
	default:
		h.logger.Warn("websocket broadcast queue full, dropping system alert")
	}
}

// DisconnectIdentity drops all connections for an identity, used on
// logout-all.
func (h *Hub) DisconnectIdentity(identityID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[identityID]; ok {
		for client := range clients {
			client.Close()
		}
		delete(h.clients, identityID)
		h.logger.Info("disconnected all websocket clients",
			zap.String("identity_id", identityID))
	}
}

func (h *Hub) ConnectedClients(identityID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[identityID])
}

func (h *Hub) TotalClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, clients := range h.clients {
		total += len(clients)
	}
	return total
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.identityID] == nil {
		h.clients[client.identityID] = make(map[*Client]bool)
	}
	h.clients[client.identityID][client] = true

	h.logger.Debug("websocket client connected",
		zap.String("identity_id", client.identityID),
		zap.String("session_id", client.sessionID),
	)

	client.Send(NewMessage(EventConnected, map[string]interface{}{
		"identity_id": client.identityID,
		"session_id":  client.sessionID,
		"device":      client.device,
	}))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.identityID]; ok {
		if _, exists := clients[client]; exists {
			delete(clients, client)
			client.Close()
			if len(clients) == 0 {
				delete(h.clients, client.identityID)
			}
			h.logger.Debug("websocket client disconnected",
				zap.String("identity_id", client.identityID))
		}
	}
}

func (h *Hub) deliver(msg *broadcastMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if msg.IdentityIDs == nil {
		for _, clients := range h.clients {
			for client := range clients {
				client.Send(msg.Message)
			}
		}
		return
	}

	for _, id := range msg.IdentityIDs {
		for client := range h.clients[id] {
			client.Send(msg.Message)
		}
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.clients {
		for client := range clients {
			client.Close()
		}
	}
	h.clients = make(map[string]map[*Client]bool)
}
