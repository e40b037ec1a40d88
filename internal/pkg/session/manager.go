// internal/pkg/session/manager.go
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	xerrors "fleetwash-service/internal/pkg/errors"

	"github.com/redis/go-redis/v9"
)

type Manager struct {
	client *redis.Client
}

func NewManager(client *redis.Client) *Manager {
	return &Manager{client: client}
}

func sessionKey(jti string) string {
	return fmt.Sprintf("session:%s", jti)
}

func identityKey(identityID string) string {
	return fmt.Sprintf("identity_sessions:%s", identityID)
}

// Create stores a session record keyed by jti and indexes it per
// identity so all of a user's sessions can be revoked together.
func (m *Manager) Create(ctx context.Context, data *SessionData) error {
	ttl := time.Until(data.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}

	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	pipe := m.client.TxPipeline()
	pipe.Set(ctx, sessionKey(data.JTI), b, ttl)
	pipe.SAdd(ctx, identityKey(data.IdentityID), data.JTI)
	pipe.Expire(ctx, identityKey(data.IdentityID), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Validate loads the session for a jti and refreshes its activity stamp.
func (m *Manager) Validate(ctx context.Context, jti string) (*SessionData, error) {
	b, err := m.client.Get(ctx, sessionKey(jti)).Bytes()
	if err == redis.Nil {
		return nil, xerrors.ErrSessionExpired
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var data SessionData
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	if !data.IsActive || time.Now().After(data.ExpiresAt) {
		return nil, xerrors.ErrSessionExpired
	}

	data.LastActivityAt = time.Now()
	if updated, err := json.Marshal(&data); err == nil {
		m.client.Set(ctx, sessionKey(jti), updated, redis.KeepTTL)
	}
	return &data, nil
}

// Revoke removes a single session.
func (m *Manager) Revoke(ctx context.Context, identityID, jti string) error {
	pipe := m.client.TxPipeline()
	pipe.Del(ctx, sessionKey(jti))
	pipe.SRem(ctx, identityKey(identityID), jti)
	_, err := pipe.Exec(ctx)
	return err
}

// RevokeAll removes every session belonging to an identity.
func (m *Manager) RevokeAll(ctx context.Context, identityID string) error {
	jtis, err := m.client.SMembers(ctx, identityKey(identityID)).Result()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	pipe := m.client.TxPipeline()
	for _, jti := range jtis {
		pipe.Del(ctx, sessionKey(jti))
	}
	pipe.Del(ctx, identityKey(identityID))
	_, err = pipe.Exec(ctx)
	return err
}

// ListActive returns the live sessions for an identity.
func (m *Manager) ListActive(ctx context.Context, identityID string) ([]*SessionData, error) {
	jtis, err := m.client.SMembers(ctx, identityKey(identityID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessions := make([]*SessionData, 0, len(jtis))
	for _, jti := range jtis {
		b, err := m.client.Get(ctx, sessionKey(jti)).Bytes()
		if err == redis.Nil {
			// Expired member left in the index; drop it.
			m.client.SRem(ctx, identityKey(identityID), jti)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load session %s: %w", jti, err)
		}
		var data SessionData
		if err := json.Unmarshal(b, &data); err != nil {
			continue
		}
		sessions = append(sessions, &data)
	}
	return sessions, nil
}
