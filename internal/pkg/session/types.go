// internal/pkg/session/types.go
package session

import "time"

// SessionData is the redis-backed record for one issued token.
type SessionData struct {
	JTI            string    `json:"jti"`
	IdentityID     string    `json:"identity_id"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	OrganizationID string    `json:"organization_id,omitempty"`
	Device         string    `json:"device,omitempty"`
	IPAddress      string    `json:"ip_address,omitempty"`
	LoginAt        time.Time `json:"login_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
	ExpiresAt      time.Time `json:"expires_at"`
	IsActive       bool      `json:"is_active"`
}
