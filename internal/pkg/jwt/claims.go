// internal/pkg/jwt/claims.go
package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the JWT claims carried by fleetwash tokens.
type Claims struct {
	IdentityID     string `json:"identity_id"`
	Role           string `json:"role,omitempty"`
	OrganizationID string `json:"organization_id,omitempty"`
	Device         string `json:"device,omitempty"`
	Purpose        string `json:"purpose"` // access, refresh
	jwt.RegisteredClaims
}

// HasRole checks whether the claims carry the given role.
func (c *Claims) HasRole(role string) bool {
	return c.Role == role
}

// IsAdmin checks whether the token belongs to an administrator.
func (c *Claims) IsAdmin() bool {
	return c.Role == "admin"
}

// VerifyAudience checks if the expected audience is listed in the claims.
func (c *Claims) VerifyAudience(audience string, required bool) bool {
	if len(c.Audience) == 0 {
		return !required
	}
	for _, aud := range c.Audience {
		if aud == audience {
			return true
		}
	}
	return false
}
