// internal/middleware/helpers.go
package middleware

import (
	"fleetwash-service/internal/domain/identity"

	"github.com/gin-gonic/gin"
)

// GetIdentityID gets the authenticated identity ID from context.
func GetIdentityID(c *gin.Context) (string, bool) {
	id := c.GetString("identity_id")
	return id, id != ""
}

// MustGetIdentityID gets the identity ID from context or panics. Only
// valid behind Auth().
func MustGetIdentityID(c *gin.Context) string {
	id, ok := GetIdentityID(c)
	if !ok {
		panic("identity_id not found in context")
	}
	return id
}

// MustGetJTI gets the session jti from context or panics.
func MustGetJTI(c *gin.Context) string {
	jti := c.GetString("jti")
	if jti == "" {
		panic("jti not found in context")
	}
	return jti
}

// MustGetActor assembles the acting identity from context.
func MustGetActor(c *gin.Context) identity.Actor {
	return identity.Actor{
		ID:             MustGetIdentityID(c),
		Role:           identity.Role(c.GetString("role")),
		OrganizationID: c.GetString("organization_id"),
	}
}

// HasRole checks whether the authenticated identity holds a role.
func HasRole(c *gin.Context, role string) bool {
	return c.GetString("role") == role
}

// IsAdmin checks whether the identity is an admin.
func IsAdmin(c *gin.Context) bool {
	return HasRole(c, string(identity.RoleAdmin))
}
