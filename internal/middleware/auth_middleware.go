// internal/middleware/auth_middleware.go
package middleware

import (
	"net/http"
	"strings"

	"fleetwash-service/internal/pkg/response"
	"fleetwash-service/internal/service/auth"

	"github.com/gin-gonic/gin"
)

type AuthMiddleware struct {
	authService *auth.AuthService
}

func NewAuthMiddleware(authService *auth.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// Auth validates the bearer token and its session, then binds the
// identity to the request context.
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Unauthorized(c, "missing authorization token")
			return
		}

		claims, err := m.authService.ValidateToken(c.Request.Context(), token)
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			return
		}

		c.Set("identity_id", claims.IdentityID)
		c.Set("jti", claims.ID)
		c.Set("role", claims.Role)
		c.Set("organization_id", claims.OrganizationID)
		c.Set("device", claims.Device)

		c.Next()
	}
}

// RequireRole allows through only identities holding one of the given
// roles. Must be chained after Auth().
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		if role == "" {
			response.Error(c, http.StatusForbidden, "authentication required", nil)
			return
		}

		for _, required := range roles {
			if role == required {
				c.Next()
				return
			}
		}

		response.Forbidden(c, "insufficient permissions")
	}
}

func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}
	return c.Query("token")
}
