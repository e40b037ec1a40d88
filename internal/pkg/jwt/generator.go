// internal/pkg/jwt/generator.go
package jwt

import (
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

type Generator struct {
	priv     *rsa.PrivateKey
	issuer   string
	audience string
	kid      string // key id for rotation
	TTL      time.Duration
}

func NewGenerator(priv *rsa.PrivateKey, issuer, audience, kid string, ttl time.Duration) *Generator {
	return &Generator{
		priv:     priv,
		issuer:   issuer,
		audience: audience,
		kid:      kid,
		TTL:      ttl,
	}
}

// Generate creates a signed token for the given identity. It returns the
// token string and its jti so the caller can track the session.
func (g *Generator) Generate(identityID, role, organizationID, device, purpose string, ttl time.Duration) (string, string, error) {
	if g.priv == nil {
		return "", "", fmt.Errorf("jwt generator has nil private key")
	}

	now := time.Now()
	jti := ulid.Make().String()

	claims := &Claims{
		IdentityID:     identityID,
		Role:           role,
		OrganizationID: organizationID,
		Device:         device,
		Purpose:        purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    g.issuer,
			Subject:   identityID,
			Audience:  []string{g.audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        jti,
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if g.kid != "" {
		tok.Header["kid"] = g.kid
	}

	signed, err := tok.SignedString(g.priv)
	return signed, jti, err
}

// GenerateAccessToken generates a standard access token.
func (g *Generator) GenerateAccessToken(identityID, role, organizationID, device string) (string, string, error) {
	return g.Generate(identityID, role, organizationID, device, "access", g.TTL)
}

// GenerateRefreshToken generates a refresh token with a longer TTL.
func (g *Generator) GenerateRefreshToken(identityID, device string) (string, string, error) {
	return g.Generate(identityID, "", "", device, "refresh", 60*24*time.Hour)
}
