// internal/service/auth/auth.go
package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fleetwash-service/internal/domain/identity"
	xerrors "fleetwash-service/internal/pkg/errors"
	"fleetwash-service/internal/pkg/jwt"
	"fleetwash-service/internal/pkg/session"
	"fleetwash-service/internal/repository/postgres"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	identityRepo *postgres.IdentityRepository
	jwtManager   *jwt.Manager
	sessions     *session.Manager
	rateLimiter  *session.RateLimiter
	logger       *zap.Logger
}

func NewAuthService(
	identityRepo *postgres.IdentityRepository,
	jwtManager *jwt.Manager,
	sessions *session.Manager,
	rateLimiter *session.RateLimiter,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		identityRepo: identityRepo,
		jwtManager:   jwtManager,
		sessions:     sessions,
		rateLimiter:  rateLimiter,
		logger:       logger,
	}
}

// Register creates a new identity with a hashed password.
func (s *AuthService) Register(ctx context.Context, req *identity.RegisterRequest) (*identity.Identity, error) {
	if !req.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", xerrors.ErrInvalidInput, req.Role)
	}
	if req.Role == identity.RoleAdmin {
		// Admins are provisioned out of band, never self-registered.
		return nil, xerrors.ErrForbidden
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	ident := &identity.Identity{
		ID:             ulid.Make().String(),
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		FullName:       req.FullName,
		Phone:          req.Phone,
		Role:           req.Role,
		OrganizationID: req.OrganizationID,
		PasswordHash:   string(hash),
		IsActive:       true,
	}

	if err := s.identityRepo.Create(ctx, ident); err != nil {
		return nil, err
	}

	s.logger.Info("identity registered",
		zap.String("identity_id", ident.ID),
		zap.String("role", string(ident.Role)),
	)
	return ident, nil
}

// Login verifies credentials, issues an access token, and records the
// session in redis.
func (s *AuthService) Login(ctx context.Context, req *identity.LoginRequest, ip string) (*identity.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	allowed, _, err := s.rateLimiter.CheckLoginAttempt(ctx, ip, email)
	if err != nil {
		s.logger.Warn("rate limiter unavailable", zap.Error(err))
	} else if !allowed {
		return nil, fmt.Errorf("too many login attempts, try again later")
	}

	ident, err := s.identityRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, xerrors.ErrUnauthorized
	}
	if !ident.IsActive {
		return nil, xerrors.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(ident.PasswordHash), []byte(req.Password)); err != nil {
		return nil, xerrors.ErrUnauthorized
	}

	orgID := ""
	if ident.OrganizationID != nil {
		orgID = *ident.OrganizationID
	}

	token, jti, err := s.jwtManager.Generator.GenerateAccessToken(ident.ID, string(ident.Role), orgID, req.Device)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	now := time.Now()
	if err := s.sessions.Create(ctx, &session.SessionData{
		JTI:            jti,
		IdentityID:     ident.ID,
		Email:          ident.Email,
		Role:           string(ident.Role),
		OrganizationID: orgID,
		Device:         req.Device,
		IPAddress:      ip,
		LoginAt:        now,
		LastActivityAt: now,
		ExpiresAt:      now.Add(s.jwtManager.Generator.TTL),
		IsActive:       true,
	}); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	refresh, _, err := s.jwtManager.Generator.GenerateRefreshToken(ident.ID, req.Device)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	s.rateLimiter.ResetLoginAttempts(ctx, ip, email)
	s.logger.Info("login", zap.String("identity_id", ident.ID))

	return &identity.LoginResponse{Token: token, RefreshToken: refresh, Identity: ident}, nil
}

// Refresh exchanges a valid refresh token for a fresh access token and
// session. The refresh token is rotated on every use.
func (s *AuthService) Refresh(ctx context.Context, req *identity.RefreshRequest, ip string) (*identity.LoginResponse, error) {
	claims, err := s.jwtManager.Verifier.VerifyRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, xerrors.ErrUnauthorized
	}

	ident, err := s.identityRepo.FindByID(ctx, claims.IdentityID)
	if err != nil {
		return nil, xerrors.ErrUnauthorized
	}
	if !ident.IsActive {
		return nil, xerrors.ErrUnauthorized
	}

	orgID := ""
	if ident.OrganizationID != nil {
		orgID = *ident.OrganizationID
	}

	token, jti, err := s.jwtManager.Generator.GenerateAccessToken(ident.ID, string(ident.Role), orgID, req.Device)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	now := time.Now()
	if err := s.sessions.Create(ctx, &session.SessionData{
		JTI:            jti,
		IdentityID:     ident.ID,
		Email:          ident.Email,
		Role:           string(ident.Role),
		OrganizationID: orgID,
		Device:         req.Device,
		IPAddress:      ip,
		LoginAt:        now,
		LastActivityAt: now,
		ExpiresAt:      now.Add(s.jwtManager.Generator.TTL),
		IsActive:       true,
	}); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	refresh, _, err := s.jwtManager.Generator.GenerateRefreshToken(ident.ID, req.Device)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &identity.LoginResponse{Token: token, RefreshToken: refresh, Identity: ident}, nil
}

// ValidateToken verifies a token signature and checks its session is
// still live.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*jwt.Claims, error) {
	claims, err := s.jwtManager.Verifier.VerifyAccessToken(token)
	if err != nil {
		return nil, err
	}
	if _, err := s.sessions.Validate(ctx, claims.ID); err != nil {
		return nil, err
	}
	return claims, nil
}

// Logout revokes the current session.
func (s *AuthService) Logout(ctx context.Context, identityID, jti string) error {
	return s.sessions.Revoke(ctx, identityID, jti)
}

// LogoutAll revokes every session for the identity.
func (s *AuthService) LogoutAll(ctx context.Context, identityID string) error {
	return s.sessions.RevokeAll(ctx, identityID)
}

// GetIdentity loads a full identity by id.
func (s *AuthService) GetIdentity(ctx context.Context, identityID string) (*identity.Identity, error) {
	return s.identityRepo.FindByID(ctx, identityID)
}

// UpdateProfile applies mutable profile fields.
func (s *AuthService) UpdateProfile(ctx context.Context, identityID string, req *identity.UpdateProfileRequest) (*identity.Identity, error) {
	ident, err := s.identityRepo.FindByID(ctx, identityID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		ident.FullName = *req.FullName
	}
	if req.Phone != nil {
		ident.Phone = req.Phone
	}
	if req.OrganizationID != nil {
		ident.OrganizationID = req.OrganizationID
	}

	if err := s.identityRepo.UpdateProfile(ctx, ident); err != nil {
		return nil, err
	}
	return ident, nil
}

// EnsureAdminExists creates the bootstrap admin account when missing.
func (s *AuthService) EnsureAdminExists(ctx context.Context, email, password, fullName string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := s.identityRepo.FindByEmail(ctx, email); err == nil {
		return nil
	} else if !xerrors.Is(err, xerrors.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &identity.Identity{
		ID:           ulid.Make().String(),
		Email:        email,
		FullName:     fullName,
		Role:         identity.RoleAdmin,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := s.identityRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	s.logger.Info("bootstrap admin created", zap.String("email", email))
	return nil
}
