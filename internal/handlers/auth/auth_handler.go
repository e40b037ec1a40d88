// internal/handlers/auth/auth_handler.go
package auth

import (
	"net/http"

	"fleetwash-service/internal/domain/identity"
	"fleetwash-service/internal/middleware"
	"fleetwash-service/internal/pkg/response"
	"fleetwash-service/internal/pkg/session"
	authUsecase "fleetwash-service/internal/service/auth"
	washsvc "fleetwash-service/internal/service/washrequest"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ConnectionManager drops an identity's live websocket connections when
// its sessions are revoked.
type ConnectionManager interface {
	DisconnectIdentity(identityID string)
	ConnectedClients(identityID string) int
}

type AuthHandler struct {
	authService *authUsecase.AuthService
	sessions    *session.Manager
	registry    *washsvc.Registry
	connections ConnectionManager
	logger      *zap.Logger
}

func NewAuthHandler(
	authService *authUsecase.AuthService,
	sessions *session.Manager,
	registry *washsvc.Registry,
	connections ConnectionManager,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		registry:    registry,
		connections: connections,
		logger:      logger,
	}
}

// Register handles identity registration (public endpoint).
func (h *AuthHandler) Register(c *gin.Context) {
	var req identity.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	ident, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		h.logger.Error("registration failed",
			zap.String("email", req.Email),
			zap.Error(err),
		)
		response.FromError(c, err, "registration failed")
		return
	}

	response.Success(c, http.StatusCreated, "registration successful", ident)
}

// Login handles identity login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req identity.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	loginResp, err := h.authService.Login(c.Request.Context(), &req, c.ClientIP())
	if err != nil {
		h.logger.Warn("login failed",
			zap.String("email", req.Email),
			zap.String("ip", c.ClientIP()),
		)
		response.Error(c, http.StatusUnauthorized, "login failed", err)
		return
	}

	response.Success(c, http.StatusOK, "login successful", loginResp)
}

// Refresh rotates a refresh token and issues a new access token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req identity.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	resp, err := h.authService.Refresh(c.Request.Context(), &req, c.ClientIP())
	if err != nil {
		response.FromError(c, err, "failed to refresh token")
		return
	}

	response.Success(c, http.StatusOK, "token refreshed", resp)
}

// Logout revokes the current session and drops the actor's primed
// request state.
func (h *AuthHandler) Logout(c *gin.Context) {
	identityID := middleware.MustGetIdentityID(c)
	jti := middleware.MustGetJTI(c)

	if err := h.authService.Logout(c.Request.Context(), identityID, jti); err != nil {
		response.Error(c, http.StatusInternalServerError, "logout failed", err)
		return
	}
	h.registry.Evict(identityID)

	response.Success(c, http.StatusOK, "logout successful", nil)
}

// LogoutAll revokes every session for the identity.
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	identityID := middleware.MustGetIdentityID(c)

	if err := h.authService.LogoutAll(c.Request.Context(), identityID); err != nil {
		response.Error(c, http.StatusInternalServerError, "logout all failed", err)
		return
	}
	h.registry.Evict(identityID)

	if n := h.connections.ConnectedClients(identityID); n > 0 {
		h.logger.Info("dropping live connections on logout-all",
			zap.String("identity_id", identityID), zap.Int("connections", n))
		h.connections.DisconnectIdentity(identityID)
	}

	response.Success(c, http.StatusOK, "all sessions logged out", nil)
}

// GetMe returns the current identity profile.
func (h *AuthHandler) GetMe(c *gin.Context) {
	identityID := middleware.MustGetIdentityID(c)

	ident, err := h.authService.GetIdentity(c.Request.Context(), identityID)
	if err != nil {
		response.FromError(c, err, "failed to get profile")
		return
	}

	response.Success(c, http.StatusOK, "profile retrieved", ident)
}

// UpdateProfile updates mutable profile fields.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	identityID := middleware.MustGetIdentityID(c)

	var req identity.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	ident, err := h.authService.UpdateProfile(c.Request.Context(), identityID, &req)
	if err != nil {
		response.FromError(c, err, "failed to update profile")
		return
	}

	// Organization changes alter visibility, so the primed state is stale.
	h.registry.Evict(identityID)

	response.Success(c, http.StatusOK, "profile updated", ident)
}

// GetActiveSessions lists the identity's live sessions.
func (h *AuthHandler) GetActiveSessions(c *gin.Context) {
	identityID := middleware.MustGetIdentityID(c)

	sessions, err := h.sessions.ListActive(c.Request.Context(), identityID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to get sessions", err)
		return
	}

	response.Success(c, http.StatusOK, "sessions retrieved", sessions)
}

// RevokeSession revokes one session by its jti.
func (h *AuthHandler) RevokeSession(c *gin.Context) {
	identityID := middleware.MustGetIdentityID(c)
	jti := c.Param("session_id")

	if err := h.sessions.Revoke(c.Request.Context(), identityID, jti); err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to revoke session", err)
		return
	}

	response.Success(c, http.StatusOK, "session revoked", nil)
}
