// internal/app/router.go
package app

import (
	adminHandler "fleetwash-service/internal/handlers/admin"
	authHandler "fleetwash-service/internal/handlers/auth"
	locationHandler "fleetwash-service/internal/handlers/location"
	vehicleHandler "fleetwash-service/internal/handlers/vehicle"
	washHandler "fleetwash-service/internal/handlers/washrequest"
	wsHandler "fleetwash-service/internal/handlers/websocket"
	"fleetwash-service/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Handlers struct {
	AuthHandler     *authHandler.AuthHandler
	WashHandler     *washHandler.WashRequestHandler
	VehicleHandler  *vehicleHandler.VehicleHandler
	LocationHandler *locationHandler.LocationHandler
	StatsHandler    *adminHandler.StatsHandler
	WSHandler       *wsHandler.WebSocketHandler
	AuthMiddleware  *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, logger *zap.Logger, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health & Metrics ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ==================== WebSocket ====================
	r.GET("/ws", h.WSHandler.HandleConnection)

	// ==================== Public Auth Routes ====================
	authPublic := api.Group("/auth")
	{
		authPublic.POST("/register", h.AuthHandler.Register)
		authPublic.POST("/login", h.AuthHandler.Login)
		authPublic.POST("/refresh", h.AuthHandler.Refresh)
	}

	// ==================== Authenticated Auth Routes ====================
	authProtected := api.Group("/auth")
	authProtected.Use(h.AuthMiddleware.Auth())
	{
		authProtected.POST("/logout", h.AuthHandler.Logout)
		authProtected.POST("/logout-all", h.AuthHandler.LogoutAll)
		authProtected.GET("/me", h.AuthHandler.GetMe)
		authProtected.PUT("/profile", h.AuthHandler.UpdateProfile)
		authProtected.GET("/sessions", h.AuthHandler.GetActiveSessions)
		authProtected.DELETE("/sessions/:session_id", h.AuthHandler.RevokeSession)
	}

	// ==================== Wash Requests ====================
	washes := api.Group("/wash-requests")
	washes.Use(h.AuthMiddleware.Auth())
	{
		washes.GET("", h.WashHandler.List)
		washes.POST("", h.WashHandler.Create)
		washes.GET("/:id", h.WashHandler.Get)
		washes.GET("/:id/statuses", h.WashHandler.Statuses)
		washes.POST("/:id/cancel", h.WashHandler.Cancel)
		washes.DELETE("/:id", h.WashHandler.Remove)

		// Technician workflow
		tech := washes.Group("")
		tech.Use(h.AuthMiddleware.RequireRole("technician"))
		{
			tech.POST("/:id/accept", h.WashHandler.Accept)
			tech.POST("/:id/schedule", h.WashHandler.Schedule)
			tech.POST("/:id/start", h.WashHandler.Start)
			tech.GET("/:id/reopen", h.WashHandler.Reopen)
			tech.POST("/:id/complete", h.WashHandler.Complete)
			tech.POST("/:id/cancel-acceptance", h.WashHandler.CancelAcceptance)
		}
	}

	// ==================== Vehicles ====================
	vehicles := api.Group("/vehicles")
	vehicles.Use(h.AuthMiddleware.Auth())
	{
		vehicles.GET("", h.VehicleHandler.List)
		vehicles.POST("", h.VehicleHandler.Create)
		vehicles.GET("/:id", h.VehicleHandler.Get)
		vehicles.PUT("/:id", h.VehicleHandler.Update)
		vehicles.DELETE("/:id", h.VehicleHandler.Delete)
	}

	// ==================== Locations ====================
	locations := api.Group("/locations")
	locations.Use(h.AuthMiddleware.Auth())
	{
		locations.GET("", h.LocationHandler.List)
		locations.POST("", h.LocationHandler.Create)
		locations.PUT("/:id", h.LocationHandler.Update)
		locations.PUT("/:id/default", h.LocationHandler.SetDefault)
		locations.DELETE("/:id", h.LocationHandler.Delete)
	}

	// ==================== Admin ====================
	admin := api.Group("/admin")
	admin.Use(h.AuthMiddleware.Auth(), h.AuthMiddleware.RequireRole("admin"))
	{
		admin.GET("/stats", h.StatsHandler.GetStats)
		admin.GET("/ws-stats", h.WSHandler.GetStats)
		admin.POST("/broadcast", h.WSHandler.Broadcast)
	}
}
