// internal/app/server.go
package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"fleetwash-service/internal/config"
	"fleetwash-service/internal/db"
	adminHandler "fleetwash-service/internal/handlers/admin"
	authHandler "fleetwash-service/internal/handlers/auth"
	locationHandler "fleetwash-service/internal/handlers/location"
	vehicleHandler "fleetwash-service/internal/handlers/vehicle"
	washHandler "fleetwash-service/internal/handlers/washrequest"
	wsHandler "fleetwash-service/internal/handlers/websocket"
	"fleetwash-service/internal/metrics"
	"fleetwash-service/internal/middleware"
	"fleetwash-service/internal/pkg/jwt"
	"fleetwash-service/internal/pkg/session"
	"fleetwash-service/internal/repository/postgres"
	authUsecase "fleetwash-service/internal/service/auth"
	locationUsecase "fleetwash-service/internal/service/location"
	"fleetwash-service/internal/service/technician"
	vehicleUsecase "fleetwash-service/internal/service/vehicle"
	washsvc "fleetwash-service/internal/service/washrequest"
	"fleetwash-service/internal/storage"
	"fleetwash-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg         config.AppConfig
	engine      *gin.Engine
	logger      *zap.Logger
	authService *authUsecase.AuthService
	registry    *washsvc.Registry
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start() error {
	ctx := context.Background()

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB()
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       0,
		PoolSize: 10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Println("[REDIS] connected")

	// ----- Logger -----
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	s.logger = logger

	// ----- Metrics -----
	metrics.Register()

	// ----- JWT Manager -----
	jwtManager, err := jwt.LoadAndBuild(s.cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to load JWT manager: %w", err)
	}

	// ----- Session Manager & Rate Limiter -----
	sessionManager := session.NewManager(redisClient)
	rateLimiter := session.NewRateLimiter(redisClient)

	// ----- Object storage -----
	objectStore, err := storage.NewS3Store(ctx, storage.Config{
		Bucket:        s.cfg.S3Bucket,
		Region:        s.cfg.S3Region,
		Endpoint:      s.cfg.S3Endpoint,
		PublicBaseURL: s.cfg.S3PublicBaseURL,
	})
	if err != nil {
		return fmt.Errorf("failed to set up object storage: %w", err)
	}

	// ----- Repositories -----
	dbWrapper := postgres.NewDB(pool)
	identityRepo := postgres.NewIdentityRepository(pool)
	vehicleRepo := postgres.NewVehicleRepository(pool)
	locationRepo := postgres.NewLocationRepository(pool)
	washRepo := postgres.NewWashRequestRepository(pool, vehicleRepo, locationRepo)
	statusRepo := postgres.NewWashStatusRepository(dbWrapper)

	// ----- WebSocket Hub -----
	hub := websocket.NewHub(jwtManager.Verifier, sessionManager, logger)
	go hub.Run(ctx)

	// ----- Services -----
	authService := authUsecase.NewAuthService(identityRepo, jwtManager, sessionManager, rateLimiter, logger)
	s.authService = authService

	registry := washsvc.NewRegistry(washRepo, washsvc.RegistryConfig{
		PricePerVehicle:      s.cfg.PricePerVehicle,
		ReconcileDelay:       s.cfg.ReconcileDelay,
		AcceptReconcileDelay: s.cfg.AcceptReconcileDelay,
	}, logger)
	s.registry = registry

	workflowService := technician.NewWorkflowService(statusRepo, objectStore, hub, logger)
	vehicleService := vehicleUsecase.NewVehicleService(vehicleRepo, objectStore, logger)
	locationService := locationUsecase.NewLocationService(locationRepo, logger)

	// ----- Bootstrap admin -----
	if err := s.initializeAdmin(); err != nil {
		logger.Error("failed to initialize admin", zap.Error(err))
	}

	// ----- Handlers -----
	authHandlerInst := authHandler.NewAuthHandler(authService, sessionManager, registry, hub, logger)
	washHandlerInst := washHandler.NewWashRequestHandler(registry, workflowService, statusRepo, logger)
	vehicleHandlerInst := vehicleHandler.NewVehicleHandler(vehicleService, logger)
	locationHandlerInst := locationHandler.NewLocationHandler(locationService, logger)
	statsHandlerInst := adminHandler.NewStatsHandler(washRepo, logger)
	wsHandlerInst := wsHandler.NewWebSocketHandler(hub, logger)

	// ----- Middlewares -----
	authMiddleware := middleware.NewAuthMiddleware(authService)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.MetricsMiddleware(),
		middleware.CORSMiddleware(),
	)

	// ----- Router -----
	SetupRouter(s.engine, logger, &Handlers{
		AuthHandler:     authHandlerInst,
		WashHandler:     washHandlerInst,
		VehicleHandler:  vehicleHandlerInst,
		LocationHandler: locationHandlerInst,
		StatsHandler:    statsHandlerInst,
		WSHandler:       wsHandlerInst,
		AuthMiddleware:  authMiddleware,
	})

	log.Printf("server running on %s", s.cfg.HTTPAddr)
	return s.engine.Run(s.cfg.HTTPAddr)
}

// Shutdown releases the reconcile timers held by primed containers.
func (s *Server) Shutdown() {
	if s.registry != nil {
		s.registry.Close()
	}
}

// initializeAdmin creates the admin account if it doesn't exist.
func (s *Server) initializeAdmin() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	fullName := os.Getenv("ADMIN_NAME")

	if email == "" {
		email = "admin@fleetwash.app"
		s.logger.Warn("ADMIN_EMAIL not set, using default", zap.String("email", email))
	}
	if password == "" {
		s.logger.Warn("ADMIN_PASSWORD not set, skipping admin bootstrap")
		return nil
	}
	if fullName == "" {
		fullName = "Administrator"
	}

	if len(password) < 8 {
		return fmt.Errorf("admin password must be at least 8 characters")
	}

	return s.authService.EnsureAdminExists(ctx, email, password, fullName)
}
