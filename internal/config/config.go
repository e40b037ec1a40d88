package config

import (
	"os"
	"strconv"
	"time"

	"fleetwash-service/internal/pkg/jwt"
)

type AppConfig struct {
	// Server
	HTTPAddr  string
	RedisAddr string
	RedisPass string

	// JWT
	JWT jwt.Config

	// Object storage
	S3Bucket        string
	S3Region        string
	S3Endpoint      string // optional, for localstack/minio
	S3PublicBaseURL string

	// Pricing
	PricePerVehicle int64 // cents

	// Reconciliation refresh delays after a successful mutation.
	// Acceptance-class mutations re-sync sooner than generic ones.
	// Tunable, not a contract.
	ReconcileDelay       time.Duration
	AcceptReconcileDelay time.Duration
}

// Load loads environment variables into AppConfig.
func Load() AppConfig {
	return AppConfig{
		HTTPAddr:  getEnv("HTTP_ADDR", ":8000"),
		RedisAddr: getEnv("REDIS_ADDR", "redis-fleetwash:6379"),
		RedisPass: getEnv("REDIS_PASS", ""),

		JWT: jwt.Config{
			PrivPath: getEnv("JWT_PRIVATE_KEY_PATH", "/app/secrets/jwt_private.pem"),
			PubPath:  getEnv("JWT_PUBLIC_KEY_PATH", "/app/secrets/jwt_public.pem"),
			Issuer:   "fleetwash",
			Audience: "fleetwash-users",
			TTL:      720 * time.Hour,
			KID:      "fleetwash-key",
		},

		S3Bucket:        getEnv("S3_BUCKET", "fleetwash-media"),
		S3Region:        getEnv("S3_REGION", "us-east-2"),
		S3Endpoint:      getEnv("S3_ENDPOINT", ""),
		S3PublicBaseURL: getEnv("S3_PUBLIC_BASE_URL", ""),

		PricePerVehicle: getEnvInt64("PRICE_PER_VEHICLE_CENTS", 2500),

		ReconcileDelay:       getEnvDuration("RECONCILE_DELAY", 2*time.Second),
		AcceptReconcileDelay: getEnvDuration("ACCEPT_RECONCILE_DELAY", time.Second),
	}
}

// --- Helper functions ---

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
