// Package config provides centralized default values for the Mycomize Grow API
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

var envLoaded sync.Once

// loadEnvFile applies .env overrides once. godotenv never overwrites
// variables already present in the environment.
func loadEnvFile() {
	envLoaded.Do(func() {
		if err := godotenv.Load(); err == nil {
			log.Println("Loading configuration overrides from .env file...")
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

var (
	// Server Configuration
	Port               string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration

	// Database Configuration
	DBDriver                 string
	DBPath                   string
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeMinutes int
	SlowQueryThreshold       time.Duration

	// Auth Configuration
	JWTSecret             string
	AccessTokenExpiration time.Duration
	BcryptCost            int

	// SSE Configuration
	SSEKeepaliveInterval time.Duration
	SSEStaleThreshold    time.Duration
	SSESweepInterval     time.Duration
	SSEQueueDepth        int
	MaxSSEConnections    int

	// Stripe Configuration
	StripeSecretKey      string
	StripePublishableKey string
	StripeWebhookSecret  string

	// CORS Configuration
	AllowedOrigins []string
)

func init() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8000")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	// SSE streams outlive any sane write timeout; disabled by default.
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 0)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)

	// Database
	DBDriver = getEnvString("DB_DRIVER", "sqlite3")
	DBPath = getEnvString("DB_PATH", "./data/mycomize-grow.db")
	DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 3)
	DBConnMaxLifetimeMinutes = getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)
	SlowQueryThreshold = getEnvDuration("SLOW_QUERY_THRESHOLD", 50*time.Millisecond)

	// Auth
	JWTSecret = getEnvString("JWT_SECRET", "")
	AccessTokenExpiration = getEnvDuration("ACCESS_TOKEN_EXPIRATION", 30*time.Minute)
	BcryptCost = getEnvInt("BCRYPT_COST", 10)

	// SSE
	SSEKeepaliveInterval = getEnvDuration("SSE_KEEPALIVE_INTERVAL", 30*time.Second)
	SSEStaleThreshold = getEnvDuration("SSE_STALE_THRESHOLD", 300*time.Second)
	SSESweepInterval = getEnvDuration("SSE_SWEEP_INTERVAL", 30*time.Second)
	SSEQueueDepth = getEnvInt("SSE_QUEUE_DEPTH", 64)
	MaxSSEConnections = getEnvInt("MAX_SSE_CONNECTIONS", 1000)

	// Stripe
	StripeSecretKey = getEnvString("STRIPE_SECRET_KEY", "")
	StripePublishableKey = getEnvString("STRIPE_PUBLISHABLE_KEY", "")
	StripeWebhookSecret = getEnvString("STRIPE_WEBHOOK_SECRET", "")

	// CORS
	AllowedOrigins = strings.Split(getEnvString("ALLOWED_ORIGINS",
		"http://localhost:3000,http://localhost:5173,http://localhost:19006,http://127.0.0.1:3000,http://[::1]:3000"), ",")
}
