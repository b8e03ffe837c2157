// Package config handles application configuration.
package config

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/hkdf"
)

// Config holds all application configuration.
type Config struct {
	// Server settings
	Port    int
	BaseURL string

	// Database
	DatabaseURL string

	// Authentication
	JWTSecret          string
	AuthWebhookSecret  string // Svix signing secret for auth provider webhooks
	EncryptionKey      []byte // 32-byte key for AES-256-GCM encryption

	// Midtrans payment gateway
	MidtransServerKey string
	MidtransClientKey string
	MidtransProduction bool // sandbox unless explicitly enabled

	// Imagen generation service
	ImagenEndpoint string
	ImagenAPIKey   string

	// Generation settings
	TokenCostPerGenerate    int64
	MaxAnonymousGenerations int64
	InitialTokenGrant       int64
	GenerationPollInterval  time.Duration // how often to poll the imagen task endpoint
	GenerationPollDeadline  time.Duration // give up polling after this long

	// Payment gateway retry
	GatewayRetryAttempts int           // attempts for transient gateway failures
	GatewayRetryBackoff  time.Duration // initial backoff, doubles per attempt

	// Idle shutdown for scale-to-zero deployments. Zero disables it.
	IdleTimeout time.Duration

	// Reconciler
	ReconcilerEnabled  bool
	ReconcilerInterval time.Duration // how often to re-check stale pending topups
	ReconcilerMaxAge   time.Duration // pending topups older than this are expired locally

	// Object Storage (S3-compatible)
	StorageEnabled   bool
	StorageEndpoint  string // AWS_ENDPOINT_URL_S3
	StorageAccessKey string // AWS_ACCESS_KEY_ID
	StorageSecretKey string // AWS_SECRET_ACCESS_KEY
	StorageBucket    string
	StorageRegion    string
	StoragePublicURL string // CDN or public base URL, defaults to endpoint/bucket

	// CORS
	CORSOrigins []string
}

// Load reads configuration from environment variables. A .env file in
// the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnvInt("PORT", 8080),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
		DatabaseURL: getEnv("DATABASE_URL", "file:editaja.db?_journal=WAL&_timeout=5000"),

		JWTSecret:         getEnv("JWT_SECRET", ""),
		AuthWebhookSecret: getEnv("AUTH_WEBHOOK_SECRET", ""),

		MidtransServerKey:  getEnv("MIDTRANS_SERVER_KEY", ""),
		MidtransClientKey:  getEnv("MIDTRANS_CLIENT_KEY", ""),
		MidtransProduction: getEnvBool("MIDTRANS_PRODUCTION", false),

		ImagenEndpoint: getEnv("IMAGEN_ENDPOINT", ""),
		ImagenAPIKey:   getEnv("IMAGEN_API_KEY", ""),

		TokenCostPerGenerate:    getEnvInt64("TOKEN_COST_PER_GENERATE", 2),
		MaxAnonymousGenerations: getEnvInt64("MAX_ANONYMOUS_GENERATIONS", 3),
		InitialTokenGrant:       getEnvInt64("INITIAL_TOKEN_GRANT", 10),
		GenerationPollInterval:  getEnvDuration("GENERATION_POLL_INTERVAL", 3*time.Second),
		GenerationPollDeadline:  getEnvDuration("GENERATION_POLL_DEADLINE", 90*time.Second),

		GatewayRetryAttempts: getEnvInt("GATEWAY_RETRY_ATTEMPTS", 3),
		GatewayRetryBackoff:  getEnvDuration("GATEWAY_RETRY_BACKOFF", 500*time.Millisecond),

		IdleTimeout: getEnvDuration("IDLE_TIMEOUT", 0),

		ReconcilerEnabled:  getEnvBool("RECONCILER_ENABLED", true),
		ReconcilerInterval: getEnvDuration("RECONCILER_INTERVAL", 5*time.Minute),
		ReconcilerMaxAge:   getEnvDuration("RECONCILER_MAX_AGE", 24*time.Hour),

		StorageEndpoint:  getEnv("AWS_ENDPOINT_URL_S3", ""),
		StorageAccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
		StorageSecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		StorageBucket:    getEnvWithFallback("BUCKET_NAME", "STORAGE_BUCKET", ""),
		StorageRegion:    getEnv("AWS_REGION", "auto"),

		CORSOrigins: getEnvSlice("CORS_ORIGINS", []string{"http://localhost:3000"}),
	}

	// Enable storage if bucket is configured
	cfg.StorageEnabled = cfg.StorageBucket != "" && cfg.StorageEndpoint != ""
	cfg.StoragePublicURL = getEnv("STORAGE_PUBLIC_URL", "")
	if cfg.StoragePublicURL == "" && cfg.StorageEnabled {
		cfg.StoragePublicURL = strings.TrimRight(cfg.StorageEndpoint, "/") + "/" + cfg.StorageBucket
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	// Set up encryption key (derive from JWT secret if not explicitly set)
	encKeyStr := getEnv("ENCRYPTION_KEY", "")
	if encKeyStr != "" {
		decoded, err := base64.StdEncoding.DecodeString(encKeyStr)
		if err != nil || len(decoded) != 32 {
			return nil, fmt.Errorf("ENCRYPTION_KEY must be a base64-encoded 32-byte key")
		}
		cfg.EncryptionKey = decoded
	} else {
		cfg.EncryptionKey = deriveEncryptionKey(cfg.JWTSecret)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		lower := strings.ToLower(value)
		return lower == "true" || lower == "1" || lower == "yes"
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

func getEnvWithFallback(primary, fallback, defaultValue string) string {
	if value := os.Getenv(primary); value != "" {
		return value
	}
	if value := os.Getenv(fallback); value != "" {
		return value
	}
	return defaultValue
}

// deriveEncryptionKey creates a 32-byte AES-256 key from a secret string
// using HKDF with SHA-256. The salt and info strings bind the key to this
// application and purpose.
func deriveEncryptionKey(secret string) []byte {
	salt := []byte("editaja-api-encryption-key-v1")
	info := []byte("aes-256-gcm-encryption")

	hkdfReader := hkdf.New(sha256.New, []byte(secret), salt, info)

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdfReader, key); err != nil {
		panic("hkdf: failed to derive key: " + err.Error())
	}

	return key
}
