package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port          string
	Environment   string
	PublicBaseURL string

	// Database
	DatabaseURL string

	// JWT
	JWTSecret string

	// Storage
	StoragePath       string
	StorageSigningKey string
	SignedURLTTLSecs  int
	MaxUploadBytes    int64

	// Rate limiting (window minutes / max events per window)
	ApplyRateWindowMinutes  int
	ApplyRateMax            int
	UploadRateWindowMinutes int
	UploadRateMax           int
	RateEventRetentionHours int

	// Background worker
	WorkerCount int

	// CORS
	AllowedOrigins []string

	// Sentry
	SentryDSN string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:                    getEnv("PORT", "8080"),
		Environment:             getEnv("ENVIRONMENT", "development"),
		PublicBaseURL:           getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		DatabaseURL:             getEnv("DATABASE_URL", ""),
		JWTSecret:               getEnv("JWT_SECRET", ""),
		StoragePath:             getEnv("STORAGE_PATH", "./storage"),
		StorageSigningKey:       getEnv("STORAGE_SIGNING_KEY", ""),
		SignedURLTTLSecs:        getEnvAsInt("SIGNED_URL_TTL_SECONDS", 600),
		MaxUploadBytes:          int64(getEnvAsInt("MAX_UPLOAD_BYTES", 5*1024*1024)),
		ApplyRateWindowMinutes:  getEnvAsInt("APPLY_RATE_WINDOW_MINUTES", 60),
		ApplyRateMax:            getEnvAsInt("APPLY_RATE_MAX", 3),
		UploadRateWindowMinutes: getEnvAsInt("UPLOAD_RATE_WINDOW_MINUTES", 60),
		UploadRateMax:           getEnvAsInt("UPLOAD_RATE_MAX", 20),
		RateEventRetentionHours: getEnvAsInt("RATE_EVENT_RETENTION_HOURS", 24),
		WorkerCount:             getEnvAsInt("WORKER_COUNT", 2),
		AllowedOrigins:          getEnvAsSlice("ALLOWED_ORIGINS", []string{"*"}),
		SentryDSN:               getEnv("SENTRY_DSN", ""),
	}

	// Validate required configuration
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" && cfg.Environment == "production" {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}

	// Set default JWT secret for development
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-change-in-production"
	}

	// Signed file links fall back to the JWT secret when no dedicated key is set
	if cfg.StorageSigningKey == "" {
		cfg.StorageSigningKey = cfg.JWTSecret
	}

	return cfg, nil
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as integer
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsSlice reads an environment variable as comma-separated slice
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
