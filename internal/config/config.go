package config

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the console backend.
type Config struct {
	// HTTP server
	HTTPPort int

	// Settings database (sqlite file DSN or postgres URL)
	DatabaseURL string

	// Device endpoints
	DeviceBaseURL string // REST, e.g. http://device:9000
	DeviceWSURL   string // push channel, e.g. ws://device:9001

	// Snapshot poll cadence
	PollInterval time.Duration

	// Topic definitions file (YAML); empty uses the built-in defaults
	TopicsFile string

	// Stream reconnection policy
	ReconnectAttempts int
	ReconnectDelay    time.Duration

	// Authentication
	AdminUsername  string
	AdminPassword  string
	JWTSecret      string
	JWTExpiryHours int

	// Data directory for generated secrets
	DataDir string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.HTTPPort = getEnvAsIntOrDefault("HTTP_PORT", 3000)
	cfg.DatabaseURL = getEnvOrDefault("DATABASE_URL", "file:alertdeck.db")

	cfg.DeviceBaseURL = getEnvOrDefault("DEVICE_BASE_URL", "http://localhost:9000")
	cfg.DeviceWSURL = getEnvOrDefault("DEVICE_WS_URL", "ws://localhost:9001")
	cfg.PollInterval = time.Duration(getEnvAsIntOrDefault("POLL_INTERVAL_SECONDS", 15)) * time.Second
	cfg.TopicsFile = os.Getenv("TOPICS_FILE")

	cfg.ReconnectAttempts = getEnvAsIntOrDefault("STREAM_RECONNECT_ATTEMPTS", 10)
	cfg.ReconnectDelay = time.Duration(getEnvAsIntOrDefault("STREAM_RECONNECT_DELAY_SECONDS", 3)) * time.Second

	cfg.AdminUsername = getEnvOrDefault("ADMIN_USERNAME", "admin")
	cfg.AdminPassword = os.Getenv("ADMIN_PASSWORD") // no default, must be set
	cfg.JWTExpiryHours = getEnvAsIntOrDefault("JWT_EXPIRY_HOURS", 24)

	cfg.DataDir = getEnvOrDefault("DATA_DIR", "/alertdeck")
	cfg.JWTSecret = loadOrGenerateJWTSecret(filepath.Join(cfg.DataDir, ".jwt_secret"))

	return cfg, nil
}

// loadOrGenerateJWTSecret loads the JWT secret from file or generates and
// persists a new one. The JWT_SECRET env var overrides both.
func loadOrGenerateJWTSecret(secretPath string) string {
	if envSecret := os.Getenv("JWT_SECRET"); envSecret != "" {
		return envSecret
	}

	if data, err := os.ReadFile(secretPath); err == nil {
		if secret := strings.TrimSpace(string(data)); secret != "" {
			return secret
		}
	}

	secret := generateSecureSecret(32)

	if err := os.MkdirAll(filepath.Dir(secretPath), 0755); err != nil {
		log.Printf("Warning: could not create directory for JWT secret: %v", err)
		return secret
	}
	if err := os.WriteFile(secretPath, []byte(secret), 0600); err != nil {
		log.Printf("Warning: could not save JWT secret to file: %v", err)
	} else {
		log.Printf("Generated and saved new JWT secret to %s", secretPath)
	}
	return secret
}

func generateSecureSecret(bytes int) string {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		log.Printf("Warning: could not generate secure random bytes: %v", err)
		return "fallback-insecure-secret-please-set-jwt-secret-env"
	}
	return hex.EncodeToString(b)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
