package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the gateway reads from the environment. It is
// built once in main and handed to the components that need it.
type Config struct {
	Port   string
	AppEnv string // "development" or "production"

	DatabaseURL string

	// AuthServer is the base URL of the external auth server that owns
	// sessions and user records.
	AuthServer string

	// ServerURL is the base URL of the external file storage service.
	ServerURL string

	CORSAllowedOrigins string

	RedisHost     string
	RedisPort     string
	RedisDB       int
	RedisPassword string
	EventQueue    string

	// ExternalTimeout bounds every call to the auth server, the storage
	// service and the queue.
	ExternalTimeout time.Duration
}

// Load reads .env (when present) and the process environment into a Config.
// DATABASE_URL and AUTH_SERVER have no sensible defaults and are required.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		AppEnv:             getEnv("APP_ENV", "development"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		AuthServer:         os.Getenv("AUTH_SERVER"),
		ServerURL:          getEnv("SERVER_URL", "http://localhost:80"),
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		RedisHost:          getEnv("REDIS_HOST", "localhost"),
		RedisPort:          getEnv("REDIS_PORT", "6379"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		EventQueue:         getEnv("EVENT_QUEUE", "events"),
		ExternalTimeout:    15 * time.Second,
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.AuthServer == "" {
		return nil, fmt.Errorf("AUTH_SERVER is required")
	}

	db, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("REDIS_DB must be an integer: %w", err)
	}
	cfg.RedisDB = db

	if raw := os.Getenv("EXTERNAL_TIMEOUT_SECONDS"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("EXTERNAL_TIMEOUT_SECONDS must be an integer: %w", err)
		}
		cfg.ExternalTimeout = time.Duration(secs) * time.Second
	}

	return cfg, nil
}

// RedisAddr returns the host:port pair for the Redis client.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

// IsDevelopment reports whether the gateway runs with development defaults
// (debug logging, error details in responses).
func (c *Config) IsDevelopment() bool {
	return c.AppEnv != "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
