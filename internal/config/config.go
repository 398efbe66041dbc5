// Package config provides configuration for the application
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Logging  LoggingConfig
	CORS     CORSConfig
	JWT      JWTConfig
	MediaAPI MediaAPIConfig
	Cache    CacheConfig
	Upload   UploadConfig
}

// DatabaseConfig holds database connection settings of the asset cache
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port               int
	MaxRequestSize     int64
	RateLimitPerMinute int
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// JWTConfig holds JWT token configuration
type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration
}

// MediaAPIConfig holds settings of the upstream media API
type MediaAPIConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// CacheConfig holds asset cache settings
type CacheConfig struct {
	TTL  time.Duration
	Size int
	// PurgeSchedule is a standard five-field cron expression or an @-descriptor
	PurgeSchedule string
}

// UploadConfig holds upload rule settings
type UploadConfig struct {
	RulesFile            string
	StrictExtensionMatch bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{}

	// Database configuration. The asset cache is disabled when DB_HOST is empty.
	cfg.Database.Host = os.Getenv("DB_HOST")
	if cfg.Database.Host != "" {
		dbPortStr := os.Getenv("DB_PORT")
		if dbPortStr == "" {
			return nil, fmt.Errorf("DB_PORT is required")
		}
		dbPort, err := strconv.Atoi(dbPortStr)
		if err != nil {
			return nil, fmt.Errorf("invalid DB_PORT: %w", err)
		}
		cfg.Database.Port = dbPort

		cfg.Database.User = os.Getenv("DB_USER")
		if cfg.Database.User == "" {
			return nil, fmt.Errorf("DB_USER is required")
		}

		cfg.Database.Password = os.Getenv("DB_PASSWORD")
		if cfg.Database.Password == "" {
			return nil, fmt.Errorf("DB_PASSWORD is required")
		}

		cfg.Database.DBName = os.Getenv("DB_NAME")
		if cfg.Database.DBName == "" {
			return nil, fmt.Errorf("DB_NAME is required")
		}
	}

	// Server configuration
	serverPort, err := intFromEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	cfg.Server.Port = serverPort

	maxRequestSize, err := intFromEnv("MAX_REQUEST_SIZE", 100*1024*1024)
	if err != nil {
		return nil, err
	}
	cfg.Server.MaxRequestSize = int64(maxRequestSize)

	rateLimit, err := intFromEnv("RATE_LIMIT_PER_MINUTE", 100)
	if err != nil {
		return nil, err
	}
	cfg.Server.RateLimitPerMinute = rateLimit

	// Logging configuration
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info" // default level
	}
	cfg.Logging.Level = logLevel

	// CORS configuration
	cfg.CORS.AllowedOrigins = parseOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"))

	// JWT configuration
	cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	cfg.JWT.AccessTokenExpiry, err = durationFromEnv("JWT_ACCESS_TOKEN_EXPIRY", time.Hour)
	if err != nil {
		return nil, err
	}

	// Media API configuration
	cfg.MediaAPI.BaseURL = strings.TrimRight(os.Getenv("MEDIA_API_BASE_URL"), "/")
	if cfg.MediaAPI.BaseURL == "" {
		return nil, fmt.Errorf("MEDIA_API_BASE_URL is required")
	}
	cfg.MediaAPI.APIKey = os.Getenv("MEDIA_API_KEY") // optional

	cfg.MediaAPI.Timeout, err = durationFromEnv("MEDIA_API_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	// Cache configuration
	cfg.Cache.TTL, err = durationFromEnv("CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	cfg.Cache.Size, err = intFromEnv("CACHE_SIZE", 1024)
	if err != nil {
		return nil, err
	}

	cfg.Cache.PurgeSchedule = os.Getenv("CACHE_PURGE_SCHEDULE")
	if cfg.Cache.PurgeSchedule == "" {
		cfg.Cache.PurgeSchedule = "*/5 * * * *"
	}

	// Upload rules configuration
	cfg.Upload.RulesFile = os.Getenv("RULES_FILE") // optional

	if strict := os.Getenv("UPLOAD_STRICT_EXTENSION_MATCH"); strict != "" {
		cfg.Upload.StrictExtensionMatch, err = strconv.ParseBool(strict)
		if err != nil {
			return nil, fmt.Errorf("invalid UPLOAD_STRICT_EXTENSION_MATCH: %w", err)
		}
	}

	return cfg, nil
}

// CacheEnabled reports whether the persistent asset cache database is configured
func (c *Config) CacheEnabled() bool {
	return c.Database.Host != ""
}

// DSN returns the database connection string
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
	)
}

func intFromEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return value, nil
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return value, nil
}

// parseOrigins splits a comma-separated origin list, defaulting to all origins
func parseOrigins(raw string) []string {
	origins := make([]string, 0)
	for _, origin := range strings.Split(raw, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
