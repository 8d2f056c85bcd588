// internal/config/config.go
// Centralized configuration management
// Loads from environment variables with sensible defaults

package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// MaxPollInterval is the upper bound for unread-count latency.
const MaxPollInterval = 30 * time.Second

// Config holds all application configuration
type Config struct {
	Environment string

	// Backend
	APIBaseURL     string
	RequestTimeout time.Duration

	// Session
	TokenFile string

	// Notifications
	NotificationPollInterval time.Duration
	NotificationPageSize     int

	// Chat
	ChatDebounce time.Duration

	// Logging
	LogLevel string
	LogFile  string

	// Metrics side server, disabled when empty
	MetricsAddr string

	// Development backend
	DevServerPort string
	JWTSecret     string
	BCryptCost    int
	TokenExpiry   time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),

		APIBaseURL:     getEnv("API_BASE_URL", "http://localhost:8001"),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", "15s"),

		TokenFile: getEnv("TOKEN_FILE", ""),

		NotificationPollInterval: getEnvDuration("NOTIFICATION_POLL_INTERVAL", "30s"),
		NotificationPageSize:     getEnvInt("NOTIFICATION_PAGE_SIZE", 20),

		ChatDebounce: getEnvDuration("CHAT_DEBOUNCE", "750ms"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", "gravelmatch.log"),

		MetricsAddr: getEnv("METRICS_ADDR", ""),

		DevServerPort: getEnv("DEV_SERVER_PORT", "8001"),
		JWTSecret:     getEnv("JWT_SECRET", "gravelmatch-dev-secret"),
		BCryptCost:    getEnvInt("BCRYPT_COST", 10),
		TokenExpiry:   getEnvDuration("TOKEN_EXPIRY", "168h"), // 7 days
	}

	if cfg.TokenFile == "" {
		cfg.TokenFile = defaultTokenFile()
	}

	return cfg
}

// Validate validates the configuration
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid API base URL: %q", c.APIBaseURL)
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}

	if c.NotificationPollInterval <= 0 || c.NotificationPollInterval > MaxPollInterval {
		return fmt.Errorf("notification poll interval must be in (0, %s]", MaxPollInterval)
	}

	if c.NotificationPageSize < 1 || c.NotificationPageSize > 100 {
		return fmt.Errorf("notification page size must be between 1 and 100")
	}

	if c.ChatDebounce < 0 {
		return fmt.Errorf("chat debounce cannot be negative")
	}

	if c.TokenFile == "" {
		return fmt.Errorf("token file not specified")
	}

	if c.JWTSecret == "gravelmatch-dev-secret" && c.IsProduction() {
		return fmt.Errorf("JWT secret must be changed for production")
	}

	return nil
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment returns true if running in development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".gravelmatch_token"
	}
	return dir + string(os.PathSeparator) + "gravelmatch" + string(os.PathSeparator) + "token"
}

// Helper functions

// getEnv gets a string value from environment with a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer value from environment with a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration value from environment with a default
func getEnvDuration(key string, defaultValue string) time.Duration {
	value := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		// If parsing fails, fall back to the default
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}
