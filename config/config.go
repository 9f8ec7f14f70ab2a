package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the agent
type Config struct {
	// Server settings
	Port         int
	Host         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Authentication (empty API key disables auth)
	APIKey    string
	JWTSecret string

	// Security
	AllowedOrigins []string
	RateLimitRPS   int

	// Monitoring
	TickInterval     time.Duration
	AlertHistorySize int
	GPUSysfsRoot     string

	// Allowed operations
	AllowedServices []string

	// Logging
	LogLevel string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load(getEnvFile())

	cfg := &Config{
		Port:             getEnvInt("PORT", 8093),
		Host:             getEnv("HOST", "0.0.0.0"),
		ReadTimeout:      time.Duration(getEnvInt("READ_TIMEOUT_SECONDS", 30)) * time.Second,
		WriteTimeout:     time.Duration(getEnvInt("WRITE_TIMEOUT_SECONDS", 30)) * time.Second,
		APIKey:           getEnv("API_KEY", ""),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		AllowedOrigins:   getEnvSlice("ALLOWED_ORIGINS", []string{"*"}),
		RateLimitRPS:     getEnvInt("RATE_LIMIT_RPS", 100),
		TickInterval:     time.Duration(getEnvInt("TICK_INTERVAL_SECONDS", 1)) * time.Second,
		AlertHistorySize: getEnvInt("ALERT_HISTORY_SIZE", 100),
		GPUSysfsRoot:     getEnv("GPU_SYSFS_ROOT", "/sys/class/drm"),
		AllowedServices: getEnvSlice("ALLOWED_SERVICES", []string{
			"procwatch-agent",
			"docker",
			"nginx",
			"ssh",
		}),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if cfg.TickInterval <= 0 {
		return nil, fmt.Errorf("invalid tick interval: %v", cfg.TickInterval)
	}
	if cfg.AlertHistorySize <= 0 {
		return nil, fmt.Errorf("invalid alert history size: %d", cfg.AlertHistorySize)
	}

	if cfg.JWTSecret == "" {
		// Use API key as fallback for JWT secret
		cfg.JWTSecret = cfg.APIKey
	}

	return cfg, nil
}

// getEnvFile returns the path to the .env file
func getEnvFile() string {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		return envFile
	}

	if _, err := os.Stat(".env"); err == nil {
		return ".env"
	}

	// Fall back to the executable's directory
	exe, err := os.Executable()
	if err == nil {
		dir := strings.TrimSuffix(exe, "/procwatch-agent")
		envPath := dir + "/.env"
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	return ".env"
}

// LoadWithDefaults loads config with defaults for testing
func LoadWithDefaults() *Config {
	return &Config{
		Port:             8093,
		Host:             "0.0.0.0",
		ReadTimeout:      30 * time.Second,
		WriteTimeout:     30 * time.Second,
		APIKey:           "test-api-key",
		JWTSecret:        "test-jwt-secret",
		AllowedOrigins:   []string{"*"},
		RateLimitRPS:     100,
		TickInterval:     time.Second,
		AlertHistorySize: 100,
		GPUSysfsRoot:     "/sys/class/drm",
		AllowedServices:  []string{"test-service"},
		LogLevel:         "info",
	}
}

// Addr returns the server address string
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// AuthEnabled reports whether API authentication is configured
func (c *Config) AuthEnabled() bool {
	return c.APIKey != ""
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

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
