package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port         int
	DevMode      bool
	DatabasePath string
	LogLevel     string

	JWTSecret       string
	TokenTTLMinutes int

	ReasoningServiceURL string
	ReasoningAPIKey     string

	BrokerBaseURL   string
	BrokerAPIKey    string
	BrokerAPISecret string

	UniversePath string
	ScreenPath   string

	Screen ScreenConfig
}

// Load reads configuration from environment variables and the optional
// screening-threshold file.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:                getEnvAsInt("PORT", 8000),
		DevMode:             getEnvAsBool("DEV_MODE", false),
		DatabasePath:        getEnv("DATABASE_PATH", "./data/alphaseeker.db"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		TokenTTLMinutes:     getEnvAsInt("TOKEN_TTL_MINUTES", 60*24),
		ReasoningServiceURL: getEnv("REASONING_SERVICE_URL", ""),
		ReasoningAPIKey:     getEnv("REASONING_API_KEY", ""),
		BrokerBaseURL:       getEnv("BROKER_BASE_URL", "https://developer.hdfcsec.com/oapi/v1"),
		BrokerAPIKey:        getEnv("BROKER_API_KEY", ""),
		BrokerAPISecret:     getEnv("BROKER_API_SECRET", ""),
		UniversePath:        getEnv("UNIVERSE_PATH", ""),
		ScreenPath:          getEnv("SCREEN_CONFIG_PATH", ""),
	}

	screen, err := LoadScreenConfig(cfg.ScreenPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load screen config: %w", err)
	}
	cfg.Screen = screen

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.JWTSecret == "" && !c.DevMode {
		return fmt.Errorf("JWT_SECRET is required outside dev mode")
	}
	if c.JWTSecret == "" {
		c.JWTSecret = "dev-only-secret"
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
