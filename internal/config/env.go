package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	defaultSQLitePath       = "/data/memory.db"
	defaultMaxContextSize   = 128000
	defaultWarningThreshold = 0.8

	// development fallback only; production requires an explicit key
	devAPIKey = "default-dev-key"
)

// loads configuration from environment variables
func LoadEnvironmentVariables() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		_ = err // not an error - production environments may not have .env file
	}

	environment := os.Getenv("ENVIRONMENT")
	if environment == "" {
		environment = "development"
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL environment variable is required")
	}

	sqlitePath := os.Getenv("SQLITE_DB_PATH")
	if sqlitePath == "" {
		sqlitePath = defaultSQLitePath
	}

	apiKey := os.Getenv("MEMORY_API_KEY")
	if apiKey == "" {
		if environment == "production" {
			return nil, fmt.Errorf("MEMORY_API_KEY environment variable is required in production")
		}

		apiKey = devAPIKey
	}

	maxContextSize := defaultMaxContextSize
	if raw := os.Getenv("MAX_CONTEXT_SIZE"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("MAX_CONTEXT_SIZE must be a positive integer, got %q", raw)
		}

		maxContextSize = parsed
	}

	warningThreshold := defaultWarningThreshold
	if raw := os.Getenv("WARNING_THRESHOLD"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 || parsed > 1 {
			return nil, fmt.Errorf("WARNING_THRESHOLD must be a fraction in (0,1], got %q", raw)
		}

		warningThreshold = parsed
	}

	return &Config{
		Environment:      environment,
		RedisURL:         redisURL,
		SQLitePath:       sqlitePath,
		APIKey:           apiKey,
		MaxContextSize:   maxContextSize,
		WarningThreshold: warningThreshold,
		HeliconeURL:      os.Getenv("HELICONE_URL"),
	}, nil
}
