package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application configuration parameters.
type Config struct {
	DatabaseURL       string
	ServerPort        int
	RateLimitCapacity int
}

// Load reads configuration from environment variables. A .env file is
// loaded first when present, which is convenient for local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	capacity := 0
	if capStr := os.Getenv("RATE_LIMIT_CAPACITY"); capStr != "" {
		capacity, err = strconv.Atoi(capStr)
		if err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT_CAPACITY environment variable: %w", err)
		}
		if capacity <= 0 {
			return nil, fmt.Errorf("RATE_LIMIT_CAPACITY must be positive, got %d", capacity)
		}
	}

	return &Config{
		DatabaseURL:       dbURL,
		ServerPort:        port,
		RateLimitCapacity: capacity,
	}, nil
}
