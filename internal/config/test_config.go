package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadTestConfig loads the MySQL settings for integration tests from TEST_* variables.
// A Config with an empty Database.Host is returned when the variables are not set,
// which integration tests treat as "skip".
func LoadTestConfig() (*Config, error) {
	// Try project root first, then the working directory
	_ = godotenv.Load("../../.env")
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.Database.Host = os.Getenv("TEST_DB_HOST")
	cfg.Database.User = os.Getenv("TEST_DB_USER")
	cfg.Database.Password = os.Getenv("TEST_DB_PASSWORD")
	cfg.Database.DBName = os.Getenv("TEST_DB_NAME")
	if cfg.Database.Host == "" || cfg.Database.User == "" || cfg.Database.DBName == "" {
		return &Config{}, nil
	}

	port, err := getEnvInt("TEST_DB_PORT", 3306)
	if err != nil {
		return nil, err
	}
	cfg.Database.Port = port

	isolation, err := parseIsolation(getEnv("TEST_DB_TX_ISOLATION", "serializable"))
	if err != nil {
		return nil, err
	}
	cfg.Database.TxIsolation = isolation
	cfg.Database.TxMaxAttempts = 5

	cfg.JWT.Secret = getEnv("TEST_JWT_SECRET", "integration-secret")
	cfg.APIKey = os.Getenv("TEST_API_KEY")
	cfg.Progress.CompletionThreshold = 0.9
	if raw := os.Getenv("TEST_PROGRESS_COMPLETION_THRESHOLD"); raw != "" {
		if threshold, err := strconv.ParseFloat(raw, 64); err == nil {
			cfg.Progress.CompletionThreshold = threshold
		}
	}

	return cfg, nil
}
