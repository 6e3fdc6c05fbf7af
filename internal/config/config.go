// Package config provides configuration for the progress service binaries
package config

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Database  DatabaseConfig
	Redis     RedisConfig
	Server    ServerConfig
	Logging   LoggingConfig
	CORS      CORSConfig
	JWT       JWTConfig
	Progress  ProgressConfig
	Scheduler SchedulerConfig
	APIKey    string
}

// DatabaseConfig holds database connection and transaction settings
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	// TxIsolation is the isolation level used by every engine transaction
	TxIsolation sql.IsolationLevel
	// TxMaxAttempts is how many times a conflicting transaction is run before giving up
	TxMaxAttempts int
	TxRetryDelay  time.Duration
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port int
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// JWTConfig holds the secret used to verify access tokens issued by the identity service
type JWTConfig struct {
	Secret string
}

// ProgressConfig holds progress engine settings
type ProgressConfig struct {
	// CompletionThreshold is the watched ratio at which a heartbeat completes a lesson
	CompletionThreshold float64
}

// SchedulerConfig holds cron expressions for the reconciliation scheduler
type SchedulerConfig struct {
	StatsRecalcCron  string
	TenantRepairCron string
	LockTTL          time.Duration
}

// DSN returns the MySQL data source name
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&multiStatements=true",
		c.User, c.Password, c.Host, c.Port, c.DBName)
}

// RedisAddr returns the host:port address of the Redis server
func (c RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// .env is optional, the environment wins
	godotenv.Load()

	cfg := &Config{}

	// Database configuration
	for key, dst := range map[string]*string{
		"DB_HOST":     &cfg.Database.Host,
		"DB_USER":     &cfg.Database.User,
		"DB_PASSWORD": &cfg.Database.Password,
		"DB_NAME":     &cfg.Database.DBName,
	} {
		value := os.Getenv(key)
		if value == "" {
			return nil, fmt.Errorf("%s is required", key)
		}
		*dst = value
	}

	dbPortStr := os.Getenv("DB_PORT")
	if dbPortStr == "" {
		return nil, fmt.Errorf("DB_PORT is required")
	}
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	cfg.Database.Port = dbPort

	isolation, err := parseIsolation(getEnv("DB_TX_ISOLATION", "serializable"))
	if err != nil {
		return nil, err
	}
	cfg.Database.TxIsolation = isolation

	if cfg.Database.TxMaxAttempts, err = getEnvInt("DB_TX_MAX_ATTEMPTS", 3); err != nil {
		return nil, err
	}
	if cfg.Database.TxMaxAttempts < 1 {
		return nil, fmt.Errorf("DB_TX_MAX_ATTEMPTS must be at least 1")
	}
	if cfg.Database.TxRetryDelay, err = getEnvDuration("DB_TX_RETRY_DELAY", 50*time.Millisecond); err != nil {
		return nil, err
	}

	// Server configuration
	if cfg.Server.Port, err = getEnvInt("SERVER_PORT", 8080); err != nil {
		return nil, err
	}

	cfg.Logging.Level = getEnv("LOG_LEVEL", "info")
	cfg.CORS.AllowedOrigins = parseOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"))

	// Tokens are issued by the identity service, this service only verifies them
	cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	// API key guards the authoring subsystem endpoints
	cfg.APIKey = os.Getenv("API_KEY")

	// Redis configuration (worker and scheduler)
	cfg.Redis.Host = getEnv("REDIS_HOST", "localhost")
	if cfg.Redis.Port, err = getEnvInt("REDIS_PORT", 6379); err != nil {
		return nil, err
	}
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	if cfg.Redis.DB, err = getEnvInt("REDIS_DB", 0); err != nil {
		return nil, err
	}

	thresholdStr := getEnv("PROGRESS_COMPLETION_THRESHOLD", "0.9")
	threshold, err := strconv.ParseFloat(thresholdStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid PROGRESS_COMPLETION_THRESHOLD: %w", err)
	}
	if threshold <= 0 || threshold > 1 {
		return nil, fmt.Errorf("PROGRESS_COMPLETION_THRESHOLD must be in (0, 1]")
	}
	cfg.Progress.CompletionThreshold = threshold

	cfg.Scheduler.StatsRecalcCron = getEnv("STATS_RECALC_CRON", "@every 30m")
	cfg.Scheduler.TenantRepairCron = getEnv("TENANT_REPAIR_CRON", "0 3 * * *")
	if cfg.Scheduler.LockTTL, err = getEnvDuration("SCHEDULER_LOCK_TTL", 5*time.Minute); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

// parseOrigins splits a comma-separated origin list, defaulting to every origin
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

func parseIsolation(value string) (sql.IsolationLevel, error) {
	switch strings.ToLower(strings.ReplaceAll(value, "-", "_")) {
	case "default", "":
		return sql.LevelDefault, nil
	case "read_committed":
		return sql.LevelReadCommitted, nil
	case "repeatable_read":
		return sql.LevelRepeatableRead, nil
	case "serializable":
		return sql.LevelSerializable, nil
	default:
		return sql.LevelDefault, fmt.Errorf("invalid DB_TX_ISOLATION: %q", value)
	}
}
