package config

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("DB_USER", "progress")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "progress")
	t.Setenv("JWT_SECRET", "jwt-secret")
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name          string
		env           map[string]string
		expectedError bool
		check         func(t *testing.T, cfg *Config)
	}{
		{
			name: "defaults",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
				assert.Equal(t, sql.LevelSerializable, cfg.Database.TxIsolation)
				assert.Equal(t, 3, cfg.Database.TxMaxAttempts)
				assert.Equal(t, 50*time.Millisecond, cfg.Database.TxRetryDelay)
				assert.Equal(t, 0.9, cfg.Progress.CompletionThreshold)
				assert.Equal(t, "@every 30m", cfg.Scheduler.StatsRecalcCron)
				assert.Equal(t, "localhost:6379", cfg.Redis.RedisAddr())
				assert.Equal(t, "progress:secret@tcp(localhost:3306)/progress?parseTime=true&charset=utf8mb4&multiStatements=true", cfg.Database.DSN())
			},
		},
		{
			name: "overrides",
			env: map[string]string{
				"CORS_ALLOWED_ORIGINS":          "https://a.example, ,https://b.example",
				"DB_TX_ISOLATION":               "read-committed",
				"DB_TX_MAX_ATTEMPTS":            "5",
				"PROGRESS_COMPLETION_THRESHOLD": "0.8",
				"REDIS_PORT":                    "6380",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
				assert.Equal(t, sql.LevelReadCommitted, cfg.Database.TxIsolation)
				assert.Equal(t, 5, cfg.Database.TxMaxAttempts)
				assert.Equal(t, 0.8, cfg.Progress.CompletionThreshold)
				assert.Equal(t, 6380, cfg.Redis.Port)
			},
		},
		{
			name:          "missing jwt secret",
			env:           map[string]string{"JWT_SECRET": ""},
			expectedError: true,
		},
		{
			name:          "invalid isolation",
			env:           map[string]string{"DB_TX_ISOLATION": "snapshot"},
			expectedError: true,
		},
		{
			name:          "threshold out of range",
			env:           map[string]string{"PROGRESS_COMPLETION_THRESHOLD": "1.5"},
			expectedError: true,
		},
		{
			name:          "zero attempts",
			env:           map[string]string{"DB_TX_MAX_ATTEMPTS": "0"},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			cfg, err := Load()

			if tt.expectedError {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}
