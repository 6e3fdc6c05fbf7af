package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestInit(t *testing.T) {
	original := Logger
	t.Cleanup(func() { Logger = original })

	tests := []struct {
		name          string
		level         string
		expectedError bool
	}{
		{name: "debug", level: "debug"},
		{name: "warn", level: "warn"},
		{name: "unknown level", level: "loud", expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Init(tt.level)
			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, Logger)
			assert.True(t, Logger.Core().Enabled(zap.ErrorLevel))
		})
	}
}
