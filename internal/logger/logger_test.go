package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInit(t *testing.T) {
	previous := Logger
	t.Cleanup(func() { Logger = previous })

	tests := []struct {
		name          string
		level         string
		expectedLevel zapcore.Level
		expectedError bool
	}{
		{name: "debug", level: "debug", expectedLevel: zapcore.DebugLevel},
		{name: "default", level: "", expectedLevel: zapcore.InfoLevel},
		{name: "warn with spaces", level: " WARN ", expectedLevel: zapcore.WarnLevel},
		{name: "error", level: "error", expectedLevel: zapcore.ErrorLevel},
		{name: "unknown level", level: "verbose", expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Init(tt.level)

			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, Logger.Core().Enabled(tt.expectedLevel))
			if tt.expectedLevel > zapcore.DebugLevel {
				assert.False(t, Logger.Core().Enabled(tt.expectedLevel-1))
			}
		})
	}
}
