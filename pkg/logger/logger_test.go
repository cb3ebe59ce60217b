package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewReopenableWriteSyncer(t *testing.T) {
	tempDir := t.TempDir()

	t.Run("successful creation", func(t *testing.T) {
		logFilePath := filepath.Join(tempDir, "fleetctl.log")
		ws, err := NewReopenableWriteSyncer(logFilePath)
		require.NoError(t, err)
		require.NotNil(t, ws)
		defer ws.Close()
		_, err = os.Stat(logFilePath)
		assert.NoError(t, err)
	})
	t.Run("path is a directory", func(t *testing.T) {
		ws, err := NewReopenableWriteSyncer(tempDir)
		assert.Error(t, err)
		assert.Nil(t, ws)
	})
}

func TestReopenableWriteSyncer_Reload(t *testing.T) {
	tempDir := t.TempDir()
	logFilePath := filepath.Join(tempDir, "fleetctl.log")
	rotatedPath := filepath.Join(tempDir, "fleetctl.log.1")

	ws, err := NewReopenableWriteSyncer(logFilePath)
	require.NoError(t, err)
	defer ws.Close()

	_, err = ws.Write([]byte("before rotate\n"))
	require.NoError(t, err)

	require.NoError(t, os.Rename(logFilePath, rotatedPath))
	require.NoError(t, ws.Reload())

	_, err = ws.Write([]byte("after rotate\n"))
	require.NoError(t, err)
	require.NoError(t, ws.Sync())

	rotated, err := os.ReadFile(rotatedPath)
	require.NoError(t, err)
	assert.Equal(t, "before rotate\n", string(rotated))

	current, err := os.ReadFile(logFilePath)
	require.NoError(t, err)
	assert.Equal(t, "after rotate\n", string(current))
}

func TestLogLevels(t *testing.T) {
	ws, err := NewReopenableWriteSyncer(os.DevNull)
	require.NoError(t, err)
	defer ws.Close()

	testCases := []struct {
		name          string
		logLevel      string
		expectedLevel zapcore.Level
	}{
		{"debug level", "debug", zap.DebugLevel},
		{"info level", "info", zap.InfoLevel},
		{"warn level", "warn", zap.WarnLevel},
		{"error level", "error", zap.ErrorLevel},
		{"fatal level", "fatal", zap.FatalLevel},
		{"invalid level", "invalid", zap.InfoLevel},
		{"empty level", "", zap.InfoLevel},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			serviceLogger := NewLogger(tc.logLevel, ws)
			require.NotNil(t, serviceLogger)
			assert.True(t, serviceLogger.Core().Enabled(tc.expectedLevel))

			cliLogger := NewCLILogger(tc.logLevel)
			require.NotNil(t, cliLogger)
			assert.True(t, cliLogger.Core().Enabled(tc.expectedLevel))
		})
	}
}
