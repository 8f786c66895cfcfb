package logger

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesJSONToFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "app.log")

	log, err := New(&Config{
		Level:  "info",
		Format: "json",
		Output: logPath,
	})
	require.NoError(t, err)

	log.Info("service started", slog.String("service", "api"))
	log.Debug("should be filtered out")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "service started", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "api", entry["service"])
}

func TestNewDebugLevelPassesDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "app.log")

	log, err := New(&Config{
		Level:  "debug",
		Format: "json",
		Output: logPath,
	})
	require.NoError(t, err)

	log.Debug("verbose detail")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "verbose detail")
}

func TestNewInvalidOutputPath(t *testing.T) {
	_, err := New(&Config{
		Level:  "info",
		Format: "json",
		Output: filepath.Join(t.TempDir(), "missing-dir", "app.log"),
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open log output")
}

func TestWithCarriesAttributes(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "app.log")

	log, err := New(&Config{
		Level:  "info",
		Format: "json",
		Output: logPath,
	})
	require.NoError(t, err)

	log.With("worker_id", "worker-1").Info("claimed job")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry))
	assert.Equal(t, "worker-1", entry["worker_id"])
}

func TestNewEmptyFormatUsesConsole(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "app.log")

	log, err := New(&Config{
		Level:  "info",
		Output: logPath,
	})
	require.NoError(t, err)

	log.Info("console fallback")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)

	// console output is not JSON
	line := strings.TrimSpace(string(data))
	assert.False(t, json.Valid([]byte(line)))
	assert.Contains(t, line, "console fallback")
}

func TestNewDefault(t *testing.T) {
	log := NewDefault()
	require.NotNil(t, log)
	require.NotNil(t, log.Logger)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"unknown", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run("level "+tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.input))
		})
	}
}
