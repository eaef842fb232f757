package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesToFile(t *testing.T) {
	dir := t.TempDir()

	logger, err := New(Config{Level: "debug", Dir: dir, File: "server.log"})
	require.NoError(t, err)

	logger.Info("hello %s", "world")
	logger.InfoTag("HTTP", "request handled in %dms", 12)
	logger.Debug("debug line")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(filepath.Join(dir, "server.log"))
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, "hello world")
	assert.Contains(t, content, "[HTTP] request handled in 12ms")
	assert.Contains(t, content, "[DEBUG] debug line")
}

func TestNew_LevelFiltering(t *testing.T) {
	dir := t.TempDir()

	logger, err := New(Config{Level: "warn", Dir: dir, File: "server.log"})
	require.NoError(t, err)

	logger.Info("should be filtered")
	logger.Warn("should appear")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(filepath.Join(dir, "server.log"))
	require.NoError(t, err)

	assert.NotContains(t, string(data), "should be filtered")
	assert.Contains(t, string(data), "should appear")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.expected {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}
