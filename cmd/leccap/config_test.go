package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leccap", "config.toml")

	require.NoError(t, initConfig(path, false))
	_, err := os.Stat(path)
	require.NoError(t, err)

	err = initConfig(path, false)
	require.Error(t, err, "existing file needs --force")
	assert.Contains(t, err.Error(), "--force")

	assert.NoError(t, initConfig(path, true))
}

func TestTestConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, initConfig(path, false))

	t.Setenv("LECCAP_SESSION", "")
	var out bytes.Buffer
	err := testConfig(path, &out)
	require.Error(t, err)
	assert.Contains(t, out.String(), "Missing environment variables:")
	assert.Contains(t, out.String(), "LECCAP_SESSION")

	t.Setenv("LECCAP_SESSION", "sess=abc")
	out.Reset()
	require.NoError(t, testConfig(path, &out))
	assert.Contains(t, out.String(), "session set")
	assert.Contains(t, out.String(), "Configuration valid!")
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.in))
		})
	}
}
