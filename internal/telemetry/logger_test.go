package telemetry

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSONConsole(t *testing.T) {
	var buf bytes.Buffer
	logger, closer := NewLogger(&buf, LogOptions{Format: "json"})
	defer closer.Close()

	logger.Info("configuration updated", "user_id", "default")
	logger.Debug("hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "configuration updated", entry["msg"])
	assert.Equal(t, "default", entry["user_id"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNewLogger_TextDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, closer := NewLogger(&buf, LogOptions{Format: "text", Debug: true})
	defer closer.Close()

	logger.Debug("verifying", "id", 3)
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "id=3")
}

func TestNewLogger_TeesToFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "biowatch.log")

	logger, closer := NewLogger(&buf, LogOptions{Format: "text", File: path, MaxSizeMB: 1, MaxBackups: 1})
	logger.With("component", "test").Warn("rating discrepancy")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &entry))
	assert.Equal(t, "rating discrepancy", entry["msg"])
	assert.Equal(t, "test", entry["component"])
	assert.Contains(t, buf.String(), "rating discrepancy")
}
