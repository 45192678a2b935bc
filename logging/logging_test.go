package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"murmur/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(config.Log{Level: "info", Format: "json"}, &buf)

	logger.Debug("hidden")
	logger.Info("murmur created", "murmur_id", 7)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "murmur created", entry["msg"])
	assert.Equal(t, "murmur", entry["service"])
	assert.EqualValues(t, 7, entry["murmur_id"])
}

func TestNewWithWriter_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(config.Log{Level: "debug", Format: "text"}, &buf)

	logger.Debug("listening", "addr", ":8080")

	assert.Contains(t, buf.String(), "msg=listening")
	assert.Contains(t, buf.String(), "addr=:8080")
}
