package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evstack/zerog-da/pkg/config"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(config.LogConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info().Msg("dropped")
	logger.Warn().Str("component", "zerog_da").Msg("kept")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "zerog_da", entry["component"])
	assert.Contains(t, entry, "time")
}

func TestNewLogger_TextAndFallbackLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(config.LogConfig{Level: "chatty", Format: "text"}, &buf)

	logger.Debug().Msg("hidden")
	logger.Info().Msg("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden", "unknown levels fall back to info")
	assert.Contains(t, out, "visible")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())), "text format is not JSON")
}

func TestNewLogger_Trace(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(config.LogConfig{Level: "info", Format: "json", Trace: true}, &buf)
	logger.Error().Msg("with caller")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Contains(t, entry, "caller")
}
