package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFromStrings(t *testing.T) {
	cfg := ConfigFromStrings(" DEBUG ", "text")
	assert.Equal(t, DebugLevel, cfg.Level)
	assert.True(t, cfg.Pretty)

	cfg = ConfigFromStrings("warn", "json")
	assert.Equal(t, WarnLevel, cfg.Level)
	assert.False(t, cfg.Pretty)
}

func TestLevelMapping(t *testing.T) {
	assert.Equal(t, zerolog.ErrorLevel, ErrorLevel.zerologLevel())
	assert.Equal(t, zerolog.InfoLevel, LogLevel("verbose").zerologLevel())
}

func TestComponentLoggerTagsEntries(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: InfoLevel, Output: &buf})

	l := Component("sessions")
	l.Info().Msg("joined")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "sessions", entry["component"])
	assert.Equal(t, "joined", entry["message"])
}
