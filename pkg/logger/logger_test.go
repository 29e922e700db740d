package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel(" DEBUG "))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("ruidoso"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
}

func TestComponent_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter(Config{App: "inmobiliaria-api", Env: "development", Format: "json", Level: "info"}, &buf)

	caja := l.Component("caja")
	caja.Info().Str("caja_id", "c1").Msg("caja abierta")
	caja.Debug().Msg("descartado por nivel")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "inmobiliaria-api", line["app"])
	assert.Equal(t, "caja", line["component"])
	assert.Equal(t, "c1", line["caja_id"])
}

func TestConsoleSegunEntorno(t *testing.T) {
	assert.True(t, console(Config{Env: "development"}))
	assert.False(t, console(Config{Env: "production"}))
	assert.False(t, console(Config{Env: "development", Format: "json"}))
	assert.True(t, console(Config{Env: "production", Format: "console"}))
}
