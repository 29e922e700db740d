package postgres

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inmobiliaria-api/pkg/config"
)

func TestZerologTracer(t *testing.T) {
	var buf bytes.Buffer
	tracer := zerologTracer(zerolog.New(&buf))

	tracer.Log(context.Background(), tracelog.LogLevelError, "Query", map[string]any{"sql": "SELECT 1", "args": []any{}})

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "error", line["level"])
	assert.Equal(t, "Query", line["message"])
	assert.Equal(t, "SELECT 1", line["sql"])
}

func TestNewPool_DSNInvalido(t *testing.T) {
	_, err := NewPool(context.Background(), config.DBConfig{DatabaseURL: "postgres://%zz"}, "test", zerolog.Nop())
	assert.Error(t, err)
}
