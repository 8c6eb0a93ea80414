package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "warn", "json")

	l.Info("dropped")
	assert.Zero(t, buf.Len())

	l.Warn("kept", "n", 1)
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "kept", line["msg"])
	assert.Equal(t, "WARN", line["level"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}

func TestFromContextAddsQueryID(t *testing.T) {
	var buf bytes.Buffer
	base := New(&buf, "info", "text")

	FromContext(context.Background(), base).Info("plain")
	assert.NotContains(t, buf.String(), "query_id")

	buf.Reset()
	ctx := WithQueryID(context.Background(), "q-17")
	FromContext(ctx, base).Info("tagged")
	assert.Contains(t, buf.String(), "query_id=q-17")

	id, ok := QueryID(ctx)
	assert.True(t, ok)
	assert.Equal(t, "q-17", id)
}
