package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}

func TestInitTo(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	l := InitTo(&buf, "warn", "json")
	assert.False(t, l.Enabled(context.Background(), slog.LevelInfo))

	slog.Warn("catalog unavailable", "status", 503)
	assert.Contains(t, buf.String(), `"msg":"catalog unavailable"`)
	assert.Contains(t, buf.String(), `"status":503`)
}
