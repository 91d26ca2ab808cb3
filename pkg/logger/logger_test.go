package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/config"
)

func TestFromContextAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(newHandler(&buf, "info", "json")))
	t.Cleanup(func() { slog.SetDefault(prev) })

	ctx := WithRequestID(context.Background(), "req-42")
	assert.Equal(t, "req-42", RequestID(ctx))
	FromContext(ctx).Info("hello")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "req-42", rec["request_id"])
	assert.Equal(t, "hello", rec["msg"])
}

func TestFromContextWithoutID(t *testing.T) {
	assert.Empty(t, RequestID(context.Background()))
	assert.NotNil(t, FromContext(context.Background()))
}

func TestSetupWritesFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "pm.log")
	closer := Setup(config.LoggingConfig{Level: "debug", Format: "json", File: path, MaxSizeMB: 1})
	WithComponent("test").Debug("to file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"test"`)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}
