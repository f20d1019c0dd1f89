package log_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/airdraw/pkg/log"
)

func TestNewUsesInfoLevel(t *testing.T) {
	logger := log.New("svc", "dev", "1.0.0")
	ctx := context.Background()

	assert.False(t, logger.Handler().Enabled(ctx, slog.LevelDebug))
	assert.True(t, logger.Handler().Enabled(ctx, slog.LevelInfo))
}

func TestNewWithWriterOutputsBaseAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithWriter(
		&buf, "svc-name", "prod", "2.3.4", slog.LevelDebug,
	)
	logger.Info("hello", slog.Int("count", 1))

	var got map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &got))

	assertAttr(t, got, "service", "svc-name")
	assertAttr(t, got, "env", "prod")
	assertAttr(t, got, "version", "2.3.4")
	assertAttr(t, got, "count", float64(1))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		level slog.Level
		ok    bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{" warning ", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"chatty", slog.LevelInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lvl, ok := log.ParseLevel(tt.name)
			assert.Equal(t, tt.level, lvl)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func assertAttr(t *testing.T, got map[string]any, key string, expected any) {
	t.Helper()
	val, ok := got[key]
	assert.True(t, ok)
	assert.Equal(t, expected, val)
}
