package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KasumiMercury/primind-expense-assistant/internal/observability/logging"
)

func TestContextHandlerSuccess(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(logging.NewHandler(&buf, logging.HandlerConfig{
		Level:         slog.LevelInfo,
		Service:       logging.ServiceInfo{Name: "expense-assistant", Version: "v1"},
		Environment:   logging.EnvDev,
		DefaultModule: logging.Module("chat"),
	}))

	ctx := logging.WithRequestID(context.Background(), "req-1")
	logger.InfoContext(ctx, "hello", slog.String("event", "test.event"))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, "hello", got["message"])
	assert.Equal(t, "INFO", got["severity"])
	assert.Equal(t, "req-1", got["request_id"])
	assert.Equal(t, "chat", got["module"])
	assert.Equal(t, "dev", got["env"])
	assert.Equal(t, "test.event", got["event"])
}

func TestContextHandlerModuleOverrideSuccess(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(logging.NewHandler(&buf, logging.HandlerConfig{
		Level:         slog.LevelInfo,
		DefaultModule: logging.Module("chat"),
	}))

	ctx := logging.WithModule(context.Background(), logging.Module("reminder"))
	logger.InfoContext(ctx, "fired")

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, "reminder", got["module"])
	assert.NotContains(t, got, "request_id")
}

func TestContextHandlerLevelFilterSuccess(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(logging.NewHandler(&buf, logging.HandlerConfig{Level: slog.LevelWarn}))
	logger.Info("dropped")

	assert.Empty(t, buf.String())
}

func TestValidateAndExtractRequestIDSuccess(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		keepSame bool
	}{
		{name: "valid id kept", input: "abc-123_x.y", keepSame: true},
		{name: "empty replaced", input: "", keepSame: false},
		{name: "unsafe chars replaced", input: "bad id\n", keepSame: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := logging.ValidateAndExtractRequestID(tt.input)

			if tt.keepSame {
				assert.Equal(t, tt.input, got)
			} else {
				assert.NotEqual(t, tt.input, got)
				assert.NotEmpty(t, got)
			}
		})
	}
}

func TestParseLevelSuccess(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, logging.ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, logging.ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, logging.ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, logging.ParseLevel("whatever"))
}
