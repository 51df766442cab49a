package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
		expected slog.Level
	}{
		{name: "default log level (info)", logLevel: "", expected: slog.LevelInfo},
		{name: "debug log level", logLevel: "debug", expected: slog.LevelDebug},
		{name: "warn log level", logLevel: "WARN", expected: slog.LevelWarn},
		{name: "error log level", logLevel: "error", expected: slog.LevelError},
		{name: "invalid log level defaults to info", logLevel: "invalid", expected: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.logLevel)
			assert.Equal(t, tt.expected, Level())
		})
	}
}

func TestNewLogger_JSONStructure(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	var buf bytes.Buffer
	logger := NewLogger(&buf)

	logger.Info("seed finished", slog.Int("articles", 6), slog.String("backend", "memory"))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "seed finished", entry["msg"])
	assert.Equal(t, float64(6), entry["articles"])
	assert.Equal(t, "memory", entry["backend"])
}

func TestNewLogger_DebugLevelFiltering(t *testing.T) {
	t.Setenv("LOG_LEVEL", "info")
	var buf bytes.Buffer
	logger := NewLogger(&buf)

	logger.Debug("hidden")
	assert.Empty(t, buf.String())

	t.Setenv("LOG_LEVEL", "debug")
	logger = NewLogger(&buf)
	logger.Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewTextLogger(t *testing.T) {
	var buf bytes.Buffer
	NewTextLogger(&buf).Warn("slow query", slog.String("operation", "GetTags"))

	out := buf.String()
	assert.True(t, strings.Contains(out, "level=WARN"), out)
	assert.Contains(t, out, "operation=GetTags")
}

func TestNew_LogFormat(t *testing.T) {
	tests := []struct {
		format   string
		wantJSON bool
	}{
		{"", true},
		{"json", true},
		{"text", false},
		{"TEXT", false},
	}
	for _, tt := range tests {
		t.Run("format="+tt.format, func(t *testing.T) {
			t.Setenv("LOG_FORMAT", tt.format)
			var buf bytes.Buffer
			New(&buf).Info("seeded", slog.Int("articles", 6))

			var entry map[string]interface{}
			err := json.Unmarshal(buf.Bytes(), &entry)
			if tt.wantJSON {
				require.NoError(t, err, buf.String())
				assert.Equal(t, "seeded", entry["msg"])
			} else {
				assert.Error(t, err)
				assert.Contains(t, buf.String(), "msg=seeded")
				assert.Contains(t, buf.String(), "articles=6")
			}
		})
	}
}

func TestWithOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := WithOperation(slog.New(slog.NewJSONHandler(&buf, nil)), "sqlite", "GetArticle")

	logger.Info("done")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "sqlite", entry["backend"])
	assert.Equal(t, "GetArticle", entry["operation"])
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := WithFields(slog.New(slog.NewJSONHandler(&buf, nil)), map[string]interface{}{
		"stream": "comments.csv",
		"line":   3,
	})

	logger.Info("record skipped")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "comments.csv", entry["stream"])
	assert.Equal(t, float64(3), entry["line"])
}

func TestFromContext(t *testing.T) {
	assert.Equal(t, slog.Default(), FromContext(context.Background()))

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))
}
