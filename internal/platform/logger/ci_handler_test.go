package logger_test

import (
	"log/slog"
	"testing"

	"github.com/phrazzld/scry-quest/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCIHandlerAddsMetadata checks that CI variables become log attributes.
func TestCIHandlerAddsMetadata(t *testing.T) {
	t.Setenv("CI", "true")
	t.Setenv("GITHUB_RUN_ID", "4242")
	t.Setenv("GITHUB_SHA", "abc123")

	buf := &logger.TestLogBuffer{}
	l := slog.New(logger.NewCIHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug, AddSource: true}))
	l.With(slog.String("component", "ci")).Info("hello from ci")

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, "true", entry["ci"])
	assert.Equal(t, "4242", entry["ci_run_id"])
	assert.Equal(t, "abc123", entry["ci_commit"])
	assert.Equal(t, "ci", entry["component"])
	assert.Contains(t, entry, "timestamp_nano")
	assert.Contains(t, entry["source_file"], "ci_handler_test.go")
}

func TestCIHandlerRespectsLevel(t *testing.T) {
	t.Setenv("CI", "true")

	buf := &logger.TestLogBuffer{}
	l := slog.New(logger.NewCIHandler(buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	l.Info("dropped")
	l.WithGroup("g").Warn("kept", slog.Int("n", 3))

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0]["msg"])
}

func TestNewHandlerSelectsCIHandler(t *testing.T) {
	t.Setenv("CI", "1")

	h := logger.NewHandler(&logger.TestLogBuffer{}, nil)
	_, ok := h.(*logger.CIHandler)
	assert.True(t, ok)
}
