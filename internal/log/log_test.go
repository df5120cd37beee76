package log_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/five82/dashterm/internal/log"
)

func TestContextAttrsAreAdded(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, slog.LevelInfo).With("component", "test")

	ctx := log.ContextAttrs(context.Background(), slog.String("run_id", "abc"))
	logger.InfoContext(ctx, "hello")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, "hello", rec["msg"])
	require.Equal(t, "abc", rec["run_id"])
	require.Equal(t, "test", rec["component"])
}

func TestContextAttrsDoNotLeakBetweenChildren(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, slog.LevelInfo)

	parent := log.ContextAttrs(context.Background(), slog.String("a", "1"))
	left := log.ContextAttrs(parent, slog.String("side", "left"))
	_ = log.ContextAttrs(parent, slog.String("side", "right"))

	logger.InfoContext(left, "x")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, "left", rec["side"])
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, log.ParseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, log.ParseLevel("warn"))
	require.Equal(t, slog.LevelError, log.ParseLevel("error"))
	require.Equal(t, slog.LevelInfo, log.ParseLevel("whatever"))
}

func TestOpenFileAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dashterm.log")

	logger, closer, err := log.Open(path, slog.LevelDebug)
	require.NoError(t, err)
	logger.Debug("first")
	require.NoError(t, closer.Close())

	logger, closer, err = log.Open(path, slog.LevelDebug)
	require.NoError(t, err)
	logger.Debug("second")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, 2, bytes.Count(data, []byte("\n")))
}
