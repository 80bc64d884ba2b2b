package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestElidesPhotoData(t *testing.T) {
	t.Parallel()
	out := logSingleField(t, "data", "data:image/jpeg;base64,"+strings.Repeat("A", 1000))
	require.Equal(t, "[1023 bytes]", out["data"])
}

func TestElidesPayloadBytes(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, slog.LevelDebug)
	logger.Info("test", "payload", []byte("abcd"))

	out := decodeLine(t, buf.Bytes())
	require.Equal(t, "[4 bytes]", out["payload"])
}

func TestElidesNestedGroups(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, slog.LevelDebug)
	logger.Info("test", slog.Group("photo", slog.String("id", "ph1"), slog.String("data", "xyz")))

	out := decodeLine(t, buf.Bytes())
	photo := out["photo"].(map[string]any)
	require.Equal(t, "ph1", photo["id"])
	require.Equal(t, "[3 bytes]", photo["data"])
}

func TestElidesWithAttrs(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, slog.LevelDebug).With("snapshot", "{...}")
	logger.Info("test")

	out := decodeLine(t, buf.Bytes())
	require.Equal(t, "[5 bytes]", out["snapshot"])
}

func TestOrdinaryFieldsPassThrough(t *testing.T) {
	t.Parallel()
	out := logSingleField(t, "collection", "parts")
	require.Equal(t, "parts", out["collection"])
}

func TestLevelFiltering(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, slog.LevelWarn)
	logger.Info("hidden")
	require.Zero(t, buf.Len())
	logger.Warn("shown")
	require.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err)
		require.Equal(t, tt.want, got)
	}

	_, err := ParseLevel("loud")
	require.Error(t, err)
}

func TestNewWritesToFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "logs", "refurb.log")

	logger, closer, err := New(Options{Level: "debug", File: path})
	require.NoError(t, err)
	logger.Debug("database opened", "path", "refurb.db")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "database opened")

	_, _, err = New(Options{Level: "info"})
	require.Error(t, err)
}

func TestLogRotationCreatesNewFile(t *testing.T) {
	logDir := t.TempDir()
	logPath := filepath.Join(logDir, "refurb.log")

	writer, err := logFile(Options{File: logPath, MaxSizeMB: 1, MaxFiles: 2})
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })

	chunk := bytes.Repeat([]byte("a"), 512*1024)
	for i := 0; i < 3; i++ {
		_, err = writer.Write(chunk)
		require.NoError(t, err)
	}

	files, err := filepath.Glob(filepath.Join(logDir, "refurb*"))
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(files), 2)
}

func TestLogFileDefaultsAndErrors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	lf, err := logFile(Options{File: filepath.Join(dir, "nested", "refurb.log")})
	require.NoError(t, err)
	require.Equal(t, defaultMaxSizeMB, lf.MaxSize)
	require.Equal(t, defaultMaxFiles, lf.MaxBackups)
	require.True(t, lf.Compress)
	require.DirExists(t, filepath.Join(dir, "nested"))

	_, err = logFile(Options{File: dir})
	require.ErrorContains(t, err, "is a directory")

	_, _, err = New(Options{Level: "info", File: dir})
	require.Error(t, err)
}

func logSingleField(t *testing.T, key, value string) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, slog.LevelDebug)
	logger.Info("test", key, value)
	return decodeLine(t, buf.Bytes())
}

func decodeLine(t *testing.T, line []byte) map[string]any {
	t.Helper()
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(line), &out))
	return out
}
