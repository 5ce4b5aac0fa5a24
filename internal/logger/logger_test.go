package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_DisabledDiscards(t *testing.T) {
	closeFn, err := Init(Options{Enabled: false})
	require.NoError(t, err)
	require.NoError(t, closeFn())
	assert.False(t, L.Enabled(t.Context(), slog.LevelError))
}

func TestInit_StderrText(t *testing.T) {
	t.Cleanup(func() { L = Discard() })

	var out bytes.Buffer
	_, err := Init(Options{Enabled: true, Level: slog.LevelDebug, Stderr: &out})
	require.NoError(t, err)

	L.Debug("segment loaded", "start", "0x1000")
	assert.Contains(t, out.String(), "segment loaded")
	assert.Contains(t, out.String(), "start=0x1000")
}

func TestInit_LogDirWritesJSON(t *testing.T) {
	t.Cleanup(func() { L = Discard() })

	dir := t.TempDir()
	closeFn, err := Init(Options{Enabled: true, LogDir: dir})
	require.NoError(t, err)

	L.Info("load complete", "successful", 2)
	require.NoError(t, closeFn())

	name := logPrefix + time.Now().Format("2006-01-02") + logSuffix
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"load complete"`)
	assert.Contains(t, string(data), `"successful":2`)
}

func TestCleanOldLogs(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)

	stale := filepath.Join(dir, logPrefix+"2025-01-01"+logSuffix)
	fresh := filepath.Join(dir, logPrefix+"2025-06-29"+logSuffix)
	other := filepath.Join(dir, "notes.txt")
	for _, p := range []string{stale, fresh, other} {
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}

	cleanOldLogs(dir, now)

	assert.NoFileExists(t, stale)
	assert.FileExists(t, fresh)
	assert.FileExists(t, other)
}

func TestOr(t *testing.T) {
	custom := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	assert.Same(t, custom, Or(custom))
	assert.Same(t, L, Or(nil))
}
