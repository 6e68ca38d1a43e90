package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
}

func TestNewWritesJSON(t *testing.T) {
	restoreDefault(t)
	var out bytes.Buffer

	logger, cleanup, err := newLogger(&out, "info", "", "json")
	require.NoError(t, err)
	defer cleanup()

	logger.Info("unit of work committed", "op", "save photo")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &entry))
	assert.Equal(t, "unit of work committed", entry["msg"])
	assert.Equal(t, "save photo", entry["op"])
	assert.Same(t, logger, slog.Default())
}

func TestNewTextFormat(t *testing.T) {
	restoreDefault(t)
	var out bytes.Buffer

	logger, cleanup, err := newLogger(&out, "info", "", "text")
	require.NoError(t, err)
	defer cleanup()

	logger.Info("hello", "k", "v")
	assert.Contains(t, out.String(), "msg=hello")
	assert.Contains(t, out.String(), "k=v")
}

func TestNewFiltersBelowLevel(t *testing.T) {
	restoreDefault(t)
	var out bytes.Buffer

	logger, cleanup, err := newLogger(&out, "warn", "", "json")
	require.NoError(t, err)
	defer cleanup()

	logger.Info("dropped")
	logger.Debug("dropped")
	assert.Empty(t, out.String())

	logger.Warn("rollback failed")
	assert.Contains(t, out.String(), "rollback failed")
}

func TestNewTeesToFile(t *testing.T) {
	restoreDefault(t)
	var out bytes.Buffer
	path := filepath.Join(t.TempDir(), "txdao.log")

	logger, cleanup, err := newLogger(&out, "debug", path, "json")
	require.NoError(t, err)

	logger.Debug("to both")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to both")
	assert.Contains(t, out.String(), "to both")
}

func TestNewBadLogFile(t *testing.T) {
	restoreDefault(t)

	_, _, err := New("info", filepath.Join(t.TempDir(), "missing", "dir", "x.log"), "json")
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}
