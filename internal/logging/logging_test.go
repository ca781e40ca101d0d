package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IvanBrykalov/shardmap/cache"
	"github.com/IvanBrykalov/shardmap/internal/config"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("verbose")
	assert.ErrorIs(t, err, ErrInvalid)
}

// The cache logs its shape through the configured JSON handler.
func TestNew_JSONToWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, cleanup, err := newWithWriter(config.LogSettings{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cleanup() })

	c, err := cache.New[string, int](cache.Options[string, int]{Shards: 4, ShardCapacity: 8, Logger: log})
	require.NoError(t, err)
	require.NoError(t, c.Close())

	line, _, _ := strings.Cut(buf.String(), "\n")
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &rec))
	assert.Equal(t, "cache created", rec["msg"])
	assert.EqualValues(t, 4, rec["shards"])
	assert.EqualValues(t, 32, rec["capacity"])
	assert.Equal(t, "lru", rec["policy"])
	// Debug-level close record is filtered out at info.
	assert.NotContains(t, buf.String(), "cache closed")
}

func TestNew_RotatingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cache.log")
	log, cleanup, err := New(config.LogSettings{Level: "debug", File: path, MaxSizeMB: 1})
	require.NoError(t, err)

	log.Debug("hello", slog.String("k", "v"))
	require.NoError(t, cleanup())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "msg=hello")
	assert.Contains(t, string(data), "k=v")
}

func TestNew_UnknownFormat(t *testing.T) {
	t.Parallel()

	_, _, err := New(config.LogSettings{Format: "xml"})
	assert.ErrorIs(t, err, ErrInvalid)
}
