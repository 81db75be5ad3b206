// File: internal/logger/logger_test.go
package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log, closeFn, err := New(Opts{Level: "info", Writer: &buf})
	require.NoError(t, err)
	defer closeFn()

	log.Debug("hidden")
	log.Info("shown", "command", "STOP")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "command=STOP")
}

func TestNewWritesJSONFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "rcctl.log")

	log, closeFn, err := New(Opts{Level: "debug", Writer: &buf, File: path})
	require.NoError(t, err)
	log.Debug("round trip complete", "bytes", 7)
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"round trip complete"`)
	assert.Contains(t, string(data), `"bytes":7`)
	assert.Contains(t, buf.String(), "round trip complete")
}

func TestNewBadFile(t *testing.T) {
	_, _, err := New(Opts{File: "/nonexistent/dir/rcctl.log"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logger: failed to open")
}

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tc := range testCases {
		got, err := ParseLevel(tc.input)
		assert.NoError(t, err)
		assert.Equal(t, tc.expected, got, tc.input)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}
