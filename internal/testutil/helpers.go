package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// CreateDummyFile creates a file with the given content at path, creating parent
// directories as needed.
func CreateDummyFile(t *testing.T, path string, content []byte) {
	t.Helper()
	fullPath := filepath.Clean(path)
	dir := filepath.Dir(fullPath)
	err := os.MkdirAll(dir, 0755)
	require.NoError(t, err, "Failed to create directory %s for dummy file", dir)
	err = os.WriteFile(fullPath, content, 0644)
	require.NoError(t, err, "Failed to write dummy file %s", fullPath)
}

// CreateDummyDir ensures a directory exists at the given path, creating parents if needed.
func CreateDummyDir(t *testing.T, path string) {
	t.Helper()
	err := os.MkdirAll(filepath.Clean(path), 0755)
	require.NoError(t, err, "Failed to create dummy directory %s", path)
}

// WriteMemFile writes content into an in-memory filesystem and sets its times to mtime.
func WriteMemFile(t *testing.T, fs afero.Fs, path string, content []byte, mtime time.Time) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, afero.WriteFile(fs, path, content, 0644))
	if !mtime.IsZero() {
		require.NoError(t, fs.Chtimes(path, mtime, mtime))
	}
}

// GB2312 encodes s with the GB2312-compatible GBK encoder.
func GB2312(t *testing.T, s string) []byte {
	t.Helper()
	b, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)
	return b
}

// DiscardHandler returns a slog.Handler that drops everything.
func DiscardHandler() slog.Handler {
	return slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 4})
}

// FixedClock returns a clock that always reports t.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
