package retention

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/raoulx24/mc-backup/internal/config"
	"github.com/raoulx24/mc-backup/internal/fs"
	"github.com/raoulx24/mc-backup/internal/logging"
)

var testNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.Local)

func newTestScanner() *Scanner {
	s := NewScanner(fs.New(), config.AgeMTime)
	s.now = func() time.Time { return testNow }
	return s
}

func newTestLogger() (logging.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	return logging.New(zap.New(core)), logs
}

// touch creates a file whose modification time is at.
func touch(t *testing.T, path string, at time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(filepath.Base(path)), 0o644))
	require.NoError(t, os.Chtimes(path, at, at))
}

// mkdirAt creates a directory holding one file and dates the directory at.
func mkdirAt(t *testing.T, path string, at time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(path, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(path, "level.dat"), []byte("x"), 0o644))
	require.NoError(t, os.Chtimes(path, at, at))
}

func daysAgo(d int) time.Time {
	return testNow.AddDate(0, 0, -d)
}

func names(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}
