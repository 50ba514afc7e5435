package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/raoulx24/mc-backup/internal/config"
	"github.com/raoulx24/mc-backup/internal/lock"
	"github.com/raoulx24/mc-backup/internal/logging"
	"github.com/raoulx24/mc-backup/internal/snapshot"
)

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()
	cfg := config.Defaults()
	cfg.WorkDir = base
	cfg.LogDir = filepath.Join(base, "logs")
	cfg.ArchiveDir = filepath.Join(base, "archive")
	cfg.SourceDir = filepath.Join(base, "minecraft-data")
	cfg.BackupDir = filepath.Join(base, "backup")
	cfg.AgeBasis = config.AgeMTime
	require.NoError(t, os.MkdirAll(cfg.LogDir, 0o755))
	return cfg
}

func newTestRunner(cfg *config.Config) (*Runner, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	return New(cfg, logging.New(zap.New(core)), nil), logs
}

func messages(logs *observer.ObservedLogs) []string {
	out := make([]string, 0, logs.Len())
	for _, e := range logs.All() {
		out = append(out, e.Message)
	}
	return out
}

func writeWorld(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "world", "region"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "server.properties"), []byte("motd=test"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "world", "level.dat"), []byte("level"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "world", "region", "r.0.0.mca"), []byte("region"), 0o644))
}

func age(t *testing.T, path string, days int) {
	t.Helper()
	at := time.Now().AddDate(0, 0, -days)
	require.NoError(t, os.Chtimes(path, at, at))
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out
}

func TestRun_SourceMissing(t *testing.T) {
	cfg := newTestConfig(t)
	r, logs := newTestRunner(cfg)

	sum, err := r.Run(context.Background(), "run-1", time.Now())
	require.NoError(t, err)

	assert.True(t, sum.SourceMissing)
	assert.Equal(t, []string{
		StartMarker,
		"Source directory " + cfg.SourceDir + " does not exist",
		FinishMarker,
	}, messages(logs))

	assert.NoDirExists(t, cfg.BackupDir)
	assert.NoDirExists(t, cfg.ArchiveDir)
}

func TestRun_FullRun(t *testing.T) {
	cfg := newTestConfig(t)
	writeWorld(t, cfg.SourceDir)
	r, logs := newTestRunner(cfg)

	started := time.Date(2026, 10, 19, 3, 0, 0, 0, time.Local)
	sum, err := r.Run(context.Background(), "run-1", started)
	require.NoError(t, err)

	snap := filepath.Join(cfg.BackupDir, "Backup_2026-10-19_03-00-00")
	assert.Equal(t, snap, sum.BackupPath)
	assert.NoError(t, sum.BackupErr)
	assert.Zero(t, sum.Failures())
	assert.FileExists(t, filepath.Join(snap, "server.properties"))
	assert.FileExists(t, filepath.Join(snap, "world", "region", "r.0.0.mca"))

	assert.Equal(t, []string{
		StartMarker,
		"Source directory " + cfg.SourceDir + " exists",
		"Archive directory " + cfg.ArchiveDir + " was created",
		"Backup part started",
		"Target directory " + cfg.BackupDir + " was created",
		"Folder for backup " + snap + " was created",
		"Backup started",
		"Backup finished",
		"Backup part finished",
		"Cleaning part started",
		"Move old folders to archive process started",
		"Move old folders to archive process finished",
		"Log file deletion process started",
		"Log file deletion process finished",
		"Archive file deletion process started",
		"Archive file deletion process finished",
		"Cleaning part finished",
		FinishMarker,
	}, messages(logs))
}

func TestRun_SameSecondMergesIntoFolder(t *testing.T) {
	cfg := newTestConfig(t)
	writeWorld(t, cfg.SourceDir)
	started := time.Date(2026, 10, 19, 3, 0, 0, 0, time.Local)

	r, _ := newTestRunner(cfg)
	_, err := r.Run(context.Background(), "run-1", started)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(cfg.SourceDir, "ops.json"), []byte("[]"), 0o644))

	r, logs := newTestRunner(cfg)
	sum, err := r.Run(context.Background(), "run-2", started)
	require.NoError(t, err)
	require.NoError(t, sum.BackupErr)

	assert.Equal(t, []string{"Backup_2026-10-19_03-00-00"}, listDir(t, cfg.BackupDir))
	assert.FileExists(t, filepath.Join(sum.BackupPath, "ops.json"))
	assert.FileExists(t, filepath.Join(sum.BackupPath, "world", "level.dat"))
	assert.NotContains(t, messages(logs), "Folder for backup "+sum.BackupPath+" was created")
}

func TestRun_BackupFailureDoesNotStopCleaning(t *testing.T) {
	cfg := newTestConfig(t)
	require.NoError(t, os.MkdirAll(cfg.SourceDir, 0o755))
	require.NoError(t, os.Symlink(filepath.Join(cfg.WorkDir, "nowhere"), filepath.Join(cfg.SourceDir, "dangling")))

	oldLog := filepath.Join(cfg.LogDir, "Backup_log_2026-09-01_03-00-00.log")
	require.NoError(t, os.WriteFile(oldLog, []byte("old"), 0o644))
	age(t, oldLog, 30)

	r, logs := newTestRunner(cfg)
	sum, err := r.Run(context.Background(), "run-1", time.Now())
	require.NoError(t, err)

	assert.Error(t, sum.BackupErr)
	assert.Equal(t, 1, sum.Failures())
	assert.Equal(t, 1, sum.LogsDeletedCount())
	assert.NoFileExists(t, oldLog)

	msgs := messages(logs)
	assert.Contains(t, msgs, "Cleaning part finished")
	assert.Equal(t, FinishMarker, msgs[len(msgs)-1])
	assert.Equal(t, 1, logs.FilterLevelExact(zap.ErrorLevel).Len())
}

func TestRun_EndToEndRetention(t *testing.T) {
	cfg := newTestConfig(t)
	writeWorld(t, cfg.SourceDir)

	for name, days := range map[string]int{
		"Backup_2026-10-04_03-00-00": 15,
		"Backup_2026-10-14_03-00-00": 5,
		"Backup_2026-10-18_03-00-00": 1,
	} {
		dir := filepath.Join(cfg.BackupDir, name)
		writeWorld(t, dir)
		age(t, dir, days)
	}

	require.NoError(t, os.MkdirAll(cfg.ArchiveDir, 0o755))
	oldZip := filepath.Join(cfg.ArchiveDir, "Backup_2026-09-01_03-00-00.zip")
	freshZip := filepath.Join(cfg.ArchiveDir, "Backup_2026-10-01_03-00-00.zip")
	require.NoError(t, os.WriteFile(oldZip, []byte("zip"), 0o644))
	require.NoError(t, os.WriteFile(freshZip, []byte("zip"), 0o644))
	age(t, oldZip, 45)
	age(t, freshZip, 18)

	oldLog := filepath.Join(cfg.LogDir, "Backup_log_2026-09-20_03-00-00.log")
	freshLog := filepath.Join(cfg.LogDir, "Backup_log_2026-10-10_03-00-00.log")
	require.NoError(t, os.WriteFile(oldLog, []byte("log"), 0o644))
	require.NoError(t, os.WriteFile(freshLog, []byte("log"), 0o644))
	age(t, oldLog, 29)
	age(t, freshLog, 9)

	started := time.Now()
	r, _ := newTestRunner(cfg)
	sum, err := r.Run(context.Background(), "run-1", started)
	require.NoError(t, err)
	assert.Zero(t, sum.Failures())

	assert.ElementsMatch(t, []string{
		"Backup_2026-10-14_03-00-00",
		"Backup_2026-10-18_03-00-00",
		snapshot.FolderName(started),
	}, listDir(t, cfg.BackupDir))

	assert.Equal(t, []string{
		"Backup_2026-10-01_03-00-00.zip",
		"Backup_2026-10-04_03-00-00.zip",
	}, listDir(t, cfg.ArchiveDir))

	assert.Equal(t, 1, sum.ArchivedCount())
	assert.Equal(t, 1, sum.LogsDeletedCount())
	assert.Equal(t, 1, sum.ArchivesDeletedCount())
	assert.NoFileExists(t, oldLog)
	assert.FileExists(t, freshLog)
}

func TestRun_LockHeldSkipsRun(t *testing.T) {
	if filepath.Separator == '\\' {
		t.Skip("flock is not available on windows")
	}
	cfg := newTestConfig(t)
	writeWorld(t, cfg.SourceDir)

	held, err := lock.Acquire(cfg.LockPath())
	require.NoError(t, err)
	defer held.Release()

	r, logs := newTestRunner(cfg)
	sum, err := r.Run(context.Background(), "run-2", time.Now())
	require.NoError(t, err)

	assert.True(t, sum.Skipped)
	assert.NoDirExists(t, cfg.BackupDir)
	msgs := messages(logs)
	require.Len(t, msgs, 3)
	assert.Equal(t, StartMarker, msgs[0])
	assert.Equal(t, FinishMarker, msgs[2])
}

func TestRun_UnlistableLogDirIsFatal(t *testing.T) {
	cfg := newTestConfig(t)
	writeWorld(t, cfg.SourceDir)
	cfg.LockFile = ""
	require.NoError(t, os.RemoveAll(cfg.LogDir))

	r, logs := newTestRunner(cfg)
	_, err := r.Run(context.Background(), "run-1", time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deleting old logs")

	msgs := messages(logs)
	assert.NotContains(t, msgs, "Cleaning part finished")
	assert.Equal(t, FinishMarker, msgs[len(msgs)-1])
}

func TestRun_LogsNextScheduledRun(t *testing.T) {
	cfg := newTestConfig(t)
	writeWorld(t, cfg.SourceDir)
	cfg.Schedule = "0 3 * * *"

	r, logs := newTestRunner(cfg)
	fixed := time.Date(2026, 10, 19, 3, 0, 5, 0, time.Local)
	r.now = func() time.Time { return fixed }

	_, err := r.Run(context.Background(), "run-1", fixed)
	require.NoError(t, err)

	msgs := messages(logs)
	assert.Equal(t, "Next scheduled run expected at 2026-10-20_03-00-00", msgs[len(msgs)-2])
}

func TestBootstrap(t *testing.T) {
	cfg := config.Defaults()
	cfg.LogDir = filepath.Join(t.TempDir(), "nested", "logs")
	started := time.Date(2026, 10, 19, 3, 0, 0, 0, time.Local)

	path, err := Bootstrap(cfg, started)
	require.NoError(t, err)
	assert.DirExists(t, cfg.LogDir)
	assert.Equal(t, filepath.Join(cfg.LogDir, "Backup_log_2026-10-19_03-00-00.log"), path)
}

func TestRun_LogCleanupKeepsFilesInUse(t *testing.T) {
	cfg := newTestConfig(t)
	writeWorld(t, cfg.SourceDir)
	cfg.Retention.LogDays = 0

	oldLog := filepath.Join(cfg.LogDir, "Backup_log_2026-10-18_03-00-00.log")
	require.NoError(t, os.WriteFile(oldLog, []byte("log"), 0o644))
	age(t, oldLog, 1)

	started := time.Now()
	logPath, err := Bootstrap(cfg, started)
	require.NoError(t, err)
	runLog, err := logging.NewRunLog(logPath)
	require.NoError(t, err)

	core, _ := observer.New(zap.InfoLevel)
	r := New(cfg, logging.New(logging.Tee(zap.New(core), runLog)), nil).WithRunLog(runLog)

	sum, err := r.Run(context.Background(), "run-1", started)
	require.NoError(t, err)
	assert.NoError(t, sum.LogWriteErr)
	assert.Equal(t, 1, sum.LogsDeletedCount())

	assert.NoFileExists(t, oldLog)
	assert.FileExists(t, cfg.LockPath())

	b, err := os.ReadFile(logPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(b), "\n"), "\n")
	require.NotEmpty(t, lines)
	assert.True(t, strings.HasSuffix(lines[0], "] "+StartMarker), lines[0])
	assert.True(t, strings.HasSuffix(lines[len(lines)-1], "] "+FinishMarker), lines[len(lines)-1])
}

type failingRunLog struct {
	path string
}

func (l failingRunLog) Path() string { return l.path }
func (failingRunLog) Err() error     { return errors.New("writing run log: no space left on device") }

func TestRun_ReportsRunLogWriteFailure(t *testing.T) {
	cfg := newTestConfig(t)
	writeWorld(t, cfg.SourceDir)

	r, _ := newTestRunner(cfg)
	r.WithRunLog(failingRunLog{path: filepath.Join(cfg.LogDir, "Backup_log_x.log")})

	sum, err := r.Run(context.Background(), "run-1", time.Now())
	require.NoError(t, err)
	assert.EqualError(t, sum.LogWriteErr, "writing run log: no space left on device")
	assert.Equal(t, 1, sum.Failures())
}
