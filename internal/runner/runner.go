// Package runner sequences one backup run: copy the source into a new
// backup folder, archive aged backups, then delete aged logs and archives.
package runner

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/raoulx24/mc-backup/internal/archive"
	"github.com/raoulx24/mc-backup/internal/config"
	"github.com/raoulx24/mc-backup/internal/fs"
	"github.com/raoulx24/mc-backup/internal/lock"
	"github.com/raoulx24/mc-backup/internal/logging"
	"github.com/raoulx24/mc-backup/internal/retention"
	"github.com/raoulx24/mc-backup/internal/schedule"
	"github.com/raoulx24/mc-backup/internal/snapshot"
)

const (
	StartMarker  = "===== Minecraft Backup Script Started ====="
	FinishMarker = "===== Minecraft Backup Script Finished ====="
)

// Runner executes backup runs against one configuration.
type Runner struct {
	cfg      *config.Config
	fs       fs.FS
	log      logging.Logger
	pruner   *retention.Pruner
	archiver *archive.Archiver
	runLog   RunLog
	now      func() time.Time
}

// RunLog is the run log file the runner writes through.
type RunLog interface {
	Path() string
	Err() error
}

// New wires the components of a run. A nil filesystem means the local OS
// filesystem.
func New(cfg *config.Config, log logging.Logger, filesystem fs.FS) *Runner {
	if filesystem == nil {
		filesystem = fs.New()
	}
	scanner := retention.NewScanner(filesystem, cfg.AgeBasis)
	return &Runner{
		cfg:      cfg,
		fs:       filesystem,
		log:      log,
		pruner:   retention.NewPruner(scanner, filesystem, log),
		archiver: archive.New(scanner, filesystem, log),
		now:      time.Now,
	}
}

// WithRunLog attaches the run log file: it is kept out of log cleanup and
// its write failures end up in the summary.
func (r *Runner) WithRunLog(l RunLog) *Runner {
	r.runLog = l
	return r
}

// Bootstrap creates the log directory and returns the path of the run log
// for a run started at started.
func Bootstrap(cfg *config.Config, started time.Time) (string, error) {
	if err := fs.New().MkdirAll(cfg.LogDir); err != nil {
		return "", fmt.Errorf("creating log directory: %w", err)
	}
	return filepath.Join(cfg.LogDir, snapshot.LogFileName(started)), nil
}

// Run performs one backup run. Failures of single steps or items are
// logged and recorded in the summary; the returned error is reserved for
// conditions that make the rest of the run pointless, such as a directory
// that cannot be created or listed. The finish marker is always logged.
func (r *Runner) Run(ctx context.Context, id string, started time.Time) (sum *Summary, err error) {
	sum = &Summary{RunID: id, Started: started}

	r.log.Info(StartMarker)
	defer func() {
		r.log.Info(FinishMarker)
		sum.Finished = r.now()
		if r.runLog != nil {
			sum.LogWriteErr = r.runLog.Err()
		}
	}()

	release, ok := r.acquireLock()
	if !ok {
		sum.Skipped = true
		return sum, nil
	}
	defer release()

	if !r.exists(r.cfg.SourceDir) {
		r.log.Info("Source directory %s does not exist", r.cfg.SourceDir)
		sum.SourceMissing = true
		return sum, nil
	}
	r.log.Info("Source directory %s exists", r.cfg.SourceDir)

	if err := r.ensureDir(r.cfg.ArchiveDir, "Archive directory %s was created"); err != nil {
		return sum, err
	}

	r.log.Info("Backup part started")
	if err := r.ensureDir(r.cfg.BackupDir, "Target directory %s was created"); err != nil {
		return sum, err
	}
	r.backup(ctx, sum, snapshot.New(r.cfg.BackupDir, started))
	r.log.Info("Backup part finished")

	r.log.Info("Cleaning part started")
	if err := r.clean(ctx, sum); err != nil {
		return sum, err
	}
	r.log.Info("Cleaning part finished")

	r.logNextRun()
	return sum, nil
}

// backup copies the source into snap, merging into it if it already exists.
func (r *Runner) backup(ctx context.Context, sum *Summary, snap snapshot.Snapshot) {
	sum.BackupPath = snap.Path

	if !r.exists(snap.Path) {
		if err := r.fs.MkdirAll(snap.Path); err != nil {
			r.log.Error("Error during backup: %v", err)
			sum.BackupErr = err
			return
		}
		r.log.Info("Folder for backup %s was created", snap.Path)
	}

	r.log.Info("Backup started")
	if err := r.fs.CopyTree(ctx, r.cfg.SourceDir, snap.Path); err != nil {
		r.log.Error("Error during backup: %v", err)
		sum.BackupErr = err
		return
	}
	r.log.Info("Backup finished")
}

func (r *Runner) clean(ctx context.Context, sum *Summary) error {
	var err error

	sum.Archived, err = r.archiver.Run(ctx, r.cfg.BackupDir, r.cfg.ArchiveDir, r.cfg.Retention.BackupDays)
	if err != nil {
		return fmt.Errorf("archiving old backups: %w", err)
	}

	sum.LogsDeleted, err = r.pruner.Run(ctx, retention.Job{
		Label: "Log file",
		Dir:   r.cfg.LogDir,
		Days:  r.cfg.Retention.LogDays,
		Keep:  r.inUse(sum.Started),
	})
	if err != nil {
		return fmt.Errorf("deleting old logs: %w", err)
	}

	sum.ArchivesDeleted, err = r.pruner.Run(ctx, retention.Job{
		Label: "Archive file",
		Dir:   r.cfg.ArchiveDir,
		Days:  r.cfg.Retention.ArchiveDays,
	})
	if err != nil {
		return fmt.Errorf("deleting old archives: %w", err)
	}

	return nil
}

// inUse lists the files of the log directory this run holds open.
func (r *Runner) inUse(started time.Time) []string {
	keep := []string{
		filepath.Join(r.cfg.LogDir, snapshot.LogFileName(started)),
		r.cfg.LockPath(),
	}
	if r.runLog != nil {
		keep = append(keep, r.runLog.Path())
	}
	return keep
}

// acquireLock returns false when another run holds the lock. Any other
// locking problem is logged and the run continues unlocked.
func (r *Runner) acquireLock() (func(), bool) {
	path := r.cfg.LockPath()
	if path == "" {
		return func() {}, true
	}

	l, err := lock.Acquire(path)
	switch {
	case errors.Is(err, lock.ErrLocked):
		r.log.Warn("Another backup run holds %s, skipping this run", path)
		return nil, false
	case err != nil:
		r.log.Error("Could not lock %s, continuing without lock: %v", path, err)
		return func() {}, true
	}

	return func() {
		if err := l.Release(); err != nil {
			r.log.Error("Releasing lock %s failed: %v", path, err)
		}
	}, true
}

func (r *Runner) ensureDir(dir, createdMsg string) error {
	if r.exists(dir) {
		return nil
	}
	if err := r.fs.MkdirAll(dir); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	r.log.Info(createdMsg, dir)
	return nil
}

func (r *Runner) exists(path string) bool {
	_, err := r.fs.Stat(path)
	return err == nil
}

func (r *Runner) logNextRun() {
	if r.cfg.Schedule == "" {
		return
	}
	next, err := schedule.Next(r.cfg.Schedule, r.now())
	if err != nil {
		r.log.Warn("Cannot compute next scheduled run: %v", err)
		return
	}
	r.log.Info("Next scheduled run expected at %s", snapshot.Stamp(next))
}
