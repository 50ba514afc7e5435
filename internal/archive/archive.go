// Package archive moves backup folders that outlived their retention
// window into the archive directory as zip files.
//
// Every aged folder goes through
//
//	AGED -> COMPRESSED -> REMOVED_FROM_BACKUP -> MOVED_TO_ARCHIVE
//
// and stops at the first failing step. A failure is logged and the next
// folder is processed; nothing is rolled back. The zip is staged next to
// the folder and only gets its final name once it is complete, so a staged
// zip whose folder is gone is a finished archive waiting to be moved.
package archive

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/raoulx24/mc-backup/internal/fs"
	"github.com/raoulx24/mc-backup/internal/logging"
	"github.com/raoulx24/mc-backup/internal/retention"
	"github.com/raoulx24/mc-backup/internal/snapshot"
)

var (
	ErrArchiveExists = errors.New("archive already exists")
	ErrStagingExists = errors.New("staged archive already exists")
	ErrCompress      = errors.New("compressing folder failed")
	ErrRemove        = errors.New("removing folder failed")
	ErrMove          = errors.New("moving archive failed")
)

type Archiver struct {
	scanner *retention.Scanner
	fs      fs.FS
	log     logging.Logger
}

func New(scanner *retention.Scanner, filesystem fs.FS, log logging.Logger) *Archiver {
	if filesystem == nil {
		filesystem = fs.New()
	}
	return &Archiver{
		scanner: scanner,
		fs:      filesystem,
		log:     log,
	}
}

// Run archives every entry of backupDir older than days, oldest first.
// Only a failed listing of backupDir is returned as an error.
func (a *Archiver) Run(ctx context.Context, backupDir, archiveDir string, days int) ([]retention.Outcome, error) {
	a.log.Info("Move old folders to archive process started")

	old, err := a.scanner.OldEntries(backupDir, days)
	if err != nil {
		return nil, err
	}

	outcomes := make([]retention.Outcome, 0, len(old))
	for _, e := range old {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		if snapshot.IsPartial(e.Name) {
			continue
		}

		folder := e.Name
		var err error
		if name, ok := snapshot.FolderOfArchive(e.Name); ok && !e.IsDir {
			// staged by an earlier run that could not move it
			if a.exists(filepath.Join(backupDir, name)) {
				continue // reported with the folder itself
			}
			folder = name
			err = a.finishMove(ctx, e.Path, archiveDir)
		} else {
			err = a.archiveOne(ctx, snapshot.Snapshot{Name: e.Name, Path: e.Path, Timestamp: e.Created}, archiveDir)
		}
		if err != nil {
			a.log.Error("Folder deletion failed with error %v", err)
		} else {
			a.log.Info("Folder %s was removed from %s", folder, backupDir)
		}
		outcomes = append(outcomes, retention.Outcome{Name: e.Name, Err: err})
	}

	a.log.Info("Move old folders to archive process finished")
	return outcomes, nil
}

// archiveOne zips the folder next to itself, removes the folder and then
// moves the zip into archiveDir.
func (a *Archiver) archiveOne(ctx context.Context, snap snapshot.Snapshot, archiveDir string) error {
	staging := snap.ArchivePath(filepath.Dir(snap.Path))
	partial := snapshot.PartialName(staging)
	dst := snap.ArchivePath(archiveDir)

	if a.exists(dst) {
		return fmt.Errorf("%w: %s", ErrArchiveExists, dst)
	}
	// left by a run that zipped the folder but could not remove all of it
	if a.exists(staging) {
		return fmt.Errorf("%w: %s", ErrStagingExists, staging)
	}

	if err := writeZip(ctx, snap.Path, partial); err != nil {
		_ = a.fs.Remove(partial)
		return fmt.Errorf("%w: %v", ErrCompress, err)
	}
	if err := a.fs.Rename(ctx, partial, staging); err != nil {
		_ = a.fs.Remove(partial)
		return fmt.Errorf("%w: %v", ErrCompress, err)
	}

	if err := a.fs.RemoveAll(snap.Path); err != nil {
		return fmt.Errorf("%w: %v", ErrRemove, err)
	}

	return a.finishMove(ctx, staging, archiveDir)
}

// finishMove moves a staged zip into archiveDir.
func (a *Archiver) finishMove(ctx context.Context, staging, archiveDir string) error {
	dst := filepath.Join(archiveDir, filepath.Base(staging))
	if a.exists(dst) {
		return fmt.Errorf("%w: %s", ErrArchiveExists, dst)
	}
	if err := a.fs.Rename(ctx, staging, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrMove, err)
	}
	return nil
}

func (a *Archiver) exists(path string) bool {
	_, err := a.fs.Stat(path)
	return err == nil
}
