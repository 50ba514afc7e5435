// Package fs defines the filesystem abstraction used by mc-backup.
// It provides the FS interface and the FileInfo type shared across the system.
package fs

import (
	"context"
	"time"
)

// FileInfo is the subset of file metadata the backup job relies on.
type FileInfo struct {
	Path  string
	Name  string
	Size  int64
	Mode  uint32
	IsDir bool
	MTime time.Time
	// CTime is the platform creation time: birth time on Windows, inode
	// change time on Unix. Falls back to MTime where neither is exposed.
	CTime time.Time
	Inode uint64
}

type FS interface {
	Stat(path string) (FileInfo, error)
	ReadDir(path string) ([]FileInfo, error)
	CopyFile(ctx context.Context, src, dst string) error
	CopyTree(ctx context.Context, src, dst string) error
	Rename(ctx context.Context, oldPath, newPath string) error
	MkdirAll(path string) error
	Remove(path string) error
	RemoveAll(path string) error
}
