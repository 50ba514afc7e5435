// Package snapshot names the artifacts a backup run produces: the backup
// folder, its archive and the run log.
package snapshot

import (
	"path/filepath"
	"strings"
	"time"
)

// TimestampLayout is used in every generated name and in run log lines.
const TimestampLayout = "2006-01-02_15-04-05"

const (
	folderPrefix = "Backup_"
	logPrefix    = "Backup_log_"
	logExt       = ".log"
	archiveExt   = ".zip"
	partialExt   = ".partial"
)

// Snapshot represents a single backup folder.
type Snapshot struct {
	Name      string
	Path      string
	Timestamp time.Time
}

// New returns the snapshot taken at ts inside root.
func New(root string, ts time.Time) Snapshot {
	name := FolderName(ts)
	return Snapshot{
		Name:      name,
		Path:      filepath.Join(root, name),
		Timestamp: ts,
	}
}

// ArchivePath is where the zip of s lands in archiveDir.
func (s Snapshot) ArchivePath(archiveDir string) string {
	return filepath.Join(archiveDir, ArchiveName(s.Name))
}

func Stamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

func FolderName(ts time.Time) string {
	return folderPrefix + Stamp(ts)
}

func LogFileName(ts time.Time) string {
	return logPrefix + Stamp(ts) + logExt
}

// ArchiveName is the zip name for the backup entry called name.
func ArchiveName(name string) string {
	return name + archiveExt
}

// FolderOfArchive reverses ArchiveName.
func FolderOfArchive(name string) (string, bool) {
	return strings.CutSuffix(name, archiveExt)
}

// PartialName is the name a zip is written under until it is complete.
func PartialName(archiveName string) string {
	return archiveName + partialExt
}

func IsPartial(name string) bool {
	return strings.HasSuffix(name, partialExt)
}
