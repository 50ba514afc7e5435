package runner

import (
	"time"

	"github.com/raoulx24/mc-backup/internal/retention"
)

// Summary is the outcome of one run.
type Summary struct {
	RunID    string
	Started  time.Time
	Finished time.Time

	// SourceMissing is set when the run ended early because there was
	// nothing to back up.
	SourceMissing bool
	// Skipped is set when another run held the lock.
	Skipped bool

	BackupPath string
	BackupErr  error

	// LogWriteErr is the first failed write to the run log.
	LogWriteErr error

	Archived        []retention.Outcome
	LogsDeleted     []retention.Outcome
	ArchivesDeleted []retention.Outcome
}

// Failures counts failed steps and items.
func (s *Summary) Failures() int {
	n := 0
	if s.BackupErr != nil {
		n++
	}
	if s.LogWriteErr != nil {
		n++
	}
	for _, group := range [][]retention.Outcome{s.Archived, s.LogsDeleted, s.ArchivesDeleted} {
		n += len(group) - succeeded(group)
	}
	return n
}

func (s *Summary) ArchivedCount() int        { return succeeded(s.Archived) }
func (s *Summary) LogsDeletedCount() int     { return succeeded(s.LogsDeleted) }
func (s *Summary) ArchivesDeletedCount() int { return succeeded(s.ArchivesDeleted) }

func succeeded(outcomes []retention.Outcome) int {
	n := 0
	for _, o := range outcomes {
		if o.OK() {
			n++
		}
	}
	return n
}
