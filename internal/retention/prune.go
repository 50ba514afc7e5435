package retention

import (
	"context"
	"path/filepath"

	"github.com/raoulx24/mc-backup/internal/fs"
	"github.com/raoulx24/mc-backup/internal/logging"
)

// Job is one age-based cleanup: delete every file in Dir older than Days.
type Job struct {
	Label string // "Log file", "Archive file"
	Dir   string
	Days  int
	// Keep lists paths that are in use by the running process and are
	// never deleted, whatever their age.
	Keep []string
}

func (j Job) keeps(path string) bool {
	path = filepath.Clean(path)
	for _, k := range j.Keep {
		if k != "" && filepath.Clean(k) == path {
			return true
		}
	}
	return false
}

// Outcome records what happened to a single aged entry.
type Outcome struct {
	Name string
	Err  error
}

func (o Outcome) OK() bool { return o.Err == nil }

// Pruner runs cleanup jobs.
type Pruner struct {
	scanner *Scanner
	fs      fs.FS
	log     logging.Logger
}

func NewPruner(scanner *Scanner, filesystem fs.FS, log logging.Logger) *Pruner {
	if filesystem == nil {
		filesystem = fs.New()
	}
	return &Pruner{
		scanner: scanner,
		fs:      filesystem,
		log:     log,
	}
}

// Run deletes the aged files of job.Dir one by one. A failed deletion is
// logged and the next file is tried; only a failed directory listing is
// returned as an error.
func (p *Pruner) Run(ctx context.Context, job Job) ([]Outcome, error) {
	p.log.Info("%s deletion process started", job.Label)

	old, err := p.scanner.OldEntries(job.Dir, job.Days)
	if err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, 0, len(old))
	for _, e := range old {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		if job.keeps(e.Path) {
			continue
		}

		err := p.fs.Remove(filepath.Join(job.Dir, e.Name))
		if err != nil {
			p.log.Error("File deletion failed with error %v", err)
		} else {
			p.log.Info("File %s was removed from %s", e.Name, job.Dir)
		}
		outcomes = append(outcomes, Outcome{Name: e.Name, Err: err})
	}

	p.log.Info("%s deletion process finished", job.Label)
	return outcomes, nil
}
