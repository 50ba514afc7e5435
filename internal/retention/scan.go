// Package retention finds entries that outlived their retention window and
// deletes them.
package retention

import (
	"sort"
	"time"

	"github.com/raoulx24/mc-backup/internal/config"
	"github.com/raoulx24/mc-backup/internal/fs"
)

// Entry is a directory entry annotated with its creation time.
type Entry struct {
	Name    string
	Path    string
	Created time.Time
	IsDir   bool
}

// Scanner lists directories and ages their entries.
type Scanner struct {
	fs    fs.FS
	basis config.AgeBasis
	now   func() time.Time
}

func NewScanner(filesystem fs.FS, basis config.AgeBasis) *Scanner {
	if filesystem == nil {
		filesystem = fs.New()
	}
	return &Scanner{
		fs:    filesystem,
		basis: basis,
		now:   time.Now,
	}
}

// Scan returns every entry of dir, oldest first. Listing a directory that
// does not exist is an error.
func (s *Scanner) Scan(dir string) ([]Entry, error) {
	infos, err := s.fs.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(infos))
	for _, fi := range infos {
		entries = append(entries, Entry{
			Name:    fi.Name,
			Path:    fi.Path,
			Created: s.createdAt(fi),
			IsDir:   fi.IsDir,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Created.Equal(entries[j].Created) {
			return entries[i].Name < entries[j].Name
		}
		return entries[i].Created.Before(entries[j].Created)
	})

	return entries, nil
}

// Cutoff is the instant before which an entry is older than days.
func (s *Scanner) Cutoff(days int) time.Time {
	return s.now().AddDate(0, 0, -days)
}

// OldEntries returns the entries of dir created strictly before
// now minus days calendar days, oldest first.
func (s *Scanner) OldEntries(dir string, days int) ([]Entry, error) {
	entries, err := s.Scan(dir)
	if err != nil {
		return nil, err
	}

	cutoff := s.Cutoff(days)
	var old []Entry
	for _, e := range entries {
		if e.Created.Before(cutoff) {
			old = append(old, e)
		}
	}

	return old, nil
}

func (s *Scanner) createdAt(fi fs.FileInfo) time.Time {
	if s.basis == config.AgeMTime {
		return fi.MTime
	}
	return fi.CTime
}
