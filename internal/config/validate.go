package config

import (
	"errors"
	"fmt"

	"go.uber.org/zap/zapcore"

	"github.com/raoulx24/mc-backup/internal/schedule"
)

var ErrInvalid = errors.New("invalid configuration")

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	dirs := []struct {
		name, value string
	}{
		{"logDir", c.LogDir},
		{"archiveDir", c.ArchiveDir},
		{"sourceDir", c.SourceDir},
		{"backupDir", c.BackupDir},
	}
	for _, d := range dirs {
		if d.value == "" {
			errs = append(errs, fmt.Errorf("%s is empty", d.name))
		}
	}

	windows := []struct {
		name  string
		value int
	}{
		{"retention.logDays", c.Retention.LogDays},
		{"retention.archiveDays", c.Retention.ArchiveDays},
		{"retention.backupDays", c.Retention.BackupDays},
	}
	for _, w := range windows {
		if w.value < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %d", w.name, w.value))
		}
	}

	switch c.AgeBasis {
	case AgeCTime, AgeMTime:
	default:
		errs = append(errs, fmt.Errorf("ageBasis must be %q or %q, got %q", AgeCTime, AgeMTime, c.AgeBasis))
	}

	if c.Schedule != "" {
		if _, err := schedule.Parse(c.Schedule); err != nil {
			errs = append(errs, err)
		}
	}

	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be \"json\" or \"console\", got %q", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}
