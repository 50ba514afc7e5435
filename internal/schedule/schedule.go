// Package schedule interprets the cron expression of the external
// scheduler that starts backup runs. The job never schedules itself; the
// expression is only used to validate configuration and to tell the
// operator when the next run is due.
package schedule

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Parse validates a standard five-field cron expression (descriptors
// such as "@daily" are accepted too).
func Parse(expr string) (cron.Schedule, error) {
	s, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron schedule %q: %w", expr, err)
	}
	return s, nil
}

// Next returns the first activation of expr strictly after from.
func Next(expr string, from time.Time) (time.Time, error) {
	s, err := Parse(expr)
	if err != nil {
		return time.Time{}, err
	}
	return s.Next(from), nil
}
