package fs

import (
	"errors"
	"syscall"
)

var (
	ErrSourceChanged = errors.New("source changed during copy")
	ErrNotDirectory  = errors.New("not a directory")
	ErrIrregular     = errors.New("unsupported file type")
)

// defines helpers for detecting transient filesystem errors.
// These determine whether an operation should retry or fail immediately.

func isTransient(err error) bool {
	if errors.Is(err, syscall.EAGAIN) ||
		errors.Is(err, syscall.EBUSY) ||
		errors.Is(err, syscall.ETIMEDOUT) ||
		errors.Is(err, ErrSourceChanged) {
		return true
	}

	return false
}

// isCrossDevice reports a rename that has to fall back to copy + delete.
func isCrossDevice(err error) bool {
	return errors.Is(err, syscall.EXDEV)
}
