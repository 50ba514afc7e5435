//go:build !linux && !darwin && !windows

package fs

import (
	"os"
	"time"
)

// no portable creation time here, age by modification time instead
func ctimeOf(info os.FileInfo) time.Time {
	return info.ModTime()
}
