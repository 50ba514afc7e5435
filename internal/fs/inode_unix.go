//go:build unix

package fs

import (
	"os"
	"syscall"
)

// inodeOf lets copyWithRetry notice a source file replaced by rename
// between two stats.
func inodeOf(info os.FileInfo) uint64 {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0
	}
	return uint64(st.Ino)
}
