package fs

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// implements file copying with retry and source-change detection.
// A copy is retried when the source changes mid-copy, e.g. a world file
// being saved while the backup runs.

func copyWithRetry(ctx context.Context, f FS, src, dst string) error {
	orig, err := f.Stat(src)
	if err != nil {
		return err
	}

	return retry(ctx, "copy "+src, func() error {
		now, err := f.Stat(src)
		if err != nil {
			return err
		}

		if sourceChanged(orig, now) {
			orig = now
			return fmt.Errorf("%w: %s", ErrSourceChanged, src)
		}

		return copyOnce(src, dst, now)
	})
}

func sourceChanged(orig, now FileInfo) bool {
	if now.Inode != 0 && orig.Inode != 0 && now.Inode != orig.Inode {
		return true
	}
	if now.MTime.After(orig.MTime) {
		return true
	}
	if now.Size != orig.Size {
		return true
	}
	return false
}

// copyOnce overwrites dst with the content of src and carries over the
// permission bits and modification time.
func copyOnce(src, dst string, info FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(info.Mode))
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}

	if err := out.Sync(); err != nil {
		return err
	}

	if err := os.Chmod(dst, os.FileMode(info.Mode)); err != nil {
		return err
	}
	return os.Chtimes(dst, time.Now(), info.MTime)
}
