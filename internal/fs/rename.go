package fs

import (
	"context"
	"os"
)

// wraps os.Rename with retry logic. When source and destination live on
// different filesystems the entry is copied and the source removed.

func renameWithRetry(ctx context.Context, f FS, oldPath, newPath string) error {
	err := retry(ctx, "rename", func() error {
		return os.Rename(oldPath, newPath)
	})
	if err == nil || !isCrossDevice(err) {
		return err
	}

	return moveByCopy(ctx, f, oldPath, newPath)
}

func moveByCopy(ctx context.Context, f FS, oldPath, newPath string) error {
	st, err := f.Stat(oldPath)
	if err != nil {
		return err
	}

	if st.IsDir {
		if err := copyTree(ctx, f, oldPath, newPath); err != nil {
			_ = os.RemoveAll(newPath)
			return err
		}
		return os.RemoveAll(oldPath)
	}

	if err := f.CopyFile(ctx, oldPath, newPath); err != nil {
		_ = os.Remove(newPath)
		return err
	}
	return os.Remove(oldPath)
}
