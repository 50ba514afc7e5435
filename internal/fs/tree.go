package fs

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
)

// copyTree copies the content of src into dst, creating dst if needed.
// Files already present in dst are overwritten, files only present in dst
// are left alone. Per-file failures do not stop the walk; they are joined
// into the returned error.
func copyTree(ctx context.Context, f FS, src, dst string) error {
	root, err := f.Stat(src)
	if err != nil {
		return err
	}
	if !root.IsDir {
		return fmt.Errorf("%w: %s", ErrNotDirectory, src)
	}

	if err := os.MkdirAll(dst, os.FileMode(root.Mode)|0o700); err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}

	var errs []error
	walkErr := filepath.WalkDir(src, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			errs = append(errs, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == src {
			return nil
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return fmt.Errorf("resolve relative path: %w", err)
		}
		target := filepath.Join(dst, rel)

		if err := copyEntry(ctx, f, path, target, d); err != nil {
			errs = append(errs, err)
		}
		return nil
	})
	if walkErr != nil {
		errs = append(errs, walkErr)
	}

	return errors.Join(errs...)
}

func copyEntry(ctx context.Context, f FS, path, target string, d iofs.DirEntry) error {
	typ := d.Type()

	if typ&iofs.ModeSymlink != 0 {
		// symlinks are followed: the backup holds the content they point at
		st, err := f.Stat(path)
		if err != nil {
			return err
		}
		if st.IsDir {
			return copyTree(ctx, f, path, target)
		}
		return f.CopyFile(ctx, path, target)
	}

	switch {
	case d.IsDir():
		info, err := d.Info()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(target, info.Mode().Perm()|0o700); err != nil {
			return fmt.Errorf("creating %s: %w", target, err)
		}
		return nil
	case typ.IsRegular():
		return f.CopyFile(ctx, path, target)
	default:
		return fmt.Errorf("%w: %s (%s)", ErrIrregular, path, typ)
	}
}
