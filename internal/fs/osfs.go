package fs

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
)

type OSFS struct{}

// the concrete implementation of FS backed by the local OS filesystem.
// Platform-specific details (inode and creation time) are handled in build-tagged files.

func New() *OSFS {
	return &OSFS{}
}

func (o *OSFS) Stat(path string) (FileInfo, error) {
	st, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, err
	}

	return fromOS(path, st), nil
}

// ReadDir lists dir non-recursively. An entry that cannot be stat'ed fails
// the whole listing.
func (o *OSFS) ReadDir(path string) ([]FileInfo, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	infos := make([]FileInfo, 0, len(entries))
	for _, ent := range entries {
		st, err := ent.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", ent.Name(), err)
		}
		infos = append(infos, fromOS(filepath.Join(path, ent.Name()), st))
	}

	return infos, nil
}

func (o *OSFS) MkdirAll(path string) error {
	return os.MkdirAll(path, 0o755)
}

// Remove deletes a single non-directory entry. Directories are refused
// with EISDIR instead of being removed when empty.
func (o *OSFS) Remove(path string) error {
	st, err := os.Lstat(path)
	if err != nil {
		return err
	}
	if st.IsDir() {
		return &fs.PathError{Op: "remove", Path: path, Err: syscall.EISDIR}
	}
	return os.Remove(path)
}

func (o *OSFS) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

func (o *OSFS) CopyFile(ctx context.Context, src, dst string) error {
	return copyWithRetry(ctx, o, src, dst)
}

func (o *OSFS) CopyTree(ctx context.Context, src, dst string) error {
	return copyTree(ctx, o, src, dst)
}

func (o *OSFS) Rename(ctx context.Context, oldPath, newPath string) error {
	return renameWithRetry(ctx, o, oldPath, newPath)
}

func fromOS(path string, st os.FileInfo) FileInfo {
	return FileInfo{
		Path:  path,
		Name:  st.Name(),
		Size:  st.Size(),
		Mode:  uint32(st.Mode().Perm()),
		IsDir: st.IsDir(),
		MTime: st.ModTime(),
		CTime: ctimeOf(st),
		Inode: inodeOf(st),
	}
}
