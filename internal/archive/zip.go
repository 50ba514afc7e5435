package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
)

// writeZip stores the content of src in a new zip at dst. Entry names are
// relative to src, so extracting the zip recreates the folder content.
// A plain file is stored as a single entry.
func writeZip(ctx context.Context, src, dst string) (err error) {
	st, err := os.Stat(src)
	if err != nil {
		return err
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}

	zw := zip.NewWriter(out)

	// close in reverse order, keeping the first error
	defer func() {
		if cerr := zw.Close(); err == nil {
			err = cerr
		}
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	if !st.IsDir() {
		return addFile(zw, src, st.Name(), st)
	}

	return filepath.WalkDir(src, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == src {
			return nil
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)

		// symlinks are stored as the content they point at
		info, err := os.Stat(path)
		if err != nil {
			return err
		}

		switch {
		case info.IsDir():
			hdr, err := zip.FileInfoHeader(info)
			if err != nil {
				return err
			}
			hdr.Name = name + "/"
			_, err = zw.CreateHeader(hdr)
			return err
		case info.Mode().IsRegular():
			return addFile(zw, path, name, info)
		default:
			return fmt.Errorf("unsupported file type %s: %s", info.Mode().Type(), path)
		}
	})
}

func addFile(zw *zip.Writer, path, name string, info os.FileInfo) error {
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = name
	hdr.Method = zip.Deflate

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("adding %s: %w", name, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("compressing %s: %w", name, err)
	}
	return nil
}
