package fileutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// ErrSameFile is returned when src and dst resolve to the same file.
var ErrSameFile = errors.New("source and destination are the same file")

// CopyFile streams src to dst, replacing any existing dst even when it is
// read-only. The source permission bits are carried over, so a read-only
// source yields a read-only copy; callers that need a writable copy clear it
// with ClearReadOnly.
func CopyFile(src, dst string) (err error) {
	// Stat before opening: opening a FIFO blocks until a writer appears.
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", src)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err = in.Stat()
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", src)
	}
	perm := info.Mode().Perm()

	existing, err := os.Stat(dst)
	switch {
	case err == nil:
		if os.SameFile(info, existing) {
			return fmt.Errorf("copy %s to %s: %w", src, dst, ErrSameFile)
		}
		if existing.Mode().Perm()&0o200 == 0 {
			if err := os.Chmod(dst, existing.Mode().Perm()|0o200); err != nil {
				return err
			}
		}
	case !errors.Is(err, fs.ErrNotExist):
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm|0o200)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return os.Chmod(dst, perm)
}
