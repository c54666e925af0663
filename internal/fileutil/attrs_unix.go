//go:build !windows

package fileutil

import (
	"os"

	"golang.org/x/sys/unix"
)

// ReadOnly reports whether path lacks the owner write bit.
func ReadOnly(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.Mode().Perm()&0o200 == 0, nil
}

// ClearReadOnly restores owner write permission on path.
func ClearReadOnly(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	return os.Chmod(path, info.Mode().Perm()|0o200)
}

// Writable reports an error when the calling process may not create entries in
// dir.
func Writable(dir string) error {
	if err := unix.Access(dir, unix.W_OK); err != nil {
		return &os.PathError{Op: "access", Path: dir, Err: err}
	}
	return nil
}
