//go:build windows

package fileutil

import (
	"os"

	"golang.org/x/sys/windows"
)

func attributes(path string) (uint32, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return 0, err
	}
	attrs, err := windows.GetFileAttributes(p)
	if err != nil {
		return 0, &os.PathError{Op: "GetFileAttributes", Path: path, Err: err}
	}
	return attrs, nil
}

// ReadOnly reports whether path carries FILE_ATTRIBUTE_READONLY.
func ReadOnly(path string) (bool, error) {
	attrs, err := attributes(path)
	if err != nil {
		return false, err
	}
	return attrs&windows.FILE_ATTRIBUTE_READONLY != 0, nil
}

// ClearReadOnly resets path to FILE_ATTRIBUTE_NORMAL.
func ClearReadOnly(path string) error {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return err
	}
	if err := windows.SetFileAttributes(p, windows.FILE_ATTRIBUTE_NORMAL); err != nil {
		return &os.PathError{Op: "SetFileAttributes", Path: path, Err: err}
	}
	return nil
}

// Writable reports an error when dir is marked read-only.
func Writable(dir string) error {
	attrs, err := attributes(dir)
	if err != nil {
		return err
	}
	if attrs&windows.FILE_ATTRIBUTE_READONLY != 0 {
		return &os.PathError{Op: "access", Path: dir, Err: windows.ERROR_ACCESS_DENIED}
	}
	return nil
}
