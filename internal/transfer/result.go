package transfer

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

// Result is the immutable outcome of one Copy call.
type Result struct {
	Succeeded   bool
	FilesCopied int
	// Message is the success summary or the failure description.
	Message string
	// SysErr is the last operating-system error text observed, empty if none.
	SysErr string
}

func succeeded(count int, destDir string) Result {
	return Result{
		Succeeded:   true,
		FilesCopied: count,
		Message:     fmt.Sprintf("%d files copied to %s", count, destDir),
	}
}

// transferError is a validation, enumeration, copy, or attribute failure.
type transferError struct {
	message string
	err     error
}

func (e *transferError) Error() string {
	if e.err == nil {
		return e.message
	}
	return e.message + ": " + e.err.Error()
}

func (e *transferError) Unwrap() error { return e.err }

func failf(err error, format string, args ...any) *transferError {
	return &transferError{message: fmt.Sprintf(format, args...), err: err}
}

func (e *transferError) result(count int) Result {
	return Result{
		FilesCopied: count,
		Message:     e.message,
		SysErr:      SystemErrorText(e.err),
	}
}

// SystemErrorText renders err as "<message> (0x<code>)" when an errno is
// available, the innermost error text otherwise.
func SystemErrorText(err error) string {
	if err == nil {
		return ""
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return fmt.Sprintf("%s (0x%X)", errno.Error(), uint64(errno))
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err.Error()
	}
	return err.Error()
}
