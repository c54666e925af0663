package transfer

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"entropycopy/internal/fileutil"
	"entropycopy/internal/logging"
)

// Engine performs directory-to-directory transfers.
type Engine struct {
	logger *slog.Logger
}

// New constructs an Engine. A nil logger discards output.
func New(logger *slog.Logger) *Engine {
	return &Engine{logger: logging.NewComponentLogger(logger, "transfer")}
}

// Copy copies every regular file directly inside sourceDir into destDir.
// Sub-directories and special files are skipped and do not count. A source
// that resolves to destDir fails on its first file rather than truncating it.
func (e *Engine) Copy(sourceDir, destDir string) Result {
	logger := e.logger.With(
		logging.String(logging.FieldSourceDir, sourceDir),
		logging.String(logging.FieldDestDir, destDir),
	)

	copied, terr := e.copy(logger, sourceDir, destDir)
	if terr != nil {
		logging.WarnWithContext(logger, "transfer failed", "transfer_failed",
			logging.Int(logging.FieldFilesCopied, copied),
			logging.String("reason", terr.message),
			logging.Error(terr.err),
			logging.String(logging.FieldErrorHint, "check the source path and destination permissions"),
			logging.String(logging.FieldImpact, "client receives an error response"),
		)
		return terr.result(copied)
	}
	logger.Info("transfer complete",
		logging.String(logging.FieldEventType, "transfer_complete"),
		logging.Int(logging.FieldFilesCopied, copied),
	)
	return succeeded(copied, destDir)
}

func (e *Engine) copy(logger *slog.Logger, sourceDir, destDir string) (int, *transferError) {
	if terr := validateDestination(destDir); terr != nil {
		return 0, terr
	}

	dir, err := os.Open(sourceDir)
	if err != nil {
		return 0, failf(err, "No files found matching [%s]", sourceDir)
	}
	defer dir.Close()

	entries, err := dir.ReadDir(-1)
	if err != nil {
		// Entries listed before the failure are not copied: the listing as a
		// whole is unreliable.
		return 0, failf(err, "Could not find next file")
	}
	slices.SortFunc(entries, func(a, b os.DirEntry) int { return strings.Compare(a.Name(), b.Name()) })

	copied := 0
	for _, entry := range entries {
		src := filepath.Join(sourceDir, entry.Name())
		if !copyable(src, entry) {
			logger.Debug("entry skipped",
				logging.String("source", src),
				logging.String("type", entry.Type().String()),
			)
			continue
		}
		dst := filepath.Join(destDir, entry.Name())
		if err := fileutil.CopyFile(src, dst); err != nil {
			return copied, failf(err, "Could not copy file [%s] to [%s]", src, dst)
		}
		copied++

		readOnly, err := fileutil.ReadOnly(dst)
		if err != nil {
			return copied, failf(err, "Could not get attributes of file [%s]", dst)
		}
		if readOnly {
			if err := fileutil.ClearReadOnly(dst); err != nil {
				return copied, failf(err, "Could not remove read only from file [%s]", dst)
			}
		}
		logger.Debug("file copied",
			logging.String("source", src),
			logging.String("destination", dst),
			logging.Bool("read_only_cleared", readOnly),
		)
	}
	return copied, nil
}

// copyable reports whether entry is copied. Links are resolved; anything that
// is not a regular file is skipped unopened. A broken link is left for the
// copy to report.
func copyable(path string, entry os.DirEntry) bool {
	mode := entry.Type()
	switch {
	case mode.IsDir():
		return false
	case mode.IsRegular():
		return true
	case mode&fs.ModeSymlink != 0:
		info, err := os.Stat(path)
		if err != nil {
			return true
		}
		return info.Mode().IsRegular()
	default:
		return false
	}
}

func validateDestination(destDir string) *transferError {
	info, err := os.Stat(destDir)
	if err != nil {
		return failf(err, "Destination [%s] is an invalid location", destDir)
	}
	if !info.IsDir() {
		return failf(errors.New("not a directory"), "Destination [%s] must be a directory", destDir)
	}
	if err := fileutil.Writable(destDir); err != nil {
		return failf(err, "Destination [%s] must be writeable", destDir)
	}
	return nil
}
