package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
)

// DefaultPollInterval is the Follow backstop polling cadence when none is
// given. File events normally wake Follow sooner.
const DefaultPollInterval = 2 * time.Second

// DefaultFs is the filesystem the CLI reads logs from.
var DefaultFs afero.Fs = afero.NewOsFs()

const maxLineBytes = 1024 * 1024

// Chunk is a batch of complete lines and the offset just past them.
type Chunk struct {
	Lines  []string
	Offset int64
}

// Last returns up to n trailing lines of path. A missing file yields an empty
// chunk at offset zero. n <= 0 returns no lines, positioned at end of file.
func Last(fsys afero.Fs, path string, n int) (Chunk, error) {
	file, err := openLog(fsys, path)
	if err != nil || file == nil {
		return Chunk{}, err
	}
	defer file.Close()

	if n <= 0 {
		end, err := file.Seek(0, io.SeekEnd)
		if err != nil {
			return Chunk{}, fmt.Errorf("seek log file: %w", err)
		}
		return Chunk{Offset: end}, nil
	}

	ring := make([]string, n)
	var total int
	offset, err := scanLines(file, func(line string) {
		ring[total%n] = line
		total++
	})
	if err != nil {
		return Chunk{}, err
	}

	count := min(total, n)
	lines := make([]string, 0, count)
	for i := total - count; i < total; i++ {
		lines = append(lines, ring[i%n])
	}
	return Chunk{Lines: lines, Offset: offset}, nil
}

// From returns every complete line after offset. An offset past the end of the
// file, as after rotation or truncation, restarts from the beginning.
func From(fsys afero.Fs, path string, offset int64) (Chunk, error) {
	file, err := openLog(fsys, path)
	if err != nil || file == nil {
		return Chunk{}, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return Chunk{}, fmt.Errorf("stat log file: %w", err)
	}
	if offset < 0 || offset > info.Size() {
		offset = 0
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return Chunk{}, fmt.Errorf("seek log file: %w", err)
	}

	var lines []string
	read, err := scanLines(file, func(line string) { lines = append(lines, line) })
	if err != nil {
		return Chunk{}, err
	}
	return Chunk{Lines: lines, Offset: offset + read}, nil
}

// Follow reads path from offset on the OS filesystem and calls emit for each
// new line until ctx is done. Writes are picked up from filesystem events on
// the file's directory; poll is a backstop for filesystems that do not
// deliver events. It returns nil on cancellation.
func Follow(ctx context.Context, path string, offset int64, poll time.Duration, emit func(string)) error {
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	fsys := afero.NewOsFs()

	// The current-log pointer is a symlink; events name the target.
	target := path
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		target = resolved
	}

	var events <-chan fsnotify.Event
	var watchErrs <-chan error
	if watcher, err := fsnotify.NewWatcher(); err == nil {
		defer watcher.Close()
		if watcher.Add(filepath.Dir(target)) == nil {
			events = watcher.Events
			watchErrs = watcher.Errors
		}
	}

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		chunk, err := From(fsys, path, offset)
		if err != nil {
			return err
		}
		for _, line := range chunk.Lines {
			emit(line)
		}
		offset = chunk.Offset

	wait:
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				break wait
			case ev, ok := <-events:
				if !ok {
					events = nil
					continue
				}
				if ev.Name == target || ev.Name == path {
					if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
						break wait
					}
				}
			case _, ok := <-watchErrs:
				if !ok {
					watchErrs = nil
				}
			}
		}
	}
}

func openLog(fsys afero.Fs, path string) (afero.File, error) {
	file, err := fsys.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		file.Close()
		return nil, fmt.Errorf("log path %q is a directory", path)
	}
	return file, nil
}

// scanLines feeds complete newline-terminated lines to fn and returns the
// number of bytes consumed. A trailing partial line is left for the next read.
func scanLines(r io.Reader, fn func(string)) (int64, error) {
	reader := bufio.NewReaderSize(r, 64*1024)
	var consumed int64
	for {
		line, err := reader.ReadSlice('\n')
		if errors.Is(err, bufio.ErrBufferFull) {
			// Overlong line: accumulate until newline or limit.
			buf := append([]byte(nil), line...)
			for errors.Is(err, bufio.ErrBufferFull) && len(buf) < maxLineBytes {
				line, err = reader.ReadSlice('\n')
				buf = append(buf, line...)
			}
			line = buf
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return consumed, nil
			}
			if errors.Is(err, bufio.ErrBufferFull) {
				return consumed, fmt.Errorf("read log file: line exceeds %d bytes", maxLineBytes)
			}
			return consumed, fmt.Errorf("read log file: %w", err)
		}
		consumed += int64(len(line))
		text := line[:len(line)-1]
		if n := len(text); n > 0 && text[n-1] == '\r' {
			text = text[:n-1]
		}
		fn(string(text))
	}
}
