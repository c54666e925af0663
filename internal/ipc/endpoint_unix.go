//go:build !windows

package ipc

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strings"

	"entropycopy/internal/access"
)

// Endpoint resolves a channel name to a socket path. Names containing a path
// separator are used as-is; bare names live in runtimeDir as <name>.sock.
func Endpoint(name, runtimeDir string) string {
	if strings.ContainsRune(name, filepath.Separator) {
		return name
	}
	return filepath.Join(runtimeDir, name+".sock")
}

// Listen binds the Unix socket and applies the descriptor's mode. A stale
// socket left by a crashed process is removed first; any other file at the
// path is an error.
//
// Unlike a single-instance pipe, the kernel completes connect for clients in
// the listen backlog while a session runs. Those clients are not served until
// the server accepts them, one at a time after the current session ends.
func Listen(endpoint string, desc *access.Descriptor) (net.Listener, error) {
	if desc == nil {
		return nil, fmt.Errorf("listen %s: access descriptor is required", endpoint)
	}
	if info, err := os.Lstat(endpoint); err == nil {
		if info.Mode()&fs.ModeSocket == 0 {
			return nil, fmt.Errorf("listen %s: path exists and is not a socket", endpoint)
		}
		if err := os.Remove(endpoint); err != nil {
			return nil, fmt.Errorf("remove stale socket: %w", err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("stat socket: %w", err)
	}

	listener, err := net.Listen("unix", endpoint)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}
	if err := os.Chmod(endpoint, desc.Mode()); err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("apply socket mode: %w", err)
	}
	return listener, nil
}

func dial(ctx context.Context, endpoint string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, "unix", endpoint)
}
