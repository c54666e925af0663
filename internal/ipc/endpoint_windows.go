//go:build windows

package ipc

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/Microsoft/go-winio"

	"entropycopy/internal/access"
)

const pipePrefix = `\\.\pipe\`

// Endpoint resolves a channel name to its named pipe path. runtimeDir is
// unused on Windows.
func Endpoint(name, _ string) string {
	if strings.HasPrefix(strings.ToLower(name), pipePrefix) {
		return name
	}
	return pipePrefix + name
}

// Listen creates the message-mode duplex pipe with the descriptor's DACL.
func Listen(endpoint string, desc *access.Descriptor) (net.Listener, error) {
	if desc == nil {
		return nil, fmt.Errorf("listen %s: access descriptor is required", endpoint)
	}
	cfg := &winio.PipeConfig{
		SecurityDescriptor: desc.SDDL(),
		MessageMode:        true,
		InputBufferSize:    RequestBufferSize,
		OutputBufferSize:   ResponseBufferSize,
	}
	listener, err := winio.ListenPipe(endpoint, cfg)
	if err != nil {
		return nil, fmt.Errorf("listen pipe %s: %w", endpoint, err)
	}
	return listener, nil
}

func dial(ctx context.Context, endpoint string) (net.Conn, error) {
	return winio.DialPipeContext(ctx, endpoint)
}
