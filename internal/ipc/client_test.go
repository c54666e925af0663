package ipc_test

import (
	"context"
	"io"
	"net"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entropycopy/internal/access"
	"entropycopy/internal/ipc"
)

func listen(t *testing.T) (net.Listener, string) {
	t.Helper()
	desc, err := access.Build()
	require.NoError(t, err)

	name := "ipc-test-" + filepath.Base(t.TempDir())
	endpoint := ipc.Endpoint(name, t.TempDir())
	listener, err := ipc.Listen(endpoint, desc)
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping IPC test: %v", err)
		}
		require.NoError(t, err)
	}
	t.Cleanup(func() { _ = listener.Close() })
	return listener, endpoint
}

func TestEndpointResolution(t *testing.T) {
	if runtime.GOOS == "windows" {
		assert.Equal(t, `\\.\pipe\copyfiletoentropyfile`, ipc.Endpoint("copyfiletoentropyfile", ""))
		assert.Equal(t, `\\.\pipe\x`, ipc.Endpoint(`\\.\pipe\x`, ""))
		return
	}
	assert.Equal(t, "/run/ec/copyfiletoentropyfile.sock", ipc.Endpoint("copyfiletoentropyfile", "/run/ec"))
	assert.Equal(t, "/tmp/custom.sock", ipc.Endpoint("/tmp/custom.sock", "/run/ec"))
}

func TestSendRoundTrip(t *testing.T) {
	listener, endpoint := listen(t)

	received := make(chan string, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, ipc.RequestBufferSize)
		n, _ := conn.Read(buf)
		path, enc := ipc.DecodeRequest(buf[:n])
		received <- path
		_, _ = conn.Write(ipc.EncodeResponse("[INFO] 0 files copied to /dest", enc, 0))
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := ipc.Send(ctx, endpoint, "/some/source", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "[INFO] 0 files copied to /dest", resp)
	assert.Equal(t, "/some/source", <-received)
}

func TestSendUTF16ResponseMirrorsRequest(t *testing.T) {
	listener, endpoint := listen(t)

	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, ipc.RequestBufferSize)
		n, _ := conn.Read(buf)
		path, enc := ipc.DecodeRequest(buf[:n])
		_, _ = conn.Write(ipc.EncodeResponse("[ERROR] No files found matching ["+path+"] []", enc, 0))
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client := ipc.Client{Endpoint: endpoint, ConnectTimeout: time.Second, Encoding: ipc.UTF16LE}
	resp, err := client.Send(ctx, "wide")
	require.NoError(t, err)
	assert.Equal(t, "[ERROR] No files found matching [wide] []", resp)
}

func TestSendWithoutServer(t *testing.T) {
	endpoint := ipc.Endpoint("missing-"+filepath.Base(t.TempDir()), t.TempDir())
	_, err := ipc.Send(context.Background(), endpoint, "/x", 100*time.Millisecond)
	require.Error(t, err)
}

func TestSendEmptyResponse(t *testing.T) {
	listener, endpoint := listen(t)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		_, _ = io.ReadAtLeast(conn, make([]byte, 1), 1)
		_ = conn.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := ipc.Send(ctx, endpoint, "/x", time.Second)
	require.Error(t, err)
}
