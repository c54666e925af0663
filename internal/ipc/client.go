package ipc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// Client sends copy requests to a running server.
type Client struct {
	Endpoint       string
	ConnectTimeout time.Duration
	Encoding       Encoding
}

// Send performs one round trip against endpoint using UTF-8 payloads.
func Send(ctx context.Context, endpoint, path string, connectTimeout time.Duration) (string, error) {
	return Client{Endpoint: endpoint, ConnectTimeout: connectTimeout}.Send(ctx, path)
}

// Send dials, writes the path as a single message, and reads the status line
// until the server disconnects. The connect attempt is bounded by
// ConnectTimeout; the exchange itself is bounded only by ctx.
func (c Client) Send(ctx context.Context, path string) (string, error) {
	payload, err := EncodeRequest(path, c.Encoding)
	if err != nil {
		return "", err
	}

	dialCtx := ctx
	if c.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, c.ConnectTimeout)
		defer cancel()
	}
	conn, err := dial(dialCtx, c.Endpoint)
	if err != nil {
		return "", fmt.Errorf("connect %s: %w", c.Endpoint, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if _, err := conn.Write(payload); err != nil {
		return "", fmt.Errorf("write request: %w", err)
	}
	if len(payload) == 0 {
		// An empty write may not reach the server; half-close so its read
		// completes with zero bytes.
		if cw, ok := conn.(interface{ CloseWrite() error }); ok {
			_ = cw.CloseWrite()
		}
	}

	data, err := readResponse(conn)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", err
	}
	return DecodeResponse(data), nil
}

// readResponse collects bytes until EOF or a read error. An error after data
// has arrived marks the end of the message: the server disconnects right
// after its single write.
func readResponse(r io.Reader) ([]byte, error) {
	buf := make([]byte, 0, ResponseBufferSize)
	chunk := make([]byte, ResponseBufferSize)
	for len(buf) < ResponseBufferSize {
		n, err := r.Read(chunk[:ResponseBufferSize-len(buf)])
		buf = append(buf, chunk[:n]...)
		if err != nil {
			if len(buf) > 0 {
				return buf, nil
			}
			if errors.Is(err, io.EOF) {
				return nil, errors.New("server closed the connection without a response")
			}
			return nil, fmt.Errorf("read response: %w", err)
		}
	}
	return buf, nil
}
