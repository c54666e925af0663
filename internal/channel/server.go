package channel

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"entropycopy/internal/access"
	"entropycopy/internal/history"
	"entropycopy/internal/ipc"
	"entropycopy/internal/logging"
	"entropycopy/internal/transfer"
)

// Copier performs the transfer for one request.
type Copier interface {
	Copy(sourceDir, destDir string) transfer.Result
}

// Recorder journals completed sessions.
type Recorder interface {
	Record(ctx context.Context, entry history.Entry) (int64, error)
}

// ListenFunc creates the channel endpoint.
type ListenFunc func(endpoint string, desc *access.Descriptor) (net.Listener, error)

// Options configures a Server.
type Options struct {
	Endpoint       string
	DestinationDir string
	ResponseMax    int
	Descriptor     *access.Descriptor
	Copier         Copier
	Recorder       Recorder
	Logger         *slog.Logger
	Listen         ListenFunc
	// OnTransition, when set, is called synchronously on every state change.
	OnTransition func(from, to State)
}

// Server is the single-instance channel loop.
type Server struct {
	endpoint     string
	dest         string
	responseMax  int
	desc         *access.Descriptor
	copier       Copier
	recorder     Recorder
	logger       *slog.Logger
	listen       ListenFunc
	onTransition func(from, to State)

	state     atomic.Int32
	listener  net.Listener
	closeOnce sync.Once
	closeErr  error
	request   []byte
}

const recordTimeout = 2 * time.Second

// New validates options and builds an unopened Server.
func New(opts Options) (*Server, error) {
	if opts.Endpoint == "" {
		return nil, &SetupError{Op: "configure", Err: errors.New("endpoint is required")}
	}
	if opts.DestinationDir == "" {
		return nil, &SetupError{Op: "configure", Err: errors.New("destination directory is required")}
	}
	if opts.Descriptor == nil {
		return nil, &SetupError{Op: "configure", Err: errors.New("access descriptor is required")}
	}
	if opts.Copier == nil {
		opts.Copier = transfer.New(opts.Logger)
	}
	if opts.Listen == nil {
		opts.Listen = ipc.Listen
	}
	if opts.ResponseMax <= 0 || opts.ResponseMax > ipc.ResponseMax {
		opts.ResponseMax = ipc.ResponseMax
	}
	return &Server{
		endpoint:     opts.Endpoint,
		dest:         opts.DestinationDir,
		responseMax:  opts.ResponseMax,
		desc:         opts.Descriptor,
		copier:       opts.Copier,
		recorder:     opts.Recorder,
		logger:       logging.NewComponentLogger(opts.Logger, "channel"),
		listen:       opts.Listen,
		onTransition: opts.OnTransition,
		request:      make([]byte, ipc.RequestBufferSize),
	}, nil
}

// Endpoint returns the resolved channel address.
func (s *Server) Endpoint() string { return s.endpoint }

// State returns the current loop state.
func (s *Server) State() State { return State(s.state.Load()) }

func (s *Server) transition(to State) {
	from := State(s.state.Swap(int32(to)))
	if from == to {
		return
	}
	s.logger.Debug("channel state", logging.String(logging.FieldState, to.String()), logging.String("from", from.String()))
	if s.onTransition != nil {
		s.onTransition(from, to)
	}
}

// Open creates the channel endpoint with the access descriptor attached. The
// channel is created once; a failure is a *SetupError.
func (s *Server) Open() error {
	if s.listener != nil {
		return nil
	}
	listener, err := s.listen(s.endpoint, s.desc)
	if err != nil {
		logging.ErrorWithContext(s.logger, "Unable to create named pipe", "channel_create_failed",
			logging.String(logging.FieldChannel, s.endpoint),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that no other instance owns the channel and the runtime directory is writable"),
		)
		return &SetupError{Op: "create channel", Err: err}
	}
	s.listener = listener
	s.logger.Info("channel created", logging.String(logging.FieldChannel, s.endpoint))
	return nil
}

// Close releases the endpoint. It is safe to call more than once; the
// listener is closed exactly once.
func (s *Server) Close() error {
	s.closeOnce.Do(func() {
		if s.listener != nil {
			s.closeErr = s.listener.Close()
		}
	})
	return s.closeErr
}

// Serve runs sessions until ctx is canceled or a protocol error occurs. The
// endpoint is released before Serve returns, and the server ends in Stopped.
// Cancellation yields a nil error.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		return ErrNotOpen
	}
	defer s.transition(Stopped)
	defer func() {
		if err := s.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.logger.Debug("channel close failed", logging.Error(err))
		}
	}()

	for {
		if ctx.Err() != nil {
			s.logger.Info("channel stopping", logging.String(logging.FieldState, s.State().String()))
			return nil
		}
		s.transition(AwaitingConnection)
		conn, err := s.accept(ctx)
		if errors.Is(err, errCanceled) {
			s.logger.Info("channel stopping", logging.String(logging.FieldState, AwaitingConnection.String()))
			return nil
		}
		if err != nil {
			perr := &ProtocolError{Op: "accept", State: AwaitingConnection, Err: err}
			logging.ErrorWithContext(s.logger, "channel accept failed", "channel_protocol_error",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "restart the server"),
			)
			return perr
		}
		if err := s.session(ctx, conn); errors.Is(err, errCanceled) {
			s.logger.Info("channel stopping", logging.String(logging.FieldState, s.State().String()))
			return nil
		}
	}
}

type ioResult struct {
	conn net.Conn
	n    int
	err  error
}

// accept waits for a client or cancellation. On cancellation the listener is
// closed to unblock Accept and any connection that slipped through is dropped.
func (s *Server) accept(ctx context.Context) (net.Conn, error) {
	done := make(chan ioResult, 1)
	go func() {
		conn, err := s.listener.Accept()
		done <- ioResult{conn: conn, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil && ctx.Err() != nil {
			return nil, errCanceled
		}
		return res.conn, res.err
	case <-ctx.Done():
		_ = s.Close()
		res := <-done
		if res.conn != nil {
			_ = res.conn.Close()
		}
		return nil, errCanceled
	}
}

// await runs one connection I/O and waits for it or cancellation. On
// cancellation the connection is closed so the operation returns, and the
// result is discarded.
func await(ctx context.Context, conn net.Conn, op func() (int, error)) (int, error) {
	if ctx.Err() != nil {
		return 0, errCanceled
	}
	done := make(chan ioResult, 1)
	go func() {
		n, err := op()
		done <- ioResult{n: n, err: err}
	}()

	select {
	case res := <-done:
		return res.n, res.err
	case <-ctx.Done():
		_ = conn.Close()
		<-done
		return 0, errCanceled
	}
}

func (s *Server) session(ctx context.Context, conn net.Conn) error {
	sessionID := uuid.NewString()
	logger := s.logger.With(logging.String(logging.FieldSessionID, sessionID))
	started := time.Now()
	logger.Debug("client connected")

	dropped := false
	drop := func() {
		if dropped {
			return
		}
		dropped = true
		if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			derr := DisconnectError{Op: "close connection", Err: err}
			logger.Debug("disconnect failed", logging.Error(derr))
		}
	}
	defer drop()

	s.transition(AwaitingRequest)
	clear(s.request)
	n, err := await(ctx, conn, func() (int, error) { return conn.Read(s.request) })
	if errors.Is(err, errCanceled) {
		return err
	}
	if err != nil {
		// A failed or short read still gets a response built from what arrived.
		logger.Debug("request read incomplete", logging.Int("bytes", n), logging.Error(err))
	}

	if ctx.Err() != nil {
		return errCanceled
	}
	s.transition(Processing)
	source, enc := ipc.DecodeRequest(s.request[:n])
	logger.Info("copy requested",
		logging.String(logging.FieldSourceDir, source),
		logging.String(logging.FieldDestDir, s.dest),
		logging.String("encoding", enc.String()),
	)
	result := s.copier.Copy(source, s.dest)
	response := ipc.FormatResponse(result, s.dest)

	if ctx.Err() != nil {
		return errCanceled
	}
	s.transition(AwaitingResponseFlush)
	payload := ipc.EncodeResponse(response, enc, s.responseMax)
	written, err := await(ctx, conn, func() (int, error) { return conn.Write(payload) })
	if errors.Is(err, errCanceled) {
		return err
	}
	if err != nil {
		logging.WarnWithContext(logger, "response write failed", "response_write_failed",
			logging.Int("bytes_written", written),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "the client disconnected before reading the response"),
			logging.String(logging.FieldImpact, "client did not receive the transfer status"),
		)
	}

	s.transition(Disconnecting)
	drop()

	logger.Info("session complete",
		logging.Bool("succeeded", result.Succeeded),
		logging.Int(logging.FieldFilesCopied, result.FilesCopied),
		logging.Duration("duration", time.Since(started)),
	)
	s.record(ctx, logger, history.Entry{
		SessionID:   sessionID,
		StartedAt:   started,
		Duration:    time.Since(started),
		SourceDir:   source,
		DestDir:     s.dest,
		Encoding:    enc.String(),
		Succeeded:   result.Succeeded,
		FilesCopied: result.FilesCopied,
		Message:     result.Message,
		SysErr:      result.SysErr,
	})
	return nil
}

func (s *Server) record(ctx context.Context, logger *slog.Logger, entry history.Entry) {
	if s.recorder == nil {
		return
	}
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	if _, err := s.recorder.Record(recordCtx, entry); err != nil {
		logging.WarnWithContext(logger, "session history write failed", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "session missing from history"),
		)
	}
}
