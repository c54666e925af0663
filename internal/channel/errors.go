package channel

import "errors"

// SetupError reports a failure to build the descriptor or create the channel.
// It is fatal: the server never starts.
type SetupError struct {
	Op  string
	Err error
}

func (e *SetupError) Error() string { return "channel setup: " + e.Op + ": " + e.Err.Error() }

func (e *SetupError) Unwrap() error { return e.Err }

// ProtocolError reports an unexpected result from a channel wait. The loop
// stops after returning it.
type ProtocolError struct {
	Op    string
	State State
	Err   error
}

func (e *ProtocolError) Error() string {
	return "channel protocol: " + e.Op + " in " + e.State.String() + ": " + e.Err.Error()
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// DisconnectError reports a failed connection teardown. It is logged and
// never stops the loop.
type DisconnectError struct {
	Op  string
	Err error
}

func (e DisconnectError) Error() string { return "channel disconnect: " + e.Op + ": " + e.Err.Error() }

func (e DisconnectError) Unwrap() error { return e.Err }

// errCanceled marks a wait satisfied by cancellation rather than I/O.
var errCanceled = errors.New("channel: canceled")

// ErrNotOpen is returned by Serve when Open has not succeeded.
var ErrNotOpen = errors.New("channel: server not open")
