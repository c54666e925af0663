// Package daemon coordinates the long-running entropycopy process.
//
// It acquires a flock-based single-instance lock, walks the setup sequence
// (start-pending report before each step, then running), and launches the
// channel loop. Every resource acquired during setup (lock, session journal,
// channel endpoint) is released exactly once, whether setup fails part way,
// the loop stops on request, or the loop dies on a protocol error.
//
// Keep orchestration here: the protocol lives in internal/channel and the
// copy semantics in internal/transfer.
package daemon
