// Package channel runs the single-client copy server.
//
// A Server owns one listening endpoint and walks a fixed state machine per
// session: AwaitingConnection, AwaitingRequest, Processing,
// AwaitingResponseFlush, Disconnecting, then back to AwaitingConnection.
// Every blocking step runs in a goroutine and is awaited with a select over
// its completion and the context; cancellation closes the endpoint or the
// connection to abandon the in-flight operation and moves the server to
// Stopped. Cancellation is checked before each new I/O is issued.
//
// Sessions are strictly sequential: Accept is only called once the previous
// connection has been dropped, so a second client cannot be served while a
// transfer is running.
package channel
