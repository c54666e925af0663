// Package ipc defines the wire contract of the copy channel and the platform
// endpoints that carry it.
//
// One request is a single write of a directory path (at most RequestMax text
// units, NUL padded); one response is a single write of a status line of at
// most ResponseMax text units. Payloads are UTF-8, or UTF-16LE when the client
// speaks wide characters; responses mirror the request's encoding.
//
// On Windows the endpoint is a message-mode named pipe created through
// go-winio with the access policy's SDDL attached. Elsewhere it is a Unix
// domain socket whose file mode is derived from the same policy. Client and
// server both resolve names through Endpoint so the CLI and the daemon agree
// on the address.
package ipc
