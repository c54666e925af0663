// Package logs reads the server's log files for the CLI.
//
// Last and From read through an afero filesystem so they can be exercised
// against an in-memory tree. Follow watches the real file with fsnotify and
// keeps a slow poll as a backstop. Memory stays bounded by the requested line
// count regardless of file size.
package logs
