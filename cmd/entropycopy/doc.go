// Package main hosts the entropycopy CLI entrypoint and command graph.
//
// The Cobra command tree runs the server in the foreground (serve), sends copy
// requests over the channel (send), inspects and stops a running server
// (status, stop), reads the session journal (history), and scaffolds
// configuration. Configuration resolution and channel endpoint discovery are
// centralized in commandContext so subcommands stay declarative.
package main
