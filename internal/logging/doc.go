// Package logging assembles structured slog loggers and formatting helpers used
// across entropycopy.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and defines the standard field keys so the channel server, transfer engine,
// and daemon emit records with the same shape. A no-op logger is provided for
// tests and wiring code that cannot fail.
package logging
