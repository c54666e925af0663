// Package config loads, normalizes, and validates entropycopy configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The destination directory is fixed here
// and never derived from client input; the channel name may be overridden at
// start-up by the server's -pipe option.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, clamped wire bounds, and clear validation errors.
package config
