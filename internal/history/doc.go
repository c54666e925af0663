// Package history journals every channel session to SQLite so operators can
// see what was copied without trawling logs.
//
// The schema is managed by goose migrations embedded in the binary. Writes use
// the same busy-retry discipline as the rest of the repository's SQLite code:
// the daemon and a concurrent `entropycopy history` invocation may touch the
// database at the same time.
package history
