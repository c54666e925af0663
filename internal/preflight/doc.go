// Package preflight provides readiness checks for the filesystem paths the
// copy server depends on.
//
// The daemon runs RunAll at startup and logs each failure as a warning; a
// failing check never blocks startup because the destination may be created
// later and every request validates it again. The CLI `status` command
// renders the same results.
package preflight
