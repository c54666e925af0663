// Package access builds the permission descriptor attached to the IPC channel.
//
// A Policy is an ordered discretionary ACL. The default policy denies built-in
// guests and anonymous logons, grants read/write/execute to authenticated users,
// and full control to administrators, in that precedence. Build renders the
// policy as SDDL, re-parses it, and converts it into the native form for the
// platform: a self-relative security descriptor on Windows, a socket file mode
// elsewhere. Any failure is a *PolicyError and the server must not start.
package access
