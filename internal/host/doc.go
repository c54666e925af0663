// Package host connects the daemon to whatever supervises the process.
//
// The daemon only needs two things from its host: a StatusReporter to announce
// start-pending and running states during setup, and an external stop entry
// point that calls shutdown.Controller.RequestStop. Under the Windows service
// control manager both come from golang.org/x/sys/windows/svc; everywhere
// else status reports go to the log and stop arrives as a signal.
package host
