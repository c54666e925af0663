//go:build !windows

package daemonctl

import (
	"os"
	"syscall"
)

func requestStop(proc *os.Process) error {
	return proc.Signal(syscall.SIGTERM)
}
