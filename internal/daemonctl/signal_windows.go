//go:build windows

package daemonctl

import (
	"errors"
	"os"
)

// requestStop has no graceful equivalent for a console process on Windows;
// services are stopped through the service control manager instead.
func requestStop(*os.Process) error {
	return errors.New("graceful stop is not supported; use the service manager")
}
