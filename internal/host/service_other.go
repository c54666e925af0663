//go:build !windows

package host

import (
	"errors"
	"log/slog"

	"entropycopy/internal/shutdown"
)

// IsService is always false off Windows; supervisors such as systemd deliver
// stop as a signal.
func IsService() (bool, error) {
	return false, nil
}

// RunService is only available on Windows.
func RunService(string, *shutdown.Controller, *slog.Logger, func(StatusReporter) error) error {
	return errors.New("service control manager is only available on windows")
}
