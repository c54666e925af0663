//go:build windows

package host

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sys/windows/svc"

	"entropycopy/internal/logging"
	"entropycopy/internal/shutdown"
)

// IsService reports whether the process was started by the service control
// manager.
func IsService() (bool, error) {
	return svc.IsWindowsService()
}

// RunService hands the process to the service control manager. run receives
// a StatusReporter backed by the SCM; Stop and Shutdown requests call
// controller.RequestStop. The service exit code is 1 when run fails.
func RunService(name string, controller *shutdown.Controller, logger *slog.Logger, run func(StatusReporter) error) error {
	handler := &serviceHandler{
		controller: controller,
		logger:     logging.NewComponentLogger(logger, "host"),
		run:        run,
	}
	if err := svc.Run(name, handler); err != nil {
		return fmt.Errorf("run service %s: %w", name, err)
	}
	return handler.runErr
}

type serviceHandler struct {
	controller *shutdown.Controller
	logger     *slog.Logger
	run        func(StatusReporter) error
	runErr     error
}

type scmReporter struct {
	mu      sync.Mutex
	changes chan<- svc.Status
	current svc.Status
}

func (r *scmReporter) ReportStatus(state ServiceState, exitCode uint32, waitHint time.Duration) error {
	status := svc.Status{
		WaitHint:      uint32(waitHint / time.Millisecond),
		Win32ExitCode: exitCode,
	}
	switch state {
	case StartPending:
		status.State = svc.StartPending
	case Running:
		status.State = svc.Running
		status.Accepts = svc.AcceptStop | svc.AcceptShutdown
	case StopPending:
		status.State = svc.StopPending
	case Stopped:
		status.State = svc.Stopped
	default:
		return fmt.Errorf("unknown service state %d", state)
	}
	r.mu.Lock()
	r.current = status
	r.mu.Unlock()
	r.changes <- status
	return nil
}

func (r *scmReporter) snapshot() svc.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

func (h *serviceHandler) Execute(_ []string, requests <-chan svc.ChangeRequest, changes chan<- svc.Status) (bool, uint32) {
	reporter := &scmReporter{changes: changes}
	done := make(chan error, 1)
	go func() { done <- h.run(reporter) }()

	for {
		select {
		case err := <-done:
			h.runErr = err
			if err != nil {
				logging.ErrorWithContext(h.logger, "service run failed", "service_failed", logging.Error(err))
				return false, 1
			}
			return false, 0
		case req := <-requests:
			switch req.Cmd {
			case svc.Interrogate:
				changes <- reporter.snapshot()
			case svc.Stop, svc.Shutdown:
				h.logger.Info("stop requested by service manager")
				_ = reporter.ReportStatus(StopPending, 0, StartPendingHint)
				h.controller.RequestStop()
			}
		}
	}
}
