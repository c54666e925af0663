package host

import (
	"log/slog"
	"time"

	"entropycopy/internal/logging"
)

// ServiceState is a lifecycle state announced to the host.
type ServiceState int

const (
	StartPending ServiceState = iota
	Running
	StopPending
	Stopped
)

func (s ServiceState) String() string {
	switch s {
	case StartPending:
		return "start_pending"
	case Running:
		return "running"
	case StopPending:
		return "stop_pending"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// StartPendingHint is the wait hint sent with every start-pending report.
const StartPendingHint = 3000 * time.Millisecond

// StatusReporter announces lifecycle state. A returned error aborts setup.
type StatusReporter interface {
	ReportStatus(state ServiceState, exitCode uint32, waitHint time.Duration) error
}

// LogReporter records status reports in the log. It never fails.
type LogReporter struct {
	logger *slog.Logger
}

// NewLogReporter builds a LogReporter; a nil logger discards reports.
func NewLogReporter(logger *slog.Logger) *LogReporter {
	return &LogReporter{logger: logging.NewComponentLogger(logger, "host")}
}

func (r *LogReporter) ReportStatus(state ServiceState, exitCode uint32, waitHint time.Duration) error {
	attrs := []logging.Attr{
		logging.String(logging.FieldState, state.String()),
		logging.Duration("wait_hint", waitHint),
	}
	if exitCode != 0 {
		attrs = append(attrs, logging.Int64("exit_code", int64(exitCode)))
	}
	switch state {
	case Running, Stopped:
		r.logger.Info("service status", logging.Args(attrs...)...)
	default:
		r.logger.Debug("service status", logging.Args(attrs...)...)
	}
	return nil
}
