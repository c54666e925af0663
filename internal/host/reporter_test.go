package host_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entropycopy/internal/host"
)

func TestLogReporterWritesStates(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	reporter := host.NewLogReporter(logger)

	require.NoError(t, reporter.ReportStatus(host.StartPending, 0, host.StartPendingHint))
	require.NoError(t, reporter.ReportStatus(host.Running, 0, 0))
	require.NoError(t, reporter.ReportStatus(host.Stopped, 1, 0))

	out := buf.String()
	assert.Contains(t, out, "state=start_pending")
	assert.Contains(t, out, "wait_hint=3s")
	assert.Contains(t, out, "state=running")
	assert.Contains(t, out, "exit_code=1")
	assert.Contains(t, out, "component=host")
}

func TestNilLoggerReporter(t *testing.T) {
	assert.NoError(t, host.NewLogReporter(nil).ReportStatus(host.Running, 0, 0))
}

func TestServiceStateString(t *testing.T) {
	assert.Equal(t, "stop_pending", host.StopPending.String())
	assert.Equal(t, "unknown", host.ServiceState(42).String())
}
