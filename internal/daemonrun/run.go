package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"entropycopy/internal/config"
	"entropycopy/internal/daemon"
	"entropycopy/internal/host"
	"entropycopy/internal/ipc"
	"entropycopy/internal/logging"
	"entropycopy/internal/preflight"
	"entropycopy/internal/shutdown"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
	Diagnostic  bool
}

const retentionSweepInterval = 24 * time.Hour

// Run starts the entropycopy daemon and blocks until it stops. Under the
// Windows service control manager the daemon reports status to the SCM;
// otherwise SIGINT/SIGTERM request the stop.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("entropycopy-%s.log", runID))

	level := opts.LogLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:            level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
		Development:      opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	debugDir := filepath.Join(cfg.Paths.LogDir, "debug")
	if opts.Diagnostic {
		logger = attachDiagnosticLog(logger, debugDir, runID)
	}

	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update entropycopy.log link: %v\n", err)
	}
	retention := []logging.RetentionTarget{
		{Dir: cfg.Paths.LogDir, Pattern: "entropycopy-*.log", Exclude: []string{logPath}},
		{Dir: debugDir, Pattern: "entropycopy-*.log"},
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays, retention...)

	pidPath := cfg.PIDPath()
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	logEnvironmentSnapshot(logger, cfg)

	controller := shutdown.New()
	controller.StopOnDone(signalCtx)

	serveFn := func(reporter host.StatusReporter) error {
		return serve(signalCtx, cfg, logger, reporter, controller, retention)
	}

	isService, err := host.IsService()
	if err != nil {
		logger.Debug("service detection failed", logging.Error(err))
	}
	if isService {
		return host.RunService(cfg.Channel.Name, controller, logger, serveFn)
	}
	return serveFn(host.NewLogReporter(logger))
}

// serve runs the daemon and a retention sweeper as one group. The group ends
// when the channel loop does.
func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger, reporter host.StatusReporter, controller *shutdown.Controller, retention []logging.RetentionTarget) error {
	d, err := daemon.New(cfg, logger, reporter, controller)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer controller.RequestStop()
		if err := d.Start(gctx); err != nil {
			logging.ErrorWithContext(logger, "daemon start failed", "daemon_start_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the channel name, lock file, and runtime directory"),
			)
			return err
		}
		return d.Wait()
	})
	g.Go(func() error {
		ticker := time.NewTicker(retentionSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-controller.Done():
				logger.Info("entropycopy daemon shutting down")
				return nil
			case <-ticker.C:
				logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays, retention...)
			}
		}
	})
	return g.Wait()
}

func attachDiagnosticLog(logger *slog.Logger, debugDir, runID string) *slog.Logger {
	if err := os.MkdirAll(debugDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to create debug log directory: %v\n", err)
		return logger
	}
	debugLogPath := filepath.Join(debugDir, fmt.Sprintf("entropycopy-%s.log", runID))
	debugLogger, err := logging.New(logging.Options{
		Level:            "debug",
		Format:           "json",
		OutputPaths:      []string{debugLogPath},
		ErrorOutputPaths: []string{debugLogPath},
		Development:      true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to initialize debug logger: %v\n", err)
		return logger
	}
	logger = logging.TeeLogger(logger, debugLogger.Handler())
	if err := ensureCurrentLogPointer(debugDir, debugLogPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update debug/entropycopy.log link: %v\n", err)
	}
	logger.Info("diagnostic mode enabled",
		logging.String(logging.FieldEventType, "diagnostic_mode_enabled"),
		logging.String("diagnostic_id", uuid.NewString()),
		logging.String("debug_log_path", debugLogPath),
	)
	return logger
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "entropycopy.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logEnvironmentSnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	results := preflight.RunAll(cfg)
	failed := preflight.Failed(results)
	logger.Info("environment snapshot",
		logging.String(logging.FieldEventType, "environment_snapshot"),
		logging.String(logging.FieldChannel, ipc.Endpoint(cfg.Channel.Name, cfg.Paths.LogDir)),
		logging.String(logging.FieldDestDir, cfg.Paths.DestinationDir),
		logging.Int("preflight_checks", len(results)),
		logging.Int("preflight_failures", len(failed)),
		logging.Bool("history_enabled", cfg.History.Enabled),
		logging.String("history_path", cfg.History.Path),
		logging.Int("pid", os.Getpid()),
	)
	for _, r := range failed {
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", r.Name),
			logging.String("detail", r.Detail),
			logging.String(logging.FieldErrorHint, "create the directory or fix its permissions"),
			logging.String(logging.FieldImpact, "copy requests fail until the path is usable"),
		)
	}
}
