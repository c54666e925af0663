package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"

	"entropycopy/internal/access"
	"entropycopy/internal/channel"
	"entropycopy/internal/config"
	"entropycopy/internal/history"
	"entropycopy/internal/host"
	"entropycopy/internal/ipc"
	"entropycopy/internal/logging"
	"entropycopy/internal/shutdown"
	"entropycopy/internal/transfer"
)

// ErrAlreadyRunning reports that another process holds the instance lock.
var ErrAlreadyRunning = errors.New("another entropycopy instance is already running")

// Daemon runs the copy channel and enforces single-instance execution.
type Daemon struct {
	cfg        *config.Config
	logger     *slog.Logger
	reporter   host.StatusReporter
	controller *shutdown.Controller
	endpoint   string
	listen     channel.ListenFunc

	lockPath string
	lock     *flock.Flock
	locked   bool

	desc    *access.Descriptor
	history *history.Store
	server  *channel.Server

	running     atomic.Bool
	done        chan struct{}
	serveErr    error
	releaseOnce sync.Once
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	Endpoint     string
	State        string
	LockFilePath string
	HistoryPath  string
}

// Option customizes a Daemon.
type Option func(*Daemon)

// WithListen replaces the platform endpoint constructor.
func WithListen(fn channel.ListenFunc) Option {
	return func(d *Daemon) { d.listen = fn }
}

// New constructs a daemon. A nil reporter logs status reports; a nil
// controller gets a private one reachable through Stop.
func New(cfg *config.Config, logger *slog.Logger, reporter host.StatusReporter, controller *shutdown.Controller, opts ...Option) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}
	logger = logging.NewComponentLogger(logger, "daemon")
	if reporter == nil {
		reporter = host.NewLogReporter(logger)
	}
	if controller == nil {
		controller = shutdown.New()
	}
	d := &Daemon{
		cfg:        cfg,
		logger:     logger,
		reporter:   reporter,
		controller: controller,
		endpoint:   ipc.Endpoint(cfg.Channel.Name, cfg.Paths.LogDir),
		lockPath:   cfg.LockPath(),
		lock:       flock.New(cfg.LockPath()),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

type setupStep struct {
	name string
	run  func(context.Context) error
}

// Start runs the setup sequence and launches the channel loop. Each step is
// preceded by a start-pending report; a failed report or step releases
// everything acquired so far.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	if err := d.cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrAlreadyRunning
	}
	d.locked = true

	steps := []setupStep{
		{name: "shutdown token", run: d.checkShutdown},
		{name: "session journal", run: d.openHistory},
		{name: "access descriptor", run: d.buildDescriptor},
		{name: "channel", run: d.createChannel},
	}
	for _, step := range steps {
		if err := d.reporter.ReportStatus(host.StartPending, 0, host.StartPendingHint); err != nil {
			d.release()
			return fmt.Errorf("report start pending before %s: %w", step.name, err)
		}
		if err := step.run(ctx); err != nil {
			d.release()
			return err
		}
	}
	if err := d.reporter.ReportStatus(host.Running, 0, 0); err != nil {
		d.release()
		return fmt.Errorf("report running: %w", err)
	}

	serveCtx, cancel := d.controller.Context(ctx)
	d.done = make(chan struct{})
	d.running.Store(true)
	go func() {
		defer close(d.done)
		defer cancel()
		err := d.server.Serve(serveCtx)
		d.serveErr = err
		d.release()
		d.running.Store(false)

		var exitCode uint32
		if err != nil {
			exitCode = 1
		}
		if reportErr := d.reporter.ReportStatus(host.Stopped, exitCode, 0); reportErr != nil {
			d.logger.Debug("stopped report failed", logging.Error(reportErr))
		}
		d.logger.Info("entropycopy daemon stopped")
	}()

	d.logger.Info("entropycopy daemon started",
		logging.String(logging.FieldChannel, d.endpoint),
		logging.String(logging.FieldDestDir, d.cfg.Paths.DestinationDir),
		logging.String("lock", d.lockPath),
	)
	return nil
}

func (d *Daemon) checkShutdown(context.Context) error {
	if d.controller.Stopped() {
		return errors.New("stop requested before startup completed")
	}
	return nil
}

// openHistory opens the journal. A broken journal degrades to no history
// rather than blocking the channel.
func (d *Daemon) openHistory(ctx context.Context) error {
	if !d.cfg.History.Enabled {
		return nil
	}
	store, err := history.Open(ctx, d.cfg.History.Path, d.logger)
	if err != nil {
		logging.WarnWithContext(d.logger, "session history unavailable", "history_open_failed",
			logging.String("path", d.cfg.History.Path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "sessions will not be journaled"),
		)
		return nil
	}
	if _, err := store.Prune(ctx, d.cfg.History.Keep); err != nil {
		d.logger.Debug("history prune failed", logging.Error(err))
	}
	d.history = store
	return nil
}

func (d *Daemon) buildDescriptor(context.Context) error {
	desc, err := access.Build()
	if err != nil {
		logging.ErrorWithContext(d.logger, "access descriptor rejected", "access_policy_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "the channel is never created without a valid descriptor"),
		)
		return &channel.SetupError{Op: "build access descriptor", Err: err}
	}
	d.desc = desc
	return nil
}

func (d *Daemon) createChannel(context.Context) error {
	opts := channel.Options{
		Endpoint:       d.endpoint,
		DestinationDir: d.cfg.Paths.DestinationDir,
		ResponseMax:    d.cfg.Channel.ResponseMax,
		Descriptor:     d.desc,
		Copier:         transfer.New(d.logger),
		Logger:         d.logger,
		Listen:         d.listen,
	}
	if d.history != nil {
		opts.Recorder = d.history
	}
	srv, err := channel.New(opts)
	if err != nil {
		return err
	}
	if err := srv.Open(); err != nil {
		return err
	}
	d.server = srv
	return nil
}

// release frees the channel, journal, and lock exactly once.
func (d *Daemon) release() {
	d.releaseOnce.Do(func() {
		if d.server != nil {
			if err := d.server.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
				d.logger.Debug("channel close failed", logging.Error(err))
			}
		}
		if d.history != nil {
			if err := d.history.Close(); err != nil {
				d.logger.Debug("history close failed", logging.Error(err))
			}
		}
		if d.locked {
			if err := d.lock.Unlock(); err != nil {
				logging.WarnWithContext(d.logger, "failed to release daemon lock", "lock_release_failed",
					logging.String("lock", d.lockPath),
					logging.Error(err),
					logging.String(logging.FieldImpact, "the next start may report another instance running"),
				)
			}
		}
	})
}

// Wait blocks until the channel loop ends and returns its error. It returns
// nil immediately if Start never succeeded.
func (d *Daemon) Wait() error {
	if d.done == nil {
		return nil
	}
	<-d.done
	return d.serveErr
}

// Stop requests shutdown and waits for the loop to unwind.
func (d *Daemon) Stop() {
	d.controller.RequestStop()
	if d.done != nil {
		<-d.done
	}
}

// Close stops the daemon and releases anything still held.
func (d *Daemon) Close() error {
	d.Stop()
	d.release()
	return nil
}

// Status reports runtime information.
func (d *Daemon) Status() Status {
	status := Status{
		Running:      d.running.Load(),
		Endpoint:     d.endpoint,
		State:        channel.Idle.String(),
		LockFilePath: d.lockPath,
	}
	if d.server != nil {
		status.State = d.server.State().String()
	}
	if d.history != nil {
		status.HistoryPath = d.history.Path()
	}
	return status
}
