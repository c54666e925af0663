package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"entropycopy/internal/access"
	"entropycopy/internal/channel"
	"entropycopy/internal/config"
	"entropycopy/internal/history"
	"entropycopy/internal/ipc"
	"entropycopy/internal/logging"
	"entropycopy/internal/testsupport"
	"entropycopy/internal/transfer"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	endpoint   string
	store      *history.Store
}

// setupCLITestEnv writes a config file for a fresh test config. When serve is
// true a channel server journaling into the configured history store is
// started against the same endpoint.
func setupCLITestEnv(t *testing.T, serve bool) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)

	env := &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		endpoint:   ipc.Endpoint(cfg.Channel.Name, cfg.Paths.LogDir),
	}
	if !serve {
		return env
	}

	store, err := history.Open(context.Background(), cfg.History.Path, logging.NewNop())
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	env.store = store

	desc, err := access.Build()
	if err != nil {
		t.Fatalf("access.Build: %v", err)
	}
	srv, err := channel.New(channel.Options{
		Endpoint:       env.endpoint,
		DestinationDir: cfg.Paths.DestinationDir,
		Descriptor:     desc,
		Copier:         transfer.New(logging.NewNop()),
		Recorder:       store,
		Logger:         logging.NewNop(),
	})
	if err != nil {
		t.Fatalf("channel.New: %v", err)
	}
	if err := srv.Open(); err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping CLI channel test: %v", err)
		}
		t.Fatalf("open channel: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
		_ = store.Close()
	})

	waitFor(t, 5*time.Second, func() bool { return srv.State() == channel.AwaitingConnection })
	return env
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func waitFor(t *testing.T, duration time.Duration, fn func() bool) {
	t.Helper()
	deadline := time.Now().Add(duration)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", duration)
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
