package testsupport

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"entropycopy/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The destination directory exists and is writable. On Unix the channel name is
// an absolute socket path under a short temp directory so it stays inside the
// sun_path limit.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DestinationDir = filepath.Join(base, "dest")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.History.Path = filepath.Join(base, "logs", "history.db")
	cfgVal.Channel.ConnectTimeoutMS = 200
	cfgVal.Channel.Name = socketName(t)

	for _, dir := range []string{cfgVal.Paths.DestinationDir, cfgVal.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

func socketName(t testing.TB) string {
	if runtime.GOOS == "windows" {
		return "entropycopy-test-" + filepath.Base(t.TempDir())
	}
	dir, err := os.MkdirTemp("", "ec")
	if err != nil {
		t.Fatalf("mkdir socket dir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return filepath.Join(dir, "ec.sock")
}

// WithChannelName overrides the channel name on the test config.
func WithChannelName(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Channel.Name = name
	}
}

// WithoutHistory disables the session journal.
func WithoutHistory() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = false
	}
}

// WithDestination points the destination at dir without creating it.
func WithDestination(dir string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.DestinationDir = dir
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
