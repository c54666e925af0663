package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"entropycopy/internal/testsupport"
)

func TestSendCopiesDirectory(t *testing.T) {
	env := setupCLITestEnv(t, true)
	src := testsupport.SourceDir(t, "a.txt", "b.txt")

	out, _, err := runCLI(t, []string{"send", src}, env.configPath)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	requireContains(t, out, "[INFO] 2 files copied to "+env.cfg.Paths.DestinationDir)
	for _, name := range []string{"a.txt", "b.txt"} {
		if _, err := os.Stat(filepath.Join(env.cfg.Paths.DestinationDir, name)); err != nil {
			t.Fatalf("expected %s in destination: %v", name, err)
		}
	}
}

func TestSendUTF16RoundTrip(t *testing.T) {
	env := setupCLITestEnv(t, true)
	src := testsupport.SourceDir(t, "wide.txt")

	out, _, err := runCLI(t, []string{"send", "--utf16", src}, env.configPath)
	if err != nil {
		t.Fatalf("send --utf16: %v", err)
	}
	requireContains(t, out, "[INFO] 1 files copied to ")
}

func TestSendReportsTransferFailure(t *testing.T) {
	env := setupCLITestEnv(t, true)
	missing := filepath.Join(os.TempDir(), "ec-missing-src")

	out, _, err := runCLI(t, []string{"send", missing}, env.configPath)
	if err != errTransferFailed {
		t.Fatalf("expected errTransferFailed, got %v", err)
	}
	requireContains(t, out, "[ERROR] No files found matching ["+missing+"]")
}

func TestSendWithoutServerExplainsDialFailure(t *testing.T) {
	env := setupCLITestEnv(t, false)

	_, _, err := runCLI(t, []string{"send", os.TempDir()}, env.configPath)
	if err == nil {
		t.Fatal("expected send to fail without a server")
	}
	requireContains(t, err.Error(), "connect")
}

func TestHistoryListsSessions(t *testing.T) {
	env := setupCLITestEnv(t, true)
	src := testsupport.SourceDir(t, "one.txt")
	if _, _, err := runCLI(t, []string{"send", src}, env.configPath); err != nil {
		t.Fatalf("send: %v", err)
	}
	waitFor(t, 2*time.Second, func() bool {
		entries, err := env.store.Recent(context.Background(), 1)
		return err == nil && len(entries) == 1
	})

	out, _, err := runCLI(t, []string{"history", "--limit", "5"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, src)
	requireContains(t, out, "1 files copied to")
}

func TestHistoryWithoutJournal(t *testing.T) {
	env := setupCLITestEnv(t, false)

	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No sessions recorded")
}

func TestStatusWhenServerStopped(t *testing.T) {
	env := setupCLITestEnv(t, false)

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "== Server ==")
	requireContains(t, out, "[WARN] not running")
	requireContains(t, out, "[OK] "+env.cfg.Paths.DestinationDir)
	requireContains(t, out, "no sessions recorded")
}

func TestStopWhenServerStopped(t *testing.T) {
	env := setupCLITestEnv(t, false)

	out, _, err := runCLI(t, []string{"stop"}, env.configPath)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	requireContains(t, out, "Server is not running")
}

func TestConfigInitValidateShow(t *testing.T) {
	env := setupCLITestEnv(t, false)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}

	out, _, err = runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "destination_dir")
	requireContains(t, out, env.cfg.Channel.Name)
}

func TestPipeFlagOverridesChannelName(t *testing.T) {
	env := setupCLITestEnv(t, false)

	out, _, err := runCLI(t, []string{"--pipe", "otherpipe", "config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "otherpipe")
}

func TestLogsPrintsTrailingLines(t *testing.T) {
	env := setupCLITestEnv(t, false)
	path := filepath.Join(env.cfg.Paths.LogDir, "entropycopy.log")
	if err := os.WriteFile(path, []byte("first\nsecond\nthird\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	out, _, err := runCLI(t, []string{"logs", "-n", "2"}, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if out != "second\nthird\n" {
		t.Fatalf("unexpected logs output %q", out)
	}
}

func TestLogsWithoutFile(t *testing.T) {
	env := setupCLITestEnv(t, false)

	out, _, err := runCLI(t, []string{"logs"}, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, "No log output")
}
