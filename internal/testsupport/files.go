package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// SourceDir creates a short-pathed temp directory holding the named files.
// Each file's content is its own name. Request paths are bounded, so the
// directory is not nested under t.TempDir.
func SourceDir(t testing.TB, names ...string) string {
	t.Helper()

	dir, err := os.MkdirTemp("", "src")
	if err != nil {
		t.Fatalf("mkdir source dir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	for _, name := range names {
		WriteFile(t, filepath.Join(dir, name), name)
	}
	return dir
}

// MakeReadOnly strips write permission from path and restores it on cleanup
// so t.TempDir removal succeeds.
func MakeReadOnly(t testing.TB, path string) {
	t.Helper()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	mode := info.Mode().Perm()
	if err := os.Chmod(path, mode&^0o222); err != nil {
		t.Fatalf("chmod %s: %v", path, err)
	}
	t.Cleanup(func() { _ = os.Chmod(path, mode|0o200) })
}

// SkipIfRoot skips tests whose assertions depend on permission checks that
// root bypasses.
func SkipIfRoot(t testing.TB) {
	t.Helper()
	if os.Geteuid() == 0 {
		t.Skip("permission checks are bypassed for root")
	}
}
