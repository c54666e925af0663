package fileutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")

	content := []byte("hello world")
	require.NoError(t, os.WriteFile(src, content, 0o644))
	require.NoError(t, CopyFile(src, dst))

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestCopyFileOverwritesExisting(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")
	require.NoError(t, os.WriteFile(src, []byte("new"), 0o644))
	require.NoError(t, os.WriteFile(dst, []byte("old content that is longer"), 0o644))

	require.NoError(t, CopyFile(src, dst))

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
}

func TestCopyFileRejectsDirectory(t *testing.T) {
	dir := t.TempDir()
	require.Error(t, CopyFile(dir, filepath.Join(t.TempDir(), "out")))
}

func TestCopyFileCarriesPermissionBits(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not meaningful on windows")
	}
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")

	require.NoError(t, os.WriteFile(src, []byte("data"), 0o644))
	require.NoError(t, os.Chmod(src, 0o755))
	require.NoError(t, CopyFile(src, dst))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestReadOnlyRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locked.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	require.NoError(t, os.Chmod(path, 0o444))

	ro, err := ReadOnly(path)
	require.NoError(t, err)
	assert.True(t, ro)

	require.NoError(t, ClearReadOnly(path))
	ro, err = ReadOnly(path)
	require.NoError(t, err)
	assert.False(t, ro)
}

func TestCopyFileKeepsReadOnlySource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))
	require.NoError(t, os.Chmod(src, 0o444))
	t.Cleanup(func() { _ = os.Chmod(src, 0o644); _ = os.Chmod(dst, 0o644) })

	require.NoError(t, CopyFile(src, dst))
	ro, err := ReadOnly(dst)
	require.NoError(t, err)
	assert.True(t, ro)
}

func TestWritable(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, Writable(dir))
	assert.Error(t, Writable(filepath.Join(dir, "missing")))
}

func TestCopyFileRejectsSameFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("keep me"), 0o644))

	err := CopyFile(path, path)
	require.ErrorIs(t, err, ErrSameFile)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(got))
}

func TestCopyFileReplacesReadOnlyDestination(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")
	require.NoError(t, os.WriteFile(src, []byte("fresh"), 0o644))
	require.NoError(t, os.WriteFile(dst, []byte("stale"), 0o644))
	require.NoError(t, os.Chmod(dst, 0o444))
	t.Cleanup(func() { _ = os.Chmod(dst, 0o644) })

	require.NoError(t, CopyFile(src, dst))

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(got))
}
