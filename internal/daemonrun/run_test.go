package daemonrun

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWritePIDFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entropycopy.pid")
	require.NoError(t, writePIDFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), strings.TrimSpace(string(data)))

	assert.NoError(t, writePIDFile(""))
}

func TestEnsureCurrentLogPointerReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "entropycopy-1.log")
	second := filepath.Join(dir, "entropycopy-2.log")
	require.NoError(t, os.WriteFile(first, []byte("one"), 0o644))
	require.NoError(t, os.WriteFile(second, []byte("two"), 0o644))

	require.NoError(t, ensureCurrentLogPointer(dir, first))
	require.NoError(t, ensureCurrentLogPointer(dir, second))

	data, err := os.ReadFile(filepath.Join(dir, "entropycopy.log"))
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
}
