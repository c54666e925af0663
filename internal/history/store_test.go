package history_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entropycopy/internal/history"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(context.Background(), filepath.Join(t.TempDir(), "nested", "history.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	_, err := store.Record(ctx, history.Entry{
		SessionID: "first", StartedAt: base, SourceDir: "/a", DestDir: "/d",
		Succeeded: true, FilesCopied: 3, Message: "3 files copied to /d", Duration: 1500 * time.Millisecond,
	})
	require.NoError(t, err)
	id, err := store.Record(ctx, history.Entry{
		SessionID: "second", StartedAt: base.Add(time.Minute), SourceDir: "/b", DestDir: "/d",
		Encoding: "utf-16le", Message: "No files found matching [/b]", SysErr: "no such file",
	})
	require.NoError(t, err)
	assert.Positive(t, id)

	entries, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "second", entries[0].SessionID)
	assert.False(t, entries[0].Succeeded)
	assert.Equal(t, "utf-16le", entries[0].Encoding)
	assert.Equal(t, "no such file", entries[0].SysErr)

	assert.Equal(t, "first", entries[1].SessionID)
	assert.True(t, entries[1].Succeeded)
	assert.Equal(t, 3, entries[1].FilesCopied)
	assert.Equal(t, "utf-8", entries[1].Encoding)
	assert.Equal(t, base, entries[1].StartedAt)
	assert.Equal(t, 1500*time.Millisecond, entries[1].Duration)
}

func TestRecentLimit(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := store.Record(ctx, history.Entry{SessionID: "s", SourceDir: "/s", DestDir: "/d"})
		require.NoError(t, err)
	}
	entries, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestPruneKeepsNewest(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := store.Record(ctx, history.Entry{
			SessionID: string(rune('a' + i)), StartedAt: base.Add(time.Duration(i) * time.Hour),
			SourceDir: "/s", DestDir: "/d",
		})
		require.NoError(t, err)
	}

	removed, err := store.Prune(ctx, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, removed)

	entries, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "e", entries[0].SessionID)
	assert.Equal(t, "d", entries[1].SessionID)

	removed, err = store.Prune(ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	store, err := history.Open(ctx, path, nil)
	require.NoError(t, err)
	_, err = store.Record(ctx, history.Entry{SessionID: "persisted", SourceDir: "/s", DestDir: "/d"})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = history.Open(ctx, path, nil)
	require.NoError(t, err)
	defer store.Close()
	entries, err := store.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "persisted", entries[0].SessionID)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := history.Open(context.Background(), " ", nil)
	require.Error(t, err)
}
