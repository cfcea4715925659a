package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"docnav/internal/config"
)

func TestFSStoreRoundTrip(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "index.json.gz", []byte("payload")))

	data, err := store.Get(ctx, "index.json.gz")
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), data)
}

func TestFSStoreGetMissingKey(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "missing.gz")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestFSStorePutReplacesExisting(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "index.json.gz", []byte("old")))
	require.NoError(t, store.Put(ctx, "index.json.gz", []byte("new")))

	data, err := store.Get(ctx, "index.json.gz")
	require.NoError(t, err)
	require.Equal(t, []byte("new"), data)
}

func TestFSStorePutLeavesNoTempFiles(t *testing.T) {
	root := t.TempDir()
	store, err := NewFSStore(root)
	require.NoError(t, err)

	require.NoError(t, store.Put(context.Background(), "index.json.gz", []byte("data")))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "index.json.gz", filepath.Base(entries[0].Name()))
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	_, err := New(context.Background(), config.StorageConfig{Backend: "tape"})
	require.Error(t, err)
}
