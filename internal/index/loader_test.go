package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"docnav/internal/errs"
)

func TestLoaderCachesSuccessfulLoad(t *testing.T) {
	store := newMemStore()
	art := sampleArtifact()
	data, err := art.Encode()
	require.NoError(t, err)
	require.NoError(t, store.Put(context.Background(), "index.json.gz", data))

	loader := NewLoader(store, "index.json.gz", 4)

	first, err := loader.Load(context.Background())
	require.NoError(t, err)
	second, err := loader.Load(context.Background())
	require.NoError(t, err)

	require.Same(t, first, second, "queries must share one immutable artifact")
	require.Equal(t, 1, store.gets, "storage must be read only once per process")
}

func TestLoaderMissingArtifact(t *testing.T) {
	loader := NewLoader(newMemStore(), "index.json.gz", 4)

	_, err := loader.Load(context.Background())
	require.Error(t, err)
	require.Equal(t, errs.KindIndexUnavailable, errs.KindOf(err))
}

func TestLoaderCorruptArtifact(t *testing.T) {
	store := newMemStore()
	require.NoError(t, store.Put(context.Background(), "index.json.gz", []byte("garbage")))

	loader := NewLoader(store, "index.json.gz", 4)
	_, err := loader.Load(context.Background())
	require.Error(t, err)
	require.Equal(t, errs.KindIndexUnavailable, errs.KindOf(err))
}

func TestLoaderDimensionMismatch(t *testing.T) {
	store := newMemStore()
	art := sampleArtifact() // dimension 4
	data, err := art.Encode()
	require.NoError(t, err)
	require.NoError(t, store.Put(context.Background(), "index.json.gz", data))

	loader := NewLoader(store, "index.json.gz", 1536)
	_, err = loader.Load(context.Background())
	require.Error(t, err)
	require.Equal(t, errs.KindIndexUnavailable, errs.KindOf(err))
}

func TestLoaderRecoversOncePublished(t *testing.T) {
	store := newMemStore()
	loader := NewLoader(store, "index.json.gz", 4)

	_, err := loader.Load(context.Background())
	require.Error(t, err)

	data, err := sampleArtifact().Encode()
	require.NoError(t, err)
	require.NoError(t, store.Put(context.Background(), "index.json.gz", data))

	art, err := loader.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, art.Chunks, 3)
}
