package index

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"docnav/internal/errs"
	"docnav/internal/storage"
)

// Loader reads the artifact from durable storage once per process and
// shares the decoded, immutable result with every query after that.
// Only successful loads are cached; a failed load is reported as
// index_unavailable and retried on the next call.
type Loader struct {
	store   storage.ObjectStore
	key     string
	wantDim int

	mu     sync.Mutex
	cached *Artifact
}

func NewLoader(store storage.ObjectStore, key string, wantDim int) *Loader {
	return &Loader{store: store, key: key, wantDim: wantDim}
}

// Load returns the cached artifact, fetching and decoding it on first use.
func (l *Loader) Load(ctx context.Context) (*Artifact, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cached != nil {
		return l.cached, nil
	}

	data, err := l.store.Get(ctx, l.key)
	if err != nil {
		return nil, errs.IndexUnavailable("load", err)
	}
	art, err := Decode(data)
	if err != nil {
		return nil, errs.IndexUnavailable("load", err)
	}
	if len(art.Chunks) > 0 && art.Metadata.Dimension != l.wantDim {
		return nil, errs.IndexUnavailable("load", fmt.Errorf("%w: artifact dimension %d, configured model expects %d",
			errs.ErrDimensionMismatch, art.Metadata.Dimension, l.wantDim))
	}

	log.Info().Str("key", l.key).Int("chunks", art.Metadata.TotalChunks).Str("model", art.Metadata.ModelID).Msg("Index loaded")
	l.cached = art
	return art, nil
}
