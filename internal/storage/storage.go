package storage

import (
	"context"
	"errors"
	"fmt"

	"docnav/internal/config"
)

// ErrNotFound reports that no object exists under the requested key.
var ErrNotFound = errors.New("object not found")

// ObjectStore is the durable home of the index artifact. A Put must
// replace any prior object under the key atomically.
type ObjectStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
}

// New builds the configured backend.
func New(ctx context.Context, cfg config.StorageConfig) (ObjectStore, error) {
	switch cfg.Backend {
	case "fs":
		return NewFSStore(cfg.FS.Root)
	case "s3":
		return NewS3Store(ctx, cfg.S3)
	case "postgres":
		return NewPostgresStore(ctx, cfg.Postgres)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}
