package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"docnav/internal/config"
)

// Blob is one stored object. The key carries the canonical artifact name.
type Blob struct {
	bun.BaseModel `bun:"table:blobs,alias:b"`
	Key           string    `bun:"key,pk"`
	Data          []byte    `bun:"data,notnull"`
	UpdatedAt     time.Time `bun:"updated_at,notnull"`
}

// PostgresStore keeps objects in a Postgres bytea table. The upsert in
// Put replaces the row in one statement, keeping the swap atomic.
type PostgresStore struct {
	db *bun.DB
}

func NewPostgresStore(ctx context.Context, cfg config.PostgresStorageConfig) (*PostgresStore, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("postgres url is required")
	}
	opts := []pgdriver.Option{pgdriver.WithDSN(cfg.URL)}
	if cfg.Password != "" {
		opts = append(opts, pgdriver.WithPassword(cfg.Password))
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(opts...))
	db := bun.NewDB(sqldb, pgdialect.New())
	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	if _, err := db.NewCreateTable().Model((*Blob)(nil)).IfNotExists().Exec(ctx); err != nil {
		return nil, fmt.Errorf("init blobs table: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	blob := new(Blob)
	err := s.db.NewSelect().Model(blob).Where("key = ?", key).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, err
	}
	return blob.Data, nil
}

func (s *PostgresStore) Put(ctx context.Context, key string, data []byte) error {
	blob := &Blob{Key: key, Data: data, UpdatedAt: time.Now().UTC()}
	_, err := s.db.NewInsert().
		Model(blob).
		On("CONFLICT (key) DO UPDATE").
		Set("data = EXCLUDED.data").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
