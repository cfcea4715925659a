package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FSStore keeps objects as files under a root directory. Writes go to a
// temp file first and are renamed into place, so a reader never observes
// a partially written artifact.
type FSStore struct {
	root string
}

func NewFSStore(root string) (*FSStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &FSStore{root: root}, nil
}

func (s *FSStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.root, key))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *FSStore) Put(ctx context.Context, key string, data []byte) error {
	dst := filepath.Join(s.root, key)
	tmp, err := os.CreateTemp(s.root, filepath.Base(key)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}
