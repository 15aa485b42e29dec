package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jobsitelog/core/internal/ports"
)

// FileStore persists values as files under a root directory, one file
// per key. Writes are atomic (temp file + rename) and bounded by a
// byte quota so a runaway photo log cannot fill the disk.
type FileStore struct {
	root  string
	quota int64
}

// NewFileStore creates the root directory if needed. quota is the
// maximum value size in bytes; zero or negative means unlimited.
func NewFileStore(root string, quota int64) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &FileStore{root: root, quota: quota}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.root, key+".json")
}

func (s *FileStore) Get(ctx context.Context, key string) (string, error) {
	raw, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ports.ErrKeyNotFound
		}
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return string(raw), nil
}

func (s *FileStore) Set(ctx context.Context, key, value string) error {
	if s.quota > 0 && int64(len(value)) > s.quota {
		return fmt.Errorf("write %s (%d bytes over %d byte limit): %w",
			key, int64(len(value))-s.quota, s.quota, ports.ErrQuotaExceeded)
	}

	tmp, err := os.CreateTemp(s.root, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}
