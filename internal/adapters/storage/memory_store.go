package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/jobsitelog/core/internal/ports"
)

// MemoryStore is an in-process KVStore with the same quota contract as
// the durable backends. Used as an ephemeral backend and in tests.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
	quota  int64
}

// NewMemoryStore returns an empty store. quota bounds the size of a
// single value in bytes; zero or negative means unlimited.
func NewMemoryStore(quota int64) *MemoryStore {
	return &MemoryStore{values: map[string]string{}, quota: quota}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	if !ok {
		return "", ports.ErrKeyNotFound
	}
	return value, nil
}

func (s *MemoryStore) Set(ctx context.Context, key, value string) error {
	if s.quota > 0 && int64(len(value)) > s.quota {
		return fmt.Errorf("write %s: %w", key, ports.ErrQuotaExceeded)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
