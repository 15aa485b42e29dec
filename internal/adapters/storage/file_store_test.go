package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobsitelog/core/internal/ports"
)

func TestFileStoreRoundtrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir(), 0)
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, "state", `{"jobs":[]}`))

	value, err := store.Get(ctx, "state")
	require.NoError(t, err)
	assert.Equal(t, `{"jobs":[]}`, value)
}

func TestFileStoreMissingKey(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), 0)
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, ports.ErrKeyNotFound)
}

func TestFileStoreQuota(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir(), 8)
	require.NoError(t, err)

	err = store.Set(ctx, "state", "well over eight bytes")
	assert.ErrorIs(t, err, ports.ErrQuotaExceeded)

	// Nothing was written.
	_, err = store.Get(ctx, "state")
	assert.ErrorIs(t, err, ports.ErrKeyNotFound)
}

func TestFileStoreOverwrite(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir(), 0)
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, "state", "first"))
	require.NoError(t, store.Set(ctx, "state", "second"))

	value, err := store.Get(ctx, "state")
	require.NoError(t, err)
	assert.Equal(t, "second", value)
}

func TestFileStoreDelete(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir(), 0)
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, "state", "value"))
	require.NoError(t, store.Delete(ctx, "state"))

	_, err = store.Get(ctx, "state")
	assert.ErrorIs(t, err, ports.ErrKeyNotFound)

	// Deleting again is fine.
	assert.NoError(t, store.Delete(ctx, "state"))
}

func TestMemoryStoreQuota(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(4)

	require.NoError(t, store.Set(ctx, "k", "ok"))
	assert.ErrorIs(t, store.Set(ctx, "k", "too long"), ports.ErrQuotaExceeded)

	// The old value survives a rejected write.
	value, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "ok", value)
}
