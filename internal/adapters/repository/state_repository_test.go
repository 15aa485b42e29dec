package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobsitelog/core/internal/adapters/storage"
	"github.com/jobsitelog/core/internal/domain/entities"
	"github.com/jobsitelog/core/internal/infrastructure/logger"
	"github.com/jobsitelog/core/internal/ports"
)

const testKey = "jobsite-log-jobs"

// failingStore rejects writes on demand while keeping reads working.
type failingStore struct {
	*storage.MemoryStore
	failWrites bool
}

func (s *failingStore) Set(ctx context.Context, key, value string) error {
	if s.failWrites {
		return ports.ErrQuotaExceeded
	}
	return s.MemoryStore.Set(ctx, key, value)
}

func newTestRepo(t *testing.T) (*StateRepositoryImpl, *failingStore) {
	t.Helper()
	kv := &failingStore{MemoryStore: storage.NewMemoryStore(0)}
	repo := NewStateRepository(kv, testKey, logger.NewNop())
	require.NoError(t, repo.Load(context.Background()))
	return repo, kv
}

func TestLoadMissingDocument(t *testing.T) {
	repo, _ := newTestRepo(t)
	assert.Empty(t, repo.Jobs(context.Background()))
}

func TestLoadMalformedDocumentStartsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStore(0)
	require.NoError(t, kv.Set(ctx, testKey, `{"version": not json`))

	repo := NewStateRepository(kv, testKey, logger.NewNop())
	require.NoError(t, repo.Load(ctx))
	assert.Empty(t, repo.Jobs(ctx))
}

func TestLoadMigratesLegacyDocument(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStore(0)
	legacy := `[{
		"id": "0d9f6a2e-94b3-4a3e-9a56-0a3f2f6d1c11",
		"address": "42 Wallaby Way",
		"tasks": [{"id": "4e8b41a4-13f0-4bb6-8a29-2ab6f26ef0aa", "title": "Paint", "imageUrl": "pic", "createdAt": 1}],
		"createdAt": 1,
		"updatedAt": 1
	}]`
	require.NoError(t, kv.Set(ctx, testKey, legacy))

	repo := NewStateRepository(kv, testKey, logger.NewNop())
	require.NoError(t, repo.Load(ctx))

	jobs := repo.Jobs(ctx)
	require.Len(t, jobs, 1)
	assert.Equal(t, []string{"pic"}, jobs[0].Tasks[0].ImageURLs)
}

func TestInsertJobPrepends(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	first := entities.NewJob("1 First St", "")
	second := entities.NewJob("2 Second St", "")
	require.NoError(t, repo.InsertJob(ctx, first))
	require.NoError(t, repo.InsertJob(ctx, second))

	jobs := repo.Jobs(ctx)
	require.Len(t, jobs, 2)
	assert.Equal(t, second.ID, jobs[0].ID)
	assert.Equal(t, first.ID, jobs[1].ID)
}

func TestInsertJobPersists(t *testing.T) {
	ctx := context.Background()
	repo, kv := newTestRepo(t)

	job := entities.NewJob("1 Main St", "")
	require.NoError(t, repo.InsertJob(ctx, job))

	// A fresh repository sees the write.
	reloaded := NewStateRepository(kv, testKey, logger.NewNop())
	require.NoError(t, reloaded.Load(ctx))
	require.Len(t, reloaded.Jobs(ctx), 1)
	assert.Equal(t, job.ID, reloaded.Jobs(ctx)[0].ID)
}

func TestDeleteJobUnknownIDIsNoop(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)
	require.NoError(t, repo.InsertJob(ctx, entities.NewJob("1 Main St", "")))

	require.NoError(t, repo.DeleteJob(ctx, uuid.New()))
	assert.Len(t, repo.Jobs(ctx), 1)
}

func TestDeleteJobRemoves(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)
	job := entities.NewJob("1 Main St", "")
	require.NoError(t, repo.InsertJob(ctx, job))

	require.NoError(t, repo.DeleteJob(ctx, job.ID))
	assert.Empty(t, repo.Jobs(ctx))
}

func TestInsertTaskPrependsAndBumpsUpdatedAt(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)
	job := entities.NewJob("1 Main St", "")
	require.NoError(t, repo.InsertJob(ctx, job))

	first := entities.NewTask("First", "", "", nil, nil, nil)
	second := entities.NewTask("Second", "", "", nil, nil, nil)
	second.CreatedAt = first.CreatedAt + 1000
	require.NoError(t, repo.InsertTask(ctx, job.ID, first))
	require.NoError(t, repo.InsertTask(ctx, job.ID, second))

	got, err := repo.GetJob(ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, got.Tasks, 2)
	assert.Equal(t, second.ID, got.Tasks[0].ID)
	assert.Equal(t, second.CreatedAt, got.UpdatedAt)
}

func TestInsertTaskUnknownJob(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	err := repo.InsertTask(ctx, uuid.New(), entities.NewTask("Orphan", "", "", nil, nil, nil))
	assert.ErrorIs(t, err, entities.ErrJobNotFound)
}

func TestDeleteTaskUnknownIDIsNoop(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)
	job := entities.NewJob("1 Main St", "")
	require.NoError(t, repo.InsertJob(ctx, job))
	task := entities.NewTask("Keep me", "", "", nil, nil, nil)
	require.NoError(t, repo.InsertTask(ctx, job.ID, task))

	before, err := repo.GetJob(ctx, job.ID)
	require.NoError(t, err)
	updatedAt := before.UpdatedAt

	require.NoError(t, repo.DeleteTask(ctx, job.ID, uuid.New()))

	after, err := repo.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Len(t, after.Tasks, 1)
	assert.Equal(t, updatedAt, after.UpdatedAt)
}

func TestFailedWriteKeepsMutationAndRaisesWarning(t *testing.T) {
	ctx := context.Background()
	repo, kv := newTestRepo(t)

	kv.failWrites = true
	job := entities.NewJob("1 Main St", "")
	require.NoError(t, repo.InsertJob(ctx, job))

	// The in-memory mutation stands.
	require.Len(t, repo.Jobs(ctx), 1)

	warning, active := repo.StorageWarning()
	assert.True(t, active)
	assert.Equal(t, StorageWarningMessage, warning)

	// Nothing reached the store.
	_, err := kv.MemoryStore.Get(ctx, testKey)
	assert.ErrorIs(t, err, ports.ErrKeyNotFound)
}

func TestWarningClearedByNextSuccessfulWrite(t *testing.T) {
	ctx := context.Background()
	repo, kv := newTestRepo(t)

	kv.failWrites = true
	require.NoError(t, repo.InsertJob(ctx, entities.NewJob("1 Main St", "")))
	_, active := repo.StorageWarning()
	require.True(t, active)

	kv.failWrites = false
	require.NoError(t, repo.InsertJob(ctx, entities.NewJob("2 Oak St", "")))

	_, active = repo.StorageWarning()
	assert.False(t, active)
}
