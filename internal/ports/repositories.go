package ports

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jobsitelog/core/internal/domain/entities"
)

// Storage errors shared by every KVStore adapter.
var (
	// ErrKeyNotFound is returned by Get when no value is stored under
	// the key. A missing state document is the normal first-run case,
	// not a failure.
	ErrKeyNotFound = errors.New("key not found")

	// ErrQuotaExceeded is returned by Set when the write would push the
	// store past its capacity.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

// KVStore is the persistence capability the state repository writes
// through: a string key-value store with finite capacity.
type KVStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// StateRepository owns the in-memory job collection and persists it
// through a KVStore after every mutation. A failed write never rolls
// back the in-memory state; it records a sticky warning instead.
type StateRepository interface {
	Load(ctx context.Context) error
	Jobs(ctx context.Context) []*entities.Job
	GetJob(ctx context.Context, id uuid.UUID) (*entities.Job, error)
	InsertJob(ctx context.Context, job *entities.Job) error
	DeleteJob(ctx context.Context, id uuid.UUID) error
	InsertTask(ctx context.Context, jobID uuid.UUID, task *entities.Task) error
	DeleteTask(ctx context.Context, jobID, taskID uuid.UUID) error
	StorageWarning() (string, bool)
}

// ImageEncoder downscales and re-encodes a raw photo, returning a data
// URI. Encoders fall back to the untouched original rather than
// failing a whole upload batch.
type ImageEncoder interface {
	Encode(ctx context.Context, raw []byte) (string, error)
}
