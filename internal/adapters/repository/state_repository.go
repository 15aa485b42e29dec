package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jobsitelog/core/internal/domain/entities"
	"github.com/jobsitelog/core/internal/infrastructure/logger"
	"github.com/jobsitelog/core/internal/ports"
)

// StorageWarningMessage is shown to the user while writes are failing.
const StorageWarningMessage = "Storage full! Delete some photos or old jobs to save new data."

// StateRepositoryImpl holds the whole job collection in memory and
// writes it through a KVStore as one document after every mutation.
// A rejected write never rolls the mutation back: the state stays
// usable and a sticky warning is raised until a write succeeds again.
type StateRepositoryImpl struct {
	mu      sync.Mutex
	kv      ports.KVStore
	key     string
	logger  *logger.Logger
	jobs    []*entities.Job
	warning string
}

// NewStateRepository creates a state repository persisting under the
// given storage key.
func NewStateRepository(kv ports.KVStore, key string, logger *logger.Logger) *StateRepositoryImpl {
	return &StateRepositoryImpl{
		kv:     kv,
		key:    key,
		logger: logger,
		jobs:   []*entities.Job{},
	}
}

// Load reads the persisted document, migrating legacy task records. A
// missing document is the first-run state. A malformed document is
// logged and treated as empty; it is not surfaced as an error.
func (r *StateRepositoryImpl) Load(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, err := r.kv.Get(ctx, r.key)
	if err != nil {
		if errors.Is(err, ports.ErrKeyNotFound) {
			r.jobs = []*entities.Job{}
			return nil
		}
		return err
	}

	doc, err := entities.DecodeDocument([]byte(raw))
	if err != nil {
		r.logger.Errorw("Failed to decode persisted state, starting empty", "error", err)
		r.jobs = []*entities.Job{}
		return nil
	}

	r.jobs = doc.Jobs
	return nil
}

// Jobs returns the collection, newest job first.
func (r *StateRepositoryImpl) Jobs(ctx context.Context) []*entities.Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	jobs := make([]*entities.Job, len(r.jobs))
	copy(jobs, r.jobs)
	return jobs
}

// GetJob returns the job with the given id.
func (r *StateRepositoryImpl) GetJob(ctx context.Context, id uuid.UUID) (*entities.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findJob(id)
}

// InsertJob prepends a job to the collection and persists.
func (r *StateRepositoryImpl) InsertJob(ctx context.Context, job *entities.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.jobs = append([]*entities.Job{job}, r.jobs...)
	r.saveState(ctx)
	return nil
}

// DeleteJob removes the job with the given id. An unknown id is a
// no-op and does not trigger a write.
func (r *StateRepositoryImpl) DeleteJob(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, job := range r.jobs {
		if job.ID == id {
			r.jobs = append(r.jobs[:i], r.jobs[i+1:]...)
			r.saveState(ctx)
			return nil
		}
	}
	return nil
}

// InsertTask prepends a task to its job (newest first), refreshes the
// job's UpdatedAt and persists.
func (r *StateRepositoryImpl) InsertTask(ctx context.Context, jobID uuid.UUID, task *entities.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, err := r.findJob(jobID)
	if err != nil {
		return err
	}

	job.Tasks = append([]*entities.Task{task}, job.Tasks...)
	job.UpdatedAt = task.CreatedAt
	r.saveState(ctx)
	return nil
}

// DeleteTask removes a task from its job. An unknown task id is a
// no-op: nothing is written and UpdatedAt is untouched.
func (r *StateRepositoryImpl) DeleteTask(ctx context.Context, jobID, taskID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, err := r.findJob(jobID)
	if err != nil {
		return err
	}

	for i, task := range job.Tasks {
		if task.ID == taskID {
			job.Tasks = append(job.Tasks[:i], job.Tasks[i+1:]...)
			job.UpdatedAt = nowMillis()
			r.saveState(ctx)
			return nil
		}
	}
	return nil
}

// StorageWarning reports the sticky warning raised by a failed write.
// Cleared by the next successful write.
func (r *StateRepositoryImpl) StorageWarning() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.warning, r.warning != ""
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

func (r *StateRepositoryImpl) findJob(id uuid.UUID) (*entities.Job, error) {
	for _, job := range r.jobs {
		if job.ID == id {
			return job, nil
		}
	}
	return nil, entities.ErrJobNotFound
}

// saveState writes the full collection under the fixed key. Callers
// hold the mutex. Failures are absorbed here: the in-memory mutation
// stands and the warning is set until a later write succeeds.
func (r *StateRepositoryImpl) saveState(ctx context.Context) {
	raw, err := entities.EncodeDocument(r.jobs)
	if err != nil {
		r.logger.Errorw("Failed to encode state", "error", err)
		r.warning = StorageWarningMessage
		return
	}

	if err := r.kv.Set(ctx, r.key, string(raw)); err != nil {
		if errors.Is(err, ports.ErrQuotaExceeded) {
			r.logger.Warnw("Storage limit reached", "error", err, "jobs", len(r.jobs))
		} else {
			r.logger.Errorw("Failed to persist state", "error", err)
		}
		r.warning = StorageWarningMessage
		return
	}

	r.warning = ""
}
