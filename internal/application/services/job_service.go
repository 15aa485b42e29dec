package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/jobsitelog/core/internal/domain/entities"
	"github.com/jobsitelog/core/internal/infrastructure/logger"
	"github.com/jobsitelog/core/internal/ports"
)

// JobService handles job collection operations
type JobService struct {
	state  ports.StateRepository
	logger *logger.Logger
}

// NewJobService creates a new job service
func NewJobService(state ports.StateRepository, logger *logger.Logger) *JobService {
	return &JobService{
		state:  state,
		logger: logger,
	}
}

// CreateJob creates a new job and prepends it to the collection. An
// address that is empty after trimming is rejected and nothing is
// added.
func (s *JobService) CreateJob(ctx context.Context, req ports.CreateJobRequest) (*entities.Job, error) {
	if strings.TrimSpace(req.Address) == "" {
		return nil, entities.ErrEmptyAddress
	}

	job := entities.NewJob(req.Address, req.ClientName)

	if err := s.state.InsertJob(ctx, job); err != nil {
		return nil, err
	}

	s.logger.Infow("Job created", "job_id", job.ID, "address", job.Address)
	return job, nil
}

// GetJob retrieves a job by ID
func (s *JobService) GetJob(ctx context.Context, id uuid.UUID) (*entities.Job, error) {
	return s.state.GetJob(ctx, id)
}

// ListJobs returns the collection, most recently created first
func (s *JobService) ListJobs(ctx context.Context) []*entities.Job {
	return s.state.Jobs(ctx)
}

// DeleteJob removes a job and all its tasks. An unknown id is a
// no-op. Confirmation happens in the view layer, not here.
func (s *JobService) DeleteJob(ctx context.Context, id uuid.UUID) error {
	if err := s.state.DeleteJob(ctx, id); err != nil {
		return err
	}

	s.logger.Infow("Job deleted", "job_id", id)
	return nil
}
