package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jobsitelog/core/internal/domain/entities"
	"github.com/jobsitelog/core/internal/domain/summary"
	"github.com/jobsitelog/core/internal/ports"
)

// SummaryService exposes the derived report views for a job. All
// results are recomputed from the current task list on every call.
type SummaryService struct {
	state ports.StateRepository
	now   func() time.Time
}

// NewSummaryService creates a new summary service
func NewSummaryService(state ports.StateRepository) *SummaryService {
	return &SummaryService{
		state: state,
		now:   time.Now,
	}
}

// Summarize returns the material list (duplicates kept), the
// deduplicated tool list and the estimated time total for a job.
func (s *SummaryService) Summarize(ctx context.Context, jobID uuid.UUID) (*ports.JobSummary, error) {
	job, err := s.state.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	total := summary.TotalEstimatedMinutes(job.Tasks)
	return &ports.JobSummary{
		JobID:            job.ID,
		TaskCount:        len(job.Tasks),
		Materials:        summary.AllMaterials(job.Tasks),
		Tools:            summary.AllTools(job.Tasks),
		TotalMinutes:     total,
		TotalTimeDisplay: summary.FormatMinutes(total),
	}, nil
}

// Estimate renders the plain-text quote document for a job. A job
// with no tasks has nothing to quote and yields ErrNoTasks.
func (s *SummaryService) Estimate(ctx context.Context, jobID uuid.UUID) (*ports.EstimateDocument, error) {
	job, err := s.state.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	content, ok := summary.BuildEstimate(job, s.now())
	if !ok {
		return nil, entities.ErrNoTasks
	}

	return &ports.EstimateDocument{
		Filename: summary.EstimateFilename(job.Address),
		Content:  content,
	}, nil
}
