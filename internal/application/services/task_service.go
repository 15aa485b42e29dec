package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jobsitelog/core/internal/domain/entities"
	"github.com/jobsitelog/core/internal/infrastructure/logger"
	"github.com/jobsitelog/core/internal/ports"
)

// TaskService handles task operations within a job
type TaskService struct {
	state  ports.StateRepository
	logger *logger.Logger
}

// NewTaskService creates a new task service
func NewTaskService(state ports.StateRepository, logger *logger.Logger) *TaskService {
	return &TaskService{
		state:  state,
		logger: logger,
	}
}

// CreateTask records a new work entry at the front of its job's task
// list and refreshes the job's UpdatedAt. A title that is empty after
// trimming, or a job id that does not resolve, rejects the whole
// operation with no partial record.
func (s *TaskService) CreateTask(ctx context.Context, req ports.CreateTaskRequest) (*entities.Task, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, entities.ErrEmptyTitle
	}

	if _, err := s.state.GetJob(ctx, req.JobID); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	task := entities.NewTask(
		req.Title,
		req.EstimatedTime,
		req.Description,
		entities.SplitItems(req.MaterialsRaw),
		entities.SplitItems(req.ToolsRaw),
		req.ImageURLs,
	)

	if err := s.state.InsertTask(ctx, req.JobID, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.logger.Infow("Task created", "task_id", task.ID, "job_id", req.JobID, "title", task.Title)
	return task, nil
}

// DeleteTask removes a work entry from its job. An unknown task id is
// a no-op. Confirmation happens in the view layer.
func (s *TaskService) DeleteTask(ctx context.Context, jobID, taskID uuid.UUID) error {
	if err := s.state.DeleteTask(ctx, jobID, taskID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	s.logger.Infow("Task deleted", "task_id", taskID, "job_id", jobID)
	return nil
}
