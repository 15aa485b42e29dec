package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/jobsitelog/core/internal/domain/entities"
)

// JobService interface for job collection operations
type JobService interface {
	CreateJob(ctx context.Context, req CreateJobRequest) (*entities.Job, error)
	GetJob(ctx context.Context, id uuid.UUID) (*entities.Job, error)
	ListJobs(ctx context.Context) []*entities.Job
	DeleteJob(ctx context.Context, id uuid.UUID) error
}

// TaskService interface for per-job task operations
type TaskService interface {
	CreateTask(ctx context.Context, req CreateTaskRequest) (*entities.Task, error)
	DeleteTask(ctx context.Context, jobID, taskID uuid.UUID) error
}

// SummaryService interface for the derived report views
type SummaryService interface {
	Summarize(ctx context.Context, jobID uuid.UUID) (*JobSummary, error)
	Estimate(ctx context.Context, jobID uuid.UUID) (*EstimateDocument, error)
}

// ImageService interface for the sequential photo-encoding queue
type ImageService interface {
	ProcessBatch(ctx context.Context, images [][]byte) ([]string, error)
	Processing() bool
}

// Request/Response Types

type CreateJobRequest struct {
	Address    string `json:"address" validate:"required"`
	ClientName string `json:"clientName" validate:"omitempty,max=200"`
}

type CreateTaskRequest struct {
	JobID         uuid.UUID `json:"jobId" validate:"required"`
	Title         string    `json:"title" validate:"required"`
	EstimatedTime string    `json:"estimatedTime"`
	Description   string    `json:"description"`
	MaterialsRaw  string    `json:"materials"`
	ToolsRaw      string    `json:"tools"`
	ImageURLs     []string  `json:"imageUrls"`
}

// JobSummary is the sidebar view of a job: every material (duplicates
// kept), the deduplicated tool list, and the estimated time total.
type JobSummary struct {
	JobID            uuid.UUID `json:"jobId"`
	TaskCount        int       `json:"taskCount"`
	Materials        []string  `json:"materials"`
	Tools            []string  `json:"tools"`
	TotalMinutes     float64   `json:"totalMinutes"`
	TotalTimeDisplay string    `json:"totalTimeDisplay"`
}

// EstimateDocument is the rendered plain-text quote plus the filename
// it should be saved under.
type EstimateDocument struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}
