package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobsitelog/core/internal/domain/entities"
	"github.com/jobsitelog/core/internal/infrastructure/logger"
	"github.com/jobsitelog/core/internal/ports"
)

func TestSummarize(t *testing.T) {
	ctx := context.Background()
	state := newTestState(t)
	jobs := NewJobService(state, logger.NewNop())
	tasks := NewTaskService(state, logger.NewNop())
	summaries := NewSummaryService(state)

	job, err := jobs.CreateJob(ctx, ports.CreateJobRequest{Address: "42 Wallaby Way"})
	require.NoError(t, err)

	_, err = tasks.CreateTask(ctx, ports.CreateTaskRequest{
		JobID: job.ID, Title: "Paint", EstimatedTime: "2 hours",
		MaterialsRaw: "Paint", ToolsRaw: "Brush,Ladder",
	})
	require.NoError(t, err)
	_, err = tasks.CreateTask(ctx, ports.CreateTaskRequest{
		JobID: job.ID, Title: "Trim", EstimatedTime: "30 min",
		MaterialsRaw: "Tape,Paint", ToolsRaw: "Brush,Roller",
	})
	require.NoError(t, err)

	sum, err := summaries.Summarize(ctx, job.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, sum.TaskCount)
	assert.Equal(t, []string{"Paint", "Paint", "Tape"}, sum.Materials)
	assert.Equal(t, []string{"Brush", "Ladder", "Roller"}, sum.Tools)
	assert.Equal(t, float64(150), sum.TotalMinutes)
	assert.Equal(t, "2h 30m", sum.TotalTimeDisplay)
}

func TestSummarizeUnknownJob(t *testing.T) {
	state := newTestState(t)
	summaries := NewSummaryService(state)

	_, err := summaries.Summarize(context.Background(), uuid.New())
	assert.ErrorIs(t, err, entities.ErrJobNotFound)
}

func TestEstimateEmptyJob(t *testing.T) {
	ctx := context.Background()
	state := newTestState(t)
	jobs := NewJobService(state, logger.NewNop())
	summaries := NewSummaryService(state)

	job, err := jobs.CreateJob(ctx, ports.CreateJobRequest{Address: "1 Main St"})
	require.NoError(t, err)

	_, err = summaries.Estimate(ctx, job.ID)
	assert.ErrorIs(t, err, entities.ErrNoTasks)
}

func TestEstimateDocument(t *testing.T) {
	ctx := context.Background()
	state := newTestState(t)
	jobs := NewJobService(state, logger.NewNop())
	tasks := NewTaskService(state, logger.NewNop())
	summaries := NewSummaryService(state)

	job, err := jobs.CreateJob(ctx, ports.CreateJobRequest{Address: "42 Wallaby Way!"})
	require.NoError(t, err)
	_, err = tasks.CreateTask(ctx, ports.CreateTaskRequest{JobID: job.ID, Title: "Paint"})
	require.NoError(t, err)

	doc, err := summaries.Estimate(ctx, job.ID)
	require.NoError(t, err)

	assert.Equal(t, "Estimate_42_Wallaby_Way_.txt", doc.Filename)
	assert.Contains(t, doc.Content, "JOBSITE ESTIMATE")
	assert.Contains(t, doc.Content, "ENTRY #1: PAINT")
}
