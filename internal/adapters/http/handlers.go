package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/jobsitelog/core/internal/application/services"
	"github.com/jobsitelog/core/internal/domain/entities"
	"github.com/jobsitelog/core/internal/infrastructure/logger"
	"github.com/jobsitelog/core/internal/ports"
)

// MessageResponse is the generic success/error payload
type MessageResponse struct {
	Message string `json:"message"`
}

// StatusResponse reports app-level state the views surface to the
// user: the sticky storage warning and the image processing flag.
type StatusResponse struct {
	StorageWarning   string `json:"storageWarning,omitempty"`
	ProcessingImages bool   `json:"processingImages"`
}

// JobHandler handles job collection requests
type JobHandler struct {
	jobService *services.JobService
	logger     *logger.Logger
}

// NewJobHandler creates a new job handler
func NewJobHandler(jobService *services.JobService, logger *logger.Logger) *JobHandler {
	return &JobHandler{
		jobService: jobService,
		logger:     logger,
	}
}

// ListJobs returns every job, most recently created first
func (h *JobHandler) ListJobs(c echo.Context) error {
	return c.JSON(http.StatusOK, h.jobService.ListJobs(c.Request().Context()))
}

// CreateJob handles job creation
func (h *JobHandler) CreateJob(c echo.Context) error {
	var req ports.CreateJobRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	job, err := h.jobService.CreateJob(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, entities.ErrEmptyAddress) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		h.logger.Errorw("Create job failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not create job")
	}

	return c.JSON(http.StatusCreated, job)
}

// GetJob returns one job with its full task list
func (h *JobHandler) GetJob(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	job, err := h.jobService.GetJob(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Job not found")
	}

	return c.JSON(http.StatusOK, job)
}

// DeleteJob removes a job and everything in it. The confirmation
// prompt is the client's responsibility.
func (h *JobHandler) DeleteJob(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.jobService.DeleteJob(c.Request().Context(), id); err != nil {
		h.logger.Errorw("Delete job failed", "error", err, "job_id", id)
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not delete job")
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Job deleted"})
}

// TaskHandler handles per-job task requests
type TaskHandler struct {
	taskService *services.TaskService
	logger      *logger.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *services.TaskService, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// CreateTask records a new work entry for a job
func (h *TaskHandler) CreateTask(c echo.Context) error {
	jobID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req ports.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	req.JobID = jobID

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, entities.ErrEmptyTitle):
			return echo.NewHTTPError(http.StatusBadRequest, entities.ErrEmptyTitle.Error())
		case errors.Is(err, entities.ErrJobNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Job not found")
		}
		h.logger.Errorw("Create task failed", "error", err, "job_id", jobID)
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not create task")
	}

	return c.JSON(http.StatusCreated, task)
}

// DeleteTask removes a work entry from its job
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	jobID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	taskID, err := parseID(c, "taskId")
	if err != nil {
		return err
	}

	if err := h.taskService.DeleteTask(c.Request().Context(), jobID, taskID); err != nil {
		if errors.Is(err, entities.ErrJobNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Job not found")
		}
		h.logger.Errorw("Delete task failed", "error", err, "job_id", jobID, "task_id", taskID)
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not delete task")
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Task deleted"})
}

func parseID(c echo.Context, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid id")
	}
	return id, nil
}

// readMultipartFiles reads every uploaded file under the field name,
// in form order.
func readMultipartFiles(c echo.Context, field string) ([][]byte, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid multipart form")
	}

	files := form.File[field]
	blobs := make([][]byte, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "Could not read uploaded file")
		}
		raw, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "Could not read uploaded file")
		}
		blobs = append(blobs, raw)
	}
	return blobs, nil
}
