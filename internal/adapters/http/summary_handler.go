package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jobsitelog/core/internal/application/services"
	"github.com/jobsitelog/core/internal/domain/entities"
	"github.com/jobsitelog/core/internal/infrastructure/logger"
)

// SummaryHandler serves the derived report views and the estimate
// download.
type SummaryHandler struct {
	summaryService *services.SummaryService
	logger         *logger.Logger
}

// NewSummaryHandler creates a new summary handler
func NewSummaryHandler(summaryService *services.SummaryService, logger *logger.Logger) *SummaryHandler {
	return &SummaryHandler{
		summaryService: summaryService,
		logger:         logger,
	}
}

// GetSummary returns the sidebar view: flattened materials,
// deduplicated tools and the estimated time total.
func (h *SummaryHandler) GetSummary(c echo.Context) error {
	jobID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	sum, err := h.summaryService.Summarize(c.Request().Context(), jobID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Job not found")
	}

	return c.JSON(http.StatusOK, sum)
}

// DownloadEstimate streams the plain-text quote document with its
// suggested filename.
func (h *SummaryHandler) DownloadEstimate(c echo.Context) error {
	jobID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	doc, err := h.summaryService.Estimate(c.Request().Context(), jobID)
	if err != nil {
		switch {
		case errors.Is(err, entities.ErrJobNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Job not found")
		case errors.Is(err, entities.ErrNoTasks):
			return echo.NewHTTPError(http.StatusNotFound, "Job has no entries to quote")
		}
		h.logger.Errorw("Estimate generation failed", "error", err, "job_id", jobID)
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not generate estimate")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, doc.Filename))
	return c.Blob(http.StatusOK, "text/plain; charset=utf-8", []byte(doc.Content))
}
