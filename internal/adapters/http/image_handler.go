package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jobsitelog/core/internal/application/services"
	"github.com/jobsitelog/core/internal/infrastructure/logger"
	"github.com/jobsitelog/core/internal/ports"
)

// UploadResponse carries the encoded photos back to the client in
// upload order, ready to attach to a new task.
type UploadResponse struct {
	ImageURLs []string `json:"imageUrls"`
	Count     int      `json:"count"`
}

// ImageHandler handles photo uploads
type ImageHandler struct {
	imageService *services.ImageService
	state        ports.StateRepository
	logger       *logger.Logger
}

// NewImageHandler creates a new image handler
func NewImageHandler(imageService *services.ImageService, state ports.StateRepository, logger *logger.Logger) *ImageHandler {
	return &ImageHandler{
		imageService: imageService,
		state:        state,
		logger:       logger,
	}
}

// Upload encodes a batch of photos. The batch runs through a single
// sequential worker; when it fails as a whole, nothing is kept and
// the client shows one alert.
func (h *ImageHandler) Upload(c echo.Context) error {
	blobs, err := readMultipartFiles(c, "photos")
	if err != nil {
		return err
	}

	encoded, err := h.imageService.ProcessBatch(c.Request().Context(), blobs)
	if err != nil {
		h.logger.Errorw("Image batch discarded", "error", err, "count", len(blobs))
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not process one or more images.")
	}

	return c.JSON(http.StatusOK, UploadResponse{ImageURLs: encoded, Count: len(encoded)})
}

// Status reports the sticky storage warning and whether an image
// batch is currently processing.
func (h *ImageHandler) Status(c echo.Context) error {
	warning, _ := h.state.StorageWarning()
	return c.JSON(http.StatusOK, StatusResponse{
		StorageWarning:   warning,
		ProcessingImages: h.imageService.Processing(),
	})
}
