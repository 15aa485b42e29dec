// Package image downscales and re-encodes uploaded photos so the
// persisted document stays within the storage quota.
package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"net/http"

	"golang.org/x/image/draw"

	"github.com/jobsitelog/core/internal/infrastructure/logger"
)

// JPEGEncoder resizes a photo so its longer edge does not exceed
// MaxEdge pixels and re-encodes it as JPEG, returning a data URI. A
// photo that cannot be decoded is passed through untouched rather
// than failing the upload.
type JPEGEncoder struct {
	maxEdge int
	quality int
	logger  *logger.Logger
}

// NewJPEGEncoder creates an encoder. maxEdge is the pixel bound for
// the longer edge, quality the JPEG quality (1-100).
func NewJPEGEncoder(maxEdge, quality int, logger *logger.Logger) *JPEGEncoder {
	return &JPEGEncoder{
		maxEdge: maxEdge,
		quality: quality,
		logger:  logger,
	}
}

// Encode implements ports.ImageEncoder.
func (e *JPEGEncoder) Encode(ctx context.Context, raw []byte) (string, error) {
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		e.logger.Warnw("Could not decode image, storing original", "error", err, "bytes", len(raw))
		return dataURI(http.DetectContentType(raw), raw), nil
	}

	src = e.downscale(src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: e.quality}); err != nil {
		return "", fmt.Errorf("encode jpeg: %w", err)
	}

	return dataURI("image/jpeg", buf.Bytes()), nil
}

// downscale shrinks the image proportionally when its longer edge
// exceeds the bound. Smaller images pass through unscaled.
func (e *JPEGEncoder) downscale(src image.Image) image.Image {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if width <= e.maxEdge && height <= e.maxEdge {
		return src
	}

	if width > height {
		height = height * e.maxEdge / width
		width = e.maxEdge
	} else {
		width = width * e.maxEdge / height
		height = e.maxEdge
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)
	return dst
}

func dataURI(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
