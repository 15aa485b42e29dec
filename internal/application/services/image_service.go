package services

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/jobsitelog/core/internal/infrastructure/logger"
	"github.com/jobsitelog/core/internal/ports"
)

// ImageService runs photo uploads through the encoder one image at a
// time. Batches queue behind a single worker so peak memory stays
// bounded no matter how many photos are selected at once, and the
// Processing flag spans the whole batch rather than individual images.
// A batch cannot be cancelled once the worker picks it up.
type ImageService struct {
	encoder    ports.ImageEncoder
	logger     *logger.Logger
	queue      chan *encodeBatch
	processing atomic.Bool
}

type encodeBatch struct {
	images  [][]byte
	encoded []string
	err     error
	done    chan struct{}
}

// NewImageService creates the service and starts its worker.
func NewImageService(encoder ports.ImageEncoder, logger *logger.Logger) *ImageService {
	s := &ImageService{
		encoder: encoder,
		logger:  logger,
		queue:   make(chan *encodeBatch, 16),
	}
	go s.worker()
	return s
}

// ProcessBatch encodes a batch of raw images sequentially and returns
// the encoded representations in upload order. Per-image decode
// problems degrade to the original bytes inside the encoder; an error
// here means the whole batch failed and was discarded.
func (s *ImageService) ProcessBatch(ctx context.Context, images [][]byte) ([]string, error) {
	if len(images) == 0 {
		return []string{}, nil
	}

	batch := &encodeBatch{images: images, done: make(chan struct{})}

	select {
	case s.queue <- batch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case <-batch.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if batch.err != nil {
		return nil, batch.err
	}
	return batch.encoded, nil
}

// Processing reports whether a batch is currently being encoded.
func (s *ImageService) Processing() bool {
	return s.processing.Load()
}

// Close stops the worker once queued batches drain.
func (s *ImageService) Close() {
	close(s.queue)
}

func (s *ImageService) worker() {
	for batch := range s.queue {
		s.processing.Store(true)
		s.runBatch(batch)
		s.processing.Store(false)
		close(batch.done)
	}
}

func (s *ImageService) runBatch(batch *encodeBatch) {
	encoded := make([]string, 0, len(batch.images))
	for i, raw := range batch.images {
		result, err := s.encoder.Encode(context.Background(), raw)
		if err != nil {
			s.logger.Errorw("Image batch failed", "error", err, "image", i, "batch_size", len(batch.images))
			batch.err = fmt.Errorf("encode image %d of %d: %w", i+1, len(batch.images), err)
			return
		}
		encoded = append(encoded, result)
	}
	batch.encoded = encoded
}
