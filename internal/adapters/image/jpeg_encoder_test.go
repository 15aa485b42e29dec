package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobsitelog/core/internal/infrastructure/logger"
)

func jpegBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x += 16 {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func decodeDataURI(t *testing.T, uri string) image.Image {
	t.Helper()
	idx := strings.Index(uri, ";base64,")
	require.Positive(t, idx)
	raw, err := base64.StdEncoding.DecodeString(uri[idx+len(";base64,"):])
	require.NoError(t, err)
	img, _, err := image.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	return img
}

func TestEncodeDownscalesWideImage(t *testing.T) {
	enc := NewJPEGEncoder(1024, 70, logger.NewNop())

	uri, err := enc.Encode(context.Background(), jpegBytes(t, 2048, 1024))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(uri, "data:image/jpeg;base64,"))

	img := decodeDataURI(t, uri)
	assert.Equal(t, 1024, img.Bounds().Dx())
	assert.Equal(t, 512, img.Bounds().Dy())
}

func TestEncodeDownscalesTallImage(t *testing.T) {
	enc := NewJPEGEncoder(1024, 70, logger.NewNop())

	uri, err := enc.Encode(context.Background(), jpegBytes(t, 512, 2048))
	require.NoError(t, err)

	img := decodeDataURI(t, uri)
	assert.Equal(t, 256, img.Bounds().Dx())
	assert.Equal(t, 1024, img.Bounds().Dy())
}

func TestEncodeLeavesSmallImageAlone(t *testing.T) {
	enc := NewJPEGEncoder(1024, 70, logger.NewNop())

	uri, err := enc.Encode(context.Background(), jpegBytes(t, 640, 480))
	require.NoError(t, err)

	img := decodeDataURI(t, uri)
	assert.Equal(t, 640, img.Bounds().Dx())
	assert.Equal(t, 480, img.Bounds().Dy())
}

func TestEncodeFallsBackOnUndecodableInput(t *testing.T) {
	enc := NewJPEGEncoder(1024, 70, logger.NewNop())
	raw := []byte("definitely not an image")

	uri, err := enc.Encode(context.Background(), raw)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(uri, "data:"))

	idx := strings.Index(uri, ";base64,")
	decoded, err := base64.StdEncoding.DecodeString(uri[idx+len(";base64,"):])
	require.NoError(t, err)
	assert.Equal(t, raw, decoded)
}
