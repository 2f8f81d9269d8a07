package frames

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roadsafety-service/internal/geometry"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 3; i++ {
		writePNG(t, filepath.Join(dir, fmt.Sprintf("frame_%06d.png", i)), 64, 48)
	}
	// Sidecar files must not count as frames.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "frame_000001.json"), []byte("{}"), 0o644))

	src, err := NewDirSource(dir, 30)
	require.NoError(t, err)
	defer src.Close()

	meta := src.Meta()
	assert.Equal(t, 64, meta.Width)
	assert.Equal(t, 48, meta.Height)
	assert.Equal(t, 30.0, meta.FPS)
	assert.Equal(t, 3, meta.FrameCount)

	for i := 0; i < 3; i++ {
		frame, err := src.Next()
		require.NoError(t, err)
		assert.Equal(t, i, frame.Index)
		require.NotNil(t, frame.Image)
	}
	_, err = src.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestDirSourceUnavailable(t *testing.T) {
	_, err := NewDirSource(filepath.Join(t.TempDir(), "missing"), 30)
	assert.ErrorIs(t, err, ErrSourceUnavailable)

	// An existing but empty directory is just as unusable.
	_, err = NewDirSource(t.TempDir(), 30)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestImageSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "still.png")
	writePNG(t, path, 100, 80)

	src, err := NewImageSource(path)
	require.NoError(t, err)

	meta := src.Meta()
	assert.Equal(t, 100, meta.Width)
	assert.Equal(t, 1, meta.FrameCount)
	assert.Equal(t, 0.0, meta.FPS)

	frame, err := src.Next()
	require.NoError(t, err)
	assert.Equal(t, 0, frame.Index)

	_, err = src.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestImageSourceUnavailable(t *testing.T) {
	_, err := NewImageSource(filepath.Join(t.TempDir(), "nope.jpg"))
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestCropRegion(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 100))

	crop := CropRegion(img, geometry.Box{X1: 50, Y1: 20, X2: 90, Y2: 60}, 10)
	require.NotNil(t, crop)
	assert.Equal(t, 60, crop.Bounds().Dx())
	assert.Equal(t, 60, crop.Bounds().Dy())

	// Margins clamp to the image bounds.
	edge := CropRegion(img, geometry.Box{X1: 0, Y1: 0, X2: 30, Y2: 30}, 10)
	require.NotNil(t, edge)
	assert.Equal(t, 40, edge.Bounds().Dx())

	// A box fully outside the image yields nothing.
	assert.Nil(t, CropRegion(img, geometry.Box{X1: 300, Y1: 300, X2: 320, Y2: 320}, 0))
}
