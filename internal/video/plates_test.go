package video

import (
	"context"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roadsafety-service/internal/detect"
	"roadsafety-service/internal/frames"
	"roadsafety-service/internal/geometry"
	"roadsafety-service/internal/plate"
)

type stubReader struct {
	lines []plate.Candidate
	calls int
}

func (r *stubReader) ReadPlate(context.Context, image.Image) ([]plate.Candidate, error) {
	r.calls++
	return r.lines, nil
}

func TestCropExtractorPicksBestLinePerBox(t *testing.T) {
	reader := &stubReader{lines: []plate.Candidate{
		{Text: "MH01AB1234", Confidence: 0.60},
		{Text: "MH01A81234", Confidence: 0.95},
	}}
	extractor := NewCropExtractor(reader)

	frame := frames.Frame{Image: image.NewRGBA(image.Rect(0, 0, 640, 480))}
	plates := []detect.Detection{
		{Class: detect.ClassPlate, Box: geometry.Box{X1: 100, Y1: 100, X2: 200, Y2: 140}},
		{Class: detect.ClassPlate, Box: geometry.Box{X1: 300, Y1: 100, X2: 400, Y2: 140}},
	}

	candidates, err := extractor.ExtractPlates(context.Background(), frame, plates)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "MH01A81234", candidates[0].Text)
	assert.Equal(t, 2, reader.calls)
}

func TestCropExtractorSkipsPixellessFrames(t *testing.T) {
	reader := &stubReader{lines: []plate.Candidate{{Text: "MH01AB1234", Confidence: 0.9}}}
	extractor := NewCropExtractor(reader)

	candidates, err := extractor.ExtractPlates(context.Background(), frames.Frame{}, []detect.Detection{
		{Class: detect.ClassPlate, Box: geometry.Box{X1: 0, Y1: 0, X2: 10, Y2: 10}},
	})
	require.NoError(t, err)
	assert.Nil(t, candidates)
	assert.Zero(t, reader.calls)
}

func TestCropExtractorNoTextReader(t *testing.T) {
	extractor := NewCropExtractor(detect.NoTextReader{})
	frame := frames.Frame{Image: image.NewRGBA(image.Rect(0, 0, 640, 480))}

	candidates, err := extractor.ExtractPlates(context.Background(), frame, []detect.Detection{
		{Class: detect.ClassPlate, Box: geometry.Box{X1: 0, Y1: 0, X2: 50, Y2: 20}},
	})
	require.NoError(t, err)
	assert.Empty(t, candidates)
}
