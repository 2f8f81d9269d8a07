package service

import (
	"context"
	"io"

	"roadsafety-service/internal/detect"
	"roadsafety-service/internal/domain/violation"
	"roadsafety-service/internal/frames"
	"roadsafety-service/internal/plate"
)

// batchSource replays a submitted batch of sampled frames as a frame source.
// The frames carry no pixels; detections and OCR output were computed by the
// submitting host.
type batchSource struct {
	meta   frames.Meta
	frames []violation.FramePayload
	pos    int
}

func (s *batchSource) Meta() frames.Meta { return s.meta }

func (s *batchSource) Next() (frames.Frame, error) {
	if s.pos >= len(s.frames) {
		return frames.Frame{}, io.EOF
	}
	f := s.frames[s.pos]
	s.pos++
	return frames.Frame{Index: f.FrameNumber}, nil
}

func (s *batchSource) Close() error { return nil }

// batchAdapter serves the batch's precomputed detections and OCR candidates
// keyed by frame number.
type batchAdapter struct {
	mode    detect.Mode
	byFrame map[int]violation.FramePayload
}

func newBatchAdapter(batch violation.VideoBatch, mode detect.Mode) (*batchSource, *batchAdapter) {
	byFrame := make(map[int]violation.FramePayload, len(batch.Frames))
	for _, f := range batch.Frames {
		byFrame[f.FrameNumber] = f
	}

	src := &batchSource{
		meta: frames.Meta{
			Width:      batch.Width,
			Height:     batch.Height,
			FPS:        batch.FPS,
			FrameCount: batch.TotalFrames,
		},
		frames: batch.Frames,
	}
	return src, &batchAdapter{mode: mode, byFrame: byFrame}
}

func (a *batchAdapter) Detect(_ context.Context, frame frames.Frame) (detect.FrameDetections, error) {
	return mapDetections(a.byFrame[frame.Index].Detections, a.mode), nil
}

func (a *batchAdapter) ExtractPlates(_ context.Context, frame frames.Frame, plates []detect.Detection) ([]plate.Candidate, error) {
	candidates := a.byFrame[frame.Index].PlateCandidates
	if best, ok := plate.Best(candidates); ok {
		return []plate.Candidate{best}, nil
	}
	return nil, nil
}
