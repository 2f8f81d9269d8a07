package video

import (
	"context"

	"roadsafety-service/internal/detect"
	"roadsafety-service/internal/frames"
	"roadsafety-service/internal/plate"
)

// PlateExtractor turns a frame's plate detections into OCR candidates, one
// per plate box at most.
type PlateExtractor interface {
	ExtractPlates(ctx context.Context, frame frames.Frame, plates []detect.Detection) ([]plate.Candidate, error)
}

// CropExtractor crops each plate box from the frame and hands it to the OCR
// collaborator, keeping the highest-confidence line per box.
type CropExtractor struct {
	reader detect.PlateReader
}

func NewCropExtractor(reader detect.PlateReader) *CropExtractor {
	return &CropExtractor{reader: reader}
}

func (e *CropExtractor) ExtractPlates(ctx context.Context, frame frames.Frame, plates []detect.Detection) ([]plate.Candidate, error) {
	if frame.Image == nil || len(plates) == 0 {
		return nil, nil
	}

	var out []plate.Candidate
	for _, det := range plates {
		crop := frames.CropRegion(frame.Image, det.Box, frames.CropMargin)
		if crop == nil {
			continue
		}
		candidates, err := e.reader.ReadPlate(ctx, crop)
		if err != nil {
			return nil, err
		}
		if best, ok := plate.Best(candidates); ok {
			out = append(out, best)
		}
	}
	return out, nil
}
