package detect

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"roadsafety-service/internal/geometry"
	"roadsafety-service/internal/plate"
)

// sidecarFile is the per-frame JSON the external detection pipeline exports
// next to each frame still: raw class names, boxes, confidences, and any OCR
// line results for plate regions.
type sidecarFile struct {
	Detections []struct {
		Class      string       `json:"class"`
		Box        geometry.Box `json:"box"`
		Confidence float64      `json:"confidence"`
	} `json:"detections"`
	Plates []plate.Candidate `json:"plates"`
}

// SidecarDetector adapts sidecar JSON exports into the Detector contract. A
// frame without a sidecar file simply has no detections.
type SidecarDetector struct {
	mode Mode
}

func NewSidecarDetector(mode Mode) *SidecarDetector {
	return &SidecarDetector{mode: mode}
}

func sidecarPath(framePath string) string {
	return strings.TrimSuffix(framePath, filepath.Ext(framePath)) + ".json"
}

func (d *SidecarDetector) load(framePath string) (*sidecarFile, error) {
	if framePath == "" {
		return nil, nil
	}
	data, err := os.ReadFile(sidecarPath(framePath))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var sc sidecarFile
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("sidecar %s: %w", sidecarPath(framePath), err)
	}
	return &sc, nil
}

func (d *SidecarDetector) Detect(_ context.Context, frame Frame) (FrameDetections, error) {
	var out FrameDetections
	sc, err := d.load(frame.Path)
	if err != nil || sc == nil {
		return out, err
	}
	for _, raw := range sc.Detections {
		cls, ok := MapClass(raw.Class, d.mode)
		if !ok {
			continue
		}
		out.Add(Detection{Class: cls, Box: raw.Box, Confidence: raw.Confidence})
	}
	return out, nil
}

// ExtractPlates returns the sidecar's OCR candidates for the frame. The crop
// step already happened in the exporting pipeline, so the plate boxes are
// only used to decide whether OCR output is expected at all.
func (d *SidecarDetector) ExtractPlates(_ context.Context, frame Frame, plates []Detection) ([]plate.Candidate, error) {
	if len(plates) == 0 {
		return nil, nil
	}
	sc, err := d.load(frame.Path)
	if err != nil || sc == nil {
		return nil, err
	}
	return sc.Plates, nil
}

// NoTextReader is a PlateReader for deployments without an OCR engine; every
// region reads as no text.
type NoTextReader struct{}

func (NoTextReader) ReadPlate(context.Context, image.Image) ([]plate.Candidate, error) {
	return nil, nil
}
