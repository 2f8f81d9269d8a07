// Package detect defines the contract with the external object detector and
// OCR engine, plus adapters over their exported output.
package detect

import (
	"context"
	"fmt"
	"image"
	"strings"

	"roadsafety-service/internal/frames"
	"roadsafety-service/internal/geometry"
	"roadsafety-service/internal/plate"
)

// Class is the semantic class of one detection.
type Class string

const (
	ClassPerson  Class = "person"
	ClassVehicle Class = "vehicle"
	ClassHelmet  Class = "helmet"
	ClassPlate   Class = "plate"
	// ClassNoHelmet is the direct-violation class: the model itself confirmed
	// a rider without a helmet, no spatial inference needed.
	ClassNoHelmet Class = "no_helmet"
)

// Detection is one classified bounding box from the detector.
type Detection struct {
	Class      Class        `json:"class"`
	Box        geometry.Box `json:"box"`
	Confidence float64      `json:"confidence"`
}

// FrameDetections is one frame's detector output partitioned by class.
type FrameDetections struct {
	Persons          []Detection
	Vehicles         []Detection
	Helmets          []Detection
	Plates           []Detection
	DirectViolations []Detection
}

// Mode selects the classification path for the detector model in use. It is
// chosen once at startup and threaded through explicitly so that a model
// load failure never silently alters per-call control flow.
type Mode int

const (
	// ModeStandard: separate person/helmet classes, helmet coverage is
	// inferred spatially.
	ModeStandard Mode = iota
	// ModeCustomDirectViolation: the model emits a dedicated no-helmet class;
	// spatial helmet inference is suppressed to avoid double counting.
	ModeCustomDirectViolation
	// ModeUnavailable: no detector model could be loaded.
	ModeUnavailable
)

func (m Mode) String() string {
	switch m {
	case ModeStandard:
		return "standard"
	case ModeCustomDirectViolation:
		return "custom_direct_violation"
	case ModeUnavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode maps a configuration string onto a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard":
		return ModeStandard, nil
	case "custom", "custom_direct_violation", "direct":
		return ModeCustomDirectViolation, nil
	case "unavailable", "none":
		return ModeUnavailable, nil
	default:
		return ModeUnavailable, fmt.Errorf("unknown detector mode %q", s)
	}
}

// Detector is the external object-detection collaborator.
type Detector interface {
	Detect(ctx context.Context, frame Frame) (FrameDetections, error)
}

// PlateReader is the external OCR collaborator. It returns every line
// candidate it read from the crop; an empty slice means no text.
type PlateReader interface {
	ReadPlate(ctx context.Context, crop image.Image) ([]plate.Candidate, error)
}

// Frame aliases the frame type detectors consume.
type Frame = frames.Frame

// MapClass folds a raw model class name onto the fixed class set. Unmapped
// names return false; the detector's direct-violation class only maps in
// ModeCustomDirectViolation.
func MapClass(name string, mode Mode) (Class, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "person", "rider", "pengendara":
		return ClassPerson, true
	case "vehicle", "motorbike", "motorcycle", "bike":
		return ClassVehicle, true
	case "helmet", "helm":
		return ClassHelmet, true
	case "plate", "license_plate", "number_plate", "platnomor":
		return ClassPlate, true
	case "no_helmet", "tanpahelm":
		if mode == ModeCustomDirectViolation {
			return ClassNoHelmet, true
		}
		return "", false
	default:
		return "", false
	}
}

// Add adds a detection to its class partition.
func (fd *FrameDetections) Add(d Detection) {
	switch d.Class {
	case ClassPerson:
		fd.Persons = append(fd.Persons, d)
	case ClassVehicle:
		fd.Vehicles = append(fd.Vehicles, d)
	case ClassHelmet:
		fd.Helmets = append(fd.Helmets, d)
	case ClassPlate:
		fd.Plates = append(fd.Plates, d)
	case ClassNoHelmet:
		fd.DirectViolations = append(fd.DirectViolations, d)
	}
}
