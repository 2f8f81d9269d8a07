// Package classify applies the traffic-safety rule set over one frame's
// detections.
package classify

import (
	"roadsafety-service/internal/detect"
	"roadsafety-service/internal/domain/violation"
	"roadsafety-service/internal/geometry"
	"roadsafety-service/internal/spatial"
)

// Rule confidences are fixed: they express confidence in the rule, not in the
// detector. Direct detections keep the detector's own confidence.
const (
	TripleRidingConfidence    = 0.90
	HelmetViolationConfidence = 0.85

	// TripleRidingMinRiders is the rider count at which a vehicle is
	// overloaded.
	TripleRidingMinRiders = 3
)

// Classifier runs the per-frame rule pass. It holds no per-frame state; the
// mode is fixed at construction.
type Classifier struct {
	mode detect.Mode
}

func New(mode detect.Mode) *Classifier {
	return &Classifier{mode: mode}
}

func (c *Classifier) Mode() detect.Mode { return c.mode }

// Classify evaluates the rule set and returns the frame's violations in a
// fixed order: direct detections first, then triple riding per vehicle in
// detection order, then spatially inferred helmet violations per vehicle and
// rider in the same nested order. Identical input always yields identical
// output.
func (c *Classifier) Classify(d detect.FrameDetections) []violation.Violation {
	var out []violation.Violation

	// Direct no-helmet detections bypass spatial matching entirely. Their
	// boxes still count as persons for rider counting below.
	for _, dv := range d.DirectViolations {
		box := dv.Box
		out = append(out, violation.Violation{
			Kind:       violation.KindHelmet,
			Confidence: dv.Confidence,
			RiderBox:   &box,
			Direct:     true,
		})
	}

	persons := make([]geometry.Box, 0, len(d.Persons)+len(d.DirectViolations))
	for _, p := range d.Persons {
		persons = append(persons, p.Box)
	}
	for _, dv := range d.DirectViolations {
		persons = append(persons, dv.Box)
	}

	helmets := make([]geometry.Box, 0, len(d.Helmets))
	for _, h := range d.Helmets {
		helmets = append(helmets, h.Box)
	}

	for _, v := range d.Vehicles {
		vehicleBox := v.Box
		riders := spatial.AssignRiders(vehicleBox, persons)

		if len(riders) >= TripleRidingMinRiders {
			out = append(out, violation.Violation{
				Kind:       violation.KindTripleRiding,
				Confidence: TripleRidingConfidence,
				VehicleBox: &vehicleBox,
				RiderCount: len(riders),
			})
		}

		// In direct-violation mode the model already told us who rides
		// without a helmet; a second spatial pass would double-count them.
		if c.mode == detect.ModeCustomDirectViolation {
			continue
		}
		for _, rider := range riders {
			if spatial.HasHelmet(rider, helmets) {
				continue
			}
			riderBox := rider
			out = append(out, violation.Violation{
				Kind:       violation.KindHelmet,
				Confidence: HelmetViolationConfidence,
				RiderBox:   &riderBox,
				VehicleBox: &vehicleBox,
			})
		}
	}

	return out
}

// MeanConfidence returns the arithmetic mean of the violations' confidences,
// or nil when there are none. Never zero for an empty list.
func MeanConfidence(violations []violation.Violation) *float64 {
	if len(violations) == 0 {
		return nil
	}
	var sum float64
	for _, v := range violations {
		sum += v.Confidence
	}
	mean := sum / float64(len(violations))
	return &mean
}
