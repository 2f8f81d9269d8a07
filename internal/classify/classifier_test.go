package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roadsafety-service/internal/detect"
	"roadsafety-service/internal/domain/violation"
	"roadsafety-service/internal/geometry"
)

func person(x1, y1, x2, y2 int) detect.Detection {
	return detect.Detection{Class: detect.ClassPerson, Box: geometry.Box{X1: x1, Y1: y1, X2: x2, Y2: y2}, Confidence: 0.8}
}

func vehicle(x1, y1, x2, y2 int) detect.Detection {
	return detect.Detection{Class: detect.ClassVehicle, Box: geometry.Box{X1: x1, Y1: y1, X2: x2, Y2: y2}, Confidence: 0.8}
}

func helmet(x1, y1, x2, y2 int) detect.Detection {
	return detect.Detection{Class: detect.ClassHelmet, Box: geometry.Box{X1: x1, Y1: y1, X2: x2, Y2: y2}, Confidence: 0.8}
}

func TestTripleRiding(t *testing.T) {
	dets := detect.FrameDetections{
		Vehicles: []detect.Detection{vehicle(0, 0, 300, 200)},
		Persons: []detect.Detection{
			person(10, 20, 80, 180),
			person(100, 20, 170, 180),
			person(200, 20, 270, 180),
		},
		// Everyone helmeted so only the rider count trips.
		Helmets: []detect.Detection{
			helmet(10, 20, 80, 60),
			helmet(100, 20, 170, 60),
			helmet(200, 20, 270, 60),
		},
	}

	out := New(detect.ModeStandard).Classify(dets)

	require.Len(t, out, 1)
	assert.Equal(t, violation.KindTripleRiding, out[0].Kind)
	assert.Equal(t, 0.90, out[0].Confidence)
	assert.Equal(t, 3, out[0].RiderCount)
	require.NotNil(t, out[0].VehicleBox)
	assert.Equal(t, geometry.Box{X1: 0, Y1: 0, X2: 300, Y2: 200}, *out[0].VehicleBox)
}

func TestHelmetViolationSpatial(t *testing.T) {
	dets := detect.FrameDetections{
		Vehicles: []detect.Detection{vehicle(0, 0, 300, 200)},
		Persons: []detect.Detection{
			person(10, 20, 80, 180),
			person(100, 20, 170, 180),
		},
		Helmets: []detect.Detection{helmet(10, 20, 80, 60)},
	}

	out := New(detect.ModeStandard).Classify(dets)

	require.Len(t, out, 1)
	assert.Equal(t, violation.KindHelmet, out[0].Kind)
	assert.Equal(t, 0.85, out[0].Confidence)
	assert.False(t, out[0].Direct)
	require.NotNil(t, out[0].RiderBox)
	assert.Equal(t, geometry.Box{X1: 100, Y1: 20, X2: 170, Y2: 180}, *out[0].RiderBox)
	require.NotNil(t, out[0].VehicleBox)
}

func TestDirectViolationsBypassSpatialMatching(t *testing.T) {
	dets := detect.FrameDetections{
		DirectViolations: []detect.Detection{
			{Class: detect.ClassNoHelmet, Box: geometry.Box{X1: 10, Y1: 10, X2: 50, Y2: 100}, Confidence: 0.77},
			{Class: detect.ClassNoHelmet, Box: geometry.Box{X1: 60, Y1: 10, X2: 100, Y2: 100}, Confidence: 0.63},
		},
	}

	out := New(detect.ModeCustomDirectViolation).Classify(dets)

	require.Len(t, out, 2)
	for _, v := range out {
		assert.Equal(t, violation.KindHelmet, v.Kind)
		assert.True(t, v.Direct)
	}
	// Detector confidences pass through verbatim.
	assert.Equal(t, 0.77, out[0].Confidence)
	assert.Equal(t, 0.63, out[1].Confidence)
}

func TestDirectModeSuppressesSpatialHelmetPass(t *testing.T) {
	// One direct detection plus a vehicle whose riders wear no helmets. In
	// custom mode the spatial helmet pass must not run, otherwise the same
	// physical rider would be counted twice.
	dets := detect.FrameDetections{
		Vehicles: []detect.Detection{vehicle(0, 0, 300, 200)},
		DirectViolations: []detect.Detection{
			{Class: detect.ClassNoHelmet, Box: geometry.Box{X1: 10, Y1: 20, X2: 80, Y2: 180}, Confidence: 0.8},
		},
	}

	out := New(detect.ModeCustomDirectViolation).Classify(dets)

	require.Len(t, out, 1)
	assert.True(t, out[0].Direct)
}

func TestDirectBoxesCountAsRiders(t *testing.T) {
	// Two plain persons plus one direct no-helmet detection inside the same
	// vehicle box: the direct box still feeds the rider count.
	dets := detect.FrameDetections{
		Vehicles: []detect.Detection{vehicle(0, 0, 300, 200)},
		Persons: []detect.Detection{
			person(10, 20, 80, 180),
			person(100, 20, 170, 180),
		},
		DirectViolations: []detect.Detection{
			{Class: detect.ClassNoHelmet, Box: geometry.Box{X1: 200, Y1: 20, X2: 270, Y2: 180}, Confidence: 0.8},
		},
	}

	out := New(detect.ModeCustomDirectViolation).Classify(dets)

	require.Len(t, out, 2)
	assert.Equal(t, violation.KindHelmet, out[0].Kind)
	assert.Equal(t, violation.KindTripleRiding, out[1].Kind)
	assert.Equal(t, 3, out[1].RiderCount)
}

func TestOutputOrderingDeterministic(t *testing.T) {
	dets := detect.FrameDetections{
		Vehicles: []detect.Detection{
			vehicle(0, 0, 300, 200),
			vehicle(400, 0, 700, 200),
		},
		Persons: []detect.Detection{
			person(10, 20, 80, 180),
			person(100, 20, 170, 180),
			person(200, 20, 270, 180),
			person(410, 20, 480, 180),
		},
	}

	c := New(detect.ModeStandard)
	first := c.Classify(dets)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, c.Classify(dets))
	}

	// Triple riding for vehicle 1 precedes its helmet violations, which
	// precede vehicle 2's.
	require.Len(t, first, 5)
	assert.Equal(t, violation.KindTripleRiding, first[0].Kind)
	assert.Equal(t, violation.KindHelmet, first[1].Kind)
	assert.Equal(t, violation.KindHelmet, first[2].Kind)
	assert.Equal(t, violation.KindHelmet, first[3].Kind)
	assert.Equal(t, violation.KindHelmet, first[4].Kind)
	assert.Equal(t, geometry.Box{X1: 410, Y1: 20, X2: 480, Y2: 180}, *first[4].RiderBox)
}

func TestMeanConfidence(t *testing.T) {
	assert.Nil(t, MeanConfidence(nil))
	assert.Nil(t, MeanConfidence([]violation.Violation{}))

	mean := MeanConfidence([]violation.Violation{
		{Confidence: 0.90},
		{Confidence: 0.80},
	})
	require.NotNil(t, mean)
	assert.InDelta(t, 0.85, *mean, 1e-9)
}
