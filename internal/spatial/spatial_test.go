package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"roadsafety-service/internal/geometry"
)

func TestAssignRiders(t *testing.T) {
	vehicle := geometry.Box{X1: 0, Y1: 0, X2: 100, Y2: 100}
	inside1 := geometry.Box{X1: 10, Y1: 10, X2: 30, Y2: 50}
	inside2 := geometry.Box{X1: 40, Y1: 20, X2: 60, Y2: 70}
	inside3 := geometry.Box{X1: 70, Y1: 10, X2: 90, Y2: 60}
	outside := geometry.Box{X1: 150, Y1: 150, X2: 170, Y2: 200}

	riders := AssignRiders(vehicle, []geometry.Box{inside1, outside, inside2, inside3})

	// Encounter order, outsiders dropped.
	assert.Equal(t, []geometry.Box{inside1, inside2, inside3}, riders)
	assert.Equal(t, 3, CountRiders(vehicle, []geometry.Box{inside1, outside, inside2, inside3}))
}

func TestAssignRidersCenterRule(t *testing.T) {
	vehicle := geometry.Box{X1: 0, Y1: 0, X2: 100, Y2: 100}
	// Box pokes out of the vehicle but its center (50,90) is inside.
	straddling := geometry.Box{X1: 40, Y1: 60, X2: 60, Y2: 120}
	// Box overlaps the vehicle but its center (95,110) is outside.
	leaning := geometry.Box{X1: 80, Y1: 90, X2: 110, Y2: 130}

	riders := AssignRiders(vehicle, []geometry.Box{straddling, leaning})
	assert.Equal(t, []geometry.Box{straddling}, riders)
}

// A person whose center lies inside two overlapping vehicle boxes is a rider
// of both; no nearest-vehicle exclusivity is applied.
func TestAssignRidersNoExclusivity(t *testing.T) {
	vehicleA := geometry.Box{X1: 0, Y1: 0, X2: 100, Y2: 100}
	vehicleB := geometry.Box{X1: 50, Y1: 0, X2: 150, Y2: 100}
	person := geometry.Box{X1: 60, Y1: 20, X2: 80, Y2: 80}

	assert.Len(t, AssignRiders(vehicleA, []geometry.Box{person}), 1)
	assert.Len(t, AssignRiders(vehicleB, []geometry.Box{person}), 1)
}

func TestHasHelmet(t *testing.T) {
	person := geometry.Box{X1: 0, Y1: 0, X2: 40, Y2: 200}

	// Head region is the top 30%: y in [0,60].
	onHead := geometry.Box{X1: 5, Y1: 0, X2: 35, Y2: 40}
	assert.True(t, HasHelmet(person, []geometry.Box{onHead}))

	// Any nonzero overlap with the head region counts.
	grazing := geometry.Box{X1: 30, Y1: 55, X2: 70, Y2: 90}
	assert.True(t, HasHelmet(person, []geometry.Box{grazing}))

	// A helmet at the feet does not.
	atFeet := geometry.Box{X1: 5, Y1: 150, X2: 35, Y2: 190}
	assert.False(t, HasHelmet(person, []geometry.Box{atFeet}))
}

func TestHasHelmetEmptyList(t *testing.T) {
	person := geometry.Box{X1: 0, Y1: 0, X2: 40, Y2: 200}
	assert.False(t, HasHelmet(person, nil))
	assert.False(t, HasHelmet(person, []geometry.Box{}))
}
