// Package spatial implements the association rules between detected people,
// vehicles and helmets.
package spatial

import (
	"roadsafety-service/internal/geometry"
)

// HeadTopRatio is the fraction of a person box, from the top, searched for a
// helmet.
const HeadTopRatio = 0.3

// AssignRiders returns the person boxes whose centers lie inside the vehicle
// box, in encounter order. A person whose center falls inside two overlapping
// vehicle boxes is a rider of both; no exclusivity is enforced.
func AssignRiders(vehicle geometry.Box, persons []geometry.Box) []geometry.Box {
	var riders []geometry.Box
	for _, p := range persons {
		if vehicle.Contains(p.Center()) {
			riders = append(riders, p)
		}
	}
	return riders
}

// CountRiders returns the number of riders assigned to the vehicle box.
func CountRiders(vehicle geometry.Box, persons []geometry.Box) int {
	return len(AssignRiders(vehicle, persons))
}

// HasHelmet reports whether any helmet box overlaps the person's head region.
// Any nonzero overlap counts.
func HasHelmet(person geometry.Box, helmets []geometry.Box) bool {
	head := geometry.HeadRegion(person, HeadTopRatio)
	for _, h := range helmets {
		if geometry.IoU(head, h) > 0 {
			return true
		}
	}
	return false
}
