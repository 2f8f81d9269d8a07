package violation

import "fmt"

// Describe renders the template description stored alongside a confirmed
// violation record.
func Describe(kind Kind, vehicleNo string, seconds float64) string {
	ts := fmt.Sprintf("%02d:%02d", int(seconds)/60, int(seconds)%60)
	switch kind {
	case KindHelmet:
		return fmt.Sprintf("Vehicle %s observed riding without helmet at %s. This is a violation of traffic safety regulations requiring protective headgear.", vehicleNo, ts)
	case KindTripleRiding:
		return fmt.Sprintf("Vehicle %s observed with more than two riders at %s. This exceeds the legal passenger limit for two-wheeler vehicles.", vehicleNo, ts)
	default:
		return fmt.Sprintf("Traffic violation detected for vehicle %s at %s.", vehicleNo, ts)
	}
}
