// Package fine prices violations. Two independent schedules exist: a flat
// per-type table for aggregate video estimates, and an offense-history
// schedule for confirmed per-vehicle records. They must not be conflated.
package fine

import (
	"context"

	"roadsafety-service/internal/domain/violation"
)

// Defaults, overridable through configuration.
const (
	DefaultFirstOffense  int64 = 500
	DefaultRepeatOffense int64 = 1000
)

// Flat per-type amounts used for running video totals and estimates.
const (
	HelmetAmount       int64 = 500
	TripleRidingAmount int64 = 1000
	defaultTypeAmount  int64 = 500
)

// TypeAmount returns the flat estimate for one violation of the given kind.
// Unknown kinds price at the helmet rate.
func TypeAmount(kind violation.Kind) int64 {
	switch kind {
	case violation.KindHelmet:
		return HelmetAmount
	case violation.KindTripleRiding:
		return TripleRidingAmount
	default:
		return defaultTypeAmount
	}
}

// EstimateTotal sums the flat type table over a violation list.
func EstimateTotal(violations []violation.Violation) int64 {
	var total int64
	for _, v := range violations {
		total += TypeAmount(v.Kind)
	}
	return total
}

// HistoryLookup returns the count of prior confirmed violations for a
// vehicle. Implementations must be safe for concurrent calls.
type HistoryLookup interface {
	CountPriorOffenses(ctx context.Context, vehicleNo string) (int64, error)
}

// Policy prices confirmed violation records. The amount depends only on the
// vehicle's offense history, not on the violation type.
type Policy struct {
	FirstOffense  int64
	RepeatOffense int64
}

func NewPolicy(firstOffense, repeatOffense int64) Policy {
	if firstOffense <= 0 {
		firstOffense = DefaultFirstOffense
	}
	if repeatOffense <= 0 {
		repeatOffense = DefaultRepeatOffense
	}
	return Policy{FirstOffense: firstOffense, RepeatOffense: repeatOffense}
}

// ComputeFine reads the vehicle's prior-offense count through the injected
// lookup and returns the matching amount. It never writes; persisting the
// incremented count after the record is durably stored is the caller's job.
func (p Policy) ComputeFine(ctx context.Context, vehicleNo string, _ violation.Kind, history HistoryLookup) (int64, error) {
	prior, err := history.CountPriorOffenses(ctx, vehicleNo)
	if err != nil {
		return 0, err
	}
	if prior == 0 {
		return p.FirstOffense, nil
	}
	return p.RepeatOffense, nil
}
