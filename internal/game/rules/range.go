package rules

import (
	"github.com/cory-johannsen/rollcontext/internal/game/actor"
	"github.com/cory-johannsen/rollcontext/internal/game/modifier"
	"github.com/cory-johannsen/rollcontext/internal/game/predicate"
	"github.com/cory-johannsen/rollcontext/internal/game/rolloption"
)

// RangePenaltySlug is the slug of the range penalty modifier.
const RangePenaltySlug = "range-penalty"

// maxRangePenalty is the floor of the range penalty.
const maxRangePenalty = -12

// RangePenalty returns the untyped -2 per range increment beyond the first,
// floored at -12, adjusted by a's range-penalty adjustments under selectors.
// The penalty is suppressed by "ignore-range-penalty" or by
// "ignore-range-penalty:<n>" with n >= increment.
//
// Postcondition: returns nil when increment is nil or 1, or when the penalty
// is disabled by its predicate.
func (e *Engine) RangePenalty(a *actor.Actor, increment *int, selectors []string, options *rolloption.Set) *modifier.Modifier {
	if increment == nil || *increment <= 1 {
		return nil
	}
	inc := *increment
	value := -2 * (inc - 1)
	if value < maxRangePenalty {
		value = maxRangePenalty
	}
	m := modifier.New(RangePenaltySlug, "Range Penalty", modifier.TypeUntyped, value)
	m.Predicate = predicate.Predicate{
		predicate.Nor(
			predicate.Atom("ignore-range-penalty"),
			predicate.Gte("ignore-range-penalty", float64(inc)),
		),
	}
	m.Adjust(a.ModifierAdjustments(selectors, RangePenaltySlug), options)
	m.Test(options)
	if !m.Enabled {
		return nil
	}
	return m
}
