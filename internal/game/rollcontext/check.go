package rollcontext

import (
	"context"
	"strings"

	"github.com/cory-johannsen/rollcontext/internal/game/rolloption"
)

// CheckParams are the inputs of a check context.
type CheckParams struct {
	Params
	// Against is the slug of the target statistic the DC comes from, such
	// as "armor-class" or "will-dc".
	Against string
}

// Check is a roll context that also resolves a DC and the origin's range penalty.
type Check struct {
	*Context
	against string
}

// NewCheck normalizes p into a Check.
func NewCheck(env Env, p CheckParams) (*Check, error) {
	base, err := New(env, p.Params)
	if err != nil {
		return nil, err
	}
	return &Check{Context: base, against: strings.TrimSuffix(p.Against, "-dc")}, nil
}

// Resolve resolves the base context, appends any range penalty to the
// origin's modifiers, and looks up the DC.
//
// Postcondition: DC is nil when the target, its actor, or the statistic is absent.
func (c *Check) Resolve(ctx context.Context) (*CheckResult, error) {
	base, err := c.Context.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	res := &CheckResult{Result: *base}

	if res.Origin != nil && c.env.Rules != nil {
		var increment *int
		if res.Target != nil {
			increment = res.Target.RangeIncrement
		}
		penalty := c.env.Rules.RangePenalty(res.Origin.Actor, increment, res.Domains, rolloption.New(res.Options...))
		if penalty != nil && penalty.Value != 0 {
			res.Origin.Modifiers = append(res.Origin.Modifiers, penalty)
		}
	}

	if c.against == "" || res.Target == nil || res.Target.Actor == nil {
		return res, nil
	}
	stat := res.Target.Actor.Statistic(c.against)
	if stat == nil {
		return res, nil
	}
	// Scope follows the requested domains; res.Domains may already be the
	// statistic's narrower list.
	scope := "check"
	if contains(c.domains, "attack") {
		scope = "attack"
	}
	res.DC = &DC{Scope: scope, Statistic: stat, Slug: c.against, Value: stat.DC().Value}
	return res, nil
}
