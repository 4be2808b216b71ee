package rollcontext

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/rollcontext/internal/game/history"
	"github.com/cory-johannsen/rollcontext/internal/game/item"
	"github.com/cory-johannsen/rollcontext/internal/game/outcome"
	"github.com/cory-johannsen/rollcontext/internal/game/rolloption"
)

// DefaultHistoryDepth is how many recent history entries are searched for
// the check a damage roll follows.
const DefaultHistoryDepth = 3

// DamageParams are the inputs of a damage context.
type DamageParams struct {
	Params
	// CheckContext is the context of the preceding check. When nil it is
	// looked up in History.
	CheckContext *history.ContextFlag
	Outcome      *outcome.Degree
	// History may be nil, in which case no lookup is made.
	History history.Store
	// HistoryDepth defaults to DefaultHistoryDepth.
	HistoryDepth int
}

// Damage is a roll context correlated with the check that preceded it.
type Damage struct {
	*Context
	// CheckContext is the supplied or matched check context, or nil.
	CheckContext *history.ContextFlag
}

// NewDamage normalizes p into a Damage context, adopting the matching check
// context from history when none is supplied, and adds the outcome and
// substitution options.
//
// Errors from the history store are returned wrapped.
func NewDamage(ctx context.Context, env Env, p DamageParams) (*Damage, error) {
	base, err := New(env, p.Params)
	if err != nil {
		return nil, err
	}
	d := &Damage{Context: base, CheckContext: p.CheckContext}
	if d.CheckContext == nil && p.History != nil {
		depth := p.HistoryDepth
		if depth <= 0 {
			depth = DefaultHistoryDepth
		}
		d.CheckContext, err = d.findMatchingCheckContext(ctx, p.History, depth)
		if err != nil {
			return nil, err
		}
	}

	options := rolloption.New(base.options...)
	if p.Outcome != nil {
		options.Add("check:outcome:" + rolloption.Slug(p.Outcome.String()))
	}
	if sub := d.CheckContext.SelectedSubstitution(); sub != nil {
		options.Add("check:substitution:" + sub.Slug)
	}
	base.options = options.Sorted()
	return d, nil
}

// findMatchingCheckContext returns the context of the newest of the last
// depth entries that holds a check roll by the origin actor against the
// target token with the same melee or weapon item.
func (d *Damage) findMatchingCheckContext(ctx context.Context, store history.Store, depth int) (*history.ContextFlag, error) {
	if d.origin == nil || d.origin.Actor == nil || d.target == nil || d.target.Token == nil {
		return nil, nil
	}
	it := d.origin.Item
	if !it.IsOfType(item.TypeMelee, item.TypeWeapon) {
		return nil, nil
	}
	entries, err := store.Recent(ctx, depth)
	if err != nil {
		return nil, fmt.Errorf("reading roll history: %w", err)
	}
	for _, e := range entries {
		if !e.HasCheckRoll() || e.Context == nil || e.Item == nil {
			continue
		}
		if e.ActorID != d.origin.Actor.ID || e.TargetTokenID != d.target.Token.ID {
			continue
		}
		if e.Item.Type != string(item.TypeMelee) && e.Item.Type != string(item.TypeWeapon) {
			continue
		}
		if e.Item.Slug != it.Slug || e.Item.Melee != it.IsMelee() {
			continue
		}
		d.env.Logger.Debug("damage roll matched check",
			zap.String("entry", e.ID),
			zap.String("actor", e.ActorID),
			zap.String("item", e.Item.Slug),
		)
		return e.Context, nil
	}
	return nil, nil
}
