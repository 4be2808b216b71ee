// Package rules evaluates actor rule synthetics in the context of one roll:
// ephemeral effects granted against an opponent, strike adjustments (native
// and scripted), and the range penalty.
package rules

import (
	"context"

	"go.uber.org/zap"

	"github.com/cory-johannsen/rollcontext/internal/game/actor"
	"github.com/cory-johannsen/rollcontext/internal/game/effect"
	"github.com/cory-johannsen/rollcontext/internal/game/item"
	"github.com/cory-johannsen/rollcontext/internal/game/rolloption"
	"github.com/cory-johannsen/rollcontext/internal/scripting"
)

// StrikeScripts runs scripted strike adjustments. *scripting.Manager
// implements it.
type StrikeScripts interface {
	AdjustStrike(ctx context.Context, hook string, w scripting.WeaponInfo, traits []string) (scripting.StrikeAdjustment, bool)
}

// Engine evaluates rules against the effect registry.
type Engine struct {
	effects *effect.Registry
	scripts StrikeScripts
	logger  *zap.Logger
}

// NewEngine creates an Engine. scripts may be nil, in which case scripted
// strike adjustments are skipped.
//
// Precondition: effects and logger must be non-nil.
func NewEngine(effects *effect.Registry, scripts StrikeScripts, logger *zap.Logger) *Engine {
	return &Engine{effects: effects, scripts: scripts, logger: logger}
}

// Params scopes ephemeral effect extraction to one roll.
type Params struct {
	// Affects is the side receiving the effects: effect.AffectsTarget draws
	// grants from Origin, effect.AffectsOrigin draws them from Target.
	Affects string
	Origin  *actor.Actor
	Target  *actor.Actor
	Item    *item.Item
	Domains []string
	Options []string
}

// ExtractEphemeralEffects returns the ephemeral records the effect-source
// actor grants against the affected side on a roll under p.Domains.
//
// Postcondition: records are unique by ID and in grant order; unknown effect
// ids are logged and skipped.
func (e *Engine) ExtractEphemeralEffects(ctx context.Context, p Params) ([]effect.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	source, affected := p.Origin, p.Target
	sourcePrefix, affectedPrefix := "origin", "target"
	if p.Affects == effect.AffectsOrigin {
		source, affected = p.Target, p.Origin
		sourcePrefix, affectedPrefix = "target", "origin"
	}
	if source == nil || affected == nil {
		return nil, nil
	}

	options := rolloption.New(p.Options...)
	options.AddAll(source.SelfRollOptions(sourcePrefix)...)
	options.AddAll(affected.SelfRollOptions(affectedPrefix)...)
	options.AddAll(p.Item.RollOptions("item")...)

	grants := source.Synthetics().EphemeralEffects
	seen := make(map[string]bool)
	var out []effect.Record
	for _, domain := range p.Domains {
		for _, g := range grants[domain] {
			if g.Affects != p.Affects || !g.Predicate.Test(options) {
				continue
			}
			rec, ok := e.effects.Ephemeral(g.Effect, source.ID)
			if !ok {
				e.logger.Warn("ephemeral effect not found",
					zap.String("effect", g.Effect),
					zap.String("source", g.Source),
					zap.String("actor", source.ID),
				)
				continue
			}
			if seen[rec.ID] {
				continue
			}
			seen[rec.ID] = true
			out = append(out, rec)
		}
	}
	return out, nil
}
