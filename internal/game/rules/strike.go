package rules

import (
	"context"
	"strconv"
	"strings"

	"github.com/cory-johannsen/rollcontext/internal/game/actor"
	"github.com/cory-johannsen/rollcontext/internal/game/effect"
	"github.com/cory-johannsen/rollcontext/internal/game/item"
	"github.com/cory-johannsen/rollcontext/internal/game/rolloption"
	"github.com/cory-johannsen/rollcontext/internal/scripting"
)

// StrikeAdjustment changes a weapon, or the action traits of a strike made
// with it.
type StrikeAdjustment struct {
	// Source is the id of the effect or item carrying the rule.
	Source string

	weapon func(w *item.Item)
	traits func(w *item.Item, traits []string) []string
}

// AdjustWeapon applies the adjustment to w in place. Callers pass a clone.
func (s StrikeAdjustment) AdjustWeapon(w *item.Item) {
	if s.weapon != nil && w != nil {
		s.weapon(w)
	}
}

// AdjustTraits returns traits adjusted for a strike with w.
func (s StrikeAdjustment) AdjustTraits(w *item.Item, traits []string) []string {
	if s.traits == nil {
		return traits
	}
	return s.traits(w, traits)
}

// StrikeAdjustments returns the strike adjustments a carries, in rule order.
// Scripted adjustments run against the engine's scripts under ctx.
func (e *Engine) StrikeAdjustments(ctx context.Context, a *actor.Actor) []StrikeAdjustment {
	if a == nil {
		return nil
	}
	var out []StrikeAdjustment
	for _, sr := range a.Synthetics().StrikeAdjustments {
		r := sr.Rule
		applies := func(w *item.Item) bool {
			options := rolloption.New(a.SelfRollOptions("self")...)
			options.AddAll(w.RollOptions("item")...)
			return r.Definition.Test(options) && r.Predicate.Test(options)
		}
		adj := StrikeAdjustment{Source: sr.Source}
		if r.Script != "" {
			if e.scripts == nil {
				continue
			}
			adj.weapon, adj.traits = e.scripted(ctx, r.Script, applies)
			out = append(out, adj)
			continue
		}
		switch r.Property {
		case effect.PropertyWeaponTraits:
			adj.weapon = func(w *item.Item) {
				if applies(w) {
					w.Traits = editTraits(w.Traits, r.Mode, r.Trait)
				}
			}
		case effect.PropertyTraits:
			adj.traits = func(w *item.Item, traits []string) []string {
				if !applies(w) {
					return traits
				}
				return editTraits(traits, r.Mode, r.Trait)
			}
		case effect.PropertyRangeIncrement:
			adj.weapon = func(w *item.Item) {
				if !applies(w) {
					return
				}
				cur := w.EffectiveRange()
				if cur == nil {
					return
				}
				inc := r.Value
				if r.Mode == "add" {
					inc += cur.Increment
				}
				setRangeIncrement(w, inc)
			}
		default:
			continue
		}
		out = append(out, adj)
	}
	return out
}

func (e *Engine) scripted(ctx context.Context, hook string, applies func(*item.Item) bool) (func(*item.Item), func(*item.Item, []string) []string) {
	weapon := func(w *item.Item) {
		if !applies(w) {
			return
		}
		res, ok := e.scripts.AdjustStrike(ctx, hook, weaponInfo(w), nil)
		if !ok {
			return
		}
		for _, t := range res.AddWeaponTraits {
			w.Traits = editTraits(w.Traits, "add", t)
		}
		for _, t := range res.RemoveWeaponTraits {
			w.Traits = editTraits(w.Traits, "remove", t)
		}
		if res.RangeIncrement > 0 && w.EffectiveRange() != nil {
			setRangeIncrement(w, res.RangeIncrement)
		}
	}
	traits := func(w *item.Item, traits []string) []string {
		if !applies(w) {
			return traits
		}
		res, ok := e.scripts.AdjustStrike(ctx, hook, weaponInfo(w), traits)
		if !ok {
			return traits
		}
		for _, t := range res.AddTraits {
			traits = editTraits(traits, "add", t)
		}
		for _, t := range res.RemoveTraits {
			traits = editTraits(traits, "remove", t)
		}
		return traits
	}
	return weapon, traits
}

func weaponInfo(w *item.Item) scripting.WeaponInfo {
	info := scripting.WeaponInfo{
		ID:       w.ID,
		Slug:     w.Slug,
		Type:     string(w.Type),
		Group:    w.Group,
		Category: w.Category,
		Traits:   append([]string(nil), w.Traits...),
		Melee:    w.IsMelee(),
	}
	if r := w.EffectiveRange(); r != nil {
		info.RangeIncrement = r.Increment
	}
	return info
}

// editTraits adds or removes trait, returning a new slice.
func editTraits(traits []string, mode, trait string) []string {
	out := make([]string, 0, len(traits)+1)
	present := false
	for _, t := range traits {
		if t == trait {
			present = true
			if mode == "remove" {
				continue
			}
		}
		out = append(out, t)
	}
	if mode == "add" && !present {
		out = append(out, trait)
	}
	return out
}

// setRangeIncrement sets the increment of w's range in effect. A thrown
// usage carries its increment in the thrown-N trait.
func setRangeIncrement(w *item.Item, inc int) {
	if inc < 1 {
		inc = 1
	}
	if w.Thrown && w.Range == nil {
		for i, t := range w.Traits {
			if strings.HasPrefix(t, "thrown-") {
				w.Traits[i] = "thrown-" + strconv.Itoa(inc)
				return
			}
		}
		return
	}
	if w.Range != nil {
		w.Range.Increment = inc
	}
}
