// Package actor defines game actors (characters, NPCs, hazards), the data
// preparation that derives their statistics and rule synthetics from items
// and effects, and contextual cloning: disposable copies with roll-scoped
// options and ephemeral effects baked in.
package actor

import (
	"github.com/cory-johannsen/rollcontext/internal/game/effect"
	"github.com/cory-johannsen/rollcontext/internal/game/item"
	"github.com/cory-johannsen/rollcontext/internal/game/statistic"
)

// Actor types.
const (
	TypeCharacter = "character"
	TypeNPC       = "npc"
	TypeHazard    = "hazard"
)

// Size is a creature size category.
type Size string

const (
	SizeTiny       Size = "tiny"
	SizeSmall      Size = "small"
	SizeMedium     Size = "medium"
	SizeLarge      Size = "large"
	SizeHuge       Size = "huge"
	SizeGargantuan Size = "gargantuan"
)

var sizeReach = map[Size]int{
	SizeTiny:       0,
	SizeSmall:      5,
	SizeMedium:     5,
	SizeLarge:      10,
	SizeHuge:       15,
	SizeGargantuan: 20,
}

// Actor is a game entity with statistics, items, and roll options.
//
// Exported fields are the persistent source data; statistics, strikes, and
// synthetics are derived by Prepare. An Actor is not safe for concurrent
// mutation.
type Actor struct {
	ID       string
	Name     string
	Type     string
	Level    int
	Size     Size
	Alliance string // "party", "opposition", or "" for neutral
	Traits   []string
	// Attributes holds base statistic values keyed by slug. "armor-class" is
	// the AC value; "attack" is the base strike modifier; every other slug is
	// a check modifier.
	Attributes map[string]int
	Items      []*item.Item
	Effects    []effect.Record
	// Options are extra roll options always present on this actor.
	Options []string
	// Marks maps a token id to the mark this actor has placed on it.
	Marks map[string]string

	contextual bool
	synthetics Synthetics
	statistics map[string]*statistic.Check
	strikes    []*statistic.Strike
}

// IsContextual reports whether a is a contextual clone.
func (a *Actor) IsContextual() bool { return a != nil && a.contextual }

// Synthetics returns the rule synthetics derived by the last Prepare.
func (a *Actor) Synthetics() Synthetics { return a.synthetics }

// Statistic returns the prepared named statistic slug, or nil.
func (a *Actor) Statistic(slug string) *statistic.Check {
	if a == nil {
		return nil
	}
	return a.statistics[slug]
}

// StrikeActions returns the prepared strikes, one per weapon usage.
func (a *Actor) StrikeActions() []*statistic.Strike {
	return append([]*statistic.Strike(nil), a.strikes...)
}

// Item returns the owned item with id, or nil.
func (a *Actor) Item(id string) *item.Item {
	for _, it := range a.Items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

// Owns reports whether it is one of a's items or strike usages, by identity.
func (a *Actor) Owns(it *item.Item) bool {
	if a == nil || it == nil {
		return false
	}
	for _, own := range a.Items {
		if own == it {
			return true
		}
	}
	for _, s := range a.strikes {
		if s.Item() == it {
			return true
		}
	}
	return false
}

// Reach returns the actor's reach with weapon, or its default reach when
// weapon is nil or has no reach trait.
func (a *Actor) Reach(weapon *item.Item) int {
	base, ok := sizeReach[a.Size]
	if !ok {
		base = sizeReach[SizeMedium]
	}
	if n, ok := weapon.Reach(base); ok {
		return n
	}
	return base
}

// MaxReach returns the longest reach among the actor's melee strikes and its
// default reach.
func (a *Actor) MaxReach() int {
	best := a.Reach(nil)
	for _, s := range a.strikes {
		if !s.Item().IsMelee() {
			continue
		}
		if r := a.Reach(s.Item()); r > best {
			best = r
		}
	}
	return best
}

// Mark returns the mark this actor has placed on tokenID.
func (a *Actor) Mark(tokenID string) (string, bool) {
	if m, ok := a.synthetics.TokenMarks[tokenID]; ok {
		return m, true
	}
	m, ok := a.Marks[tokenID]
	return m, ok
}

// IsOffGuardFromFlanking reports whether a becomes off-guard when flanked by
// origin. Hazards are never off-guard; actors with deny-advantage are only
// off-guard to higher-level flankers.
func (a *Actor) IsOffGuardFromFlanking(origin *Actor) bool {
	if a.Type == TypeHazard {
		return false
	}
	if a.synthetics.DenyAdvantage {
		return origin != nil && origin.Level > a.Level
	}
	return true
}
