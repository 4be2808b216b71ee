// Package statistic models the rollable capabilities of an actor. A
// Statistic is either a named Check (skill, save, perception, armor class)
// or a Strike (an attack with a specific weapon usage); callers branch on
// the concrete type.
package statistic

import (
	"github.com/cory-johannsen/rollcontext/internal/game/item"
	"github.com/cory-johannsen/rollcontext/internal/game/modifier"
)

// DC is a difficulty class derived from a statistic.
type DC struct {
	Slug  string
	Value int
}

// Statistic is implemented by *Check and *Strike.
type Statistic interface {
	// Slug identifies the statistic on its actor.
	Slug() string
	// Label is the display name.
	Label() string
	// Domains are the roll-option domains the statistic rolls under, most
	// specific first.
	Domains() []string
	// Total is the statistic's modifier (or value, for DC statistics).
	Total() int
	// DC is the difficulty class opponents roll against.
	DC() DC
}

// Check is a named statistic.
type Check struct {
	slug      string
	label     string
	base      int
	domains   []string
	modifiers []*modifier.Modifier
	isDC      bool
}

// NewCheck builds a rolled statistic whose DC is 10 + Total().
func NewCheck(slug, label string, base int, domains []string, mods []*modifier.Modifier) *Check {
	return &Check{slug: slug, label: label, base: base, domains: domains, modifiers: mods}
}

// NewDCStatistic builds a statistic that is only ever rolled against, such
// as armor class; its DC is Total().
func NewDCStatistic(slug, label string, base int, domains []string, mods []*modifier.Modifier) *Check {
	c := NewCheck(slug, label, base, domains, mods)
	c.isDC = true
	return c
}

func (c *Check) Slug() string  { return c.slug }
func (c *Check) Label() string { return c.label }

func (c *Check) Domains() []string {
	return append([]string(nil), c.domains...)
}

// Modifiers returns the statistic's modifiers, enabled or not.
func (c *Check) Modifiers() []*modifier.Modifier {
	return append([]*modifier.Modifier(nil), c.modifiers...)
}

// Total returns base plus the stacked enabled modifiers.
func (c *Check) Total() int {
	return c.base + modifier.Total(c.modifiers)
}

// DC returns Total() for DC statistics and 10 + Total() otherwise.
func (c *Check) DC() DC {
	if c.isDC {
		return DC{Slug: c.slug, Value: c.Total()}
	}
	return DC{Slug: c.slug, Value: 10 + c.Total()}
}

// Strike is an attack made with one usage of an item.
type Strike struct {
	item      *item.Item
	base      int
	domains   []string
	modifiers []*modifier.Modifier
}

// NewStrike builds the strike for it.
//
// Precondition: it must not be nil.
func NewStrike(it *item.Item, base int, mods []*modifier.Modifier) *Strike {
	return &Strike{item: it, base: base, domains: StrikeDomains(it), modifiers: mods}
}

// StrikeDomains returns the attack-roll domains for a strike with it.
func StrikeDomains(it *item.Item) []string {
	domains := []string{it.ID + "-attack"}
	if it.Slug != "" {
		domains = append(domains, it.Slug+"-attack")
	}
	if it.IsMelee() {
		domains = append(domains, "melee-strike-attack-roll")
	} else {
		domains = append(domains, "ranged-strike-attack-roll")
	}
	return append(domains, "strike-attack-roll", "attack-roll", "attack", "all")
}

// DamageDomains returns the damage-roll domains for a strike with it.
func DamageDomains(it *item.Item) []string {
	domains := []string{it.ID + "-damage"}
	if it.Slug != "" {
		domains = append(domains, it.Slug+"-damage")
	}
	return append(domains, "strike-damage", "damage", "all")
}

// Item returns the item this strike is made with.
func (s *Strike) Item() *item.Item { return s.item }

func (s *Strike) Slug() string  { return s.item.Slug }
func (s *Strike) Label() string { return s.item.Name }

func (s *Strike) Domains() []string {
	return append([]string(nil), s.domains...)
}

// Modifiers returns the strike's attack modifiers, enabled or not.
func (s *Strike) Modifiers() []*modifier.Modifier {
	return append([]*modifier.Modifier(nil), s.modifiers...)
}

// Total returns the attack modifier.
func (s *Strike) Total() int {
	return s.base + s.item.Bonus + modifier.Total(s.modifiers)
}

// DC returns the strike's attack DC (10 + attack modifier).
func (s *Strike) DC() DC {
	return DC{Slug: s.item.Slug, Value: 10 + s.Total()}
}
