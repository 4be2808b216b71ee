// Package item defines the items a roll can be made with: weapons, NPC melee
// attacks, spells, and actions, together with their traits and range tables.
package item

import (
	"math"
	"strconv"
	"strings"

	"github.com/cory-johannsen/rollcontext/internal/game/effect"
)

// Type is the kind of an item.
type Type string

const (
	TypeWeapon    Type = "weapon"
	TypeMelee     Type = "melee" // an NPC's natural or listed attack
	TypeSpell     Type = "spell"
	TypeAction    Type = "action"
	TypeEquipment Type = "equipment"
)

// Range is an item's range table. Increment is the width of one range
// increment in the board's distance unit; Max is the maximum range, zero
// meaning six increments.
type Range struct {
	Increment int `yaml:"increment"`
	Max       int `yaml:"max"`
}

// Item is an item owned by an actor.
type Item struct {
	ID         string               `yaml:"id"`
	Slug       string               `yaml:"slug"`
	Name       string               `yaml:"name"`
	Type       Type                 `yaml:"type"`
	Traits     []string             `yaml:"traits"`
	Range      *Range               `yaml:"range"`
	Group      string               `yaml:"group"`
	Category   string               `yaml:"category"`
	DamageDice string               `yaml:"damage_dice"`
	Bonus      int                  `yaml:"bonus"`
	Rules      []effect.RuleElement `yaml:"rules"`
	// Thrown marks the thrown usage of a melee weapon with a thrown trait.
	Thrown bool `yaml:"thrown"`
	// OwnerID is the id of the owning actor; set when the item is added to one.
	OwnerID string `yaml:"-"`
}

// IsOfType reports whether the item's type is any of types. A nil item is of no type.
func (i *Item) IsOfType(types ...Type) bool {
	if i == nil {
		return false
	}
	for _, t := range types {
		if i.Type == t {
			return true
		}
	}
	return false
}

// HasTrait reports whether the item carries trait.
func (i *Item) HasTrait(trait string) bool {
	for _, t := range i.Traits {
		if t == trait {
			return true
		}
	}
	return false
}

// thrownIncrement returns N for a "thrown-N" trait, or (0, false).
func (i *Item) thrownIncrement() (int, bool) {
	for _, t := range i.Traits {
		if rest, ok := strings.CutPrefix(t, "thrown-"); ok {
			if n, err := strconv.Atoi(rest); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

// IsThrowable reports whether the item is a melee weapon that can also be thrown.
func (i *Item) IsThrowable() bool {
	_, ok := i.thrownIncrement()
	return i.Type == TypeWeapon && i.Range == nil && ok
}

// EffectiveRange returns the range table in effect for this usage: the thrown
// increment for a thrown usage, the item's own table otherwise, or nil.
func (i *Item) EffectiveRange() *Range {
	if i.Thrown {
		if n, ok := i.thrownIncrement(); ok {
			return &Range{Increment: n}
		}
	}
	return i.Range
}

// IsMelee reports whether the item is used in melee: a weapon or melee attack
// without a range in effect, or a spell or action with the attack trait and
// no range.
func (i *Item) IsMelee() bool {
	if i == nil {
		return false
	}
	switch i.Type {
	case TypeWeapon, TypeMelee:
		return i.EffectiveRange() == nil
	case TypeSpell, TypeAction:
		return i.HasTrait("attack") && i.Range == nil
	default:
		return false
	}
}

// IsRanged reports whether the item is used at range.
func (i *Item) IsRanged() bool {
	return i != nil && i.EffectiveRange() != nil
}

// RangeIncrement maps distance onto the item's range table:
// max(ceil(distance/increment), 1), extrapolating past the table.
//
// Postcondition: returns nil for spells and equipment, items without a range
// table, and non-integer distances.
func (i *Item) RangeIncrement(distance float64) *int {
	if !i.IsOfType(TypeAction, TypeMelee, TypeWeapon) {
		return nil
	}
	if distance != math.Trunc(distance) || math.IsInf(distance, 0) {
		return nil
	}
	r := i.EffectiveRange()
	if r == nil || r.Increment <= 0 {
		return nil
	}
	n := int(math.Ceil(distance / float64(r.Increment)))
	if n < 1 {
		n = 1
	}
	return &n
}

// Reach returns the reach granted by a "reach" (base+5) or "reach-N" (N)
// trait, or (0, false) when the item has neither.
func (i *Item) Reach(base int) (int, bool) {
	if i == nil {
		return 0, false
	}
	for _, t := range i.Traits {
		if t == "reach" {
			return base + 5, true
		}
		if rest, ok := strings.CutPrefix(t, "reach-"); ok {
			if n, err := strconv.Atoi(rest); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

// RollOptions returns the item's own option tags under prefix.
func (i *Item) RollOptions(prefix string) []string {
	if i == nil {
		return nil
	}
	opts := []string{
		prefix + ":id:" + i.ID,
		prefix + ":type:" + string(i.Type),
	}
	if i.Slug != "" {
		opts = append(opts, prefix+":slug:"+i.Slug, prefix+":"+i.Slug)
	}
	for _, t := range i.Traits {
		opts = append(opts, prefix+":trait:"+t)
	}
	if i.Group != "" {
		opts = append(opts, prefix+":group:"+i.Group)
	}
	if i.Category != "" {
		opts = append(opts, prefix+":category:"+i.Category)
	}
	if i.IsOfType(TypeWeapon, TypeMelee, TypeSpell, TypeAction) {
		if i.IsMelee() {
			opts = append(opts, prefix+":melee")
		} else if i.IsRanged() {
			opts = append(opts, prefix+":ranged")
		}
	}
	if i.Thrown {
		opts = append(opts, prefix+":thrown")
	}
	return opts
}

// Clone returns a deep copy of i.
func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}
	c := *i
	c.Traits = append([]string(nil), i.Traits...)
	c.Rules = append([]effect.RuleElement(nil), i.Rules...)
	if i.Range != nil {
		r := *i.Range
		c.Range = &r
	}
	return &c
}
