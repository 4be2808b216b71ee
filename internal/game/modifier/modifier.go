// Package modifier models numeric roll modifiers, their predicate gating, and
// the adjustments rule sources apply to them.
package modifier

import (
	"github.com/cory-johannsen/rollcontext/internal/game/predicate"
	"github.com/cory-johannsen/rollcontext/internal/game/rolloption"
)

// Type is the bonus category of a modifier.
type Type string

const (
	TypeUntyped      Type = "untyped"
	TypeAbility      Type = "ability"
	TypeProficiency  Type = "proficiency"
	TypeCircumstance Type = "circumstance"
	TypeItem         Type = "item"
	TypeStatus       Type = "status"
)

// Modifier is one numeric contribution to a roll.
type Modifier struct {
	Slug      string
	Label     string
	Type      Type
	Value     int
	Predicate predicate.Predicate
	// Source names the effect or item that granted the modifier; empty for
	// engine-synthesised modifiers.
	Source  string
	Enabled bool
}

// New returns an enabled modifier. An empty typ is treated as untyped.
func New(slug, label string, typ Type, value int) *Modifier {
	if typ == "" {
		typ = TypeUntyped
	}
	return &Modifier{Slug: slug, Label: label, Type: typ, Value: value, Enabled: true}
}

// Test sets Enabled from the modifier's predicate.
//
// Postcondition: m.Enabled == m.Predicate.Test(options).
func (m *Modifier) Test(options *rolloption.Set) {
	m.Enabled = m.Predicate.Test(options)
}

// Clone returns a copy of m. The predicate is shared; predicates are immutable.
func (m *Modifier) Clone() *Modifier {
	c := *m
	return &c
}

// Total sums enabled modifiers. Typed bonuses and penalties do not stack:
// only the highest bonus and the lowest penalty of each type other than
// untyped count.
//
// Postcondition: disabled modifiers contribute nothing.
func Total(mods []*Modifier) int {
	type extremes struct{ bonus, penalty int }
	typed := make(map[Type]*extremes)
	total := 0
	for _, m := range mods {
		if m == nil || !m.Enabled || m.Value == 0 {
			continue
		}
		if m.Type == TypeUntyped {
			total += m.Value
			continue
		}
		e, ok := typed[m.Type]
		if !ok {
			e = &extremes{}
			typed[m.Type] = e
		}
		if m.Value > e.bonus {
			e.bonus = m.Value
		}
		if m.Value < e.penalty {
			e.penalty = m.Value
		}
	}
	for _, e := range typed {
		total += e.bonus + e.penalty
	}
	return total
}
