package modifier

import (
	"github.com/cory-johannsen/rollcontext/internal/game/predicate"
	"github.com/cory-johannsen/rollcontext/internal/game/rolloption"
)

// AdjustmentMode is how an Adjustment changes a modifier's value.
type AdjustmentMode string

const (
	ModeAdd      AdjustmentMode = "add"
	ModeSubtract AdjustmentMode = "subtract"
	ModeOverride AdjustmentMode = "override"
)

// Adjustment alters modifiers with a matching slug on rolls under matching selectors.
type Adjustment struct {
	// Slug of the modifier to adjust; empty matches any modifier.
	Slug      string
	Selectors []string
	Predicate predicate.Predicate
	Mode      AdjustmentMode
	Value     int
	Source    string
}

// Matching returns the adjustments that apply to a modifier named slug on a
// roll under any of selectors.
func Matching(all []Adjustment, selectors []string, slug string) []Adjustment {
	var out []Adjustment
	for _, a := range all {
		if a.Slug != "" && a.Slug != slug {
			continue
		}
		if !selectorsOverlap(a.Selectors, selectors) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func selectorsOverlap(adj, roll []string) bool {
	for _, a := range adj {
		if a == "all" {
			return true
		}
		for _, r := range roll {
			if a == r {
				return true
			}
		}
	}
	return false
}

// Adjust applies every adjustment whose predicate holds, in order.
// Adjustments never change a modifier's sign class: a penalty stays <= 0 and
// a bonus stays >= 0.
func (m *Modifier) Adjust(adjustments []Adjustment, options *rolloption.Set) {
	penalty := m.Value < 0
	for _, a := range adjustments {
		if !a.Predicate.Test(options) {
			continue
		}
		switch a.Mode {
		case ModeAdd:
			m.Value += a.Value
		case ModeSubtract:
			m.Value -= a.Value
		case ModeOverride:
			m.Value = a.Value
		}
	}
	if penalty && m.Value > 0 {
		m.Value = 0
	}
	if !penalty && m.Value < 0 && m.Type != TypeUntyped {
		m.Value = 0
	}
}
