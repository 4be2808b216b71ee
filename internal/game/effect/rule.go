package effect

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/rollcontext/internal/game/predicate"
)

// RuleKey identifies the kind of a RuleElement.
type RuleKey string

const (
	// KeyFlatModifier grants a numeric modifier to statistics named by Selectors.
	KeyFlatModifier RuleKey = "flat-modifier"
	// KeyRollOption grants Option on rolls under Domain ("all" when empty).
	KeyRollOption RuleKey = "roll-option"
	// KeyEphemeralEffect applies Effect to the opposing actor (Affects "target")
	// or to this actor (Affects "origin") on rolls under Selectors.
	KeyEphemeralEffect RuleKey = "ephemeral-effect"
	// KeyAdjustStrike adjusts weapons matching Definition: action traits,
	// weapon traits, or range increment.
	KeyAdjustStrike RuleKey = "adjust-strike"
	// KeyAdjustModifier adjusts modifiers named Slug on rolls under Selectors.
	KeyAdjustModifier RuleKey = "adjust-modifier"
	// KeyTokenMark marks the token Token with the mark Slug.
	KeyTokenMark RuleKey = "token-mark"
	// KeyDenyAdvantage makes the actor immune to off-guard from flanking by
	// creatures of its level or lower.
	KeyDenyAdvantage RuleKey = "deny-advantage"
)

// Strike adjustment properties.
const (
	PropertyTraits         = "traits"
	PropertyWeaponTraits   = "weapon-traits"
	PropertyRangeIncrement = "range-increment"
)

// Affects values for ephemeral effects.
const (
	AffectsOrigin = "origin"
	AffectsTarget = "target"
)

// RuleElement is one declarative rule carried by an effect or item.
// Which fields are meaningful depends on Key.
type RuleElement struct {
	Key        RuleKey             `yaml:"key"`
	Slug       string              `yaml:"slug"`
	Label      string              `yaml:"label"`
	Selectors  []string            `yaml:"selectors"`
	Type       string              `yaml:"type"`
	Value      int                 `yaml:"value"`
	Option     string              `yaml:"option"`
	Domain     string              `yaml:"domain"`
	Affects    string              `yaml:"affects"`
	Effect     string              `yaml:"effect"`
	Property   string              `yaml:"property"`
	Mode       string              `yaml:"mode"`
	Trait      string              `yaml:"trait"`
	Script     string              `yaml:"script"`
	Token      string              `yaml:"token"`
	Definition predicate.Predicate `yaml:"definition"`
	Predicate  predicate.Predicate `yaml:"predicate"`
}

// Validate checks the fields required by r.Key.
//
// Postcondition: returns nil iff r is well formed for its key.
func (r RuleElement) Validate() error {
	var errs []error
	switch r.Key {
	case KeyFlatModifier:
		if len(r.Selectors) == 0 {
			errs = append(errs, errors.New("selectors must not be empty"))
		}
		if r.Slug == "" {
			errs = append(errs, errors.New("slug must not be empty"))
		}
	case KeyRollOption:
		if r.Option == "" {
			errs = append(errs, errors.New("option must not be empty"))
		}
	case KeyEphemeralEffect:
		if r.Affects != AffectsOrigin && r.Affects != AffectsTarget {
			errs = append(errs, fmt.Errorf("affects must be origin or target, got %q", r.Affects))
		}
		if r.Effect == "" {
			errs = append(errs, errors.New("effect must not be empty"))
		}
		if len(r.Selectors) == 0 {
			errs = append(errs, errors.New("selectors must not be empty"))
		}
	case KeyAdjustStrike:
		if r.Script == "" {
			switch r.Property {
			case PropertyTraits, PropertyWeaponTraits:
				if r.Trait == "" {
					errs = append(errs, errors.New("trait must not be empty"))
				}
				if r.Mode != "add" && r.Mode != "remove" {
					errs = append(errs, fmt.Errorf("mode must be add or remove, got %q", r.Mode))
				}
			case PropertyRangeIncrement:
				if r.Mode != "add" && r.Mode != "override" {
					errs = append(errs, fmt.Errorf("mode must be add or override, got %q", r.Mode))
				}
			default:
				errs = append(errs, fmt.Errorf("unknown property %q", r.Property))
			}
		}
	case KeyAdjustModifier:
		if len(r.Selectors) == 0 {
			errs = append(errs, errors.New("selectors must not be empty"))
		}
		switch r.Mode {
		case "add", "subtract", "override":
		default:
			errs = append(errs, fmt.Errorf("mode must be add, subtract, or override, got %q", r.Mode))
		}
	case KeyTokenMark:
		if r.Slug == "" || r.Token == "" {
			errs = append(errs, errors.New("slug and token must not be empty"))
		}
	case KeyDenyAdvantage:
	default:
		errs = append(errs, fmt.Errorf("unknown rule key %q", r.Key))
	}
	if len(errs) > 0 {
		return fmt.Errorf("rule %q: %v", r.Key, errs)
	}
	return nil
}
