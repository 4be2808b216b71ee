package actor

import (
	"strconv"

	"github.com/cory-johannsen/rollcontext/internal/game/effect"
	"github.com/cory-johannsen/rollcontext/internal/game/item"
	"github.com/cory-johannsen/rollcontext/internal/game/modifier"
	"github.com/cory-johannsen/rollcontext/internal/game/predicate"
	"github.com/cory-johannsen/rollcontext/internal/game/rolloption"
	"github.com/cory-johannsen/rollcontext/internal/game/statistic"
)

// SourcedRule is a rule element together with the id of the effect or item
// carrying it.
type SourcedRule struct {
	Rule   effect.RuleElement
	Source string
}

// GrantedOption is a roll option granted by a roll-option rule.
type GrantedOption struct {
	Domain    string
	Option    string
	Predicate predicate.Predicate
	Source    string
}

// EphemeralGrant is an ephemeral-effect rule: while rolling under one of its
// selectors, the actor applies Effect to Affects.
type EphemeralGrant struct {
	Affects   string
	Effect    string
	Predicate predicate.Predicate
	Source    string
}

// Synthetics are the rule outputs derived from an actor's items and effects.
type Synthetics struct {
	// Modifiers maps a selector to the flat modifiers granted under it.
	Modifiers map[string][]*modifier.Modifier
	// RollOptions are options granted by roll-option rules.
	RollOptions []GrantedOption
	// EphemeralEffects maps a selector to the ephemeral grants under it.
	EphemeralEffects map[string][]EphemeralGrant
	// StrikeAdjustments are the actor's adjust-strike rules.
	StrikeAdjustments []SourcedRule
	// ModifierAdjustments are the actor's adjust-modifier rules.
	ModifierAdjustments []modifier.Adjustment
	// TokenMarks maps a token id to a mark slug.
	TokenMarks map[string]string
	// DenyAdvantage is set by a deny-advantage rule.
	DenyAdvantage bool
}

type statisticInfo struct {
	label string
	group string
	isDC  bool
}

var statisticCatalog = map[string]statisticInfo{
	"armor-class":  {label: "Armor Class", isDC: true},
	"perception":   {label: "Perception"},
	"fortitude":    {label: "Fortitude", group: "saving-throw"},
	"reflex":       {label: "Reflex", group: "saving-throw"},
	"will":         {label: "Will", group: "saving-throw"},
	"acrobatics":   {label: "Acrobatics", group: "skill-check"},
	"arcana":       {label: "Arcana", group: "skill-check"},
	"athletics":    {label: "Athletics", group: "skill-check"},
	"crafting":     {label: "Crafting", group: "skill-check"},
	"deception":    {label: "Deception", group: "skill-check"},
	"diplomacy":    {label: "Diplomacy", group: "skill-check"},
	"intimidation": {label: "Intimidation", group: "skill-check"},
	"medicine":     {label: "Medicine", group: "skill-check"},
	"nature":       {label: "Nature", group: "skill-check"},
	"occultism":    {label: "Occultism", group: "skill-check"},
	"performance":  {label: "Performance", group: "skill-check"},
	"religion":     {label: "Religion", group: "skill-check"},
	"society":      {label: "Society", group: "skill-check"},
	"stealth":      {label: "Stealth", group: "skill-check"},
	"survival":     {label: "Survival", group: "skill-check"},
	"thievery":     {label: "Thievery", group: "skill-check"},
}

// attackAttribute is the Attributes key holding the base strike modifier.
const attackAttribute = "attack"

// Prepare derives synthetics, statistics, and strikes from the actor's
// source data. It is idempotent and must be called after any change to the
// exported fields.
//
// Postcondition: every item has OwnerID == a.ID.
func (a *Actor) Prepare() {
	for _, it := range a.Items {
		it.OwnerID = a.ID
	}
	a.synthetics = Synthetics{
		Modifiers:        make(map[string][]*modifier.Modifier),
		EphemeralEffects: make(map[string][]EphemeralGrant),
		TokenMarks:       make(map[string]string),
	}
	for _, rec := range a.Effects {
		if rec.Def == nil {
			continue
		}
		for _, r := range rec.Def.Rules {
			a.addRule(r, rec.Def.ID, rec.Label())
		}
	}
	for _, it := range a.Items {
		for _, r := range it.Rules {
			a.addRule(r, it.ID, it.Name)
		}
	}
	a.prepareStatistics()
	a.prepareStrikes()
}

func (a *Actor) addRule(r effect.RuleElement, source, sourceLabel string) {
	s := &a.synthetics
	switch r.Key {
	case effect.KeyFlatModifier:
		label := r.Label
		if label == "" {
			label = sourceLabel
		}
		m := modifier.New(r.Slug, label, modifier.Type(r.Type), r.Value)
		m.Predicate = r.Predicate
		m.Source = source
		for _, sel := range r.Selectors {
			s.Modifiers[sel] = append(s.Modifiers[sel], m)
		}
	case effect.KeyRollOption:
		domain := r.Domain
		if domain == "" {
			domain = "all"
		}
		s.RollOptions = append(s.RollOptions, GrantedOption{Domain: domain, Option: r.Option, Predicate: r.Predicate, Source: source})
	case effect.KeyEphemeralEffect:
		g := EphemeralGrant{Affects: r.Affects, Effect: r.Effect, Predicate: r.Predicate, Source: source}
		for _, sel := range r.Selectors {
			s.EphemeralEffects[sel] = append(s.EphemeralEffects[sel], g)
		}
	case effect.KeyAdjustStrike:
		s.StrikeAdjustments = append(s.StrikeAdjustments, SourcedRule{Rule: r, Source: source})
	case effect.KeyAdjustModifier:
		s.ModifierAdjustments = append(s.ModifierAdjustments, modifier.Adjustment{
			Slug:      r.Slug,
			Selectors: r.Selectors,
			Predicate: r.Predicate,
			Mode:      modifier.AdjustmentMode(r.Mode),
			Value:     r.Value,
			Source:    source,
		})
	case effect.KeyTokenMark:
		s.TokenMarks[r.Token] = r.Slug
	case effect.KeyDenyAdvantage:
		s.DenyAdvantage = true
	}
}

func (a *Actor) prepareStatistics() {
	a.statistics = make(map[string]*statistic.Check, len(a.Attributes))
	for slug, base := range a.Attributes {
		if slug == attackAttribute {
			continue
		}
		info, ok := statisticCatalog[slug]
		if !ok {
			info = statisticInfo{label: slug, group: "check"}
		}
		domains := []string{slug}
		if info.group != "" {
			domains = append(domains, info.group)
		}
		if !info.isDC && info.group != "check" {
			domains = append(domains, "check")
		}
		domains = append(domains, "all")
		mods := a.modifiersFor(domains, nil)
		if info.isDC {
			a.statistics[slug] = statistic.NewDCStatistic(slug, info.label, base, domains, mods)
		} else {
			a.statistics[slug] = statistic.NewCheck(slug, info.label, base, domains, mods)
		}
	}
}

func (a *Actor) prepareStrikes() {
	a.strikes = nil
	base := a.Attributes[attackAttribute]
	for _, it := range a.Items {
		if !it.IsOfType(item.TypeWeapon, item.TypeMelee) {
			continue
		}
		usages := []*item.Item{it}
		if it.IsThrowable() {
			thrown := it.Clone()
			thrown.Thrown = true
			usages = append(usages, thrown)
		}
		for _, u := range usages {
			domains := statistic.StrikeDomains(u)
			mods := a.modifiersFor(domains, u.RollOptions("item"))
			a.strikes = append(a.strikes, statistic.NewStrike(u, base, mods))
		}
	}
}

// modifiersFor returns fresh copies of the modifiers granted under any of
// domains, adjusted and tested against the actor's options for those domains.
func (a *Actor) modifiersFor(domains []string, extra []string) []*modifier.Modifier {
	options := rolloption.New(a.RollOptions(domains...)...)
	options.AddAll(extra...)
	seen := make(map[*modifier.Modifier]bool)
	var out []*modifier.Modifier
	for _, d := range domains {
		for _, m := range a.synthetics.Modifiers[d] {
			if seen[m] {
				continue
			}
			seen[m] = true
			c := m.Clone()
			c.Adjust(modifier.Matching(a.synthetics.ModifierAdjustments, domains, c.Slug), options)
			c.Test(options)
			out = append(out, c)
		}
	}
	return out
}

// RollOptions returns the actor's own options for a roll under domains:
// self options, the actor's extra options, and rule-granted options whose
// domain is "all" or one of domains and whose predicate holds.
//
// Postcondition: the result is sorted and duplicate-free.
func (a *Actor) RollOptions(domains ...string) []string {
	if a == nil {
		return nil
	}
	set := rolloption.New(a.SelfRollOptions("self")...)
	set.AddAll(a.Options...)
	base := set.Clone()
	for _, g := range a.synthetics.RollOptions {
		if g.Domain != "all" && !contains(domains, g.Domain) {
			continue
		}
		if g.Predicate.Test(base) {
			set.Add(g.Option)
		}
	}
	return set.Sorted()
}

// SelfRollOptions returns the options describing the actor itself under prefix,
// such as "self", "origin", or "target".
func (a *Actor) SelfRollOptions(prefix string) []string {
	if a == nil {
		return nil
	}
	opts := []string{prefix + ":id:" + a.ID}
	if a.Type != "" {
		opts = append(opts, prefix+":type:"+a.Type)
	}
	opts = append(opts, prefix+":level:"+strconv.Itoa(a.Level))
	if a.Size != "" {
		opts = append(opts, prefix+":size:"+string(a.Size))
	}
	if a.Alliance != "" {
		opts = append(opts, prefix+":alliance:"+a.Alliance)
	}
	opts = append(opts, rolloption.Prefixed(prefix+":trait", a.Traits...)...)
	for _, rec := range a.Effects {
		if rec.Def == nil {
			continue
		}
		if rec.Def.Type == effect.TypeCondition {
			opts = append(opts, prefix+":condition:"+rec.Def.ID)
		} else {
			opts = append(opts, prefix+":effect:"+rec.Def.ID)
		}
	}
	return opts
}

// ModifierAdjustments returns the actor's adjustments that apply to a
// modifier named slug on a roll under selectors.
func (a *Actor) ModifierAdjustments(selectors []string, slug string) []modifier.Adjustment {
	if a == nil {
		return nil
	}
	return modifier.Matching(a.synthetics.ModifierAdjustments, selectors, slug)
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
