package session

import (
	"github.com/cory-johannsen/rollcontext/internal/game/actor"
	"github.com/cory-johannsen/rollcontext/internal/game/board"
	"github.com/cory-johannsen/rollcontext/internal/game/history"
	"github.com/cory-johannsen/rollcontext/internal/game/item"
	"github.com/cory-johannsen/rollcontext/internal/game/modifier"
	"github.com/cory-johannsen/rollcontext/internal/game/rollcontext"
	"github.com/cory-johannsen/rollcontext/internal/game/statistic"
)

// Report is the JSON view of an executed request.
type Report struct {
	Kind      Kind                 `json:"kind"`
	Roller    rollcontext.Role     `json:"roller"`
	Domains   []string             `json:"domains"`
	Options   []string             `json:"options"`
	Traits    []string             `json:"traits,omitempty"`
	Origin    *SideReport          `json:"origin,omitempty"`
	Target    *SideReport          `json:"target,omitempty"`
	DC        *DCReport            `json:"dc,omitempty"`
	Modifiers []ModifierReport     `json:"modifiers,omitempty"`
	Roll      *RollReport          `json:"roll,omitempty"`
	Outcome   string               `json:"outcome,omitempty"`
	Check     *history.ContextFlag `json:"check,omitempty"`
	EntryID   string               `json:"entry_id,omitempty"`
}

// SideReport describes a resolved side.
type SideReport struct {
	Actor          string   `json:"actor,omitempty"`
	Token          string   `json:"token,omitempty"`
	Statistic      string   `json:"statistic,omitempty"`
	Item           string   `json:"item,omitempty"`
	ItemTraits     []string `json:"item_traits,omitempty"`
	Effects        []string `json:"effects,omitempty"`
	Distance       *float64 `json:"distance,omitempty"`
	RangeIncrement *int     `json:"range_increment,omitempty"`
}

// DCReport is the DC a check was rolled against.
type DCReport struct {
	Scope string `json:"scope"`
	Slug  string `json:"slug"`
	Value int    `json:"value"`
}

// ModifierReport is one modifier applied to the roll.
type ModifierReport struct {
	Slug    string `json:"slug"`
	Label   string `json:"label"`
	Type    string `json:"type"`
	Value   int    `json:"value"`
	Enabled bool   `json:"enabled"`
}

// RollReport is the executed roll.
type RollReport struct {
	Formula string `json:"formula"`
	Dice    []int  `json:"dice"`
	Total   int    `json:"total"`
}

func originReport(o *rollcontext.Origin) *SideReport {
	if o == nil {
		return nil
	}
	sr := side(o.Actor, o.Token, o.Statistic, o.Item)
	if o.Item != nil {
		sr.ItemTraits = o.Item.Traits
	}
	return sr
}

func targetReport(t *rollcontext.Target) *SideReport {
	if t == nil {
		return nil
	}
	sr := side(t.Actor, t.Token, t.Statistic, t.Item)
	sr.Distance = t.Distance
	sr.RangeIncrement = t.RangeIncrement
	return sr
}

func side(a *actor.Actor, tok *board.Token, stat statistic.Statistic, it *item.Item) *SideReport {
	sr := &SideReport{}
	if a != nil {
		sr.Actor = a.ID
		for _, rec := range a.Effects {
			if rec.Def != nil {
				sr.Effects = append(sr.Effects, rec.Label())
			}
		}
	}
	if tok != nil {
		sr.Token = tok.ID
	}
	if stat != nil {
		sr.Statistic = stat.Slug()
	}
	if it != nil {
		sr.Item = it.ID
	}
	return sr
}

func modifierReports(mods []*modifier.Modifier) []ModifierReport {
	if len(mods) == 0 {
		return nil
	}
	out := make([]ModifierReport, 0, len(mods))
	for _, m := range mods {
		out = append(out, ModifierReport{Slug: m.Slug, Label: m.Label, Type: string(m.Type), Value: m.Value, Enabled: m.Enabled})
	}
	return out
}
