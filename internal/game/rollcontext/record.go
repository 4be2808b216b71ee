package rollcontext

import (
	"github.com/cory-johannsen/rollcontext/internal/game/history"
	"github.com/cory-johannsen/rollcontext/internal/game/outcome"
	"github.com/cory-johannsen/rollcontext/internal/game/rolloption"
)

// CheckEntry builds the history entry recording an executed check with
// the given total and, when known, its degree of success.
func CheckEntry(res *CheckResult, typ string, total int, degree *outcome.Degree) history.Entry {
	flag := &history.ContextFlag{
		Type:    typ,
		Domains: append([]string(nil), res.Domains...),
		Options: append([]string(nil), res.Options...),
		Traits:  append([]string(nil), res.Traits...),
	}
	e := history.Entry{
		Rolls:   []history.Roll{{Kind: history.RollCheck, Total: total}},
		Context: flag,
	}
	if degree != nil {
		flag.Outcome = rolloption.Slug(degree.String())
	}
	if o := res.Origin; o != nil {
		if o.Actor != nil {
			e.ActorID = o.Actor.ID
			flag.ActorID = o.Actor.ID
		}
		if o.Token != nil {
			e.TokenID = o.Token.ID
		}
		if o.Item != nil {
			e.Item = &history.ItemRef{ID: o.Item.ID, Slug: o.Item.Slug, Type: string(o.Item.Type), Melee: o.Item.IsMelee()}
		}
	}
	if t := res.Target; t != nil && t.Token != nil {
		e.TargetTokenID = t.Token.ID
		flag.TargetTokenID = t.Token.ID
	}
	if res.DC != nil {
		flag.Against = res.DC.Slug
		v := res.DC.Value
		flag.DC = &v
	}
	return e
}
