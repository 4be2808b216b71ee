package rollcontext

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"go.uber.org/zap"

	"github.com/cory-johannsen/rollcontext/internal/game/actor"
	"github.com/cory-johannsen/rollcontext/internal/game/board"
	"github.com/cory-johannsen/rollcontext/internal/game/effect"
	"github.com/cory-johannsen/rollcontext/internal/game/item"
	"github.com/cory-johannsen/rollcontext/internal/game/rolloption"
	"github.com/cory-johannsen/rollcontext/internal/game/rules"
	"github.com/cory-johannsen/rollcontext/internal/game/statistic"
)

// attackDomains mark a roll as an attack.
var attackDomains = []string{"attack", "attack-roll", "attack-damage", "strike-damage"}

// offGuardName is the display name of the off-guard condition applied by flanking.
const offGuardName = "Flanked"

// Params are the inputs of a roll context.
type Params struct {
	Origin *Opposer
	Target *Opposer
	// Domains are the roll-option domains, most specific first.
	Domains []string
	Options []string
	// ViewOnly resolves a sheet preview: no target, no flanking.
	ViewOnly bool
	Traits   []string
}

// Context is a base roll context. It is owned by one call site and resolved
// once per roll.
type Context struct {
	env      Env
	origin   *Opposer
	target   *Opposer
	domains  []string
	options  []string
	viewOnly bool
	traits   []string

	isAttack      bool
	isMeleeAttack bool
}

// New normalizes p into a Context.
//
// Precondition: p.Origin or p.Target is set, and the rolling side supplies a
// statistic. With ViewOnly the target is dropped, so the origin must roll.
// Postcondition: the caller's Opposers are not modified.
func New(env Env, p Params) (*Context, error) {
	env = env.withDefaults()
	origin, target := p.Origin, p.Target
	if p.ViewOnly {
		target = nil
	}
	if origin == nil && target == nil {
		return nil, ErrNoOpposer
	}
	if (origin == nil || origin.Statistic == nil) && (target == nil || target.Statistic == nil) {
		return nil, ErrNoStatistic
	}

	c := &Context{
		env:      env,
		origin:   normalize(env, origin),
		target:   normalize(env, target),
		domains:  append([]string(nil), p.Domains...),
		options:  rolloption.Dedupe(p.Options),
		viewOnly: p.ViewOnly,
		traits:   append([]string(nil), p.Traits...),
	}
	for _, d := range attackDomains {
		if contains(c.domains, d) {
			c.isAttack = true
			break
		}
	}
	if c.origin != nil {
		it := c.origin.Item
		c.isMeleeAttack = c.isAttack && it.IsOfType(item.TypeAction, item.TypeMelee, item.TypeSpell, item.TypeWeapon) && it.IsMelee()
	}
	return c, nil
}

// normalize copies o, defaulting the token to the actor's first placed token
// and the item to the strike's item when the actor owns it.
func normalize(env Env, o *Opposer) *Opposer {
	if o == nil {
		return nil
	}
	n := *o
	if n.Token == nil && n.Actor != nil && env.Placement != nil {
		n.Token = env.Placement.FirstToken(n.Actor.ID)
	}
	if n.Item == nil && n.Actor != nil {
		if s, ok := n.Statistic.(*statistic.Strike); ok && s.Item().OwnerID == n.Actor.ID {
			n.Item = s.Item()
		}
	}
	return &n
}

// RollerRole returns the side that supplied the statistic.
func (c *Context) RollerRole() Role {
	if c.origin != nil && c.origin.Statistic != nil {
		return RoleOrigin
	}
	return RoleTarget
}

// IsAttack reports whether the domains name an attack.
func (c *Context) IsAttack() bool { return c.isAttack }

// IsMeleeAttack reports whether this is an attack with a melee-capable item.
func (c *Context) IsMeleeAttack() bool { return c.isMeleeAttack }

// IsFlankingAttack reports whether the origin flanks the target. It is
// computed on every call.
func (c *Context) IsFlankingAttack() bool {
	if c.viewOnly || c.env.Placement == nil || !c.isMeleeAttack {
		return false
	}
	if c.origin == nil || c.target == nil || c.origin.Token == nil || c.target.Token == nil || c.origin.Actor == nil {
		return false
	}
	var reach int
	if it := c.origin.Item; it.IsOfType(item.TypeAction, item.TypeWeapon, item.TypeMelee) {
		reach = c.origin.Actor.Reach(it)
	} else {
		reach = c.origin.Actor.Reach(nil)
	}
	flanking := c.env.Placement.IsFlanking(c.origin.Token, c.target.Token, reach)
	c.env.Logger.Debug("flanking evaluated",
		zap.String("origin", c.origin.Token.ID),
		zap.String("target", c.target.Token.ID),
		zap.Int("reach", reach),
		zap.Bool("flanking", flanking),
	)
	return flanking
}

func (c *Context) side(r Role) *Opposer {
	if r == RoleOrigin {
		return c.origin
	}
	return c.target
}

// Resolve builds the roll's Result. The rolling side is cloned strictly
// before the opposing side, whose ephemeral effects are drawn from the
// completed rolling clone.
//
// Postcondition: Options is sorted and duplicate-free; Target is nil for
// view-only rolls. Errors come only from the Cloner and Rules collaborators.
func (c *Context) Resolve(ctx context.Context) (*Result, error) {
	rollerRole := c.RollerRole()
	opposingRole := rollerRole.Opposite()
	rolling := c.side(rollerRole)
	opposing := c.side(opposingRole)

	selfActor, err := c.cloneActor(ctx, rollerRole, nil)
	if err != nil {
		return nil, err
	}

	stat := c.clonedStatistic(selfActor, rolling.Statistic)

	domains := c.domains
	if !contains(c.domains, "damage") {
		if d := stat.Domains(); len(d) > 0 {
			domains = d
		}
	}

	it := c.cloneItem(selfActor, rolling.Item, stat)
	isStrikeItem := it.IsOfType(item.TypeWeapon, item.TypeMelee)
	var adjustments []rules.StrikeAdjustment
	if isStrikeItem && c.env.Rules != nil {
		adjustments = c.env.Rules.StrikeAdjustments(ctx, selfActor)
	}
	if it.IsOfType(item.TypeWeapon) && len(adjustments) > 0 {
		if !selfActor.IsContextual() || !selfActor.Owns(it) {
			it = it.Clone()
		}
		for _, adj := range adjustments {
			adj.AdjustWeapon(it)
		}
	}

	var distance *float64
	var rangeIncrement *int
	if opposing != nil && rolling.Token != nil && opposing.Token != nil &&
		rolling.Actor != nil && opposing.Actor != nil && c.env.Placement != nil {
		d := c.env.Placement.Distance(rolling.Token, opposing.Token)
		distance = &d
		rangeIncrement = it.RangeIncrement(d)
	}

	options := rolloption.New(c.options...)
	options.AddAll(selfActor.RollOptions(domains...)...)
	if distance != nil {
		options.Add(fmt.Sprintf("%s:distance:%s", opposingRole, formatDistance(*distance)))
	}
	if rangeIncrement != nil {
		options.Add(fmt.Sprintf("%s:range-increment:%d", opposingRole, *rangeIncrement))
	}
	options.AddAll(rolloption.Prefixed("self:action:trait", c.traits...)...)
	options.AddAll(it.RollOptions("item")...)
	if c.isAttack {
		options.Add("attack")
	}

	traits := append([]string(nil), c.traits...)
	if isStrikeItem {
		for _, adj := range adjustments {
			traits = adj.AdjustTraits(it, traits)
		}
	}
	traits = rolloption.Dedupe(traits)

	opposingActor, err := c.cloneActor(ctx, opposingRole, selfActor)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Domains: append([]string(nil), domains...),
		Options: options.Sorted(),
		Traits:  traits,
	}
	originActor, targetActor := selfActor, opposingActor
	if rollerRole == RoleTarget {
		originActor, targetActor = opposingActor, selfActor
	}
	if c.origin != nil {
		o := &Origin{Actor: originActor, Token: c.origin.Token, Item: c.origin.Item, Self: rollerRole == RoleOrigin}
		if o.Self {
			o.Statistic = stat
			o.Item = it
		}
		res.Origin = o
	}
	if c.target != nil {
		t := &Target{
			Actor:          targetActor,
			Token:          c.target.Token,
			Item:           c.target.Item,
			Self:           rollerRole == RoleTarget,
			Distance:       distance,
			RangeIncrement: rangeIncrement,
		}
		if t.Self {
			t.Statistic = stat
			t.Item = it
		}
		res.Target = t
	}
	return res, nil
}

// cloneActor returns a contextual clone of the actor on side which. other is
// the already-resolved actor on the opposite side, if any. When either side
// lacks an actor the unresolved actor is returned as is.
func (c *Context) cloneActor(ctx context.Context, which Role, other *actor.Actor) (*actor.Actor, error) {
	self, opp := c.side(which), c.side(which.Opposite())
	if self == nil || self.Actor == nil {
		return nil, nil
	}
	if opp == nil || opp.Actor == nil {
		return self.Actor, nil
	}
	if other == nil {
		other = opp.Actor
	}

	var effects []effect.Record
	if c.env.Rules != nil {
		p := rules.Params{Affects: string(which), Domains: c.domains, Options: c.options}
		if which == RoleOrigin {
			p.Origin, p.Target = self.Actor, other
		} else {
			p.Origin, p.Target = other, self.Actor
		}
		if c.origin != nil {
			p.Item = c.origin.Item
		}
		var err error
		effects, err = c.env.Rules.ExtractEphemeralEffects(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("extracting ephemeral effects for %s: %w", which, err)
		}
	}

	flanking := c.IsFlankingAttack()
	if which == RoleTarget && flanking && self.Actor.IsOffGuardFromFlanking(other) {
		if rec, ok := c.env.Conditions.Condition("off-guard", offGuardName); ok {
			effects = append(effects, rec)
		}
	}

	options := append([]string(nil), c.options...)
	if opp.Token != nil {
		if mark, ok := self.Actor.Mark(opp.Token.ID); ok {
			options = append(options, fmt.Sprintf("%s:mark:%s", which.Opposite(), mark))
		}
	}
	perspective := "target"
	if which == c.RollerRole() {
		perspective = "self"
	}
	options = append(options, rolloption.Prefixed(perspective+":action:trait", c.traits...)...)
	if flanking {
		options = append(options, perspective+":flanking")
	}

	clone, err := c.env.Cloner.ContextualClone(ctx, self.Actor, options, effects)
	if err != nil {
		return nil, fmt.Errorf("cloning %s actor %q: %w", which, self.Actor.ID, err)
	}
	return clone, nil
}

// clonedStatistic finds raw's counterpart on the clone, falling back to raw.
func (c *Context) clonedStatistic(clone *actor.Actor, raw statistic.Statistic) statistic.Statistic {
	if clone == nil {
		return raw
	}
	switch s := raw.(type) {
	case *statistic.Strike:
		orig := s.Item()
		for _, cand := range clone.StrikeActions() {
			ci := cand.Item()
			if ci.ID != orig.ID || ci.Name != orig.Name {
				continue
			}
			if ci.Type == item.TypeMelee || (ci.Type == item.TypeWeapon && ci.Thrown == orig.Thrown) {
				return cand
			}
		}
	case *statistic.Check:
		if found := clone.Statistic(s.Slug()); found != nil {
			return found
		}
	default:
		return raw
	}
	c.env.Logger.Debug("statistic not found on clone, using original", zap.String("statistic", raw.Slug()))
	return raw
}

// cloneItem resolves the item in use on the rolling clone. The raw item is
// kept when no clone relationship exists; otherwise the strike's item, then
// the clone's item with the same id, then the raw item.
func (c *Context) cloneItem(clone *actor.Actor, raw *item.Item, stat statistic.Statistic) *item.Item {
	if raw == nil {
		return nil
	}
	if clone == nil || !clone.IsContextual() || raw.OwnerID != clone.ID {
		return raw
	}
	if s, ok := stat.(*statistic.Strike); ok && s.Item().IsOfType(item.TypeAction, item.TypeMelee, item.TypeWeapon) {
		return s.Item()
	}
	if found := clone.Item(raw.ID); found != nil {
		return found
	}
	c.env.Logger.Debug("item not found on clone, using original", zap.String("item", raw.ID))
	return raw
}

func formatDistance(d float64) string {
	if d == math.Trunc(d) && !math.IsInf(d, 0) {
		return strconv.FormatInt(int64(d), 10)
	}
	return strconv.FormatFloat(d, 'f', -1, 64)
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

var _ Placement = (*board.Board)(nil)
