// Package rollcontext resolves the full context of a single roll: which
// actor is rolling, contextual clones of both sides with roll-scoped effects
// applied, the item in use, distance and range increment, flanking, the
// action traits, and the sorted roll-option set every predicate evaluates
// against. Check and Damage specialize the base resolution with a target DC
// and with correlation to a preceding check.
package rollcontext

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/cory-johannsen/rollcontext/internal/game/actor"
	"github.com/cory-johannsen/rollcontext/internal/game/board"
	"github.com/cory-johannsen/rollcontext/internal/game/effect"
	"github.com/cory-johannsen/rollcontext/internal/game/item"
	"github.com/cory-johannsen/rollcontext/internal/game/modifier"
	"github.com/cory-johannsen/rollcontext/internal/game/rolloption"
	"github.com/cory-johannsen/rollcontext/internal/game/rules"
	"github.com/cory-johannsen/rollcontext/internal/game/statistic"
)

// Role names a side of the roll.
type Role string

const (
	RoleOrigin Role = "origin"
	RoleTarget Role = "target"
)

// Opposite returns the other role.
func (r Role) Opposite() Role {
	if r == RoleOrigin {
		return RoleTarget
	}
	return RoleOrigin
}

var (
	// ErrNoOpposer is returned when neither an origin nor a target is supplied.
	ErrNoOpposer = errors.New("roll context needs an origin or a target")
	// ErrNoStatistic is returned when no side supplies the statistic being rolled.
	ErrNoStatistic = errors.New("the rolling side must supply a statistic")
)

// Opposer is an unresolved side of a roll as supplied by the caller. It is
// never mutated.
type Opposer struct {
	Actor *actor.Actor
	// Statistic is set only on the rolling side.
	Statistic statistic.Statistic
	Token     *board.Token
	Item      *item.Item
}

// Origin is the resolved origin side.
type Origin struct {
	Actor     *actor.Actor
	Token     *board.Token
	Statistic statistic.Statistic
	Item      *item.Item
	Self      bool
	// Modifiers are attached during resolution, such as a range penalty.
	Modifiers []*modifier.Modifier
}

// Target is the resolved target side.
type Target struct {
	Actor          *actor.Actor
	Token          *board.Token
	Statistic      statistic.Statistic
	Item           *item.Item
	Self           bool
	Distance       *float64
	RangeIncrement *int
}

// Result is a resolved roll context.
type Result struct {
	Domains []string
	// Options is sorted and free of duplicates.
	Options []string
	Origin  *Origin
	Target  *Target
	Traits  []string
}

// DC is the difficulty class a check is rolled against.
type DC struct {
	// Scope is "attack" or "check".
	Scope     string
	Statistic statistic.Statistic
	Slug      string
	Value     int
}

// CheckResult is a resolved check context.
type CheckResult struct {
	Result
	// DC is nil when the target or its statistic is absent.
	DC *DC
}

// Cloner produces contextual actor clones. *actor.ContextCloner implements it.
type Cloner interface {
	ContextualClone(ctx context.Context, a *actor.Actor, options []string, effects []effect.Record) (*actor.Actor, error)
}

// Rules evaluates actor rules in a roll. *rules.Engine implements it.
type Rules interface {
	ExtractEphemeralEffects(ctx context.Context, p rules.Params) ([]effect.Record, error)
	StrikeAdjustments(ctx context.Context, a *actor.Actor) []rules.StrikeAdjustment
	RangePenalty(a *actor.Actor, increment *int, selectors []string, options *rolloption.Set) *modifier.Modifier
}

// Placement answers token questions. *board.Board implements it.
type Placement interface {
	FirstToken(actorID string) *board.Token
	Distance(a, b *board.Token) float64
	IsFlanking(flanker, flankee *board.Token, reach int) bool
}

// Conditions synthesises roll-scoped condition records. *effect.Registry
// implements it.
type Conditions interface {
	Condition(id, name string) (effect.Record, bool)
}

// Env is the read-only context a roll is resolved in. Nil collaborators
// degrade: without Rules no ephemeral effects, adjustments, or range
// penalties apply; without Placement no tokens are defaulted and no
// distance or flanking is measured.
type Env struct {
	Cloner     Cloner
	Rules      Rules
	Placement  Placement
	Conditions Conditions
	Logger     *zap.Logger
}

func (e Env) withDefaults() Env {
	if e.Logger == nil {
		e.Logger = zap.NewNop()
	}
	if e.Cloner == nil {
		e.Cloner = actor.NewContextCloner(e.Logger)
	}
	if e.Conditions == nil {
		e.Conditions = effect.DefaultRegistry()
	}
	return e
}
