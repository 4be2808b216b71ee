// Package session executes roll requests against a loaded scene: it
// resolves the roll context, rolls the dice, grades the result against the
// DC, and records checks in the roll history so later damage rolls can find
// them.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/rollcontext/internal/game/actor"
	"github.com/cory-johannsen/rollcontext/internal/game/dice"
	"github.com/cory-johannsen/rollcontext/internal/game/history"
	"github.com/cory-johannsen/rollcontext/internal/game/modifier"
	"github.com/cory-johannsen/rollcontext/internal/game/outcome"
	"github.com/cory-johannsen/rollcontext/internal/game/rollcontext"
	"github.com/cory-johannsen/rollcontext/internal/game/rolloption"
	"github.com/cory-johannsen/rollcontext/internal/game/scenario"
	"github.com/cory-johannsen/rollcontext/internal/game/statistic"
)

var (
	// ErrUnknownActor is returned when a request names an actor not in the scene.
	ErrUnknownActor = errors.New("unknown actor")
	// ErrUnknownStatistic is returned when the rolling actor lacks the requested statistic or strike.
	ErrUnknownStatistic = errors.New("unknown statistic")
	// ErrNoDamageDice is returned for damage rolls with an item that deals no damage.
	ErrNoDamageDice = errors.New("item has no damage dice")
)

// Config holds the collaborators of a Session.
type Config struct {
	Scene *scenario.Scene
	// Rules and Conditions are passed to every roll context.
	Rules      rollcontext.Rules
	Conditions rollcontext.Conditions
	History    history.Store
	// HistoryDepth defaults to rollcontext.DefaultHistoryDepth.
	HistoryDepth int
	Roller       *dice.Roller
	Logger       *zap.Logger
}

// Validate ensures all required collaborators are provided.
func (c *Config) Validate() error {
	switch {
	case c.Scene == nil:
		return errors.New("scene is required")
	case c.History == nil:
		return errors.New("history store is required")
	case c.Roller == nil:
		return errors.New("dice roller is required")
	case c.Logger == nil:
		return errors.New("logger is required")
	}
	return nil
}

// Session runs requests against one scene and history.
//
// All methods are safe for concurrent use; requests execute one at a time.
type Session struct {
	mu      sync.Mutex
	env     rollcontext.Env
	roster  actor.Roster
	history history.Store
	depth   int
	roller  *dice.Roller
	logger  *zap.Logger
}

// New creates a Session.
//
// Postcondition: Returns a non-nil error when cfg is invalid.
func New(cfg Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session config: %w", err)
	}
	depth := cfg.HistoryDepth
	if depth <= 0 {
		depth = rollcontext.DefaultHistoryDepth
	}
	return &Session{
		env: rollcontext.Env{
			Cloner:     actor.NewContextCloner(cfg.Logger),
			Rules:      cfg.Rules,
			Placement:  cfg.Scene.Board,
			Conditions: cfg.Conditions,
			Logger:     cfg.Logger,
		},
		roster:  cfg.Scene.Roster,
		history: cfg.History,
		depth:   depth,
		roller:  cfg.Roller,
		logger:  cfg.Logger,
	}, nil
}

// Execute resolves and rolls req.
//
// Postcondition: a non-view-only check rolled by the origin is appended to
// the history, as is every damage roll; Report.EntryID names the entry.
func (s *Session) Execute(ctx context.Context, req Request) (*Report, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	params, err := s.params(&req)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("executing roll request",
		zap.String("kind", string(req.Kind)),
		zap.String("origin", req.Origin),
		zap.String("target", req.Target),
		zap.String("roller", string(req.roller())),
	)
	if req.Kind == KindDamage {
		return s.damage(ctx, &req, params)
	}
	return s.check(ctx, &req, params)
}

func (s *Session) params(req *Request) (rollcontext.Params, error) {
	p := rollcontext.Params{
		Domains:  req.Domains,
		Options:  req.Options,
		ViewOnly: req.ViewOnly,
		Traits:   req.Traits,
	}
	for _, side := range []struct {
		id   string
		role rollcontext.Role
		dst  **rollcontext.Opposer
	}{
		{req.Origin, rollcontext.RoleOrigin, &p.Origin},
		{req.Target, rollcontext.RoleTarget, &p.Target},
	} {
		if side.id == "" {
			continue
		}
		a := s.roster.Get(side.id)
		if a == nil {
			return p, fmt.Errorf("%w %q", ErrUnknownActor, side.id)
		}
		o := &rollcontext.Opposer{Actor: a}
		if side.role == req.roller() {
			stat, err := rollingStatistic(a, req)
			if err != nil {
				return p, err
			}
			o.Statistic = stat
		}
		if side.role == rollcontext.RoleOrigin && req.Item != "" {
			if o.Item = a.Item(req.Item); o.Item == nil {
				return p, fmt.Errorf("actor %q has no item %q", a.ID, req.Item)
			}
		}
		*side.dst = o
	}
	if (req.roller() == rollcontext.RoleOrigin && p.Origin == nil) || (req.roller() == rollcontext.RoleTarget && p.Target == nil) {
		return p, fmt.Errorf("%w: the rolling %s is not named", ErrUnknownActor, req.roller())
	}
	if len(p.Domains) == 0 {
		p.Domains = defaultDomains(req, p)
	}
	return p, nil
}

func rollingStatistic(a *actor.Actor, req *Request) (statistic.Statistic, error) {
	if req.Strike != "" {
		for _, st := range a.StrikeActions() {
			if st.Item().ID == req.Strike && st.Item().Thrown == req.Thrown {
				return st, nil
			}
		}
		return nil, fmt.Errorf("%w: actor %q has no strike with %q", ErrUnknownStatistic, a.ID, req.Strike)
	}
	if c := a.Statistic(req.Statistic); c != nil {
		return c, nil
	}
	return nil, fmt.Errorf("%w: actor %q has no statistic %q", ErrUnknownStatistic, a.ID, req.Statistic)
}

func defaultDomains(req *Request, p rollcontext.Params) []string {
	rolling := p.Origin
	if req.roller() == rollcontext.RoleTarget {
		rolling = p.Target
	}
	if rolling == nil || rolling.Statistic == nil {
		return nil
	}
	if st, ok := rolling.Statistic.(*statistic.Strike); ok && req.Kind == KindDamage {
		return statistic.DamageDomains(st.Item())
	}
	return rolling.Statistic.Domains()
}

func (s *Session) check(ctx context.Context, req *Request, params rollcontext.Params) (*Report, error) {
	chk, err := rollcontext.NewCheck(s.env, rollcontext.CheckParams{Params: params, Against: req.Against})
	if err != nil {
		return nil, err
	}
	res, err := chk.Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving check: %w", err)
	}
	rep := newReport(req, chk.RollerRole(), &res.Result)

	var (
		stat  statistic.Statistic
		extra []*modifier.Modifier
	)
	if chk.RollerRole() == rollcontext.RoleOrigin {
		stat, extra = res.Origin.Statistic, res.Origin.Modifiers
	} else {
		stat = res.Target.Statistic
	}
	if stat == nil {
		return nil, fmt.Errorf("%w: the rolling side has no statistic", ErrUnknownStatistic)
	}
	rep.Modifiers = modifierReports(append(statisticModifiers(stat), extra...))

	expr := dice.Check(stat.Total() + modifier.Total(extra))
	roll := s.rollCheck(expr, req.Die)
	rep.Roll = &RollReport{Formula: expr.Raw, Dice: roll.Dice, Total: roll.Total()}

	var degree *outcome.Degree
	if res.DC != nil {
		rep.DC = &DCReport{Scope: res.DC.Scope, Slug: res.DC.Slug, Value: res.DC.Value}
		d := outcome.For(roll.Total(), res.DC.Value, roll.Natural())
		degree = &d
		rep.Outcome = rolloption.Slug(d.String())
	}

	if chk.RollerRole() != rollcontext.RoleOrigin || req.ViewOnly {
		return rep, nil
	}
	e := rollcontext.CheckEntry(res, checkType(chk.IsAttack(), res.Domains), roll.Total(), degree)
	e.ID = history.NewEntryID()
	e.Rolls[0].Formula = expr.Raw
	if err := s.history.Append(ctx, e); err != nil {
		return nil, fmt.Errorf("recording check: %w", err)
	}
	rep.EntryID = e.ID
	s.logger.Info("check recorded",
		zap.String("entry", e.ID),
		zap.String("actor", e.ActorID),
		zap.Int("total", roll.Total()),
		zap.String("outcome", rep.Outcome),
	)
	return rep, nil
}

func (s *Session) rollCheck(expr dice.Expression, die int) dice.RollResult {
	if die > 0 {
		return dice.RollResult{Expression: expr.Raw, Dice: []int{die}, Modifier: expr.Modifier}
	}
	return s.roller.Roll(expr)
}

func (s *Session) damage(ctx context.Context, req *Request, params rollcontext.Params) (*Report, error) {
	var degree *outcome.Degree
	if req.Outcome != "" {
		d, err := outcome.Parse(req.Outcome)
		if err != nil {
			return nil, err
		}
		degree = &d
	}
	dp := rollcontext.DamageParams{Params: params, Outcome: degree, History: s.history, HistoryDepth: s.depth}
	dmg, err := rollcontext.NewDamage(ctx, s.env, dp)
	if err != nil {
		return nil, err
	}
	// Adopt the matched check's outcome so it lands in the option set.
	if degree == nil && dmg.CheckContext != nil && dmg.CheckContext.Outcome != "" {
		if d, err := outcome.Parse(dmg.CheckContext.Outcome); err == nil {
			degree = &d
			dp.Outcome, dp.CheckContext = degree, dmg.CheckContext
			if dmg, err = rollcontext.NewDamage(ctx, s.env, dp); err != nil {
				return nil, err
			}
		}
	}
	res, err := dmg.Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving damage: %w", err)
	}
	rep := newReport(req, dmg.RollerRole(), res)
	rep.Check = dmg.CheckContext
	if degree != nil {
		rep.Outcome = rolloption.Slug(degree.String())
	}

	it := res.Origin.Item
	if it == nil || it.DamageDice == "" {
		return nil, fmt.Errorf("%w: %q", ErrNoDamageDice, req.Strike)
	}
	expr, err := dice.Parse(it.DamageDice)
	if err != nil {
		return nil, fmt.Errorf("item %q: %w", it.ID, err)
	}
	expr = expr.WithModifier(it.Bonus)
	roll := s.roller.Roll(expr)
	total := max(roll.Total(), 1)
	if degree != nil && *degree == outcome.CriticalSuccess {
		total *= 2
	}
	rep.Roll = &RollReport{Formula: expr.Raw, Dice: roll.Dice, Total: total}

	e := history.Entry{
		ID:    history.NewEntryID(),
		Rolls: []history.Roll{{Kind: history.RollDamage, Formula: expr.Raw, Total: total}},
		Item:  &history.ItemRef{ID: it.ID, Slug: it.Slug, Type: string(it.Type), Melee: it.IsMelee()},
	}
	if res.Origin.Actor != nil {
		e.ActorID = res.Origin.Actor.ID
	}
	if res.Origin.Token != nil {
		e.TokenID = res.Origin.Token.ID
	}
	if res.Target != nil && res.Target.Token != nil {
		e.TargetTokenID = res.Target.Token.ID
	}
	if err := s.history.Append(ctx, e); err != nil {
		return nil, fmt.Errorf("recording damage: %w", err)
	}
	rep.EntryID = e.ID
	return rep, nil
}

func newReport(req *Request, roller rollcontext.Role, res *rollcontext.Result) *Report {
	return &Report{
		Kind:    req.Kind,
		Roller:  roller,
		Domains: res.Domains,
		Options: res.Options,
		Traits:  res.Traits,
		Origin:  originReport(res.Origin),
		Target:  targetReport(res.Target),
	}
}

func statisticModifiers(stat statistic.Statistic) []*modifier.Modifier {
	if m, ok := stat.(interface{ Modifiers() []*modifier.Modifier }); ok {
		return m.Modifiers()
	}
	return nil
}

// checkType names the kind of check recorded in the history.
func checkType(attack bool, domains []string) string {
	if attack {
		return "attack-roll"
	}
	for _, d := range []string{"saving-throw", "skill-check", "perception"} {
		for _, have := range domains {
			if have == d {
				if d == "perception" {
					return "perception-check"
				}
				return d
			}
		}
	}
	return "check"
}
