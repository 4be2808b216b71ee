package rollcontext_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/rollcontext/internal/game/actor"
	"github.com/cory-johannsen/rollcontext/internal/game/board"
	"github.com/cory-johannsen/rollcontext/internal/game/effect"
	"github.com/cory-johannsen/rollcontext/internal/game/item"
	"github.com/cory-johannsen/rollcontext/internal/game/rollcontext"
	"github.com/cory-johannsen/rollcontext/internal/game/rules"
	"github.com/cory-johannsen/rollcontext/internal/game/statistic"
)

func valeros(rs ...effect.RuleElement) *actor.Actor {
	a := &actor.Actor{
		ID:         "valeros",
		Name:       "Valeros",
		Type:       actor.TypeCharacter,
		Level:      3,
		Size:       actor.SizeMedium,
		Alliance:   "party",
		Attributes: map[string]int{"armor-class": 20, "reflex": 7, "athletics": 9, "attack": 9},
		Items: []*item.Item{
			{ID: "ls", Slug: "longsword", Name: "Longsword", Type: item.TypeWeapon, Traits: []string{"versatile-p"}, Group: "sword"},
			{ID: "dag", Slug: "dagger", Name: "Dagger", Type: item.TypeWeapon, Traits: []string{"agile", "thrown-10"}, Group: "knife"},
			{ID: "sl", Slug: "sling", Name: "Sling", Type: item.TypeWeapon, Range: &item.Range{Increment: 2}, Group: "sling"},
		},
	}
	if len(rs) > 0 {
		a.Effects = []effect.Record{{Def: &effect.Def{ID: "valeros-feats", Name: "Feats", Type: effect.TypeEffect, Rules: rs}}}
	}
	a.Prepare()
	return a
}

func goblin(rs ...effect.RuleElement) *actor.Actor {
	a := &actor.Actor{
		ID:         "goblin",
		Name:       "Goblin Warrior",
		Type:       actor.TypeNPC,
		Level:      1,
		Size:       actor.SizeSmall,
		Alliance:   "opposition",
		Traits:     []string{"goblin", "humanoid"},
		Attributes: map[string]int{"armor-class": 16, "reflex": 8, "will": 2},
	}
	if len(rs) > 0 {
		a.Effects = []effect.Record{{Def: &effect.Def{ID: "goblin-abilities", Name: "Abilities", Type: effect.TypeEffect, Rules: rs}}}
	}
	a.Prepare()
	return a
}

func kyra() *actor.Actor {
	a := &actor.Actor{ID: "kyra", Name: "Kyra", Type: actor.TypeCharacter, Level: 3, Size: actor.SizeMedium, Alliance: "party"}
	a.Prepare()
	return a
}

func strike(t *testing.T, a *actor.Actor, slug string, thrown bool) *statistic.Strike {
	t.Helper()
	for _, s := range a.StrikeActions() {
		if s.Slug() == slug && s.Item().Thrown == thrown {
			return s
		}
	}
	t.Fatalf("no strike %q (thrown=%v) on %s", slug, thrown, a.ID)
	return nil
}

type fixture struct {
	env   rollcontext.Env
	board *board.Board
	logs  *observer.ObservedLogs
}

func registry() *effect.Registry {
	reg := effect.DefaultRegistry()
	reg.Register(&effect.Def{ID: "glare", Name: "Glare", Type: effect.TypeEffect, Rules: []effect.RuleElement{
		{Key: effect.KeyFlatModifier, Slug: "glare", Selectors: []string{"armor-class"}, Type: "status", Value: -1},
	}})
	return reg
}

func newFixture(squareSize float64, actors ...*actor.Actor) *fixture {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	reg := registry()
	b := board.New(squareSize, false, actor.NewRoster(actors...))
	return &fixture{
		env: rollcontext.Env{
			Cloner:     actor.NewContextCloner(logger),
			Rules:      rules.NewEngine(reg, nil, logger),
			Placement:  b,
			Conditions: reg,
			Logger:     logger,
		},
		board: b,
		logs:  logs,
	}
}

func (f *fixture) place(t *testing.T, tokens ...*board.Token) {
	t.Helper()
	for _, tok := range tokens {
		require.NoError(t, f.board.Place(tok))
	}
}

// flankingLine places valeros west of the goblin and kyra east of it.
func (f *fixture) flankingLine(t *testing.T) {
	f.place(t,
		&board.Token{ID: "val-tok", ActorID: "valeros", X: 0, Y: 1},
		&board.Token{ID: "gob-tok", ActorID: "goblin", X: 1, Y: 1},
		&board.Token{ID: "kyra-tok", ActorID: "kyra", X: 2, Y: 1},
	)
}
