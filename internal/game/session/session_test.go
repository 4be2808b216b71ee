package session_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/rollcontext/internal/game/dice"
	"github.com/cory-johannsen/rollcontext/internal/game/effect"
	"github.com/cory-johannsen/rollcontext/internal/game/history"
	"github.com/cory-johannsen/rollcontext/internal/game/rollcontext"
	"github.com/cory-johannsen/rollcontext/internal/game/rules"
	"github.com/cory-johannsen/rollcontext/internal/game/scenario"
	"github.com/cory-johannsen/rollcontext/internal/game/session"
)

var contentDir = filepath.Join("..", "..", "..", "content")

type harness struct {
	sess  *session.Session
	store *history.MemoryStore
	logs  *observer.ObservedLogs
}

func newHarness(t *testing.T, sc *scenario.Scenario, faces ...int) harness {
	t.Helper()
	reg, err := effect.LoadDirectory(filepath.Join(contentDir, "effects"))
	require.NoError(t, err)
	if sc == nil {
		sc, err = scenario.LoadFromFile(filepath.Join(contentDir, "scenarios", "goblin-ambush.yaml"))
		require.NoError(t, err)
	}
	scene, err := sc.Build(reg, scenario.BoardSettings{SquareSize: 5})
	require.NoError(t, err)

	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)
	store, err := history.NewMemoryStore(10)
	require.NoError(t, err)
	if len(faces) == 0 {
		faces = []int{4}
	}
	sess, err := session.New(session.Config{
		Scene:      scene,
		Rules:      rules.NewEngine(reg, nil, logger),
		Conditions: reg,
		History:    store,
		Roller:     dice.NewLoggedRoller(&dice.Fixed{Faces: faces}, logger),
		Logger:     logger,
	})
	require.NoError(t, err)
	return harness{sess: sess, store: store, logs: logs}
}

func longswordStrike(die int) session.Request {
	return session.Request{
		Kind:    session.KindCheck,
		Origin:  "valeros",
		Target:  "goblin",
		Strike:  "ls",
		Against: "armor-class",
		Die:     die,
	}
}

func TestExecute_FlankingStrikeIsRecorded(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	rep, err := h.sess.Execute(ctx, longswordStrike(15))
	require.NoError(t, err)

	assert.Equal(t, rollcontext.RoleOrigin, rep.Roller)
	assert.Contains(t, rep.Options, "self:flanking")
	assert.Equal(t, "1d20+9", rep.Roll.Formula)
	assert.Equal(t, 24, rep.Roll.Total)
	require.NotNil(t, rep.DC)
	// 16, frightened and glare are both status penalties (-1), flanked is -2 circumstance.
	assert.Equal(t, 13, rep.DC.Value)
	assert.Equal(t, "attack", rep.DC.Scope)
	assert.Equal(t, "critical-success", rep.Outcome)
	assert.Contains(t, rep.Target.Effects, "Flanked")
	assert.Equal(t, "gob-tok", rep.Target.Token)

	recent, err := h.store.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	e := recent[0]
	assert.Equal(t, rep.EntryID, e.ID)
	assert.Equal(t, "valeros", e.ActorID)
	assert.Equal(t, "gob-tok", e.TargetTokenID)
	assert.Equal(t, "1d20+9", e.Rolls[0].Formula)
	require.NotNil(t, e.Context)
	assert.Equal(t, "attack-roll", e.Context.Type)
	assert.Equal(t, "critical-success", e.Context.Outcome)
	assert.NotEmpty(t, h.logs.FilterMessage("check recorded").All())
}

func TestExecute_DamageFollowsRecordedCheck(t *testing.T) {
	h := newHarness(t, nil, 4)
	ctx := context.Background()

	_, err := h.sess.Execute(ctx, longswordStrike(15))
	require.NoError(t, err)

	rep, err := h.sess.Execute(ctx, session.Request{
		Kind:   session.KindDamage,
		Origin: "valeros",
		Target: "goblin",
		Strike: "ls",
	})
	require.NoError(t, err)

	require.NotNil(t, rep.Check, "the damage roll adopts the preceding check")
	assert.Equal(t, "critical-success", rep.Outcome)
	assert.Contains(t, rep.Options, "check:outcome:critical-success")
	assert.Equal(t, []string{"ls-damage", "longsword-damage", "strike-damage", "damage", "all"}, rep.Domains)
	assert.Equal(t, "1d8", rep.Roll.Formula)
	assert.Equal(t, []int{4}, rep.Roll.Dice)
	assert.Equal(t, 8, rep.Roll.Total, "critical hits double damage")

	recent, err := h.store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, history.RollDamage, recent[0].Rolls[0].Kind)
	assert.False(t, recent[0].HasCheckRoll())
	assert.True(t, recent[1].HasCheckRoll())
}

func TestExecute_DamageOutcomeOverride(t *testing.T) {
	h := newHarness(t, nil, 6)
	rep, err := h.sess.Execute(context.Background(), session.Request{
		Kind:    session.KindDamage,
		Origin:  "valeros",
		Target:  "goblin",
		Strike:  "ls",
		Outcome: "success",
	})
	require.NoError(t, err)
	assert.Nil(t, rep.Check, "nothing in the history to match")
	assert.Equal(t, "success", rep.Outcome)
	assert.Contains(t, rep.Options, "check:outcome:success")
	assert.Equal(t, 6, rep.Roll.Total)

	_, err = h.sess.Execute(context.Background(), session.Request{
		Kind: session.KindDamage, Origin: "valeros", Strike: "ls", Outcome: "triumph",
	})
	assert.Error(t, err)
}

func TestExecute_RangedStrikeWithAdjustedPenalty(t *testing.T) {
	h := newHarness(t, nil)
	rep, err := h.sess.Execute(context.Background(), session.Request{
		Kind:    session.KindCheck,
		Origin:  "valeros",
		Target:  "archer",
		Strike:  "sl",
		Against: "armor-class",
		Die:     10,
	})
	require.NoError(t, err)

	require.NotNil(t, rep.Target.RangeIncrement)
	assert.Equal(t, 3, *rep.Target.RangeIncrement)
	require.NotNil(t, rep.Target.Distance)
	assert.Equal(t, 120.0, *rep.Target.Distance)
	assert.Contains(t, rep.Options, "target:distance:120")
	assert.NotContains(t, rep.Options, "self:flanking")

	var penalty *session.ModifierReport
	for i := range rep.Modifiers {
		if rep.Modifiers[i].Slug == rules.RangePenaltySlug {
			penalty = &rep.Modifiers[i]
		}
	}
	require.NotNil(t, penalty)
	assert.Equal(t, -2, penalty.Value, "sling mastery reduces the third-increment penalty")
	assert.Equal(t, "1d20+7", rep.Roll.Formula)
	assert.Equal(t, 16, rep.DC.Value)
	assert.Equal(t, "success", rep.Outcome)
}

func TestExecute_TargetRolledSave(t *testing.T) {
	h := newHarness(t, nil)
	rep, err := h.sess.Execute(context.Background(), session.Request{
		Kind:      session.KindCheck,
		Origin:    "valeros",
		Target:    "goblin",
		Roller:    rollcontext.RoleTarget,
		Statistic: "reflex",
		Traits:    []string{"fire"},
		Die:       12,
	})
	require.NoError(t, err)

	assert.Equal(t, rollcontext.RoleTarget, rep.Roller)
	assert.Equal(t, []string{"reflex", "saving-throw", "check", "all"}, rep.Domains)
	assert.Equal(t, "1d20+7", rep.Roll.Formula, "frightened lowers the goblin's save")
	assert.Nil(t, rep.DC)
	assert.Empty(t, rep.EntryID, "saves rolled by the target are not recorded")

	recent, err := h.store.Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestExecute_ViewOnly(t *testing.T) {
	h := newHarness(t, nil, 11)
	req := longswordStrike(0)
	req.ViewOnly = true

	rep, err := h.sess.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, rep.Target)
	assert.Nil(t, rep.DC)
	assert.Equal(t, 20, rep.Roll.Total, "die rolled by the session's roller")
	assert.Empty(t, rep.EntryID)

	recent, err := h.store.Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestExecute_Errors(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	_, err := h.sess.Execute(ctx, session.Request{Kind: session.KindCheck, Origin: "nobody", Statistic: "will"})
	assert.ErrorIs(t, err, session.ErrUnknownActor)

	_, err = h.sess.Execute(ctx, session.Request{Kind: session.KindCheck, Origin: "valeros", Strike: "greataxe"})
	assert.ErrorIs(t, err, session.ErrUnknownStatistic)

	_, err = h.sess.Execute(ctx, session.Request{Kind: session.KindCheck, Origin: "valeros", Statistic: "arcana"})
	assert.ErrorIs(t, err, session.ErrUnknownStatistic)

	_, err = h.sess.Execute(ctx, session.Request{Kind: session.KindCheck, Target: "goblin", Statistic: "will"})
	assert.ErrorIs(t, err, session.ErrUnknownActor, "origin rolls by default")

	_, err = h.sess.Execute(ctx, session.Request{Kind: session.KindCheck, Origin: "valeros", Statistic: "will", Item: "shield"})
	assert.ErrorContains(t, err, `no item "shield"`)

	_, err = h.sess.Execute(ctx, session.Request{Kind: "attack"})
	assert.ErrorContains(t, err, "invalid roll request")
}

func TestExecute_NoDamageDice(t *testing.T) {
	sc, err := scenario.LoadFromBytes([]byte(`
actors:
  - id: monk
    type: character
    alliance: party
    attributes: {attack: 7}
    items:
      - {id: fist, slug: fist, name: Fist, type: weapon}
`))
	require.NoError(t, err)
	h := newHarness(t, sc)
	_, err = h.sess.Execute(context.Background(), session.Request{Kind: session.KindDamage, Origin: "monk", Strike: "fist"})
	assert.ErrorIs(t, err, session.ErrNoDamageDice)
}

func TestNew_Validation(t *testing.T) {
	logger := zap.NewNop()
	scene := &scenario.Scene{}
	store, err := history.NewMemoryStore(1)
	require.NoError(t, err)
	roller := dice.NewLoggedRoller(dice.NewCryptoSource(), logger)

	for name, cfg := range map[string]session.Config{
		"no scene":   {History: store, Roller: roller, Logger: logger},
		"no history": {Scene: scene, Roller: roller, Logger: logger},
		"no roller":  {Scene: scene, History: store, Logger: logger},
		"no logger":  {Scene: scene, History: store, Roller: roller},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := session.New(cfg)
			assert.Error(t, err)
		})
	}
}

func TestRequestValidate(t *testing.T) {
	for name, tc := range map[string]struct {
		req session.Request
		ok  bool
	}{
		"strike":               {session.Request{Kind: session.KindCheck, Origin: "a", Strike: "ls"}, true},
		"save by target":       {session.Request{Kind: session.KindCheck, Target: "b", Roller: rollcontext.RoleTarget, Statistic: "will"}, true},
		"damage":               {session.Request{Kind: session.KindDamage, Origin: "a", Strike: "ls"}, true},
		"unknown kind":         {session.Request{Kind: "heal", Origin: "a", Strike: "ls"}, false},
		"no sides":             {session.Request{Kind: session.KindCheck, Strike: "ls"}, false},
		"both stat and strike": {session.Request{Kind: session.KindCheck, Origin: "a", Strike: "ls", Statistic: "will"}, false},
		"neither":              {session.Request{Kind: session.KindCheck, Origin: "a"}, false},
		"bad roller":           {session.Request{Kind: session.KindCheck, Origin: "a", Strike: "ls", Roller: "gm"}, false},
		"damage from stat":     {session.Request{Kind: session.KindDamage, Origin: "a", Statistic: "will"}, false},
		"damage by target":     {session.Request{Kind: session.KindDamage, Target: "b", Roller: rollcontext.RoleTarget, Strike: "ls"}, false},
		"die too high":         {session.Request{Kind: session.KindCheck, Origin: "a", Strike: "ls", Die: 21}, false},
	} {
		t.Run(name, func(t *testing.T) {
			err := tc.req.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestLoadRequests(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "rolls.yaml")
	require.NoError(t, os.WriteFile(good, []byte(`
- kind: check
  origin: valeros
  target: goblin
  strike: ls
  against: armor-class
  die: 15
- kind: damage
  origin: valeros
  target: goblin
  strike: ls
`), 0o600))

	reqs, err := session.LoadRequests(good)
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, 15, reqs[0].Die)
	assert.Equal(t, session.KindDamage, reqs[1].Kind)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("- kind: check\n"), 0o600))
	_, err = session.LoadRequests(bad)
	assert.ErrorContains(t, err, "request 0")

	_, err = session.LoadRequests(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
