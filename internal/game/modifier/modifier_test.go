package modifier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/rollcontext/internal/game/modifier"
	"github.com/cory-johannsen/rollcontext/internal/game/predicate"
	"github.com/cory-johannsen/rollcontext/internal/game/rolloption"
)

func TestTotal_TypedDoNotStack(t *testing.T) {
	mods := []*modifier.Modifier{
		modifier.New("bless", "Bless", modifier.TypeStatus, 1),
		modifier.New("heroism", "Heroism", modifier.TypeStatus, 2),
		modifier.New("off-guard", "Off-Guard", modifier.TypeCircumstance, -2),
		modifier.New("cover", "Cover", modifier.TypeCircumstance, 2),
		modifier.New("range-penalty", "Range Penalty", modifier.TypeUntyped, -2),
		modifier.New("mystery", "Mystery", modifier.TypeUntyped, -1),
	}
	// status: +2, circumstance: +2 -2, untyped: -3
	assert.Equal(t, -1, modifier.Total(mods))
}

func TestTotal_DisabledIgnored(t *testing.T) {
	m := modifier.New("flanked", "Flanked", modifier.TypeCircumstance, -2)
	m.Predicate = predicate.Of("self:flanked")
	m.Test(rolloption.New())
	assert.False(t, m.Enabled)
	assert.Equal(t, 0, modifier.Total([]*modifier.Modifier{m, nil}))
}

func TestTotal_UntypedSumProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		values := rapid.SliceOf(rapid.IntRange(-20, 20)).Draw(rt, "values")
		mods := make([]*modifier.Modifier, 0, len(values))
		want := 0
		for _, v := range values {
			mods = append(mods, modifier.New("m", "M", modifier.TypeUntyped, v))
			want += v
		}
		assert.Equal(rt, want, modifier.Total(mods))
	})
}

func TestAdjust_MatchingAndModes(t *testing.T) {
	adjs := []modifier.Adjustment{
		{Slug: "range-penalty", Selectors: []string{"attack"}, Mode: modifier.ModeAdd, Value: 2},
		{Slug: "other", Selectors: []string{"attack"}, Mode: modifier.ModeOverride, Value: 0},
		{Slug: "range-penalty", Selectors: []string{"damage"}, Mode: modifier.ModeAdd, Value: 10},
	}
	matched := modifier.Matching(adjs, []string{"attack-roll", "attack"}, "range-penalty")
	assert.Len(t, matched, 1)

	m := modifier.New("range-penalty", "Range Penalty", modifier.TypeUntyped, -4)
	m.Adjust(matched, rolloption.New())
	assert.Equal(t, -2, m.Value)
}

func TestAdjust_PenaltyNeverBecomesBonus(t *testing.T) {
	m := modifier.New("range-penalty", "Range Penalty", modifier.TypeUntyped, -2)
	m.Adjust([]modifier.Adjustment{{Selectors: []string{"all"}, Mode: modifier.ModeAdd, Value: 6}}, rolloption.New())
	assert.Equal(t, 0, m.Value)
}

func TestAdjust_PredicateGates(t *testing.T) {
	m := modifier.New("range-penalty", "Range Penalty", modifier.TypeUntyped, -6)
	adj := modifier.Adjustment{
		Selectors: []string{"all"},
		Predicate: predicate.Of("self:feat:far-shot"),
		Mode:      modifier.ModeSubtract,
		Value:     -2,
	}
	m.Adjust([]modifier.Adjustment{adj}, rolloption.New())
	assert.Equal(t, -6, m.Value)
	m.Adjust([]modifier.Adjustment{adj}, rolloption.New("self:feat:far-shot"))
	assert.Equal(t, -4, m.Value)
}
