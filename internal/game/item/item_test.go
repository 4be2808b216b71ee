package item_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/rollcontext/internal/game/item"
)

func longbow() *item.Item {
	return &item.Item{ID: "bow1", Slug: "longbow", Name: "Longbow", Type: item.TypeWeapon,
		Traits: []string{"deadly-d10", "volley-30"}, Range: &item.Range{Increment: 100}, Group: "bow"}
}

func dagger() *item.Item {
	return &item.Item{ID: "dag1", Slug: "dagger", Name: "Dagger", Type: item.TypeWeapon,
		Traits: []string{"agile", "finesse", "thrown-10"}, Group: "knife"}
}

func TestIsMelee(t *testing.T) {
	assert.True(t, dagger().IsMelee())
	assert.False(t, longbow().IsMelee())

	thrown := dagger()
	thrown.Thrown = true
	assert.False(t, thrown.IsMelee())
	assert.True(t, thrown.IsRanged())

	spell := &item.Item{ID: "s", Type: item.TypeSpell, Traits: []string{"attack"}}
	assert.True(t, spell.IsMelee())
	spell.Range = &item.Range{Increment: 30}
	assert.False(t, spell.IsMelee())

	var none *item.Item
	assert.False(t, none.IsMelee())
	assert.False(t, (&item.Item{Type: item.TypeEquipment}).IsMelee())
}

func TestIsThrowable(t *testing.T) {
	assert.True(t, dagger().IsThrowable())
	assert.False(t, longbow().IsThrowable())
}

func TestRangeIncrement_Table(t *testing.T) {
	w := &item.Item{ID: "sling", Type: item.TypeWeapon, Range: &item.Range{Increment: 2}}
	cases := map[float64]int{0: 1, 1: 1, 2: 1, 3: 2, 4: 2, 5: 3, 13: 7}
	for d, want := range cases {
		got := w.RangeIncrement(d)
		require.NotNil(t, got, "distance %v", d)
		assert.Equal(t, want, *got, "distance %v", d)
	}
}

func TestRangeIncrement_NilCases(t *testing.T) {
	assert.Nil(t, dagger().RangeIncrement(5), "melee weapon has no range table")
	assert.Nil(t, longbow().RangeIncrement(7.5), "non-integer distance")
	spell := &item.Item{Type: item.TypeSpell, Range: &item.Range{Increment: 30}}
	assert.Nil(t, spell.RangeIncrement(30), "spells have no range increments")

	thrown := dagger()
	thrown.Thrown = true
	got := thrown.RangeIncrement(25)
	require.NotNil(t, got)
	assert.Equal(t, 3, *got)
}

func TestRangeIncrement_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		inc := rapid.IntRange(1, 200).Draw(rt, "increment")
		d := rapid.IntRange(0, 2000).Draw(rt, "distance")
		w := &item.Item{Type: item.TypeWeapon, Range: &item.Range{Increment: inc}}
		a, b := w.RangeIncrement(float64(d)), w.RangeIncrement(float64(d))
		require.NotNil(rt, a)
		assert.Equal(rt, *a, *b, "deterministic")
		assert.GreaterOrEqual(rt, *a, 1)
		assert.GreaterOrEqual(rt, *a*inc, d)
		if *a > 1 {
			assert.Less(rt, (*a-1)*inc, d)
		}
	})
}

func TestReach(t *testing.T) {
	glaive := &item.Item{Type: item.TypeWeapon, Traits: []string{"reach", "forceful"}}
	n, ok := glaive.Reach(5)
	require.True(t, ok)
	assert.Equal(t, 10, n)

	whip := &item.Item{Type: item.TypeWeapon, Traits: []string{"reach-15"}}
	n, ok = whip.Reach(5)
	require.True(t, ok)
	assert.Equal(t, 15, n)

	_, ok = dagger().Reach(5)
	assert.False(t, ok)
}

func TestRollOptions(t *testing.T) {
	opts := dagger().RollOptions("item")
	assert.Contains(t, opts, "item:id:dag1")
	assert.Contains(t, opts, "item:type:weapon")
	assert.Contains(t, opts, "item:dagger")
	assert.Contains(t, opts, "item:trait:agile")
	assert.Contains(t, opts, "item:group:knife")
	assert.Contains(t, opts, "item:melee")
	assert.NotContains(t, opts, "item:ranged")

	bow := longbow().RollOptions("item")
	assert.Contains(t, bow, "item:ranged")
}

func TestClone_Independent(t *testing.T) {
	orig := longbow()
	c := orig.Clone()
	c.Traits[0] = "changed"
	c.Range.Increment = 5
	assert.Equal(t, "deadly-d10", orig.Traits[0])
	assert.Equal(t, 100, orig.Range.Increment)
	assert.Nil(t, (*item.Item)(nil).Clone())
}
