package rolloption_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/rollcontext/internal/game/rolloption"
)

func TestSet_AddDeduplicates(t *testing.T) {
	s := rolloption.New("self:flanking", "attack")
	assert.False(t, s.Add("attack"))
	assert.True(t, s.Add("target:distance:5"))
	assert.False(t, s.Add(""))
	assert.Equal(t, []string{"self:flanking", "attack", "target:distance:5"}, s.Values())
}

func TestSet_SortedIsAscending(t *testing.T) {
	s := rolloption.New("z", "a", "m", "a")
	assert.Equal(t, []string{"a", "m", "z"}, s.Sorted())
}

func TestSet_NilIsEmpty(t *testing.T) {
	var s *rolloption.Set
	assert.False(t, s.Has("x"))
	assert.Equal(t, 0, s.Len())
	assert.Nil(t, s.Values())
	assert.Equal(t, 0, s.Clone().Len())
}

func TestSet_CloneIsIndependent(t *testing.T) {
	s := rolloption.New("a")
	c := s.Clone()
	c.Add("b")
	assert.False(t, s.Has("b"))
	assert.True(t, c.Has("a"))
}

func TestSet_WithPrefix(t *testing.T) {
	s := rolloption.New("ignore-range-penalty:2", "attack", "ignore-range-penalty:4")
	assert.Equal(t, []string{"ignore-range-penalty:2", "ignore-range-penalty:4"}, s.WithPrefix("ignore-range-penalty:"))
}

func TestPrefixed(t *testing.T) {
	assert.Equal(t, []string{"self:action:trait:agile", "self:action:trait:finesse"},
		rolloption.Prefixed("self:action:trait", "agile", "", "finesse"))
}

func TestDedupe_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		in := rapid.SliceOf(rapid.StringMatching(`[a-z:\-0-9]{0,12}`)).Draw(rt, "options")
		out := rolloption.Dedupe(in)
		require.True(rt, sort.StringsAreSorted(out), "Dedupe must return sorted output")
		seen := make(map[string]bool, len(out))
		for _, o := range out {
			assert.False(rt, seen[o], "duplicate %q", o)
			assert.NotEmpty(rt, o)
			seen[o] = true
		}
		for _, o := range in {
			if o != "" {
				assert.True(rt, seen[o], "missing %q", o)
			}
		}
	})
}

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"critical success": "critical-success",
		"criticalSuccess":  "critical-success",
		"Épée de Duel":     "epee-de-duel",
		"  Off--Guard  ":   "off-guard",
		"Reach 10":         "reach-10",
		"":                 "",
	}
	for in, want := range cases {
		assert.Equal(t, want, rolloption.Slug(in), "Slug(%q)", in)
	}
}
