package predicate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/rollcontext/internal/game/predicate"
	"github.com/cory-johannsen/rollcontext/internal/game/rolloption"
)

func TestPredicate_EmptyAlwaysHolds(t *testing.T) {
	assert.True(t, predicate.Predicate(nil).Test(rolloption.New()))
}

func TestPredicate_Atoms(t *testing.T) {
	p := predicate.Of("attack", "self:flanking")
	assert.True(t, p.Test(rolloption.New("attack", "self:flanking", "x")))
	assert.False(t, p.Test(rolloption.New("attack")))
}

func TestPredicate_RangePenaltyNor(t *testing.T) {
	p := predicate.Predicate{predicate.Nor(
		predicate.Atom("ignore-range-penalty"),
		predicate.Gte("ignore-range-penalty", 3),
	)}
	assert.True(t, p.Test(rolloption.New("attack")))
	assert.False(t, p.Test(rolloption.New("ignore-range-penalty")))
	assert.False(t, p.Test(rolloption.New("ignore-range-penalty:4")))
	assert.True(t, p.Test(rolloption.New("ignore-range-penalty:2")))
}

func TestPredicate_UnmarshalYAML(t *testing.T) {
	src := `
- attack
- not: target:condition:prone
- or:
    - item:melee
    - item:trait:thrown
- lte: [target:distance, 30]
`
	var p predicate.Predicate
	require.NoError(t, yaml.Unmarshal([]byte(src), &p))
	require.Len(t, p, 4)

	assert.True(t, p.Test(rolloption.New("attack", "item:melee", "target:distance:5")))
	assert.False(t, p.Test(rolloption.New("attack", "item:melee", "target:distance:35")))
	assert.False(t, p.Test(rolloption.New("attack", "item:melee", "target:distance:5", "target:condition:prone")))
	assert.False(t, p.Test(rolloption.New("attack", "target:distance:5")))
}

func TestPredicate_UnmarshalYAML_Errors(t *testing.T) {
	for _, src := range []string{
		`attack`,
		`- {bogus: [a]}`,
		`- {gte: [a]}`,
		`- {gte: [a, b]}`,
		`- {a: 1, b: 2}`,
	} {
		var p predicate.Predicate
		assert.Error(t, yaml.Unmarshal([]byte(src), &p), "source %q", src)
	}
}
