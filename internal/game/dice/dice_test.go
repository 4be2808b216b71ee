package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/rollcontext/internal/game/dice"
)

func TestRollResult_TotalAndNatural(t *testing.T) {
	r := dice.RollResult{Expression: "1d20+9", Dice: []int{14}, Modifier: 9}
	assert.Equal(t, 23, r.Total())
	assert.Equal(t, 14, r.Natural())
	assert.Equal(t, "1d20+9: [14] +9 = 23", r.String())
	assert.Zero(t, dice.RollResult{Expression: "x"}.Natural())
}

func TestRollResult_String_PanicsOnEmptyExpression(t *testing.T) {
	assert.Panics(t, func() { _ = dice.RollResult{Dice: []int{4}}.String() })
}

func TestParse(t *testing.T) {
	for in, want := range map[string]dice.Expression{
		"d20":     {Raw: "d20", Count: 1, Sides: 20},
		"1d20+9":  {Raw: "1d20+9", Count: 1, Sides: 20, Modifier: 9},
		"2d6 - 1": {Raw: "2d6-1", Count: 2, Sides: 6, Modifier: -1},
		"4D6kh3":  {Raw: "4d6kh3", Count: 4, Sides: 6, KeepHighest: 3},
	} {
		got, err := dice.Parse(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestParse_Errors(t *testing.T) {
	for _, in := range []string{"", "20", "d", "0d6", "1d1", "2d6kh2", "2d6kh0", "1d6+", "3d6*2"} {
		_, err := dice.Parse(in)
		assert.Error(t, err, "%q should not parse", in)
	}
}

func TestCheckAndWithModifier(t *testing.T) {
	e := dice.Check(9)
	assert.Equal(t, "1d20+9", e.Raw)
	assert.Equal(t, "1d20-4", dice.Check(-4).Raw)

	adj := e.WithModifier(-2)
	assert.Equal(t, 7, adj.Modifier)
	assert.Equal(t, "1d20+7", adj.Raw)

	d, err := dice.Parse("1d8")
	require.NoError(t, err)
	assert.Equal(t, "1d8+4", d.WithModifier(4).Raw)
	assert.Equal(t, "1d8", d.WithModifier(0).Raw)
	assert.Equal(t, "1d20", dice.Check(2).WithModifier(-2).Raw)
}

func TestRoll_Fixed(t *testing.T) {
	src := &dice.Fixed{Faces: []int{3, 6, 1, 5}}
	r := dice.Roll(dice.Expression{Raw: "4d6kh3", Count: 4, Sides: 6, KeepHighest: 3}, src)
	assert.Equal(t, []int{6, 5, 3}, r.Dice)
	assert.Equal(t, 14, r.Total())
}

func TestFixed_ClampsFaces(t *testing.T) {
	src := &dice.Fixed{Faces: []int{25, 0}}
	assert.Equal(t, 19, src.Intn(20))
	assert.Equal(t, 0, src.Intn(20))
	assert.Equal(t, 0, (&dice.Fixed{}).Intn(6))
}

func TestCryptoSource_Intn(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 1000; i++ {
		v := src.Intn(6)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 6)
	}
	assert.Panics(t, func() { src.Intn(0) })
}

func TestSeededSource_Deterministic(t *testing.T) {
	a, b := dice.NewSeededSource(42), dice.NewSeededSource(42)
	for i := 0; i < 50; i++ {
		assert.Equal(t, a.Intn(20), b.Intn(20))
	}
	assert.Panics(t, func() { a.Intn(-1) })
}

func TestLoggedRoller(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := dice.NewLoggedRoller(&dice.Fixed{Faces: []int{17}}, zap.New(core))

	res, err := r.RollExpr("1d20+5")
	require.NoError(t, err)
	assert.Equal(t, 22, res.Total())

	entries := logs.FilterMessage("dice roll").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(22), entries[0].ContextMap()["total"])

	_, err = r.RollExpr("bogus")
	assert.Error(t, err)
	assert.Equal(t, 1, logs.Len(), "a parse failure is not logged as a roll")
}

// Property: every die lands in [1, Sides] and Total equals the kept dice
// plus the modifier.
func TestPropertyRoll(t *testing.T) {
	src := dice.NewSeededSource(7)
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(1, 10).Draw(rt, "count")
		sides := rapid.IntRange(2, 100).Draw(rt, "sides")
		mod := rapid.IntRange(-20, 20).Draw(rt, "mod")
		r := dice.Roll(dice.Expression{Raw: "x", Count: count, Sides: sides, Modifier: mod}, src)
		sum := mod
		for _, d := range r.Dice {
			if d < 1 || d > sides {
				rt.Fatalf("die %d outside [1,%d]", d, sides)
			}
			sum += d
		}
		if len(r.Dice) != count || r.Total() != sum {
			rt.Fatalf("got %d dice totalling %d, want %d dice totalling %d", len(r.Dice), r.Total(), count, sum)
		}
	})
}

// Property: Parse accepts every rendered Check expression and round-trips
// its modifier.
func TestPropertyCheckParses(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		mod := rapid.IntRange(-30, 30).Draw(rt, "mod")
		e, err := dice.Parse(dice.Check(mod).Raw)
		if err != nil {
			rt.Fatalf("Parse(%q): %v", dice.Check(mod).Raw, err)
		}
		if e.Modifier != mod || e.Sides != 20 || e.Count != 1 {
			rt.Fatalf("round trip of %d gave %+v", mod, e)
		}
	})
}
