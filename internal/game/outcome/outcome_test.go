package outcome_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/rollcontext/internal/game/outcome"
)

func TestFor(t *testing.T) {
	tests := []struct {
		total, dc, die int
		want           outcome.Degree
	}{
		{30, 15, 0, outcome.CriticalSuccess},
		{25, 15, 0, outcome.CriticalSuccess},
		{20, 15, 0, outcome.Success},
		{15, 15, 0, outcome.Success},
		{10, 15, 0, outcome.Failure},
		{6, 15, 0, outcome.Failure},
		{5, 15, 0, outcome.CriticalFailure},
		{20, 15, 20, outcome.CriticalSuccess},
		{14, 15, 20, outcome.Success},
		{30, 15, 20, outcome.CriticalSuccess},
		{16, 15, 1, outcome.Failure},
		{1, 15, 1, outcome.CriticalFailure},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, outcome.For(tc.total, tc.dc, tc.die), "total=%d dc=%d die=%d", tc.total, tc.dc, tc.die)
	}
}

func TestFor_AlwaysValid(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		total := rapid.IntRange(-10, 60).Draw(rt, "total")
		dc := rapid.IntRange(5, 45).Draw(rt, "dc")
		die := rapid.IntRange(0, 20).Draw(rt, "die")
		assert.True(rt, outcome.For(total, dc, die).Valid())
	})
}

func TestParse(t *testing.T) {
	for _, s := range []string{"critical-success", "Critical Success", "critical_success"} {
		d, err := outcome.Parse(s)
		require.NoError(t, err, s)
		assert.Equal(t, outcome.CriticalSuccess, d)
	}
	d, err := outcome.Parse("failure")
	require.NoError(t, err)
	assert.Equal(t, outcome.Failure, d)

	_, err = outcome.Parse("great")
	assert.Error(t, err)
	assert.Equal(t, "unknown", outcome.Degree(9).String())
}
