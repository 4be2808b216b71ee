// Package dice rolls the d20 checks and damage formulas the roll context
// tools execute once a context is resolved.
package dice

import (
	"fmt"
	"strings"
)

// RollResult records one evaluated expression.
//
// Postcondition: Total() == sum(Dice) + Modifier.
type RollResult struct {
	Expression string
	Dice       []int
	Modifier   int
}

// Total returns the sum of the kept dice plus the modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// Natural returns the first die as rolled, the natural result of a d20
// check. It is 0 when no dice were rolled.
func (r RollResult) Natural() int {
	if len(r.Dice) == 0 {
		return 0
	}
	return r.Dice[0]
}

// String renders the roll as "1d20+9: [14] +9 = 23".
//
// Precondition: r.Expression is non-empty.
func (r RollResult) String() string {
	if r.Expression == "" {
		panic("dice: RollResult.String() precondition violated: Expression must be non-empty")
	}
	faces := make([]string, len(r.Dice))
	for i, d := range r.Dice {
		faces[i] = fmt.Sprint(d)
	}
	return fmt.Sprintf("%s: [%s] %+d = %d", r.Expression, strings.Join(faces, " "), r.Modifier, r.Total())
}
