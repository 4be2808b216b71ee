package dice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Expression is a parsed dice formula.
//
// Invariant: Count >= 1 and Sides >= 2 after a successful Parse.
type Expression struct {
	Raw         string
	Count       int
	Sides       int
	Modifier    int
	KeepHighest int // keep only the N highest dice when > 0, e.g. 4d6kh3
}

var exprPattern = regexp.MustCompile(`^(\d*)d(\d+)(?:kh(\d+))?([+-]\d+)?$`)

// Parse reads formulas of the forms "d20", "2d6", "1d20+9", "1d8-1", and
// "4d6kh3". Whitespace is ignored.
func Parse(expr string) (Expression, error) {
	s := strings.ToLower(strings.Join(strings.Fields(expr), ""))
	if s == "" {
		return Expression{}, fmt.Errorf("dice: empty expression")
	}
	m := exprPattern.FindStringSubmatch(s)
	if m == nil {
		return Expression{}, fmt.Errorf("dice: malformed expression %q", expr)
	}
	e := Expression{Raw: s, Count: 1}
	if m[1] != "" {
		e.Count, _ = strconv.Atoi(m[1])
		if e.Count < 1 {
			return Expression{}, fmt.Errorf("dice: invalid die count in %q: must be >= 1", expr)
		}
	}
	e.Sides, _ = strconv.Atoi(m[2])
	if e.Sides < 2 {
		return Expression{}, fmt.Errorf("dice: invalid die sides in %q: must be >= 2", expr)
	}
	if m[3] != "" {
		e.KeepHighest, _ = strconv.Atoi(m[3])
		if e.KeepHighest <= 0 || e.KeepHighest >= e.Count {
			return Expression{}, fmt.Errorf("dice: kh value %d must be > 0 and < count %d in %q", e.KeepHighest, e.Count, expr)
		}
	}
	if m[4] != "" {
		mod, err := strconv.Atoi(m[4])
		if err != nil {
			return Expression{}, fmt.Errorf("dice: invalid modifier in %q: %w", expr, err)
		}
		e.Modifier = mod
	}
	return e, nil
}

// Check returns the d20 check expression with modifier mod.
func Check(mod int) Expression {
	return Expression{Raw: "1d20", Count: 1, Sides: 20}.WithModifier(mod)
}

// WithModifier returns e with mod added to its flat modifier.
func (e Expression) WithModifier(mod int) Expression {
	if mod == 0 {
		return e
	}
	e.Modifier += mod
	base := e.Raw
	if i := strings.LastIndexAny(base, "+-"); i > 0 {
		base = base[:i]
	}
	e.Raw = base
	if e.Modifier != 0 {
		e.Raw += fmt.Sprintf("%+d", e.Modifier)
	}
	return e
}
