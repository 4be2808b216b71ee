package dice

import "sort"

// Roll evaluates expr with src.
//
// Precondition: expr came from Parse or Check; src is non-nil.
// Postcondition: len(result.Dice) is expr.KeepHighest when set, expr.Count otherwise.
func Roll(expr Expression, src Source) RollResult {
	rolled := make([]int, expr.Count)
	for i := range rolled {
		rolled[i] = src.Intn(expr.Sides) + 1
	}
	kept := rolled
	if expr.KeepHighest > 0 {
		kept = append([]int(nil), rolled...)
		sort.Sort(sort.Reverse(sort.IntSlice(kept)))
		kept = kept[:expr.KeepHighest]
	}
	return RollResult{Expression: expr.Raw, Dice: kept, Modifier: expr.Modifier}
}

// RollExpr parses expr and rolls it with src.
func RollExpr(expr string, src Source) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return Roll(e, src), nil
}
