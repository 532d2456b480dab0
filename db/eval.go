package db

import (
	"fmt"

	"github.com/coraldb/coraldb/core"
	"github.com/coraldb/coraldb/sql"
)

// Predicates evaluate to three-valued logic: a comparison touching NULL
// is neither true nor false. Row filters treat unknown as false.

type truth int

const (
	truthFalse truth = iota
	truthTrue
	truthUnknown
)

func truthOf(b bool) truth {
	if b {
		return truthTrue
	}
	return truthFalse
}

func (t truth) not() truth {
	switch t {
	case truthTrue:
		return truthFalse
	case truthFalse:
		return truthTrue
	default:
		return truthUnknown
	}
}

// resolver supplies values for column and aggregate references during
// evaluation. Row-scoped resolvers reject aggregates; group-scoped
// resolvers supply both.
type resolver interface {
	resolveColumn(ref sql.ColumnRef) (core.Value, error)
	resolveAggregate(agg sql.AggregateExpr) (core.Value, error)
}

// evalValue evaluates an operand expression to a value.
func evalValue(expr sql.Expr, r resolver) (core.Value, error) {
	switch e := expr.(type) {
	case sql.Literal:
		return e.Value, nil
	case sql.ColumnRef:
		return r.resolveColumn(e)
	case sql.AggregateExpr:
		return r.resolveAggregate(e)
	default:
		return core.Value{}, fmt.Errorf("expression %T is not a value", expr)
	}
}

// evalPredicate evaluates a boolean expression tree against one row or
// group. AND and OR short-circuit: the right operand is not evaluated
// once the left side fixes the result.
func evalPredicate(expr sql.Expr, r resolver) (truth, error) {
	switch e := expr.(type) {
	case sql.Comparison:
		return evalComparison(e, r)
	case sql.LogicExpr:
		return evalLogic(e, r)
	case sql.NotExpr:
		inner, err := evalPredicate(e.Expr, r)
		if err != nil {
			return truthFalse, err
		}
		return inner.not(), nil
	case sql.IsNullExpr:
		value, err := evalValue(e.Expr, r)
		if err != nil {
			return truthFalse, err
		}
		if e.Negated {
			return truthOf(!value.IsNull()), nil
		}
		return truthOf(value.IsNull()), nil
	case sql.BetweenExpr:
		return evalBetween(e, r)
	case sql.InExpr:
		return evalIn(e, r)
	case sql.LikeExpr:
		return evalLike(e, r)
	default:
		// A bare operand: a BOOL value acts as its own predicate.
		value, err := evalValue(expr, r)
		if err != nil {
			return truthFalse, err
		}
		if value.IsNull() {
			return truthUnknown, nil
		}
		if value.Kind == core.BoolValue {
			return truthOf(value.Bool), nil
		}
		return truthFalse, fmt.Errorf("value %s is not a condition", value)
	}
}

func evalComparison(e sql.Comparison, r resolver) (truth, error) {
	left, err := evalValue(e.Left, r)
	if err != nil {
		return truthFalse, err
	}
	right, err := evalValue(e.Right, r)
	if err != nil {
		return truthFalse, err
	}
	if left.IsNull() || right.IsNull() {
		return truthUnknown, nil
	}

	switch e.Op {
	case sql.CompareEquals:
		return truthOf(left.Equal(right)), nil
	case sql.CompareNotEquals:
		return truthOf(!left.Equal(right)), nil
	}

	cmp, ok := left.Compare(right)
	if !ok {
		return truthUnknown, nil
	}
	switch e.Op {
	case sql.CompareLessThan:
		return truthOf(cmp < 0), nil
	case sql.CompareGreaterThan:
		return truthOf(cmp > 0), nil
	case sql.CompareLessThanOrEqual:
		return truthOf(cmp <= 0), nil
	default:
		return truthOf(cmp >= 0), nil
	}
}

func evalLogic(e sql.LogicExpr, r resolver) (truth, error) {
	left, err := evalPredicate(e.Left, r)
	if err != nil {
		return truthFalse, err
	}

	if e.Op == sql.LogicAnd {
		if left == truthFalse {
			return truthFalse, nil
		}
		right, err := evalPredicate(e.Right, r)
		if err != nil {
			return truthFalse, err
		}
		if right == truthFalse {
			return truthFalse, nil
		}
		if left == truthUnknown || right == truthUnknown {
			return truthUnknown, nil
		}
		return truthTrue, nil
	}

	if left == truthTrue {
		return truthTrue, nil
	}
	right, err := evalPredicate(e.Right, r)
	if err != nil {
		return truthFalse, err
	}
	if right == truthTrue {
		return truthTrue, nil
	}
	if left == truthUnknown || right == truthUnknown {
		return truthUnknown, nil
	}
	return truthFalse, nil
}

// evalBetween is inclusive on both bounds; any NULL operand makes the
// result unknown.
func evalBetween(e sql.BetweenExpr, r resolver) (truth, error) {
	value, err := evalValue(e.Expr, r)
	if err != nil {
		return truthFalse, err
	}
	low, err := evalValue(e.Low, r)
	if err != nil {
		return truthFalse, err
	}
	high, err := evalValue(e.High, r)
	if err != nil {
		return truthFalse, err
	}
	if value.IsNull() || low.IsNull() || high.IsNull() {
		return truthUnknown, nil
	}

	cmpLow, okLow := value.Compare(low)
	cmpHigh, okHigh := value.Compare(high)
	if !okLow || !okHigh {
		return truthUnknown, nil
	}
	return truthOf(cmpLow >= 0 && cmpHigh <= 0), nil
}

// evalIn is NULL-safe: a NULL subject is in no list, and NULL list
// members match nothing, so NULL IN (NULL) is false.
func evalIn(e sql.InExpr, r resolver) (truth, error) {
	value, err := evalValue(e.Expr, r)
	if err != nil {
		return truthFalse, err
	}

	member := false
	if !value.IsNull() {
		for _, candidate := range e.Values {
			cv, err := evalValue(candidate, r)
			if err != nil {
				return truthFalse, err
			}
			if value.Equal(cv) {
				member = true
				break
			}
		}
	}
	if e.Negated {
		return truthOf(!member), nil
	}
	return truthOf(member), nil
}

func evalLike(e sql.LikeExpr, r resolver) (truth, error) {
	value, err := evalValue(e.Expr, r)
	if err != nil {
		return truthFalse, err
	}
	if value.IsNull() {
		return truthUnknown, nil
	}
	if value.Kind != core.StringValue {
		return truthFalse, nil
	}
	matched := matchLike(value.Str, e.Pattern)
	if e.Negated {
		return truthOf(!matched), nil
	}
	return truthOf(matched), nil
}

// matchLike matches s against a fully anchored pattern where % matches
// any sequence and _ matches any single character. Backtracks over the
// most recent % on mismatch.
func matchLike(s, pattern string) bool {
	runes := []rune(s)
	pat := []rune(pattern)
	si, pi := 0, 0
	starPi, starSi := -1, 0

	for si < len(runes) {
		if pi < len(pat) && (pat[pi] == '_' || pat[pi] == runes[si]) {
			si++
			pi++
		} else if pi < len(pat) && pat[pi] == '%' {
			starPi = pi
			starSi = si
			pi++
		} else if starPi >= 0 {
			starSi++
			si = starSi
			pi = starPi + 1
		} else {
			return false
		}
	}
	for pi < len(pat) && pat[pi] == '%' {
		pi++
	}
	return pi == len(pat)
}
