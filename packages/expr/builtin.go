package expr

import (
	"strings"

	kernel "github.com/latticecell/sheetkernel/packages/spreadsheet"
)

// callBuiltin invokes a builtin range-aggregate function by name. args
// mixes scalar and range operands exactly as the call site wrote them;
// ranges are flattened through ctx before aggregation.
func callBuiltin(name string, args []evalItem, ctx kernel.Resolver) kernel.Value {
	switch strings.ToUpper(name) {
	case "SUM":
		return aggregate(args, ctx, 0, func(acc, v float64) float64 { return acc + v })
	case "AVG", "AVERAGE":
		return average(args, ctx)
	case "COUNT":
		return count(args, ctx)
	case "MIN":
		return extremum(args, ctx, false)
	case "MAX":
		return extremum(args, ctx, true)
	default:
		return kernel.ErrValue(kernel.ErrOther)
	}
}

// numbers yields every numeric value among args, flattening ranges
// through ctx, and reports the first error value encountered (if any).
// A range cell holding ErrNotEvaluable — no cell lives at that
// position — is treated as blank and skipped rather than propagated,
// matching how a SUM-style aggregate treats an empty cell in its
// range; any other cached error still propagates and aborts the
// aggregate.
func numbers(args []evalItem, ctx kernel.Resolver, yield func(float64)) kernel.Value {
	for _, a := range args {
		if a.isRange {
			for pos := range a.rng.Positions() {
				v := ctx.Resolve(pos)
				if v.IsError() {
					if v.Err == kernel.ErrNotEvaluable {
						continue
					}
					return v
				}
				if v.Type == kernel.ValueNumber {
					yield(v.Num)
				}
			}
			continue
		}
		if a.val.IsError() {
			return a.val
		}
		if a.val.Type == kernel.ValueNumber {
			yield(a.val.Num)
		}
	}
	return kernel.Value{}
}

func aggregate(args []evalItem, ctx kernel.Resolver, seed float64, combine func(acc, v float64) float64) kernel.Value {
	acc := seed
	if errVal := numbers(args, ctx, func(v float64) { acc = combine(acc, v) }); errVal.IsError() {
		return errVal
	}
	return kernel.NumberValue(acc)
}

func average(args []evalItem, ctx kernel.Resolver) kernel.Value {
	sum := 0.0
	n := 0
	if errVal := numbers(args, ctx, func(v float64) { sum += v; n++ }); errVal.IsError() {
		return errVal
	}
	if n == 0 {
		return kernel.ErrValue(kernel.ErrDivisionByZero)
	}
	return kernel.NumberValue(sum / float64(n))
}

func count(args []evalItem, ctx kernel.Resolver) kernel.Value {
	n := 0
	if errVal := numbers(args, ctx, func(float64) { n++ }); errVal.IsError() {
		return errVal
	}
	return kernel.NumberValue(float64(n))
}

func extremum(args []evalItem, ctx kernel.Resolver, wantMax bool) kernel.Value {
	var best float64
	seen := false
	errVal := numbers(args, ctx, func(v float64) {
		if !seen || (wantMax && v > best) || (!wantMax && v < best) {
			best = v
			seen = true
		}
	})
	if errVal.IsError() {
		return errVal
	}
	if !seen {
		return kernel.NumberValue(0)
	}
	return kernel.NumberValue(best)
}
