// Package expr implements the expression-tree collaborator the kernel
// depends on only through the spreadsheet.Expression interface (§4.4):
// a lexer and parser producing an immutable post-order node array, an
// evaluator walking it as a stack machine, and a deduplicating string
// table (StringTable) satisfying spreadsheet.StringPool for callers
// that want one, though Tree keeps its own string literals inline and
// does not consult it.
package expr

import (
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	kernel "github.com/latticecell/sheetkernel/packages/spreadsheet"
)

type nodeKind uint8

const (
	nodeNumber nodeKind = iota
	nodeString
	nodeCellRef
	nodeRangeRef
	nodeBinary
	nodeUnary
	nodeCall
)

type binaryOp uint8

const (
	opAdd binaryOp = iota
	opSub
	opMul
	opDiv
	opPow
)

type unaryOp uint8

const (
	opNeg unaryOp = iota
	opPos
)

// node is one entry of the post-order array. Only the fields relevant
// to kind are meaningful; the rest are zero.
type node struct {
	kind nodeKind
	num  float64
	str  string // string literal, or function name for nodeCall
	pos  kernel.Position
	rng  kernel.Range
	bop  binaryOp
	uop  unaryOp
	argc int // nodeCall: number of preceding stack items it consumes
}

// Tree is a parsed expression: an immutable post-order node array. It
// implements spreadsheet.Expression.
type Tree struct {
	nodes []node
}

// ErrMalformedExpression is returned by Parse when the text cannot be
// lexed or parsed into a Tree.
var ErrMalformedExpression = errors.New("malformed expression")

// Ranges enumerates every cell and range reference in the tree, single
// cells reported as a one-cell Range (§4.4).
func (t *Tree) Ranges() []kernel.Range {
	var out []kernel.Range
	for _, n := range t.nodes {
		switch n.kind {
		case nodeCellRef:
			out = append(out, kernel.PointRange(n.pos))
		case nodeRangeRef:
			out = append(out, n.rng)
		}
	}
	return out
}

// evalItem is a stack-machine value: either a scalar Value or a range,
// the latter only ever consumed directly by an enclosing call.
type evalItem struct {
	isRange bool
	val     kernel.Value
	rng     kernel.Range
}

// Eval walks the node array as a postfix stack machine, resolving cell
// references through ctx (§4.4, §4.6).
func (t *Tree) Eval(ctx kernel.Resolver) kernel.Value {
	stack := make([]evalItem, 0, len(t.nodes))
	for _, n := range t.nodes {
		switch n.kind {
		case nodeNumber:
			stack = append(stack, evalItem{val: kernel.NumberValue(n.num)})
		case nodeString:
			stack = append(stack, evalItem{val: kernel.StringValue(n.str)})
		case nodeCellRef:
			stack = append(stack, evalItem{val: ctx.Resolve(n.pos)})
		case nodeRangeRef:
			stack = append(stack, evalItem{isRange: true, rng: n.rng})
		case nodeUnary:
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			stack = append(stack, evalItem{val: evalUnary(n.uop, top.val)})
		case nodeBinary:
			rhs := stack[len(stack)-1]
			lhs := stack[len(stack)-2]
			stack = stack[:len(stack)-2]
			stack = append(stack, evalItem{val: evalBinary(n.bop, lhs.val, rhs.val)})
		case nodeCall:
			args := stack[len(stack)-n.argc:]
			result := callBuiltin(n.str, args, ctx)
			stack = stack[:len(stack)-n.argc]
			stack = append(stack, evalItem{val: result})
		}
	}
	if len(stack) != 1 || stack[0].isRange {
		return kernel.ErrValue(kernel.ErrTypeMismatch)
	}
	return stack[0].val
}

func evalUnary(op unaryOp, v kernel.Value) kernel.Value {
	if v.IsError() {
		return v
	}
	if v.Type != kernel.ValueNumber {
		return kernel.ErrValue(kernel.ErrTypeMismatch)
	}
	if op == opNeg {
		return kernel.NumberValue(-v.Num)
	}
	return v
}

func evalBinary(op binaryOp, lhs, rhs kernel.Value) kernel.Value {
	if lhs.IsError() {
		return lhs
	}
	if rhs.IsError() {
		return rhs
	}
	if lhs.Type != kernel.ValueNumber || rhs.Type != kernel.ValueNumber {
		return kernel.ErrValue(kernel.ErrTypeMismatch)
	}
	switch op {
	case opAdd:
		return kernel.NumberValue(lhs.Num + rhs.Num)
	case opSub:
		return kernel.NumberValue(lhs.Num - rhs.Num)
	case opMul:
		return kernel.NumberValue(lhs.Num * rhs.Num)
	case opDiv:
		if rhs.Num == 0 {
			return kernel.ErrValue(kernel.ErrDivisionByZero)
		}
		return kernel.NumberValue(lhs.Num / rhs.Num)
	case opPow:
		return kernel.NumberValue(powFloat(lhs.Num, rhs.Num))
	default:
		return kernel.ErrValue(kernel.ErrOther)
	}
}

// Print writes the tree back out as text. pool is accepted to satisfy
// spreadsheet.Expression's signature but unused: string literals are
// stored inline in their node and need no separate interning table to
// round-trip (see DESIGN.md for why the pool plumbing stops here).
func (t *Tree) Print(w io.Writer, pool kernel.StringPool) error {
	text, _, err := renderFrom(t.nodes, len(t.nodes)-1)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, text)
	return err
}

// renderFrom renders the subtree ending at index idx to infix text and
// returns it along with the index of the subtree's first (leftmost)
// node, so the caller can continue leftward over sibling operands.
func renderFrom(nodes []node, idx int) (string, int, error) {
	n := nodes[idx]
	switch n.kind {
	case nodeNumber:
		return strconv.FormatFloat(n.num, 'g', -1, 64), idx, nil
	case nodeString:
		return quoteString(n.str), idx, nil
	case nodeCellRef:
		return kernel.FormatPosition(n.pos), idx, nil
	case nodeRangeRef:
		return kernel.FormatPosition(n.rng.TopLeft) + ":" + kernel.FormatPosition(n.rng.BottomRight), idx, nil
	case nodeUnary:
		operand, start, err := renderFrom(nodes, idx-1)
		if err != nil {
			return "", 0, err
		}
		return unarySymbol(n.uop) + operand, start, nil
	case nodeBinary:
		rhsText, rhsStart, err := renderFrom(nodes, idx-1)
		if err != nil {
			return "", 0, err
		}
		lhsText, lhsStart, err := renderFrom(nodes, rhsStart-1)
		if err != nil {
			return "", 0, err
		}
		return "(" + lhsText + binarySymbol(n.bop) + rhsText + ")", lhsStart, nil
	case nodeCall:
		args := make([]string, n.argc)
		next := idx - 1
		for i := n.argc - 1; i >= 0; i-- {
			text, start, err := renderFrom(nodes, next)
			if err != nil {
				return "", 0, err
			}
			args[i] = text
			next = start - 1
		}
		out := "@" + n.str + "("
		for i, a := range args {
			if i > 0 {
				out += ","
			}
			out += a
		}
		return out + ")", next + 1, nil
	default:
		return "", idx, errors.New("unknown expression node kind")
	}
}

func unarySymbol(op unaryOp) string {
	if op == opNeg {
		return "-"
	}
	return "+"
}

func binarySymbol(op binaryOp) string {
	switch op {
	case opAdd:
		return "+"
	case opSub:
		return "-"
	case opMul:
		return "*"
	case opDiv:
		return "/"
	case opPow:
		return "^"
	default:
		return "?"
	}
}

func powFloat(base, exp float64) float64 {
	return math.Pow(base, exp)
}

func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	b.WriteString(strings.ReplaceAll(s, `"`, `""`))
	b.WriteByte('"')
	return b.String()
}
