package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kernel "github.com/latticecell/sheetkernel/packages/spreadsheet"
)

// constResolver resolves every cell reference to a fixed set of values,
// defaulting to NumberValue(0) for anything unlisted.
type constResolver map[kernel.Position]kernel.Value

func (r constResolver) Resolve(pos kernel.Position) kernel.Value {
	if v, ok := r[pos]; ok {
		return v
	}
	return kernel.NumberValue(0)
}

func TestParseArithmetic(t *testing.T) {
	tree, err := Parse("1+2*3")
	require.NoError(t, err)
	v := tree.Eval(constResolver{})
	assert.Equal(t, kernel.NumberValue(7), v)
}

func TestParseParenPrecedence(t *testing.T) {
	tree, err := Parse("(1+2)*3")
	require.NoError(t, err)
	v := tree.Eval(constResolver{})
	assert.Equal(t, kernel.NumberValue(9), v)
}

func TestParseUnaryMinus(t *testing.T) {
	tree, err := Parse("-5+2")
	require.NoError(t, err)
	v := tree.Eval(constResolver{})
	assert.Equal(t, kernel.NumberValue(-3), v)
}

func TestParsePowerRightAssociative(t *testing.T) {
	tree, err := Parse("2^3^2")
	require.NoError(t, err)
	v := tree.Eval(constResolver{})
	assert.Equal(t, kernel.NumberValue(512), v) // 2^(3^2) = 2^9
}

func TestParseCellReference(t *testing.T) {
	pos, _ := kernel.ParsePosition("B1")
	ctx := constResolver{pos: kernel.NumberValue(42)}

	tree, err := Parse("A0+B1")
	require.NoError(t, err)
	v := tree.Eval(ctx)
	assert.Equal(t, kernel.NumberValue(42), v)
}

func TestParseDivisionByZero(t *testing.T) {
	tree, err := Parse("1/0")
	require.NoError(t, err)
	v := tree.Eval(constResolver{})
	assert.True(t, v.IsError())
	assert.Equal(t, kernel.ErrDivisionByZero, v.Err)
}

func TestParseSumOverRange(t *testing.T) {
	ctx := constResolver{}
	for x := uint16(0); x <= 2; x++ {
		ctx[kernel.Position{X: x, Y: 0}] = kernel.NumberValue(float64(x + 1))
	}
	tree, err := Parse("@sum(A0:C0)")
	require.NoError(t, err)
	v := tree.Eval(ctx)
	assert.Equal(t, kernel.NumberValue(6), v) // 1+2+3
}

func TestParseAvgOverRange(t *testing.T) {
	ctx := constResolver{}
	for x := uint16(0); x <= 3; x++ {
		ctx[kernel.Position{X: x, Y: 0}] = kernel.NumberValue(float64(x))
	}
	tree, err := Parse("@avg(A0:D0)")
	require.NoError(t, err)
	v := tree.Eval(ctx)
	assert.Equal(t, kernel.NumberValue(1.5), v) // (0+1+2+3)/4
}

func TestParseMinMaxCount(t *testing.T) {
	ctx := constResolver{}
	for x := uint16(0); x <= 4; x++ {
		ctx[kernel.Position{X: x, Y: 0}] = kernel.NumberValue(float64(x))
	}

	minTree, err := Parse("@min(A0:E0)")
	require.NoError(t, err)
	assert.Equal(t, kernel.NumberValue(0), minTree.Eval(ctx))

	maxTree, err := Parse("@max(A0:E0)")
	require.NoError(t, err)
	assert.Equal(t, kernel.NumberValue(4), maxTree.Eval(ctx))

	countTree, err := Parse("@count(A0:E0)")
	require.NoError(t, err)
	assert.Equal(t, kernel.NumberValue(5), countTree.Eval(ctx))
}

func TestParseMalformedExpression(t *testing.T) {
	_, err := Parse("1+*2")
	assert.Error(t, err)
}

func TestParseRanges(t *testing.T) {
	tree, err := Parse("@sum(A0:B1)+C2")
	require.NoError(t, err)
	ranges := tree.Ranges()
	require.Len(t, ranges, 2)
	assert.Equal(t, NewRange(t, "A0", "B1"), ranges[0])
}

// NewRange is a small test helper building a Range from two address
// strings, since the production constructor takes Positions.
func NewRange(t *testing.T, from, to string) kernel.Range {
	t.Helper()
	a, err := kernel.ParsePosition(from)
	require.NoError(t, err)
	b, err := kernel.ParsePosition(to)
	require.NoError(t, err)
	return kernel.NewRange(a, b)
}
