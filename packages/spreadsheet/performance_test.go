package spreadsheet_test

import (
	"strconv"
	"testing"

	"github.com/latticecell/sheetkernel/packages/expr"
	kernel "github.com/latticecell/sheetkernel/packages/spreadsheet"
)

// BenchmarkUpdateDeepGrid is S5: a fully populated 8x21 grid where
// every cell sums its top and left neighbor plus one. A single Update
// call is expected to complete well inside 100ms on commodity
// hardware.
func BenchmarkUpdateDeepGrid(b *testing.B) {
	const cols, rows = 8, 21
	sheet := kernel.NewSheet(expr.NewStringTable())

	for y := uint16(0); y < rows; y++ {
		for x := uint16(0); x < cols; x++ {
			addr := kernel.FormatPosition(kernel.Position{X: x, Y: y})
			formula := formulaFor(x, y)
			tree, err := expr.Parse(formula)
			if err != nil {
				b.Fatal(err)
			}
			p, err := kernel.ParsePosition(addr)
			if err != nil {
				b.Fatal(err)
			}
			sheet.Insert(p, tree, false)
		}
	}

	sheet.Update()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sheet.Update()
	}
}

func formulaFor(x, y uint16) string {
	switch {
	case x == 0 && y == 0:
		return "1"
	case x == 0:
		return kernel.FormatPosition(kernel.Position{X: x, Y: y - 1}) + "+1"
	case y == 0:
		return kernel.FormatPosition(kernel.Position{X: x - 1, Y: y}) + "+1"
	default:
		up := kernel.FormatPosition(kernel.Position{X: x, Y: y - 1})
		left := kernel.FormatPosition(kernel.Position{X: x - 1, Y: y})
		return up + "+" + left + "+1"
	}
}

// BenchmarkUpdateWideFanOut mirrors BenchmarkWideDependencyFanOut: many
// cells depending on a single upstream value, recalculated after each
// edit to that value.
func BenchmarkUpdateWideFanOut(b *testing.B) {
	sheet := kernel.NewSheet(expr.NewStringTable())
	a0 := kernel.Position{X: 0, Y: 0}

	hundred, err := expr.Parse("100")
	if err != nil {
		b.Fatal(err)
	}
	sheet.Insert(a0, hundred, false)

	for i := uint16(1); i < 500; i++ {
		tree, err := expr.Parse("A0*2")
		if err != nil {
			b.Fatal(err)
		}
		sheet.Insert(kernel.Position{X: 1, Y: i}, tree, false)
	}
	sheet.Update()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		n, err := expr.Parse(strconv.Itoa(i))
		if err != nil {
			b.Fatal(err)
		}
		sheet.Insert(a0, n, false)
		sheet.Update()
	}
}
