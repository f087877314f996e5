package spreadsheet

import "iter"

// MaxCoord is the largest coordinate value on either axis (§3, coordinate
// range [0, 65535]).
const MaxCoord = 65535

// Position is a cell's (column, row) pair. hash(pos) = y*(MaxCoord+1) + x is
// both its identity and its sort key: the cell store orders its entries
// by it so that iteration yields canonical row-major order.
type Position struct {
	X uint16
	Y uint16
}

// Hash returns the total-order key used to sort and compare positions.
func (p Position) Hash() uint32 {
	return uint32(p.Y)*(MaxCoord+1) + uint32(p.X)
}

// Less reports whether p sorts before other under Hash.
func (p Position) Less(other Position) bool {
	return p.Hash() < other.Hash()
}

// Range is an axis-aligned rectangle [TopLeft.X, BottomRight.X] x
// [TopLeft.Y, BottomRight.Y]. The zero value is the single-cell range at
// (0, 0); use NewRange or PointRange to construct one so the tl.x<=br.x,
// tl.y<=br.y invariant holds.
type Range struct {
	TopLeft     Position
	BottomRight Position
}

// NewRange builds the range with tl/br normalized so the invariant holds
// regardless of the order the two corners were given in.
func NewRange(a, b Position) Range {
	tl := Position{X: min16(a.X, b.X), Y: min16(a.Y, b.Y)}
	br := Position{X: max16(a.X, b.X), Y: max16(a.Y, b.Y)}
	return Range{TopLeft: tl, BottomRight: br}
}

// PointRange returns the single-cell range Range(p, p).
func PointRange(p Position) Range {
	return Range{TopLeft: p, BottomRight: p}
}

func min16(a, b uint16) uint16 {
	if a < b {
		return a
	}
	return b
}

func max16(a, b uint16) uint16 {
	if a > b {
		return a
	}
	return b
}

// IsPoint reports whether the range covers exactly one cell.
func (r Range) IsPoint() bool {
	return r.TopLeft == r.BottomRight
}

// Intersects reports whether r and other share at least one cell.
func (r Range) Intersects(other Range) bool {
	return r.TopLeft.X <= other.BottomRight.X && other.TopLeft.X <= r.BottomRight.X &&
		r.TopLeft.Y <= other.BottomRight.Y && other.TopLeft.Y <= r.BottomRight.Y
}

// Contains reports whether other lies entirely within r.
func (r Range) Contains(other Range) bool {
	return r.TopLeft.X <= other.TopLeft.X && other.BottomRight.X <= r.BottomRight.X &&
		r.TopLeft.Y <= other.TopLeft.Y && other.BottomRight.Y <= r.BottomRight.Y
}

// ContainsPoint reports whether p lies within r.
func (r Range) ContainsPoint(p Position) bool {
	return r.TopLeft.X <= p.X && p.X <= r.BottomRight.X &&
		r.TopLeft.Y <= p.Y && p.Y <= r.BottomRight.Y
}

// Area returns the number of cells covered by r.
func (r Range) Area() uint64 {
	w := uint64(r.BottomRight.X) - uint64(r.TopLeft.X) + 1
	h := uint64(r.BottomRight.Y) - uint64(r.TopLeft.Y) + 1
	return w * h
}

// Perimeter returns twice the sum of r's side lengths, used by the R-tree
// split heuristic (§4.1).
func (r Range) Perimeter() uint64 {
	w := uint64(r.BottomRight.X) - uint64(r.TopLeft.X)
	h := uint64(r.BottomRight.Y) - uint64(r.TopLeft.Y)
	return 2 * (w + h)
}

// Merge returns the smallest range enclosing both r and other.
func (r Range) Merge(other Range) Range {
	return Range{
		TopLeft: Position{
			X: min16(r.TopLeft.X, other.TopLeft.X),
			Y: min16(r.TopLeft.Y, other.TopLeft.Y),
		},
		BottomRight: Position{
			X: max16(r.BottomRight.X, other.BottomRight.X),
			Y: max16(r.BottomRight.Y, other.BottomRight.Y),
		},
	}
}

// OverlapArea returns the area shared by r and other, or 0 if they don't
// intersect.
func (r Range) OverlapArea(other Range) uint64 {
	x0 := max16(r.TopLeft.X, other.TopLeft.X)
	y0 := max16(r.TopLeft.Y, other.TopLeft.Y)
	x1 := min16(r.BottomRight.X, other.BottomRight.X)
	y1 := min16(r.BottomRight.Y, other.BottomRight.Y)
	if x0 > x1 || y0 > y1 {
		return 0
	}
	w := uint64(x1) - uint64(x0) + 1
	h := uint64(y1) - uint64(y0) + 1
	return w * h
}

// Positions lazily iterates every position contained in r in row-major
// order (§3: "lazy iteration over contained positions in row-major order").
func (r Range) Positions() iter.Seq[Position] {
	return func(yield func(Position) bool) {
		for y := r.TopLeft.Y; ; y++ {
			for x := r.TopLeft.X; ; x++ {
				if !yield(Position{X: x, Y: y}) {
					return
				}
				if x == r.BottomRight.X {
					break
				}
			}
			if y == r.BottomRight.Y {
				break
			}
		}
	}
}
