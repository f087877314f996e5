package spreadsheet

// dependentIndexMinChildren is the R-tree fanout used by the dependent
// index and the live-cell index. Small, since most sheets have few
// thousand live cells; kept as a named constant rather than threaded
// through configuration since nothing in this package needs to tune it
// per sheet.
const dependentIndexMinChildren = 4

// DependentIndex maps a range R to the ordered sequence of ranges that
// depend on R (§4.2): if any cell in R changes, every range in the
// sequence must be recomputed. It is an RTree[[]Range] specialization
// that additionally knows how to append/remove a single value under a
// key without disturbing the others.
type DependentIndex struct {
	tree *RTree[[]Range]
}

// NewDependentIndex creates an empty dependent index.
func NewDependentIndex() *DependentIndex {
	return &DependentIndex{tree: NewRTree[[]Range](dependentIndexMinChildren)}
}

// Put appends value to the sequence stored at key, inserting a new
// singleton-sequence entry if key isn't present yet.
func (d *DependentIndex) Put(key, value Range) {
	if existing, ok := d.tree.LookupExact(key); ok {
		d.tree.UpdateExact(key, append(existing, value))
		return
	}
	d.tree.Insert(key, []Range{value})
}

// PutSlice appends every range in values to the sequence stored at key.
func (d *DependentIndex) PutSlice(key Range, values []Range) {
	if len(values) == 0 {
		return
	}
	if existing, ok := d.tree.LookupExact(key); ok {
		d.tree.UpdateExact(key, append(existing, values...))
		return
	}
	d.tree.Insert(key, append([]Range(nil), values...))
}

// RemoveValue removes the single occurrence of value from the sequence
// stored at key. If the sequence becomes empty, the key is removed
// entirely, triggering the R-tree's underflow handling.
func (d *DependentIndex) RemoveValue(key, value Range) {
	existing, ok := d.tree.LookupExact(key)
	if !ok {
		return
	}
	idx := -1
	for i, v := range existing {
		if v == value {
			idx = i
			break
		}
	}
	if idx == -1 {
		return
	}
	existing[idx] = existing[len(existing)-1]
	existing = existing[:len(existing)-1]
	if len(existing) == 0 {
		d.tree.Remove(key)
		return
	}
	d.tree.UpdateExact(key, existing)
}

// Search returns every (key, dependent-sequence) pair whose key
// intersects query. Results are unordered; callers iterate contained
// positions themselves (§4.2).
func (d *DependentIndex) Search(query Range) []Entry[[]Range] {
	return d.tree.RangeSearch(query)
}

// SearchExact returns the dependent sequence stored at the exact key, if
// any.
func (d *DependentIndex) SearchExact(key Range) ([]Range, bool) {
	return d.tree.LookupExact(key)
}
