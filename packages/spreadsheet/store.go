package spreadsheet

import "sort"

// DefaultColumnWidth and DefaultColumnPrecision are the metadata a
// column starts with before any explicit set_width/set_precision call
// (§4.5: "default {width: 10, precision: 2}").
const (
	DefaultColumnWidth     = 10
	DefaultColumnPrecision = 2
)

// Column holds per-column display metadata. Width is always >= 1.
type Column struct {
	Width     int
	Precision int
}

// cellStore is the sheet's cell-store record (§4.5): cells ordered by
// hash(pos) for canonical iteration, indexed by position for O(1)
// point access, plus the sparse column-metadata table and the
// out-of-line side map for string storage.
type cellStore struct {
	order   []*cell
	byPos   map[Position]*cell
	columns map[uint16]Column
	// strings is the side map from position to out-of-line string
	// storage (§3: "a side map from position to out-of-line string
	// storage"); an absent entry is equivalent to the empty string. A
	// cell's own value never carries its Str payload directly — setValue
	// and valueOf keep the two in sync.
	strings map[Position]string
}

func newCellStore() *cellStore {
	return &cellStore{
		byPos:   make(map[Position]*cell),
		columns: make(map[uint16]Column),
		strings: make(map[Position]string),
	}
}

func (s *cellStore) get(pos Position) (*cell, bool) {
	c, ok := s.byPos[pos]
	return c, ok
}

// setValue installs v as c's cached value, freeing any previously
// cached owned string at c's position and, if v itself is a string,
// routing its bytes into the out-of-line side map (§4.6: "cache the
// new value, freeing any previously cached owned string").
func (s *cellStore) setValue(c *cell, v Value) {
	delete(s.strings, c.pos)
	if v.Type == ValueString && v.Str != "" {
		s.strings[c.pos] = v.Str
		v.Str = ""
	}
	c.value = v
}

// valueOf reconstructs c's full cached value, reading its string
// payload back from the side map if c.value.Type is ValueString.
func (s *cellStore) valueOf(c *cell) Value {
	v := c.value
	if v.Type == ValueString {
		v.Str = s.strings[c.pos]
	}
	return v
}

// dropValue frees pos's out-of-line string entry, if any.
func (s *cellStore) dropValue(pos Position) {
	delete(s.strings, pos)
}

// put inserts or replaces the cell at pos, keeping order sorted by
// hash(pos).
func (s *cellStore) put(c *cell) {
	if _, exists := s.byPos[c.pos]; exists {
		s.byPos[c.pos] = c
		idx := s.indexOf(c.pos)
		s.order[idx] = c
		return
	}
	idx := sort.Search(len(s.order), func(i int) bool {
		return s.order[i].pos.Hash() >= c.pos.Hash()
	})
	s.order = append(s.order, nil)
	copy(s.order[idx+1:], s.order[idx:])
	s.order[idx] = c
	s.byPos[c.pos] = c
}

// delete removes the cell at pos, if present, along with any
// out-of-line string entry still registered for it.
func (s *cellStore) delete(pos Position) {
	if _, exists := s.byPos[pos]; !exists {
		return
	}
	idx := s.indexOf(pos)
	s.order = append(s.order[:idx], s.order[idx+1:]...)
	delete(s.byPos, pos)
	s.dropValue(pos)
}

func (s *cellStore) indexOf(pos Position) int {
	idx := sort.Search(len(s.order), func(i int) bool {
		return s.order[i].pos.Hash() >= pos.Hash()
	})
	if idx < len(s.order) && s.order[idx].pos == pos {
		return idx
	}
	return -1
}

// Len returns the number of cells currently stored.
func (s *cellStore) Len() int { return len(s.order) }

// all iterates every cell in canonical hash(pos) order (§9, "Ordered
// cell store").
func (s *cellStore) all() []*cell { return s.order }

// column returns col's metadata, or the defaults if unset.
func (s *cellStore) column(col uint16) Column {
	if c, ok := s.columns[col]; ok {
		return c
	}
	return Column{Width: DefaultColumnWidth, Precision: DefaultColumnPrecision}
}

func (s *cellStore) setColumnWidth(col uint16, width int) {
	c := s.column(col)
	c.Width = width
	s.columns[col] = c
}

func (s *cellStore) setColumnPrecision(col uint16, precision int) {
	c := s.column(col)
	c.Precision = precision
	s.columns[col] = c
}
