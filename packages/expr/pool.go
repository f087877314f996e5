package expr

// StringTable is a deduplicating string pool: it implements
// spreadsheet.StringPool, handing every distinct string an id stable
// for the table's lifetime.
type StringTable struct {
	ids     map[string]uint32
	strings []string
}

// NewStringTable creates an empty string table.
func NewStringTable() *StringTable {
	return &StringTable{ids: make(map[string]uint32)}
}

// Intern returns s's id, assigning a new one the first time s is seen.
func (t *StringTable) Intern(s string) uint32 {
	if id, ok := t.ids[s]; ok {
		return id
	}
	id := uint32(len(t.strings))
	t.strings = append(t.strings, s)
	t.ids[s] = id
	return id
}

// Lookup returns the string interned under id, if any.
func (t *StringTable) Lookup(id uint32) (string, bool) {
	if id >= uint32(len(t.strings)) {
		return "", false
	}
	return t.strings[id], true
}
