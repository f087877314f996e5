package spreadsheet

import "github.com/pkg/errors"

// ErrColumnWidthTooSmall is returned when a column width is set below
// the minimum of 1 (§4.5).
var ErrColumnWidthTooSmall = errors.New("column width must be at least 1")

// ErrColumnPrecisionNegative is returned when a column precision is
// set below 0.
var ErrColumnPrecisionNegative = errors.New("column precision cannot be negative")

// Sheet is the kernel's front-end call surface (§6): it owns the cell
// store, the spatial indexes that drive dependency propagation, the
// undo/redo log and its arena, and the evaluation engine's pending
// queue.
type Sheet struct {
	cells *cellStore
	deps  *DependentIndex
	live  *LiveIndex
	pool  StringPool

	undoLog *changeLog
	redoLog *changeLog
	arena   *arena

	// replayTarget, when non-nil, is the log every mutation's undo
	// entry is appended to instead of undoLog, and suppresses the
	// default "a fresh change clears the redo log" behavior. Set only
	// for the duration of Undo/Redo's own inverse calls.
	replayTarget *changeLog

	queue []Position
}

// NewSheet creates an empty sheet. pool backs the string side-channel
// every Expression prints through (§4.4, §4.5).
func NewSheet(pool StringPool) *Sheet {
	return &Sheet{
		cells:   newCellStore(),
		deps:    NewDependentIndex(),
		live:    NewLiveIndex(),
		pool:    pool,
		undoLog: &changeLog{},
		redoLog: &changeLog{},
		arena:   newArena(),
	}
}

// CellAt returns the cached value and volatility of the cell at pos,
// if one exists.
func (s *Sheet) CellAt(pos Position) (value Value, volatile bool, ok bool) {
	c, exists := s.cells.get(pos)
	if !exists {
		return Value{}, false, false
	}
	return s.cells.valueOf(c), c.volatile, true
}

// ColumnAt returns col's current display metadata.
func (s *Sheet) ColumnAt(col uint16) Column {
	return s.cells.column(col)
}

// WidthNeededForColumn estimates the character width required to
// render col's widest cell at the given precision, capped at maxWidth
// (§6). Only numeric cells are measured; strings are left to the
// caller's own truncation policy.
func (s *Sheet) WidthNeededForColumn(col uint16, precision int, maxWidth int) int {
	need := 1
	for _, c := range s.cells.all() {
		if c.pos.X != col || c.value.Type != ValueNumber {
			continue
		}
		n := formattedNumberWidth(c.value.Num, precision)
		if n > need {
			need = n
		}
		if need >= maxWidth {
			return maxWidth
		}
	}
	if need > maxWidth {
		return maxWidth
	}
	return need
}

func formattedNumberWidth(n float64, precision int) int {
	s := formatNumber(n, precision)
	return len(s)
}

// unregisterDeps removes every dependency edge a cell's old expression
// registered.
func (s *Sheet) unregisterDeps(pos Position, expr Expression) {
	if expr == nil {
		return
	}
	for _, r := range expr.Ranges() {
		s.deps.RemoveValue(r, PointRange(pos))
	}
}

// registerDeps adds a dependency edge for every range expr references.
func (s *Sheet) registerDeps(pos Position, expr Expression) {
	if expr == nil {
		return
	}
	for _, r := range expr.Ranges() {
		s.deps.Put(r, PointRange(pos))
	}
}

// activeLog returns the log a new undo entry should be appended to,
// and whether appending to it should clear the opposite log's history
// (true only for the default, non-replay path; §4.7).
func (s *Sheet) activeLog() (*changeLog, bool) {
	if s.replayTarget != nil {
		return s.replayTarget, false
	}
	return s.undoLog, true
}

func (s *Sheet) record(e changeEntry) {
	target, clearRedos := s.activeLog()
	target.push(e)
	if clearRedos {
		for _, h := range s.redoLog.reset() {
			s.arena.drop(h)
		}
	}
}

// EndUndoGroup marks the most recent entry of whichever log is
// currently active as the end of an atomic user action (§4.7).
func (s *Sheet) EndUndoGroup() {
	target, _ := s.activeLog()
	target.endGroup()
}

// endDefaultGroup closes the undo group for a direct, top-level
// mutation, reserving one group-end marker as part of every insert,
// delete, or column-metadata change (§4.5 step 1). It is a no-op
// during Undo/Redo's own replay: a replayed group's entries already
// share a single boundary, set once by Undo/Redo itself after the
// whole sequence completes, rather than one per replayed entry.
func (s *Sheet) endDefaultGroup() {
	if s.replayTarget == nil {
		s.EndUndoGroup()
	}
}

// Insert sets the expression at pos, replacing whatever was there,
// registers its dependency edges, and marks every transitive
// dependent dirty (§4.5 insert, §4.6).
func (s *Sheet) Insert(pos Position, expr Expression, volatile bool) {
	handle, hasHandle := s.displace(pos)
	if !hasHandle {
		s.live.Insert(pos)
	}
	s.registerDeps(pos, expr)

	c := &cell{pos: pos, expr: expr, value: ErrValue(ErrNotEvaluable), state: stateEnqueued, volatile: volatile}
	s.cells.put(c)
	s.queue = append(s.queue, pos)
	s.markDirtyTransitive(pos)

	s.record(changeEntry{kind: changeSetCell, pos: pos, handle: handle, hasHandle: hasHandle})
	s.endDefaultGroup()
}

// InsertLabel sets a fixed-text cell at pos with no expression: its
// value never recomputes and it registers no dependency edges (§6,
// "label" lines).
func (s *Sheet) InsertLabel(pos Position, text string) {
	handle, hasHandle := s.displace(pos)
	if !hasHandle {
		s.live.Insert(pos)
	}

	c := &cell{pos: pos, state: stateUpToDate, label: true}
	s.cells.put(c)
	s.cells.setValue(c, StringValue(text))
	s.markDirtyTransitive(pos)

	s.record(changeEntry{kind: changeSetCell, pos: pos, handle: handle, hasHandle: hasHandle})
	s.endDefaultGroup()
}

// displace unregisters the dependency edges of whatever cell currently
// sits at pos, archiving it for undo and freeing its out-of-line string
// entry, if any. It leaves the cell store and the live index as they
// are; callers replace or remove the cell themselves. It reports
// whether anything was there to archive.
func (s *Sheet) displace(pos Position) (handle uint32, hasHandle bool) {
	old, existed := s.cells.get(pos)
	if !existed {
		return 0, false
	}
	if !old.label {
		s.unregisterDeps(pos, old.expr)
	}
	archived := archivedCell{expr: old.expr, value: s.cells.valueOf(old), label: old.label, volatile: old.volatile}
	s.cells.dropValue(pos)
	return s.arena.archive(archived), true
}

// delete removes the cell at pos, if any, marking its dependents dirty
// (§4.5 delete). It does not terminate the undo group; callers that
// represent a single user-facing action call endDefaultGroup
// themselves once all of their deletions are recorded. Reports whether
// a cell was actually removed.
func (s *Sheet) delete(pos Position) bool {
	handle, hasHandle := s.displace(pos)
	if !hasHandle {
		return false
	}
	s.live.Remove(pos)
	s.cells.delete(pos)
	s.markDirtyTransitive(pos)

	s.record(changeEntry{kind: changeDeleteCell, pos: pos, handle: handle, hasHandle: true})
	return true
}

// Delete removes the cell at pos, if any, as a single atomic undo
// action (§4.5 delete).
func (s *Sheet) Delete(pos Position) {
	if s.delete(pos) {
		s.endDefaultGroup()
	}
}

// DeleteRange removes every live cell in r as a single atomic action
// (§4.5 delete_in_range, "all deletions share one undo group").
func (s *Sheet) DeleteRange(r Range) {
	acted := false
	for _, live := range s.live.Search(r) {
		if s.delete(live.TopLeft) {
			acted = true
		}
	}
	if acted {
		s.endDefaultGroup()
	}
}

// SetColumnWidth sets col's width, rejecting values below 1.
func (s *Sheet) SetColumnWidth(col uint16, width int) error {
	if width < 1 {
		return ErrColumnWidthTooSmall
	}
	prev := s.cells.column(col).Width
	s.cells.setColumnWidth(col, width)
	s.record(changeEntry{kind: changeSetColumnWidth, col: col, prevWidth: prev})
	s.endDefaultGroup()
	return nil
}

// IncWidth widens col by one.
func (s *Sheet) IncWidth(col uint16) {
	_ = s.SetColumnWidth(col, s.cells.column(col).Width+1)
}

// DecWidth narrows col by one, refusing to go below 1.
func (s *Sheet) DecWidth(col uint16) {
	if w := s.cells.column(col).Width; w > 1 {
		_ = s.SetColumnWidth(col, w-1)
	}
}

// SetColumnPrecision sets col's display precision, rejecting negative
// values.
func (s *Sheet) SetColumnPrecision(col uint16, precision int) error {
	if precision < 0 {
		return ErrColumnPrecisionNegative
	}
	prev := s.cells.column(col).Precision
	s.cells.setColumnPrecision(col, precision)
	s.record(changeEntry{kind: changeSetColumnPrecision, col: col, prevPrecision: prev})
	s.endDefaultGroup()
	return nil
}

// IncPrecision increases col's precision by one.
func (s *Sheet) IncPrecision(col uint16) {
	_ = s.SetColumnPrecision(col, s.cells.column(col).Precision+1)
}

// DecPrecision decreases col's precision by one, refusing to go below
// 0.
func (s *Sheet) DecPrecision(col uint16) {
	if p := s.cells.column(col).Precision; p > 0 {
		_ = s.SetColumnPrecision(col, p-1)
	}
}

// restore re-installs an archived cell via the normal insert path, so
// the reinstallation itself records a fresh, symmetric undo entry.
func (s *Sheet) restore(pos Position, archived archivedCell) {
	if archived.label {
		s.InsertLabel(pos, archived.value.Str)
		return
	}
	s.Insert(pos, archived.expr, archived.volatile)
}

// applyInverse performs the operation that undoes e, recording its own
// symmetric entry onto target via the replay path.
func (s *Sheet) applyInverse(e changeEntry) {
	switch e.kind {
	case changeSetCell:
		if !e.hasHandle {
			s.Delete(e.pos)
			return
		}
		archived, _ := s.arena.take(e.handle)
		s.restore(e.pos, archived)
	case changeDeleteCell:
		archived, _ := s.arena.take(e.handle)
		s.restore(e.pos, archived)
	case changeSetColumnWidth:
		_ = s.SetColumnWidth(e.col, e.prevWidth)
	case changeSetColumnPrecision:
		_ = s.SetColumnPrecision(e.col, e.prevPrecision)
	}
}

// Undo reverts the most recent undo group, pushing its inverse onto
// the redo log (§4.7).
func (s *Sheet) Undo() {
	if s.undoLog.empty() {
		return
	}
	s.undoLog.clearTopBoundary()
	s.replayTarget = s.redoLog
	for !s.undoLog.empty() && !s.undoLog.topIsBoundary() {
		s.applyInverse(s.undoLog.pop())
	}
	s.replayTarget = nil
	s.redoLog.endGroup()
}

// Redo re-applies the most recently undone group, pushing its inverse
// back onto the undo log (§4.7).
func (s *Sheet) Redo() {
	if s.redoLog.empty() {
		return
	}
	s.redoLog.clearTopBoundary()
	s.replayTarget = s.undoLog
	for !s.redoLog.empty() && !s.redoLog.topIsBoundary() {
		s.applyInverse(s.redoLog.pop())
	}
	s.replayTarget = nil
	s.undoLog.endGroup()
}
