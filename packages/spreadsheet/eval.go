package spreadsheet

// resolverFunc adapts a plain function to the Resolver interface so
// eval can pass itself to Expression.Eval without a named type (§4.4).
type resolverFunc func(Position) Value

func (f resolverFunc) Resolve(pos Position) Value { return f(pos) }

// markDirtyTransitive walks the dependent index outward from pos,
// marking every cell that transitively depends on it dirty and
// queuing it for the next update() pass (§4.6). Cells already dirty or
// queued are not revisited, bounding the walk to the dependency
// subgraph actually reachable from pos.
func (s *Sheet) markDirtyTransitive(pos Position) {
	stack := []Position{pos}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, entry := range s.deps.Search(PointRange(p)) {
			for _, dep := range entry.Value {
				dpos := dep.TopLeft
				c, ok := s.cells.get(dpos)
				if !ok || c.state == stateDirty || c.state == stateEnqueued {
					continue
				}
				c.state = stateEnqueued
				s.queue = append(s.queue, dpos)
				stack = append(stack, dpos)
			}
		}
	}
}

// eval computes (or returns the memoized) value of the cell at pos,
// recursively resolving its dependencies and detecting cycles via the
// stateComputing guard (§4.6, §7: ErrCyclicalReference).
func (s *Sheet) eval(pos Position) Value {
	c, ok := s.cells.get(pos)
	if !ok {
		s.enqueueDependents(pos)
		return ErrValue(ErrNotEvaluable)
	}
	switch c.state {
	case stateUpToDate:
		return s.cells.valueOf(c)
	case stateComputing:
		return ErrValue(ErrCyclicalReference)
	}
	c.state = stateComputing
	v := c.expr.Eval(resolverFunc(s.eval))
	s.cells.setValue(c, v)
	c.state = stateUpToDate
	return v
}

// enqueueDependents marks every direct dependent of pos as enqueued
// for re-evaluation, without recursing further (§4.6 eval, "no cell
// exists at pos" case). Dependents already pending, or currently being
// computed further up the eval stack, keep their state so the
// stateComputing cycle guard is never cleared mid-evaluation.
func (s *Sheet) enqueueDependents(pos Position) {
	for _, entry := range s.deps.Search(PointRange(pos)) {
		for _, dep := range entry.Value {
			dpos := dep.TopLeft
			c, ok := s.cells.get(dpos)
			if !ok || c.state == stateDirty || c.state == stateEnqueued || c.state == stateComputing {
				continue
			}
			c.state = stateEnqueued
			s.queue = append(s.queue, dpos)
		}
	}
}

// MarkVolatile flips the cell at pos to volatile, so every future
// RefreshVolatile/Update call re-evaluates it regardless of its
// dependency state, and enqueues it immediately if it isn't already
// pending. Reports whether a cell existed at pos to mark.
func (s *Sheet) MarkVolatile(pos Position) bool {
	c, ok := s.cells.get(pos)
	if !ok {
		return false
	}
	c.volatile = true
	if c.state == stateUpToDate {
		c.state = stateEnqueued
		s.queue = append(s.queue, pos)
	}
	return true
}

// RefreshVolatile enqueues every up-to-date volatile cell for
// re-evaluation, independent of a full Update() pass, so a front-end
// driving its own volatile-refresh cadence (e.g. a clock tick) doesn't
// need to also drain the rest of the pending queue in the same call.
func (s *Sheet) RefreshVolatile() {
	for _, c := range s.cells.all() {
		if c.volatile && c.state == stateUpToDate {
			c.state = stateEnqueued
			s.queue = append(s.queue, c.pos)
		}
	}
}

// Update runs the evaluation engine: every volatile cell is marked
// dirty regardless of its dependency state, then the shared
// dirty/enqueued queue is drained, evaluating each cell still pending
// once its dependencies have settled (§4.6, §9: "a single shared queue
// for both phases").
func (s *Sheet) Update() {
	s.RefreshVolatile()
	for len(s.queue) > 0 {
		pos := s.queue[0]
		s.queue = s.queue[1:]
		if c, ok := s.cells.get(pos); ok && c.state != stateUpToDate {
			s.eval(pos)
		}
	}
}
