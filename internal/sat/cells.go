package sat

// CellRef is an opaque reference to a backtrackable cell. Propagators use it
// to hold private state that must be rolled back automatically whenever the
// solver backtracks, without having to hand-write undo logic themselves.
type CellRef int

// cells is the backtrackable bump-allocated store backing CellRef. Writes
// through Solver.SetCell are journaled onto the solver's undo log so that
// cancelUntil restores them for free; reads via Solver.GetCell are not
// journaled.
type cells struct {
	values []any
}

func (c *cells) alloc(v any) CellRef {
	ref := CellRef(len(c.values))
	c.values = append(c.values, v)
	return ref
}

func (c *cells) get(ref CellRef) any {
	return c.values[ref]
}

func (c *cells) set(ref CellRef, v any) any {
	old := c.values[ref]
	c.values[ref] = v
	return old
}

// AllocCell allocates a new backtrackable cell initialized to v and returns
// a reference to it. Cells allocated after the root level are NOT freed on
// backtrack (the slot stays alive, mirroring a bump allocator); propagators
// are expected to allocate their cells once, at post time.
func (s *Solver) AllocCell(v any) CellRef {
	return s.cellStore.alloc(v)
}

// GetCell returns the current value of the cell referenced by ref.
func (s *Solver) GetCell(ref CellRef) any {
	return s.cellStore.get(ref)
}

// SetCell writes v into the cell referenced by ref. The previous value is
// journaled onto the undo log so that it is automatically restored by a
// later cancelUntil.
func (s *Solver) SetCell(ref CellRef, v any) {
	old := s.cellStore.set(ref, v)
	s.undoLog = append(s.undoLog, undoEntry{kind: undoCell, cellRef: ref, cellVal: old})
}
