// Package sat implements the Boolean CDCL kernel: the trail, the
// backtrackable cell store, watched-literal BCP, 1-UIP conflict analysis and
// the restart/search loop. It knows nothing about integer domains or
// constraint propagators beyond the Dispatcher hook, which is how the csp
// package layers finite-domain propagation on top of it through the same
// propagator protocol.
package sat

import (
	"fmt"
	"sort"
	"time"

	"github.com/hashicorp/go-hclog"
)

// watcher is a clause registered on the watch list of one of its two
// watched literals.
type watcher struct {
	clause *Clause
	// guard is one of the clause's other literals. If true, the clause is
	// already satisfied and propagating it can be skipped cheaply.
	guard Literal
}

type undoKind uint8

const (
	undoAssign undoKind = iota
	undoCell
)

// undoEntry is one record of the combined undo log. Both literal
// assignments and backtrackable-cell writes are journaled onto the same
// log so that cancelUntil can restore them in the exact reverse order in
// which they happened: after cancelUntil(L), state is bitwise identical
// to the state just after the level-L marker was pushed.
type undoEntry struct {
	kind    undoKind
	cellRef CellRef
	cellVal any
}

// Dispatcher lets a higher layer (the csp package's propagator scheduler)
// hook into the Boolean core's propagation loop, running wake-on-lit and
// schedule-on-* propagators without the sat package needing to know
// anything about integer variables or propagators.
type Dispatcher interface {
	// OnAssign runs every wake-on-lit propagator subscribed to lit,
	// synchronously, before BCP moves on to the next queued literal. It
	// returns a conflict clause, or nil.
	OnAssign(lit Literal) *Clause
	// RunScheduled dequeues and runs at most one schedule-on-* propagator.
	// progressed reports whether anything was dequeued at all.
	RunScheduled() (progressed bool, conflict *Clause)
	// Cancel discards pending schedule-on-* entries above the level the
	// solver just backtracked to.
	Cancel()
}

// DecisionFunc selects the next branching literal; Search then asserts it as
// a new decision level. ok is false when every variable is already
// assigned (a full solution has been found). While Solver.Decide is nil,
// the solver picks the highest-VSIDS-score unassigned variable and its saved
// or positive phase; the csp package sets Decide to implement its own
// configurable variable/value branching heuristics.
type DecisionFunc func() (lit Literal, ok bool)

// Options configures a Solver.
type Options struct {
	ClauseDecay   float64
	VariableDecay float64
	PhaseSaving   bool
	MaxConflicts  int64         // <0 disables the conflict-count stop condition
	Timeout       time.Duration // <0 disables the timeout stop condition
	Logger        hclog.Logger  // nil installs a discarding logger

	// Learning toggles clause learning. Disabling it does not disable
	// 1-UIP analysis (still needed to compute a sound backjump level) but
	// runs ReduceDB before every decision while more than one learnt clause
	// is held, repeatedly halving the learnt database (clauses currently
	// serving as antecedents are kept), the closest equivalent reachable
	// without restructuring Search into chronological backtracking (see
	// DESIGN.md).
	Learning bool

	// Restarting and RestartFirst configure the restart policy. When
	// Restarting is false, Solve runs a single, unbounded Search.
	Restarting   bool
	RestartFirst int
}

// DefaultOptions are sane defaults in the style of classic MiniSat-family
// solvers.
var DefaultOptions = Options{
	ClauseDecay:   0.999,
	VariableDecay: 0.95,
	PhaseSaving:   false,
	MaxConflicts:  -1,
	Timeout:       -1,
	Learning:      true,
	Restarting:    true,
	RestartFirst:  100,
}

// Solver is the Boolean CDCL kernel.
type Solver struct {
	// Clause database.
	constraints []*Clause
	learnts     []*Clause
	clauseInc   float64
	clauseDecay float64

	// Variable ordering (default decision heuristic).
	activities []float64
	varInc     float64
	varDecay   float64
	order      *VarOrder

	// Decision hook, overridable by a higher layer.
	Decide DecisionFunc

	// Propagation and watchers.
	watchers  [][]watcher
	propQueue *Queue[Literal]

	// Optional higher-layer propagator dispatcher (nil in pure-SAT mode).
	Dispatcher Dispatcher

	// Per-literal current value.
	assigns []LBool

	// Trail.
	trail    []Literal
	trailLim []int // indices into undoLog, one per decision level
	undoLog  []undoEntry
	reason   []*Clause
	level    []int

	cellStore cells

	// True whenever a root-level conflict has been derived.
	unsat bool

	// Reserved variable forced true at construction; used by higher layers
	// that need a constant-true/-false literal (e.g. to represent a CSP
	// bound known to be trivially satisfied).
	TrueLit  Literal
	FalseLit Literal

	// Search statistics.
	TotalConflicts  int64
	TotalRestarts   int64
	TotalIterations int64
	startTime       time.Time

	hasStopCond bool
	maxConflict int64
	timeout     time.Duration

	learning     bool
	restarting   bool
	restartFirst int

	// Models recorded by Solve/Search: one []bool per solution found,
	// indexed by variable ID.
	Models [][]bool

	seenVar *ResetSet

	tmpWatchers []watcher
	tmpLearnts  []Literal
	tmpReason   []Literal

	log hclog.Logger
}

// NewSolver returns a new, empty Solver.
func NewSolver(opts Options) *Solver {
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	restartFirst := opts.RestartFirst
	if restartFirst <= 0 {
		restartFirst = 100
	}

	s := &Solver{
		clauseDecay:  opts.ClauseDecay,
		varDecay:     opts.VariableDecay,
		clauseInc:    1,
		varInc:       1,
		propQueue:    NewQueue[Literal](128),
		order:        NewVarOrder(opts.VariableDecay, opts.PhaseSaving),
		maxConflict:  -1,
		timeout:      -1,
		seenVar:      &ResetSet{},
		log:          logger,
		learning:     opts.Learning,
		restarting:   opts.Restarting,
		restartFirst: restartFirst,
	}
	if opts.MaxConflicts >= 0 {
		s.hasStopCond = true
		s.maxConflict = opts.MaxConflicts
	}
	if opts.Timeout >= 0 {
		s.hasStopCond = true
		s.timeout = opts.Timeout
	}

	s.TrueLit = s.PositiveLiteral(s.AddVariable())
	s.FalseLit = s.TrueLit.Opposite()
	if _, ok := NewClause(s, []Literal{s.TrueLit}, false); !ok {
		panic("sat: impossible conflict asserting the reserved true literal")
	}

	return s
}

func NewDefaultSolver() *Solver {
	return NewSolver(DefaultOptions)
}

func (s *Solver) shouldStop() bool {
	if !s.hasStopCond {
		return false
	}
	if s.maxConflict >= 0 && s.maxConflict <= s.TotalConflicts {
		return true
	}
	if s.timeout >= 0 && s.timeout <= time.Since(s.startTime) {
		return true
	}
	return false
}

func (s *Solver) PositiveLiteral(varID int) Literal { return PositiveLiteral(varID) }
func (s *Solver) NegativeLiteral(varID int) Literal { return NegativeLiteral(varID) }

func (s *Solver) NumVariables() int  { return len(s.assigns) / 2 }
func (s *Solver) NumAssigns() int    { return len(s.trail) }
func (s *Solver) NumConstraints() int { return len(s.constraints) }
func (s *Solver) NumLearnts() int    { return len(s.learnts) }

func (s *Solver) VarValue(x int) LBool      { return s.assigns[PositiveLiteral(x)] }
func (s *Solver) LitValue(l Literal) LBool  { return s.assigns[l] }
func (s *Solver) AssignLevel(v int) int     { return s.level[v] }
func (s *Solver) DecisionLevel() int        { return len(s.trailLim) }

// AddVariable allocates a fresh boolean variable and returns its ID.
func (s *Solver) AddVariable() int {
	id := s.NumVariables()
	s.watchers = append(s.watchers, nil, nil)
	s.reason = append(s.reason, nil)
	s.seenVar.Expand()
	s.assigns = append(s.assigns, Unknown, Unknown)
	s.level = append(s.level, -1)
	s.activities = append(s.activities, 0)
	s.order.NewVar(0, true)
	return id
}

// Watch registers clause c to be woken when literal watch becomes true
// (i.e. its negation propagates).
func (s *Solver) Watch(c *Clause, watch Literal, guard Literal) {
	s.watchers[watch] = append(s.watchers[watch], watcher{clause: c, guard: guard})
}

// Unwatch removes clause c from the watch list of literal watch.
func (s *Solver) Unwatch(c *Clause, watch Literal) {
	ws := s.watchers[watch]
	j := 0
	for i := range ws {
		if ws[i].clause != c {
			ws[j] = ws[i]
			j++
		}
	}
	s.watchers[watch] = ws[:j]
}

// AddClause posts an original clause. It can only be called at decision
// level 0: domain surgery and constraint posting happen before search.
// It never raises: if the clause is immediately contradictory,
// Solver.unsat is set and the caller should treat the model as UNSAT.
func (s *Solver) AddClause(lits []Literal) {
	if s.DecisionLevel() != 0 {
		panic("sat: AddClause called above decision level 0")
	}
	if s.unsat {
		return
	}
	c, ok := NewClause(s, lits, false)
	if c != nil {
		s.constraints = append(s.constraints, c)
	}
	if !ok {
		s.unsat = true
	}
}

// IsUnsat reports whether a root-level conflict has already been derived.
func (s *Solver) IsUnsat() bool { return s.unsat }

// PushLiteral is the embedding point for propagators: it asserts lit
// because every literal in trueFacts currently holds. If lit is already
// false, the implied antecedent clause is returned as a conflict, since
// it is false under the current assignment. If lit is already true, this
// is a no-op. Otherwise lit is enqueued with the antecedent recorded for
// later conflict analysis.
func (s *Solver) PushLiteral(lit Literal, trueFacts []Literal) *Clause {
	falseLits := make([]Literal, len(trueFacts))
	for i, f := range trueFacts {
		falseLits[i] = f.Opposite()
	}

	switch s.LitValue(lit) {
	case True:
		return nil
	case False:
		return newReasonClause(lit, falseLits)
	default:
		var ant *Clause
		if len(falseLits) > 0 {
			ant = newReasonClause(lit, falseLits)
		}
		s.enqueue(lit, ant)
		return nil
	}
}

// Simplify removes clauses satisfied at the root level. It must only be
// called at decision level 0 with an empty propagation queue.
func (s *Solver) Simplify() bool {
	if s.DecisionLevel() != 0 {
		panic("sat: Simplify called above decision level 0")
	}
	if s.propQueue.Size() != 0 {
		panic("sat: Simplify called with a non-empty propagation queue")
	}
	if s.unsat || s.propagateAll() != nil {
		s.unsat = true
		return false
	}
	s.simplifyClauses(&s.learnts)
	s.simplifyClauses(&s.constraints)
	return true
}

func (s *Solver) simplifyClauses(clausesPtr *[]*Clause) {
	clauses := *clausesPtr
	j := 0
	for i := range clauses {
		if clauses[i].Simplify(s) {
			clauses[i].Remove(s)
		} else {
			clauses[j] = clauses[i]
			j++
		}
	}
	*clausesPtr = clauses[:j]
}

// ReduceDB halves the learnt clause database, keeping locked clauses
// (clauses that are currently an antecedent) and the most active half.
func (s *Solver) ReduceDB() {
	lim := s.clauseInc / float64(len(s.learnts))

	sort.Slice(s.learnts, func(i, j int) bool {
		return s.learnts[i].activity < s.learnts[j].activity
	})

	i, j := 0, 0
	for ; i < len(s.learnts)/2; i++ {
		if s.learnts[i].locked(s) {
			s.learnts[j] = s.learnts[i]
			j++
		} else {
			s.learnts[i].Remove(s)
		}
	}
	for ; i < len(s.learnts); i++ {
		if !s.learnts[i].locked(s) && s.learnts[i].activity < lim {
			s.learnts[i].Remove(s)
		} else {
			s.learnts[j] = s.learnts[i]
			j++
		}
	}
	s.learnts = s.learnts[:j]
	s.log.Debug("reduced clause database", "remaining_learnts", len(s.learnts))
}

// Search runs BCP/propagation and search decisions until nConflicts
// conflicts have been hit since the last restart (returning Unknown so the
// caller can restart with a larger budget), a solution is found (True), a
// root-level conflict is derived (False), or a stop condition fires
// (Unknown).
func (s *Solver) Search(nConflicts, nLearnts int) LBool {
	if s.unsat {
		return False
	}
	s.TotalRestarts++
	conflictCount := 0

	for !s.shouldStop() {
		s.TotalIterations++

		if conflict := s.propagateAll(); conflict != nil {
			conflictCount++
			s.TotalConflicts++

			if s.DecisionLevel() == 0 {
				s.unsat = true
				return False
			}

			learnt, backtrackLevel := s.analyze(conflict)
			s.cancelUntil(backtrackLevel)
			s.record(learnt)
			s.DecayClauseActivity()
			s.DecayVarActivity()
			continue
		}

		if s.DecisionLevel() == 0 {
			s.Simplify()
		}
		if !s.learning && len(s.learnts) > 1 {
			s.ReduceDB()
		} else if nLearnts > 0 && len(s.learnts)-s.NumAssigns() >= nLearnts {
			s.ReduceDB()
		}

		lit, ok := s.decide()
		if !ok {
			s.saveModel()
			s.cancelUntil(0)
			return True
		}
		if conflictCount > nConflicts {
			s.cancelUntil(0)
			return Unknown
		}
		s.assume(lit)
	}
	return Unknown
}

// decide calls the installed DecisionFunc, or falls back to VSIDS order.
func (s *Solver) decide() (Literal, bool) {
	if s.Decide != nil {
		return s.Decide()
	}
	v, ok := s.order.next(func(v int) bool { return s.VarValue(v) == Unknown })
	if !ok {
		return 0, false
	}
	switch s.order.phase(v) {
	case False:
		return NegativeLiteral(v), true
	default:
		return PositiveLiteral(v), true
	}
}

// Solve runs the full restart loop until a definite SAT/UNSAT answer is
// reached or a stop condition fires (in which case it returns Unknown).
func (s *Solver) Solve() LBool {
	numConflicts := s.restartFirst
	if !s.restarting {
		numConflicts = 1 << 30 // a single, effectively unbounded Search
	}
	numLearnts := s.NumConstraints() / 3
	status := Unknown
	s.startTime = time.Now()

	for status == Unknown {
		status = s.Search(numConflicts, numLearnts)
		if s.restarting {
			numConflicts += numConflicts / 10
		}
		numLearnts += numLearnts / 20
		if s.shouldStop() {
			break
		}
	}

	s.log.Info("search finished",
		"status", status.String(),
		"conflicts", s.TotalConflicts,
		"restarts", s.TotalRestarts,
		"learnts", len(s.learnts),
	)
	s.cancelUntil(0)
	return status
}

func (s *Solver) BumpClauseActivity(c *Clause) {
	c.activity += s.clauseInc
	if c.activity > 1e100 {
		s.clauseInc *= 1e-100
		for _, l := range s.learnts {
			l.activity *= 1e-100
		}
	}
}

// BumpVarActivity bumps l's variable's VSIDS score. Exported so that
// propagators (e.g. pseudo-Boolean, all-different) can bump activity for
// variables involved in their own explanations, the way original clauses
// already do implicitly via analysis.
func (s *Solver) BumpVarActivity(l Literal) {
	s.order.Bump(l.VarID())
}

func (s *Solver) DecayClauseActivity() { s.clauseInc *= s.clauseDecay }
func (s *Solver) DecayVarActivity()    { s.order.Decay() }

// propagateAll runs the full dispatch loop: BCP to a fixpoint, then one
// scheduled propagator, repeating until both the BCP queue and the
// propagator queue are empty (a fixpoint) or a conflict is found.
func (s *Solver) propagateAll() *Clause {
	for {
		if conflict := s.bcp(); conflict != nil {
			return conflict
		}
		if s.Dispatcher == nil {
			return nil
		}
		progressed, conflict := s.Dispatcher.RunScheduled()
		if conflict != nil {
			return conflict
		}
		if !progressed {
			return nil
		}
		// The scheduled propagator may have pushed literals; go back to BCP.
	}
}

// bcp drains the unit-propagation queue: standard watched-literal BCP,
// interleaved with the Dispatcher's wake-on-lit subscribers for each
// literal as it is popped (the wake-on-lit subscribers run first).
func (s *Solver) bcp() *Clause {
	for s.propQueue.Size() > 0 {
		l := s.propQueue.Pop()

		if s.Dispatcher != nil {
			if conflict := s.Dispatcher.OnAssign(l); conflict != nil {
				s.propQueue.Clear()
				return conflict
			}
		}

		s.tmpWatchers = append(s.tmpWatchers[:0], s.watchers[l]...)
		s.watchers[l] = s.watchers[l][:0]

		for i, w := range s.tmpWatchers {
			if s.LitValue(w.guard) == True {
				s.watchers[l] = append(s.watchers[l], w)
				continue
			}
			if w.clause.Propagate(s, l) {
				continue
			}
			s.watchers[l] = append(s.watchers[l], s.tmpWatchers[i+1:]...)
			s.propQueue.Clear()
			return s.tmpWatchers[i].clause
		}
	}
	return nil
}

func (s *Solver) enqueue(l Literal, from *Clause) bool {
	switch s.LitValue(l) {
	case False:
		return false
	case True:
		return true
	default:
		v := l.VarID()
		s.assigns[l] = True
		s.assigns[l.Opposite()] = False
		s.level[v] = s.DecisionLevel()
		s.reason[v] = from
		s.trail = append(s.trail, l)
		s.undoLog = append(s.undoLog, undoEntry{kind: undoAssign})
		s.propQueue.Push(l)
		return true
	}
}

func (s *Solver) explain(c *Clause, l Literal) []Literal {
	if l == -1 {
		c.ExplainFailure(s, &s.tmpReason)
	} else {
		c.ExplainAssign(s, &s.tmpReason)
	}
	return s.tmpReason
}

// analyze implements 1-UIP conflict analysis: it resolves backward from
// confl along the trail until exactly one literal at the current decision
// level remains (the first UIP), returning the learnt clause (UIP first)
// and the backjump level.
func (s *Solver) analyze(confl *Clause) ([]Literal, int) {
	nImplicationPoints := 0

	s.tmpLearnts = append(s.tmpLearnts[:0], -1) // reserve slot 0 for the UIP

	nextLiteral := len(s.trail) - 1
	l := Literal(-1) // sentinel meaning "the conflict itself"
	s.seenVar.Clear()
	backtrackLevel := 0

	for {
		for _, q := range s.explain(confl, l) {
			v := q.VarID()
			if s.seenVar.Contains(v) {
				continue
			}
			s.seenVar.Add(v)
			s.BumpVarActivity(q)

			if s.level[v] == s.DecisionLevel() {
				nImplicationPoints++
				continue
			}
			s.tmpLearnts = append(s.tmpLearnts, q.Opposite())
			if lv := s.level[v]; lv > backtrackLevel {
				backtrackLevel = lv
			}
		}

		for {
			l = s.trail[nextLiteral]
			nextLiteral--
			v := l.VarID()
			confl = s.reason[v]
			if s.seenVar.Contains(v) {
				break
			}
		}

		nImplicationPoints--
		if nImplicationPoints <= 0 {
			break
		}
	}

	s.tmpLearnts[0] = l.Opposite()
	return s.minimize(s.tmpLearnts), backtrackLevel
}

// minimize drops any non-UIP literal whose antecedent's remaining literals
// are all already present in the clause: such a literal adds nothing a
// resolution step wouldn't already conclude.
func (s *Solver) minimize(learnt []Literal) []Literal {
	if len(learnt) <= 1 {
		return learnt
	}
	kept := learnt[:1]
	for _, lit := range learnt[1:] {
		if !s.redundant(lit) {
			kept = append(kept, lit)
		}
	}
	return kept
}

func (s *Solver) redundant(lit Literal) bool {
	ant := s.reason[lit.VarID()]
	if ant == nil {
		return false
	}
	for _, other := range ant.literals[1:] {
		v := other.VarID()
		if !s.seenVar.Contains(v) && s.level[v] != 0 {
			return false
		}
	}
	return true
}

func (s *Solver) record(clause []Literal) {
	c, _ := NewClause(s, clause, true)
	s.enqueue(clause[0], c)
	if c != nil {
		s.learnts = append(s.learnts, c)
	}
}

func (s *Solver) undoOneAssignment() {
	l := s.trail[len(s.trail)-1]
	v := l.VarID()
	val := s.VarValue(v)

	s.order.Reinsert(v, val)
	s.assigns[l] = Unknown
	s.assigns[l.Opposite()] = Unknown
	s.reason[v] = nil
	s.level[v] = -1
	s.trail = s.trail[:len(s.trail)-1]
}

func (s *Solver) assume(l Literal) bool {
	s.trailLim = append(s.trailLim, len(s.undoLog))
	return s.enqueue(l, nil)
}

// cancelUntil rewinds the trail and the cell store to the state they were
// in just after decision level L's marker was pushed, undoing literal
// assignments and cell writes in exact reverse chronological order.
func (s *Solver) cancelUntil(level int) {
	for s.DecisionLevel() > level {
		lim := s.trailLim[len(s.trailLim)-1]
		for len(s.undoLog) > lim {
			e := s.undoLog[len(s.undoLog)-1]
			s.undoLog = s.undoLog[:len(s.undoLog)-1]
			switch e.kind {
			case undoAssign:
				s.undoOneAssignment()
			case undoCell:
				s.cellStore.values[e.cellRef] = e.cellVal
			}
		}
		s.trailLim = s.trailLim[:len(s.trailLim)-1]
		if s.Dispatcher != nil {
			s.Dispatcher.Cancel()
		}
	}
}

func (s *Solver) saveModel() {
	model := make([]bool, s.NumVariables())
	for i := range model {
		lb := s.VarValue(i)
		if lb == Unknown {
			panic("sat: saveModel called without a complete assignment")
		}
		model[i] = lb == True
	}
	s.Models = append(s.Models, model)
}

func (s *Solver) String() string {
	return fmt.Sprintf("Solver[vars=%d constraints=%d learnts=%d]",
		s.NumVariables(), len(s.constraints), len(s.learnts))
}
