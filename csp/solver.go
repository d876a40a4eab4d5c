// Package csp layers a finite-domain constraint solver with lazy clause
// generation on top of the internal/sat Boolean CDCL kernel: integer and
// set variables encoded as order/equality literal families, a propagator
// scheduler implementing the kernel's Dispatcher hook, and the constraint
// catalogue (linear inequality, all-different, and the rest) built on it.
package csp

import (
	"errors"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/go-lcg/lcg/internal/sat"
)

// Options configures a Solver: clause learning and restart policy, variable
// and value branching strategy, logger, and search limits. Verbosity and
// Trace are stored but not read by the solver; its log output goes to
// Logger at whatever level Logger was built with.
type Options struct {
	Learning     bool
	Restarting   bool
	RestartFirst int
	VarBranch    VarBranch
	ValBranch    ValBranch
	Verbosity    int
	Trace        bool
	MaxConflicts int64
	Timeout      time.Duration
	Logger       hclog.Logger
}

// DefaultOptions mirror the Boolean core's own defaults, with VSIDS variable
// and value branching, which leaves every decision to the Boolean core.
var DefaultOptions = Options{
	Learning:     true,
	Restarting:   true,
	RestartFirst: 100,
	VarBranch:    VarBranchVSIDS,
	ValBranch:    ValBranchVSIDS,
	MaxConflicts: -1,
	Timeout:      -1,
}

// Solver is the top-level finite-domain solver: a Boolean core, the
// propagator scheduler riding its Dispatcher hook, and the bookkeeping the
// embedding interface needs (variable registry, branching heuristics,
// solution history for ExcludeLast).
type Solver struct {
	sat       *sat.Solver
	scheduler *Scheduler
	opts      Options
	log       hclog.Logger

	intVars []CSPVar
	wDeg    []int // dom/wdeg failure counters, parallel to intVars

	lastSolution []bool // per-variable model of the most recent solution
}

// NewSolver returns a new, empty Solver configured per opts.
func NewSolver(opts Options) *Solver {
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	satOpts := sat.DefaultOptions
	satOpts.Logger = logger
	satOpts.Learning = opts.Learning
	satOpts.Restarting = opts.Restarting
	satOpts.RestartFirst = opts.RestartFirst
	satOpts.MaxConflicts = opts.MaxConflicts
	satOpts.Timeout = opts.Timeout

	s := &Solver{
		sat:  sat.NewSolver(satOpts),
		opts: opts,
		log:  logger,
	}
	s.scheduler = newScheduler(s)
	s.sat.Dispatcher = s.scheduler
	s.installBranching()
	return s
}

// NewDefaultSolver returns a Solver configured with DefaultOptions.
func NewDefaultSolver() *Solver {
	return NewSolver(DefaultOptions)
}

// Solve runs the search loop to completion (or until a configured stop
// condition fires) and reports whether a satisfying assignment was found.
// A false return with no error means the model is unsatisfiable; a
// nonzero error means search stopped early (timeout/conflict budget) with
// no definite answer yet.
func (s *Solver) Solve() (bool, error) {
	if s.sat.IsUnsat() {
		return false, nil
	}
	status := s.sat.Solve()
	switch status {
	case sat.True:
		s.lastSolution = s.sat.Models[len(s.sat.Models)-1]
		return true, nil
	case sat.False:
		return false, nil
	default:
		return false, errors.New("csp: search stopped before reaching a definite answer")
	}
}

// CspModelRange returns (lo, hi) for x in the most recently found solution,
// with lo == hi. It panics if called without a prior
// successful Solve — matching the embedding contract that callers only
// query a model they already know exists.
func (s *Solver) CspModelRange(x CSPVar) (int, int) {
	if s.lastSolution == nil {
		panic("csp: CspModelRange called without a solution on hand")
	}
	for k := x.lo; k <= x.hi; k++ {
		if lit := x.eqLit(s, k); s.lastSolution[lit.VarID()] == lit.IsPositive() {
			return k, k
		}
	}
	panic("csp: no value of x is true in the recorded model")
}

// ExcludeLast posts a clause blocking the most recently found solution,
// forcing Solve to search for a different one. It must be called at
// decision level 0, i.e. right after Solve returns.
func (s *Solver) ExcludeLast() error {
	if s.lastSolution == nil {
		return ErrUnsat
	}
	lits := make([]sat.Literal, 0, len(s.intVars))
	for _, x := range s.intVars {
		k, _ := s.CspModelRange(x)
		lits = append(lits, x.eqLit(s, k).Opposite())
	}
	s.sat.AddClause(lits)
	if s.sat.IsUnsat() {
		return ErrUnsat
	}
	return nil
}

// NumIntVars returns the number of integer variables created so far.
func (s *Solver) NumIntVars() int { return len(s.intVars) }
