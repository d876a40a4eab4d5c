package csp

import (
	"fmt"

	"github.com/go-lcg/lcg/internal/sat"
)

// BoolVar is a 0/1 decision variable, a thin wrapper around a Boolean-core
// variable ID. It exists so front-ends posting clausal constraints (element,
// reified linear, pseudo-Boolean) don't have to reach into internal/sat
// directly.
type BoolVar int

// Lit returns the literal asserting x is true.
func (x BoolVar) Lit() sat.Literal { return sat.PositiveLiteral(int(x)) }

// NotLit returns the literal asserting x is false.
func (x BoolVar) NotLit() sat.Literal { return sat.NegativeLiteral(int(x)) }

// CSPVar is a finite-domain integer variable over [lo, hi], encoded as two
// families of literals (order and equality):
//
//   - leq[k-lo] is true iff x <= k, for k in [lo, hi-1] (leq(x,hi) is the
//     constant true and is never materialized).
//   - eq[k-lo] is true iff x == k, for k in [lo, hi].
//
// and tied together by the channeling clauses posted at construction time
// (I1 monotonicity, I2 equality decoding, I3 coverage).
type CSPVar struct {
	id     int // index into Solver.intVars, used by the dom/wdeg heuristic
	lo, hi int
	leq    []sat.Literal
	eq     []sat.Literal
}

// Lo and Hi return the variable's static bounds (the domain it was created
// with, not its current bounds — use Min/Max for that).
func (x CSPVar) Lo() int { return x.lo }
func (x CSPVar) Hi() int { return x.hi }

// leqLit returns the literal representing x <= k, including the constant
// literals for k outside [lo, hi-1].
func (x CSPVar) leqLit(s *Solver, k int) sat.Literal {
	if k >= x.hi {
		return s.sat.TrueLit
	}
	if k < x.lo {
		return s.sat.FalseLit
	}
	return x.leq[k-x.lo]
}

// eqLit returns the literal representing x == k, including the constant
// false literal for k outside [lo, hi].
func (x CSPVar) eqLit(s *Solver, k int) sat.Literal {
	if k < x.lo || k > x.hi {
		return s.sat.FalseLit
	}
	return x.eq[k-x.lo]
}

// Leq returns the literal asserting x <= k (exported for propagators that
// need to cite it in an explanation).
func (x CSPVar) Leq(s *Solver, k int) sat.Literal { return x.leqLit(s, k) }

// Geq returns the literal asserting x >= k.
func (x CSPVar) Geq(s *Solver, k int) sat.Literal { return x.leqLit(s, k-1).Opposite() }

// Eq returns the literal asserting x == k.
func (x CSPVar) Eq(s *Solver, k int) sat.Literal { return x.eqLit(s, k) }

// Neq returns the literal asserting x != k.
func (x CSPVar) Neq(s *Solver, k int) sat.Literal { return x.eqLit(s, k).Opposite() }

// NewCSPVar creates an integer variable ranging over [lo, hi] and posts its
// channeling clauses. hi < lo is rejected with ErrUnsat: an empty domain is
// a root-level failure rather than a panic.
func (s *Solver) NewCSPVar(lo, hi int) (CSPVar, error) {
	if hi < lo {
		return CSPVar{}, ErrUnsat
	}

	x := CSPVar{id: len(s.intVars), lo: lo, hi: hi}
	n := hi - lo // number of non-constant leq literals: k in [lo, hi-1]
	x.leq = make([]sat.Literal, n)
	for i := range x.leq {
		x.leq[i] = s.sat.PositiveLiteral(s.sat.AddVariable())
	}
	x.eq = make([]sat.Literal, hi-lo+1)
	for i := range x.eq {
		x.eq[i] = s.sat.PositiveLiteral(s.sat.AddVariable())
	}

	// I1: leq(k) -> leq(k+1), for every consecutive pair including the
	// implicit constant leq(hi) = true.
	for k := lo; k < hi; k++ {
		s.sat.AddClause([]sat.Literal{x.leqLit(s, k).Opposite(), x.leqLit(s, k+1)})
	}

	for k := lo; k <= hi; k++ {
		// I2: eq(k) -> leq(k) and eq(k) -> !leq(k-1).
		s.sat.AddClause([]sat.Literal{x.eqLit(s, k).Opposite(), x.leqLit(s, k)})
		s.sat.AddClause([]sat.Literal{x.eqLit(s, k).Opposite(), x.leqLit(s, k-1).Opposite()})
		// I2, converse: leq(k) & !leq(k-1) -> eq(k). With leq(hi) fixed
		// true, this also yields I3 coverage.
		s.sat.AddClause([]sat.Literal{
			x.leqLit(s, k).Opposite(),
			x.leqLit(s, k-1),
			x.eqLit(s, k),
		})
	}

	s.intVars = append(s.intVars, x)
	s.wDeg = append(s.wDeg, 0)
	return x, nil
}

// NewCSPVarArray creates n independent integer variables over [lo, hi].
func (s *Solver) NewCSPVarArray(n, lo, hi int) ([]CSPVar, error) {
	xs := make([]CSPVar, n)
	for i := range xs {
		x, err := s.NewCSPVar(lo, hi)
		if err != nil {
			return nil, err
		}
		xs[i] = x
	}
	return xs, nil
}

// NewBoolVar creates a fresh 0/1 decision variable.
func (s *Solver) NewBoolVar() BoolVar {
	return BoolVar(s.sat.AddVariable())
}

// Min returns x's current lower bound, found by scanning the leq literals
// for the first one that is not known false.
func (s *Solver) Min(x CSPVar) int {
	k := x.lo
	for k <= x.hi && s.sat.LitValue(x.leqLit(s, k)) == sat.False {
		k++
	}
	return k
}

// Max returns x's current upper bound.
func (s *Solver) Max(x CSPVar) int {
	k := x.lo
	for s.sat.LitValue(x.leqLit(s, k)) != sat.True {
		k++
	}
	return k
}

// InDomain reports whether k is still in x's domain: eq(x,k) and leq(x,k)
// are not known false, and leq(x,k-1) is not known true.
func (s *Solver) InDomain(x CSPVar, k int) bool {
	if k < x.lo || k > x.hi {
		return false
	}
	return s.sat.LitValue(x.eqLit(s, k)) != sat.False &&
		s.sat.LitValue(x.leqLit(s, k)) != sat.False &&
		s.sat.LitValue(x.leqLit(s, k-1)) != sat.True
}

// DomSize returns the number of values currently in x's domain.
func (s *Solver) DomSize(x CSPVar) int {
	n := 0
	for k := s.Min(x); k <= s.Max(x); k++ {
		if s.InDomain(x, k) {
			n++
		}
	}
	return n
}

// IsFixed reports whether x is assigned a single value.
func (s *Solver) IsFixed(x CSPVar) bool { return s.Min(x) == s.Max(x) }

// pushLeq asserts x <= k, justified by facts, for use by propagators during
// search. It returns a conflict clause, or nil.
func (x CSPVar) pushLeq(s *Solver, k int, facts []sat.Literal) *sat.Clause {
	return s.sat.PushLiteral(x.leqLit(s, k), facts)
}

// pushGeq asserts x >= k, justified by facts.
func (x CSPVar) pushGeq(s *Solver, k int, facts []sat.Literal) *sat.Clause {
	return s.sat.PushLiteral(x.leqLit(s, k-1).Opposite(), facts)
}

// pushNeq asserts x != k, justified by facts.
func (x CSPVar) pushNeq(s *Solver, k int, facts []sat.Literal) *sat.Clause {
	if k < x.lo || k > x.hi {
		return nil
	}
	return s.sat.PushLiteral(x.eqLit(s, k).Opposite(), facts)
}

// pushEq asserts x == k, justified by facts.
func (x CSPVar) pushEq(s *Solver, k int, facts []sat.Literal) *sat.Clause {
	if k < x.lo || k > x.hi {
		return s.sat.PushLiteral(s.sat.FalseLit, facts) // unsatisfiable push
	}
	return s.sat.PushLiteral(x.eqLit(s, k), facts)
}

// rootPush runs a root-level (pre-search) domain surgery push and turns a
// resulting conflict into ErrUnsat.
func rootPush(conflict *sat.Clause) error {
	if conflict != nil {
		return ErrUnsat
	}
	return nil
}

// SetMin raises x's lower bound to k. It is a root-level operation: call
// it only before Solve.
func (s *Solver) SetMin(x CSPVar, k int) error {
	return rootPush(x.pushGeq(s, k, nil))
}

// SetMax lowers x's upper bound to k.
func (s *Solver) SetMax(x CSPVar, k int) error {
	return rootPush(x.pushLeq(s, k, nil))
}

// Remove removes k from x's domain.
func (s *Solver) Remove(x CSPVar, k int) error {
	return rootPush(x.pushNeq(s, k, nil))
}

// Assign fixes x to k.
func (s *Solver) Assign(x CSPVar, k int) error {
	return rootPush(x.pushEq(s, k, nil))
}

func (x CSPVar) String() string {
	return fmt.Sprintf("CSPVar[%d..%d]", x.lo, x.hi)
}
