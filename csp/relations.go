package csp

import (
	"fmt"

	"github.com/go-lcg/lcg/internal/sat"
)

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func absInt(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

// PostEq posts x == y, encoded directly as channeling clauses between the
// two variables' equality literals.
func (s *Solver) PostEq(x, y CSPVar) error {
	lo, hi := minInt(x.lo, y.lo), maxInt(x.hi, y.hi)
	for k := lo; k <= hi; k++ {
		s.sat.AddClause([]sat.Literal{x.eqLit(s, k).Opposite(), y.eqLit(s, k)})
		s.sat.AddClause([]sat.Literal{y.eqLit(s, k).Opposite(), x.eqLit(s, k)})
	}
	if s.sat.IsUnsat() {
		return ErrUnsat
	}
	return nil
}

// PostNeq posts x != y: for every value both domains could take, at most
// one of them takes it.
func (s *Solver) PostNeq(x, y CSPVar) error {
	lo, hi := maxInt(x.lo, y.lo), minInt(x.hi, y.hi)
	for k := lo; k <= hi; k++ {
		s.sat.AddClause([]sat.Literal{x.eqLit(s, k).Opposite(), y.eqLit(s, k).Opposite()})
	}
	if s.sat.IsUnsat() {
		return ErrUnsat
	}
	return nil
}

// PostLeq posts x <= y. The encoding is a family of binary clauses
// (!leq(y,k) \/ leq(x,k)): BCP alone keeps it bounds-consistent as either
// bound moves, so no dedicated propagator is needed.
func (s *Solver) PostLeq(x, y CSPVar) error {
	lo, hi := minInt(x.lo, y.lo), maxInt(x.hi, y.hi)
	for k := lo; k < hi; k++ {
		s.sat.AddClause([]sat.Literal{y.leqLit(s, k).Opposite(), x.leqLit(s, k)})
	}
	if s.sat.IsUnsat() {
		return ErrUnsat
	}
	return nil
}

// PostLess posts x < y, i.e. x <= y-1.
func (s *Solver) PostLess(x, y CSPVar) error {
	lo, hi := minInt(x.lo, y.lo), maxInt(x.hi, y.hi)
	for k := lo; k <= hi; k++ {
		s.sat.AddClause([]sat.Literal{y.leqLit(s, k).Opposite(), x.leqLit(s, k-1)})
	}
	if s.sat.IsUnsat() {
		return ErrUnsat
	}
	return nil
}

// minMaxProp is the shared bounds-consistency propagator for z = min(a, b)
// and z = max(a, b).
type minMaxProp struct {
	z, a, b CSPVar
	isMax   bool
}

func (p *minMaxProp) Wake(s *Solver, lit sat.Literal) *sat.Clause { return nil }

func (p *minMaxProp) Propagate(s *Solver) *sat.Clause {
	aMin, aMax := s.Min(p.a), s.Max(p.a)
	bMin, bMax := s.Min(p.b), s.Max(p.b)

	var lo, hi int
	if p.isMax {
		lo, hi = maxInt(aMin, bMin), maxInt(aMax, bMax)
	} else {
		lo, hi = minInt(aMin, bMin), minInt(aMax, bMax)
	}

	boundFacts := []sat.Literal{p.a.Geq(s, aMin), p.b.Geq(s, bMin)}
	if c := p.z.pushGeq(s, lo, boundFacts); c != nil {
		return c
	}
	boundFacts = []sat.Literal{p.a.Leq(s, aMax), p.b.Leq(s, bMax)}
	if c := p.z.pushLeq(s, hi, boundFacts); c != nil {
		return c
	}

	zMin, zMax := s.Min(p.z), s.Max(p.z)
	if p.isMax {
		if c := p.a.pushLeq(s, zMax, []sat.Literal{p.z.Leq(s, zMax)}); c != nil {
			return c
		}
		if c := p.b.pushLeq(s, zMax, []sat.Literal{p.z.Leq(s, zMax)}); c != nil {
			return c
		}
		if aMax < zMin {
			if c := p.b.pushGeq(s, zMin, []sat.Literal{p.a.Leq(s, aMax), p.z.Geq(s, zMin)}); c != nil {
				return c
			}
		}
		if bMax < zMin {
			if c := p.a.pushGeq(s, zMin, []sat.Literal{p.b.Leq(s, bMax), p.z.Geq(s, zMin)}); c != nil {
				return c
			}
		}
	} else {
		if c := p.a.pushGeq(s, zMin, []sat.Literal{p.z.Geq(s, zMin)}); c != nil {
			return c
		}
		if c := p.b.pushGeq(s, zMin, []sat.Literal{p.z.Geq(s, zMin)}); c != nil {
			return c
		}
		if aMin > zMax {
			if c := p.b.pushLeq(s, zMax, []sat.Literal{p.a.Geq(s, aMin), p.z.Leq(s, zMax)}); c != nil {
				return c
			}
		}
		if bMin > zMax {
			if c := p.a.pushLeq(s, zMax, []sat.Literal{p.b.Geq(s, bMin), p.z.Leq(s, zMax)}); c != nil {
				return c
			}
		}
	}
	return nil
}

func (s *Solver) postMinMax(z, a, b CSPVar, isMax bool) error {
	p := &minMaxProp{z: z, a: a, b: b, isMax: isMax}
	s.scheduler.SubscribeLB(a, p)
	s.scheduler.SubscribeUB(a, p)
	s.scheduler.SubscribeLB(b, p)
	s.scheduler.SubscribeUB(b, p)
	s.scheduler.SubscribeLB(z, p)
	s.scheduler.SubscribeUB(z, p)
	if conflict := p.Propagate(s); conflict != nil {
		return ErrUnsat
	}
	return nil
}

// PostMin posts z == min(x, y).
func (s *Solver) PostMin(z, x, y CSPVar) error { return s.postMinMax(z, x, y, false) }

// PostMax posts z == max(x, y).
func (s *Solver) PostMax(z, x, y CSPVar) error { return s.postMinMax(z, x, y, true) }

// absProp is the bounds-consistency propagator for z = |x|.
type absProp struct {
	z, x CSPVar
}

func (p *absProp) Wake(s *Solver, lit sat.Literal) *sat.Clause { return nil }

func (p *absProp) Propagate(s *Solver) *sat.Clause {
	xMin, xMax := s.Min(p.x), s.Max(p.x)
	lo := 0
	if xMin > 0 {
		lo = xMin
	} else if xMax < 0 {
		lo = -xMax
	}
	hi := maxInt(absInt(xMin), absInt(xMax))

	facts := []sat.Literal{p.x.Geq(s, xMin), p.x.Leq(s, xMax)}
	if c := p.z.pushGeq(s, lo, facts); c != nil {
		return c
	}
	if c := p.z.pushLeq(s, hi, facts); c != nil {
		return c
	}

	zMax := s.Max(p.z)
	if c := p.x.pushGeq(s, -zMax, []sat.Literal{p.z.Leq(s, zMax)}); c != nil {
		return c
	}
	if c := p.x.pushLeq(s, zMax, []sat.Literal{p.z.Leq(s, zMax)}); c != nil {
		return c
	}
	return nil
}

// PostAbs posts z == |x|.
func (s *Solver) PostAbs(z, x CSPVar) error {
	p := &absProp{z: z, x: x}
	s.scheduler.SubscribeLB(x, p)
	s.scheduler.SubscribeUB(x, p)
	s.scheduler.SubscribeLB(z, p)
	s.scheduler.SubscribeUB(z, p)
	if conflict := p.Propagate(s); conflict != nil {
		return ErrUnsat
	}
	return nil
}

// PostElement posts z == table[idx], fully channeled as clauses in both
// directions (idx=k forces z=table[k]; z=v forces idx to be one of the
// indices mapping to v). Values of idx outside the table's index range
// [0, len(table)) are removed up front; values never produced by the table
// are removed from z.
func (s *Solver) PostElement(z CSPVar, table []int, idx CSPVar) error {
	if err := validateElementArgs(table, idx); err != nil {
		return fmt.Errorf("csp: PostElement: %w", err)
	}
	valueToIdxs := map[int][]sat.Literal{}

	for k := idx.Lo(); k <= idx.Hi(); k++ {
		if k < 0 || k >= len(table) {
			if err := s.Remove(idx, k); err != nil {
				return err
			}
			continue
		}
		v := table[k]
		s.sat.AddClause([]sat.Literal{idx.eqLit(s, k).Opposite(), z.eqLit(s, v)})
		valueToIdxs[v] = append(valueToIdxs[v], idx.eqLit(s, k))
	}

	for v := z.Lo(); v <= z.Hi(); v++ {
		idxLits, ok := valueToIdxs[v]
		if !ok {
			if err := s.Remove(z, v); err != nil {
				return err
			}
			continue
		}
		clause := append([]sat.Literal{z.eqLit(s, v).Opposite()}, idxLits...)
		s.sat.AddClause(clause)
	}

	if s.sat.IsUnsat() {
		return ErrUnsat
	}
	return nil
}
