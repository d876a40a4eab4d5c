package csp

import (
	"fmt"

	"github.com/go-lcg/lcg/internal/sat"
)

// term is one weighted variable of a linear sum.
type term struct {
	w int
	x CSPVar
}

// linearLeq is the bounds-consistent propagator for sum(w_i * x_i) + c <= 0.
// For each term j it derives the tightest bound implied by the current
// bounds of every other term, using the "minimal possible contribution" of
// each: w_i*min(x_i) when w_i > 0, w_i*max(x_i) when w_i < 0.
//
// Division when solving for a bound truncates toward zero (Go's native
// integer division already does this), which is tight enough for a
// positive-weight term and for a negative-weight term whenever slack is
// positive. A negative-weight term with non-positive slack needs a
// one-step correction instead of plain truncation, or the derived bound
// is a unit looser than the tightest possible.
type linearLeq struct {
	terms []term
	c     int
}

func newLinearLeq(weights []int, vars []CSPVar, c int) *linearLeq {
	p := &linearLeq{c: c}
	for i, w := range weights {
		if w == 0 {
			continue
		}
		p.terms = append(p.terms, term{w: w, x: vars[i]})
	}
	return p
}

// contributions returns, for every term, its minimal possible contribution
// to the sum and the literal that currently justifies it, plus their total
// (including c).
func (p *linearLeq) contributions(s *Solver) ([]int, []sat.Literal, int) {
	los := make([]int, len(p.terms))
	facts := make([]sat.Literal, len(p.terms))
	total := p.c
	for i, t := range p.terms {
		if t.w > 0 {
			m := s.Min(t.x)
			los[i] = t.w * m
			facts[i] = t.x.Geq(s, m)
		} else {
			m := s.Max(t.x)
			los[i] = t.w * m
			facts[i] = t.x.Leq(s, m)
		}
		total += los[i]
	}
	return los, facts, total
}

func (p *linearLeq) Wake(s *Solver, lit sat.Literal) *sat.Clause { return nil }

func (p *linearLeq) Propagate(s *Solver) *sat.Clause {
	los, facts, total := p.contributions(s)

	if total > 0 {
		for _, t := range p.terms {
			s.bumpWDeg(t.x)
		}
		return s.sat.PushLiteral(s.sat.FalseLit, facts)
	}

	for j, t := range p.terms {
		slack := -(total - los[j])
		otherFacts := make([]sat.Literal, 0, len(facts)-1)
		for i, f := range facts {
			if i != j {
				otherFacts = append(otherFacts, f)
			}
		}

		var conflict *sat.Clause
		if t.w > 0 {
			bound := slack / t.w
			if bound < s.Max(t.x) {
				conflict = t.x.pushLeq(s, bound, otherFacts)
			}
		} else {
			// Plain truncating division matches the w>0 branch only
			// when slack>0. For slack<=0 it rounds one step too loose;
			// this correction mirrors the source's own "rounding
			// towards zero is weird" adjustment for the negative-weight
			// case.
			var bound int
			if slack > 0 {
				bound = slack / t.w
			} else {
				bound = (slack + t.w + 1) / t.w
			}
			if bound > s.Min(t.x) {
				conflict = t.x.pushGeq(s, bound, otherFacts)
			}
		}
		if conflict != nil {
			return conflict
		}
	}
	return nil
}

// PostLinearLeq posts sum(weights[i] * vars[i]) + c <= 0. A zero-variable
// instance is trivially SAT (c <= 0) or UNSAT (c > 0), so it is resolved
// immediately rather than rejected as malformed.
func (s *Solver) PostLinearLeq(weights []int, vars []CSPVar, c int) error {
	if len(weights) == 0 && len(vars) == 0 {
		if c <= 0 {
			return nil
		}
		return ErrUnsat
	}
	if err := validateLinearArgs(weights, vars); err != nil {
		return fmt.Errorf("csp: PostLinearLeq: %w", err)
	}
	p := newLinearLeq(weights, vars, c)
	for _, t := range p.terms {
		s.scheduler.SubscribeLB(t.x, p)
		s.scheduler.SubscribeUB(t.x, p)
	}
	if conflict := p.Propagate(s); conflict != nil {
		return ErrUnsat
	}
	return nil
}

// PostLinearLess posts sum(weights[i] * vars[i]) + c < 0, i.e. <= -1.
func (s *Solver) PostLinearLess(weights []int, vars []CSPVar, c int) error {
	return s.PostLinearLeq(weights, vars, c+1)
}

// PostLinearEq posts sum(weights[i] * vars[i]) + c == 0, as a pair of
// bounds-consistency propagators (<= 0 and >= 0).
func (s *Solver) PostLinearEq(weights []int, vars []CSPVar, c int) error {
	if err := s.PostLinearLeq(weights, vars, c); err != nil {
		return err
	}
	negWeights := make([]int, len(weights))
	for i, w := range weights {
		negWeights[i] = -w
	}
	return s.PostLinearLeq(negWeights, vars, -c)
}

// reifLinearLeq gates a linearLeq behind a Boolean guard literal: it only
// propagates once guard is known true. Used by PostLinearLeqReif to
// decompose b <-> (sum <= c) into two half-reified propagators (one per
// direction), each a plain linearLeq guarded by a literal.
type reifLinearLeq struct {
	guard sat.Literal
	inner *linearLeq
}

func (p *reifLinearLeq) Wake(s *Solver, lit sat.Literal) *sat.Clause {
	if s.sat.LitValue(p.guard) != sat.True {
		return nil
	}
	return p.inner.Propagate(s)
}

func (p *reifLinearLeq) Propagate(s *Solver) *sat.Clause {
	if s.sat.LitValue(p.guard) != sat.True {
		return nil
	}
	return p.inner.Propagate(s)
}

// PostLinearLeqReif posts b <-> (sum(weights[i]*vars[i]) + c <= 0), decomposed
// into two gated bounds-consistency propagators: b=true enforces sum+c <= 0,
// b=false enforces sum+c >= 1 (i.e. -sum + (1-c) <= 0).
func (s *Solver) PostLinearLeqReif(b BoolVar, weights []int, vars []CSPVar, c int) error {
	if err := validateLinearArgs(weights, vars); err != nil {
		return fmt.Errorf("csp: PostLinearLeqReif: %w", err)
	}

	pos := &reifLinearLeq{guard: b.Lit(), inner: newLinearLeq(weights, vars, c)}
	negWeights := make([]int, len(weights))
	for i, w := range weights {
		negWeights[i] = -w
	}
	neg := &reifLinearLeq{guard: b.NotLit(), inner: newLinearLeq(negWeights, vars, 1-c)}

	for _, gated := range []*reifLinearLeq{pos, neg} {
		s.scheduler.SubscribeLit(gated.guard, gated)
		for _, t := range gated.inner.terms {
			s.scheduler.SubscribeLB(t.x, gated)
			s.scheduler.SubscribeUB(t.x, gated)
		}
	}
	return nil
}
