package csp

import (
	"sort"

	"github.com/go-lcg/lcg/internal/sat"
)

// pbTerm is one normalized (non-negative weight) term of a pseudo-Boolean
// constraint.
type pbTerm struct {
	w   int
	lit sat.Literal
}

// pbProp is the pseudo-Boolean propagator: weights sorted by absolute
// value, wake-on-lit for every operand, conflict/propagation reasons
// assembled by greedily accumulating already-true operand literals,
// highest weight first, until the running sum alone forces the result.
type pbProp struct {
	terms  []pbTerm // sorted descending by weight
	target int
}

func (p *pbProp) Wake(s *Solver, lit sat.Literal) *sat.Clause { return p.run(s) }

// Propagate is unused: this propagator is driven entirely through Wake,
// one operand literal at a time.
func (p *pbProp) Propagate(s *Solver) *sat.Clause { return nil }

func (p *pbProp) run(s *Solver) *sat.Clause {
	sumTrue := 0
	for _, t := range p.terms {
		if s.sat.LitValue(t.lit) == sat.True {
			sumTrue += t.w
		}
	}

	if sumTrue > p.target {
		return s.sat.PushLiteral(s.sat.FalseLit, p.greedyPrefix(s, -1))
	}

	for _, t := range p.terms {
		if s.sat.LitValue(t.lit) != sat.Unknown {
			continue
		}
		if sumTrue+t.w > p.target {
			facts := p.greedyPrefix(s, t.lit)
			if c := s.sat.PushLiteral(t.lit.Opposite(), facts); c != nil {
				return c
			}
		}
	}
	return nil
}

// greedyPrefix returns the smallest weight-descending prefix of already-true
// terms (excluding skip, if set) whose accumulated weight, plus the weight
// of skip's own term when skip is a real literal, exceeds the target. This
// is the minimal justification for either a conflict (skip == -1) or for
// forcing skip false.
func (p *pbProp) greedyPrefix(s *Solver, skip sat.Literal) []sat.Literal {
	skipWeight := 0
	if skip != -1 {
		for _, t := range p.terms {
			if t.lit == skip {
				skipWeight = t.w
				break
			}
		}
	}

	var facts []sat.Literal
	acc := 0
	for _, t := range p.terms {
		if t.lit == skip || s.sat.LitValue(t.lit) != sat.True {
			continue
		}
		acc += t.w
		facts = append(facts, t.lit)
		if acc+skipWeight > p.target {
			break
		}
	}
	return facts
}

// PostPB posts sum(weights[i] * lits[i]) >= lb, a deliberately incomplete
// pseudo-Boolean propagator: it detects violations and forces operands once
// the remaining slack can no longer reach the bound, but does not perform
// full cardinality-reasoning-based propagation. Internally this is built on
// pbProp, which enforces a <= bound, by negating every weight and the bound
// itself: sum(w_i*lit_i) >= lb  <=>  sum(-w_i*lit_i) <= -lb.
func (s *Solver) PostPB(weights []int, lits []sat.Literal, lb int) error {
	p := &pbProp{}
	adjust := 0
	for i, w := range weights {
		w = -w
		lit := lits[i]
		if w < 0 {
			adjust += w
			w = -w
			lit = lit.Opposite()
		}
		if w == 0 {
			continue
		}
		p.terms = append(p.terms, pbTerm{w: w, lit: lit})
	}
	p.target = -lb - adjust

	sort.Slice(p.terms, func(i, j int) bool { return p.terms[i].w > p.terms[j].w })

	for _, t := range p.terms {
		s.scheduler.SubscribeLit(t.lit, p)
	}
	if conflict := p.run(s); conflict != nil {
		return ErrUnsat
	}
	return nil
}
