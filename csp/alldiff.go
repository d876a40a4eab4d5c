package csp

import (
	"fmt"

	"github.com/go-lcg/lcg/internal/sat"
)

// assignInfo decodes a variable's equality literal back into (which
// variable, which value) for the wake-on-lit handler.
type assignInfo struct {
	varIdx int
	val    int
}

// allDiffProp is the all-different propagator: it maintains a matching
// from variables to values and, whenever the matching cannot be
// completed, explains the conflict by finding the Hall set witnessing it.
//
// GAC pruning beyond "a newly fixed variable removes its value from the
// others" is not implemented here: only conflict detection (an incomplete
// matching) and its explanation are covered at this level of detail.
type allDiffProp struct {
	vars []CSPVar
	lo   int // universe lower bound, also doubles as the "unmatched" sentinel - 1

	match    []int       // match[i]: value matched to vars[i], or lo-1 if unmatched
	valMatch map[int]int // value -> index into vars, for matched values
	litInfo  map[sat.Literal]assignInfo
}

func newAllDiffProp(vars []CSPVar) *allDiffProp {
	lo := vars[0].Lo()
	for _, x := range vars[1:] {
		if x.Lo() < lo {
			lo = x.Lo()
		}
	}
	p := &allDiffProp{
		vars:     vars,
		lo:       lo,
		match:    make([]int, len(vars)),
		valMatch: map[int]int{},
		litInfo:  map[sat.Literal]assignInfo{},
	}
	for i := range p.match {
		p.match[i] = lo - 1
	}
	return p
}

// tryAugment looks for an augmenting path from vars[varIdx] in the current
// domains, via the classic Kuhn's-algorithm recursion (the Hall-set
// explainer below is the one kept iterative, not this one).
func (p *allDiffProp) tryAugment(s *Solver, varIdx int, visited map[int]bool) bool {
	x := p.vars[varIdx]
	for v := s.Min(x); v <= s.Max(x); v++ {
		if !s.InDomain(x, v) || visited[v] {
			continue
		}
		visited[v] = true
		owner, matched := p.valMatch[v]
		if !matched || p.tryAugment(s, owner, visited) {
			p.match[varIdx] = v
			p.valMatch[v] = varIdx
			return true
		}
	}
	return false
}

// node is one entry of the Hall-set reachability work-list: either a
// variable or a value of the residual bipartite graph.
type node struct {
	isVar bool
	n     int // variable index, or value
}

// explainFailure builds the conflict clause when freeVarIdx cannot be
// matched. It computes, iteratively with a seen-set as the memo (a
// work-list over the residual graph with a boolean memo, rather than
// recursion), the set of variables and values reachable from
// freeVarIdx by alternating paths in the residual graph. That reachable
// set of variables has strictly more members than its reachable set of
// values — a Hall violation — which is exactly why no augmenting path was
// found. The explanation cites the current bound/hole literals that confine
// every reached variable's domain to the reached values.
func (p *allDiffProp) explainFailure(s *Solver, freeVarIdx int) *sat.Clause {
	seenVar := map[int]bool{}
	seenVal := map[int]bool{}
	queue := []node{{isVar: true, n: freeVarIdx}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur.isVar {
			if seenVar[cur.n] {
				continue
			}
			seenVar[cur.n] = true
			x := p.vars[cur.n]
			for v := s.Min(x); v <= s.Max(x); v++ {
				if s.InDomain(x, v) && v != p.match[cur.n] && !seenVal[v] {
					queue = append(queue, node{isVar: false, n: v})
				}
			}
		} else {
			if seenVal[cur.n] {
				continue
			}
			seenVal[cur.n] = true
			if owner, ok := p.valMatch[cur.n]; ok && !seenVar[owner] {
				queue = append(queue, node{isVar: true, n: owner})
			}
		}
	}

	var facts []sat.Literal
	for i := range p.vars {
		if !seenVar[i] {
			continue
		}
		x := p.vars[i]
		s.bumpWDeg(x)
		min, max := s.Min(x), s.Max(x)
		facts = append(facts, x.Geq(s, min), x.Leq(s, max))
		for v := min + 1; v < max; v++ {
			if !s.InDomain(x, v) {
				facts = append(facts, x.Neq(s, v))
			}
		}
	}
	return s.sat.PushLiteral(s.sat.FalseLit, facts)
}

func (p *allDiffProp) Wake(s *Solver, lit sat.Literal) *sat.Clause {
	info, ok := p.litInfo[lit]
	if !ok {
		return nil
	}
	for i, x := range p.vars {
		if i == info.varIdx {
			continue
		}
		if s.InDomain(x, info.val) {
			if c := x.pushNeq(s, info.val, []sat.Literal{lit}); c != nil {
				return c
			}
		}
	}
	return nil
}

func (p *allDiffProp) Propagate(s *Solver) *sat.Clause {
	for i, x := range p.vars {
		v := p.match[i]
		if v >= p.lo && !s.InDomain(x, v) {
			p.match[i] = p.lo - 1
			delete(p.valMatch, v)
		}
	}

	for i := range p.vars {
		if p.match[i] < p.lo {
			if !p.tryAugment(s, i, map[int]bool{}) {
				return p.explainFailure(s, i)
			}
		}
	}
	return nil
}

// PostAllDifferent posts an all-different constraint over vars.
func (s *Solver) PostAllDifferent(vars []CSPVar) error {
	if err := validateAllDifferentArgs(vars); err != nil {
		return fmt.Errorf("csp: PostAllDifferent: %w", err)
	}
	p := newAllDiffProp(vars)

	for i, x := range vars {
		for k := x.Lo(); k <= x.Hi(); k++ {
			p.litInfo[x.eqLit(s, k)] = assignInfo{varIdx: i, val: k}
		}
	}

	for i := range vars {
		if !p.tryAugment(s, i, map[int]bool{}) {
			p.explainFailure(s, i)
			return ErrUnsat
		}
	}

	for i, x := range vars {
		for k := x.Lo(); k <= x.Hi(); k++ {
			s.scheduler.SubscribeLit(x.eqLit(s, k), p)
		}
		s.scheduler.SubscribeDom(x, p)
	}
	return nil
}
