package sat

import "strings"

// Clause is an ordered list of literals. The first two positions are the
// watched literals, maintained by the watched-literal invariants in
// Clause.Propagate. Clauses come in three flavors:
//
//   - original: posted once via Solver.AddClause, part of the problem.
//   - learnt: derived by conflict analysis, subject to activity-based
//     deletion (Solver.ReduceDB).
//   - reason: built on the fly by Solver.PushLiteral to record why a
//     propagator-pushed literal holds. Reason clauses are never watched and
//     never added to the clause database: they exist solely so that
//     conflict analysis has an antecedent to resolve against.
type Clause struct {
	activity float64

	// literals[0] is the clause's asserting/implied literal (or, for an
	// original clause, simply one of its literals). For a clause currently
	// propagating or in conflict, all literals but literals[0] are false.
	literals []Literal

	learnt bool
	reason bool
}

// NewClause builds an original (learnt=false) or learnt (learnt=true)
// clause out of tmpLiterals. Original clauses are simplified against the
// current assignment (duplicates, false literals and tautologies removed);
// learnt clauses are taken as given.
//
// It returns (clause, ok). ok is false if the clause is unsatisfiable (e.g.
// empty after simplification); clause is nil if the clause was simplified
// away (tautology) or reduced to a unit fact that was enqueued directly.
func NewClause(s *Solver, tmpLiterals []Literal, learnt bool) (*Clause, bool) {
	size := len(tmpLiterals)

	if !learnt {
		seen := map[Literal]struct{}{}
		for i := size - 1; i >= 0; i-- {
			if _, ok := seen[tmpLiterals[i].Opposite()]; ok {
				return nil, true // tautology
			}
			if _, ok := seen[tmpLiterals[i]]; ok {
				size--
				tmpLiterals[i], tmpLiterals[size] = tmpLiterals[size], tmpLiterals[i]
				continue
			}
			seen[tmpLiterals[i]] = struct{}{}

			switch s.LitValue(tmpLiterals[i]) {
			case True:
				return nil, true // already satisfied
			case False:
				size--
				tmpLiterals[i], tmpLiterals[size] = tmpLiterals[size], tmpLiterals[i]
			}
		}
		tmpLiterals = tmpLiterals[:size]
	}

	switch size {
	case 0:
		return nil, false // empty clause: unsatisfiable
	case 1:
		return nil, s.enqueue(tmpLiterals[0], nil)
	default:
		c := &Clause{
			learnt:   learnt,
			literals: append([]Literal(nil), tmpLiterals...),
		}

		if learnt {
			// Move the literal assigned at the highest (i.e. most recent)
			// decision level into the second watch position, so that
			// backtracking past it as late as possible keeps the clause
			// watched correctly.
			maxLevel, wl := -1, -1
			for i, lit := range c.literals {
				if level := s.level[lit.VarID()]; level > maxLevel {
					maxLevel = level
					wl = i
				}
			}
			c.literals[wl], c.literals[1] = c.literals[1], c.literals[wl]
		}

		s.Watch(c, c.literals[0].Opposite(), c.literals[1])
		s.Watch(c, c.literals[1].Opposite(), c.literals[0])
		return c, true
	}
}

// newReasonClause builds the antecedent clause for a literal pushed via
// Solver.PushLiteral: lit holds because every literal in falseLits is
// currently false. The clause (lit \/ falseLits...) is never watched; it is
// only ever consulted by conflict analysis via Explain*.
func newReasonClause(lit Literal, falseLits []Literal) *Clause {
	lits := make([]Literal, 0, 1+len(falseLits))
	lits = append(lits, lit)
	lits = append(lits, falseLits...)
	return &Clause{literals: lits, reason: true}
}

func (c *Clause) locked(s *Solver) bool {
	return s.reason[c.literals[0].VarID()] == c
}

// Remove unwatches c. Reason clauses were never watched, so Remove is only
// ever called on original/learnt clauses (e.g. by ReduceDB or Simplify).
func (c *Clause) Remove(s *Solver) {
	s.Unwatch(c, c.literals[0].Opposite())
	s.Unwatch(c, c.literals[1].Opposite())
}

// Simplify drops literals falsified at the root level, returning true if the
// clause is satisfied (and can be discarded entirely).
func (c *Clause) Simplify(s *Solver) bool {
	j := 0
	for _, lit := range c.literals {
		switch s.LitValue(lit) {
		case True:
			return true
		case False:
			// discard
		default:
			c.literals[j] = lit
			j++
		}
	}
	c.literals = c.literals[:j]
	return false
}

// Propagate maintains the watched-literal invariant after literal l has just
// become true, i.e. after l's opposite (one of c's two watches) has just
// become false. It returns true if the clause did
// not need to enqueue anything new or is still satisfied, and false if the
// clause is now conflicting (in which case the caller must treat c as the
// conflict).
func (c *Clause) Propagate(s *Solver, l Literal) bool {
	opp := l.Opposite()
	if c.literals[0] == opp {
		c.literals[0], c.literals[1] = c.literals[1], c.literals[0]
	}

	if s.LitValue(c.literals[0]) == True {
		s.Watch(c, l, c.literals[0])
		return true
	}

	for i := 2; i < len(c.literals); i++ {
		if s.LitValue(c.literals[i]) != False {
			c.literals[1], c.literals[i] = c.literals[i], l.Opposite()
			s.Watch(c, c.literals[1].Opposite(), c.literals[0])
			return true
		}
	}

	s.Watch(c, l, c.literals[0])
	return s.enqueue(c.literals[0], c)
}

// ExplainFailure returns the currently-true facts that make c a conflict
// clause (i.e. that falsify every one of c's literals).
func (c *Clause) ExplainFailure(s *Solver, out *[]Literal) {
	exp := (*out)[:0]
	for _, l := range c.literals {
		exp = append(exp, l.Opposite())
	}
	if c.learnt {
		s.BumpClauseActivity(c)
	}
	*out = exp
}

// ExplainAssign returns the currently-true facts that forced c.literals[0]
// to be asserted (i.e. that falsify every other literal of c).
func (c *Clause) ExplainAssign(s *Solver, out *[]Literal) {
	exp := (*out)[:0]
	for _, l := range c.literals[1:] {
		exp = append(exp, l.Opposite())
	}
	if c.learnt {
		s.BumpClauseActivity(c)
	}
	*out = exp
}

func (c *Clause) String() string {
	if len(c.literals) == 0 {
		return "Clause[]"
	}
	sb := strings.Builder{}
	sb.WriteString("Clause[")
	sb.WriteString(c.literals[0].String())
	for _, l := range c.literals[1:] {
		sb.WriteByte(' ')
		sb.WriteString(l.String())
	}
	sb.WriteByte(']')
	return sb.String()
}
