package csp

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-lcg/lcg/internal/sat"
)

// boolValue reads a BoolVar's value in the most recently found solution.
func boolValue(s *Solver, b BoolVar) bool {
	return s.lastSolution[int(b)]
}

// TestPostPB_RespectsBound checks that every solution found for
// 3*a + 2*b + 2*c >= 4 actually satisfies that bound, the classic
// "at least this much weight must be true" pattern.
func TestPostPB_RespectsBound(t *testing.T) {
	s := NewDefaultSolver()
	a := s.NewBoolVar()
	b := s.NewBoolVar()
	c := s.NewBoolVar()

	require.NoError(t, s.PostPB([]int{3, 2, 2}, []sat.Literal{a.Lit(), b.Lit(), c.Lit()}, 4))

	ok, err := s.Solve()
	require.NoError(t, err)
	require.True(t, ok)

	sum := 0
	if boolValue(s, a) {
		sum += 3
	}
	if boolValue(s, b) {
		sum += 2
	}
	if boolValue(s, c) {
		sum += 2
	}
	require.GreaterOrEqual(t, sum, 4)
}

// TestPostPB_UnsatWhenAllForcedFalseUnderflows checks that forcing every
// operand false through root-level unit clauses is rejected once the
// resulting sum can no longer reach the bound.
func TestPostPB_UnsatWhenAllForcedFalseUnderflows(t *testing.T) {
	s := NewDefaultSolver()
	a := s.NewBoolVar()
	b := s.NewBoolVar()

	// 3*a + 3*b >= 4, but both are forced false: 0+0=0 < 4.
	require.NoError(t, s.PostPB([]int{3, 3}, []sat.Literal{a.Lit(), b.Lit()}, 4))
	s.sat.AddClause([]sat.Literal{a.NotLit()})
	s.sat.AddClause([]sat.Literal{b.NotLit()})

	ok, err := s.Solve()
	require.NoError(t, err)
	require.False(t, ok)
}

// TestPostPB_AtLeastKOfN checks the canonical at-least-k cardinality pattern
// (all weights 1, lb = k): forcing n-k of n operands false (here 1 of 4,
// with k = 3) must still leave a satisfying assignment where the remaining
// operands make up the bound.
func TestPostPB_AtLeastKOfN(t *testing.T) {
	s := NewDefaultSolver()
	vars := make([]BoolVar, 4)
	lits := make([]sat.Literal, 4)
	weights := make([]int, 4)
	for i := range vars {
		vars[i] = s.NewBoolVar()
		lits[i] = vars[i].Lit()
		weights[i] = 1
	}

	require.NoError(t, s.PostPB(weights, lits, 3))
	s.sat.AddClause([]sat.Literal{vars[0].NotLit()})

	ok, err := s.Solve()
	require.NoError(t, err)
	require.True(t, ok)

	count := 0
	for _, v := range vars {
		if boolValue(s, v) {
			count++
		}
	}
	require.GreaterOrEqual(t, count, 3)
	require.False(t, boolValue(s, vars[0]))
}
