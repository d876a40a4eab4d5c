package csp

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-lcg/lcg/internal/sat"
)

// TestAllDifferentExplainsHallViolationViaPropagate drives the conflict
// through Propagate/explainFailure directly and checks that the resulting
// clause cites every variable squeezed into the Hall set: three variables,
// each left with only {1, 2} in its domain, cannot be made pairwise
// distinct.
func TestAllDifferentExplainsHallViolationViaPropagate(t *testing.T) {
	s := NewDefaultSolver()
	vars, err := s.NewCSPVarArray(3, 1, 3)
	require.NoError(t, err)
	require.NoError(t, s.PostAllDifferent(vars))

	for _, x := range vars {
		require.NoError(t, s.Remove(x, 3))
	}

	p := newAllDiffProp(vars)
	conflict := p.Propagate(s)
	require.NotNil(t, conflict, "3 variables squeezed into {1, 2} must violate the Hall condition")

	var facts []sat.Literal
	conflict.ExplainFailure(s, &facts)

	for _, x := range vars {
		require.Contains(t, facts, x.Leq(s, 2), "explanation must cite every variable's tightened upper bound")
	}
}

// TestAllDifferentHallViolationAtSolveTime exercises the same Hall set as
// above through the public posting/search surface: PostAllDifferent
// succeeds while the domains still fit exactly, and the later Remove calls
// push the model into a Hall violation that only shows up once the
// propagator wakes and runs.
func TestAllDifferentHallViolationAtSolveTime(t *testing.T) {
	s := NewDefaultSolver()
	vars, err := s.NewCSPVarArray(3, 1, 3)
	require.NoError(t, err)
	require.NoError(t, s.PostAllDifferent(vars))

	for _, x := range vars {
		require.NoError(t, s.Remove(x, 3))
	}

	ok, err := s.Solve()
	require.NoError(t, err)
	require.False(t, ok)
}
