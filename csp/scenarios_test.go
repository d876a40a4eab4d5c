package csp

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// value reads x's value in the most recently found solution.
func value(s *Solver, x CSPVar) int {
	k, _ := s.CspModelRange(x)
	return k
}

// TestSendMoreMoney solves the classic SEND + MORE = MONEY cryptarithm: all
// eight letters take distinct digits, and the two leading digits (S and M)
// are non-zero.
func TestSendMoreMoney(t *testing.T) {
	s := NewDefaultSolver()
	letters, err := s.NewCSPVarArray(8, 0, 9)
	require.NoError(t, err)
	sVar, e, n, d, m, o, r, y := letters[0], letters[1], letters[2], letters[3], letters[4], letters[5], letters[6], letters[7]

	require.NoError(t, s.SetMin(sVar, 1))
	require.NoError(t, s.SetMin(m, 1))
	require.NoError(t, s.PostAllDifferent(letters))

	// SEND + MORE - MONEY == 0, expanded and collected by letter.
	weights := []int{1000, 91, -90, 1, -9000, -900, 10, -1}
	require.NoError(t, s.PostLinearEq(weights, letters, 0))

	ok, err := s.Solve()
	require.NoError(t, err)
	require.True(t, ok)

	send := 1000*value(s, sVar) + 100*value(s, e) + 10*value(s, n) + value(s, d)
	more := 1000*value(s, m) + 100*value(s, o) + 10*value(s, r) + value(s, e)
	money := 10000*value(s, m) + 1000*value(s, o) + 100*value(s, n) + 10*value(s, e) + value(s, y)

	require.Equal(t, money, send+more, "SEND + MORE must equal MONEY")
	require.NotZero(t, value(s, sVar))
	require.NotZero(t, value(s, m))

	seen := map[int]bool{}
	for _, x := range letters {
		v := value(s, x)
		require.False(t, seen[v], "digit %d used twice", v)
		seen[v] = true
	}
}

// TestGolombRulerExists builds a 4-mark ruler within length 16 and checks
// that the six pairwise distances are all distinct, i.e. a genuine Golomb
// ruler, without pinning the search to one specific optimal layout.
func TestGolombRulerExists(t *testing.T) {
	s := NewDefaultSolver()
	const m = 4
	const length = 16

	marks, err := s.NewCSPVarArray(m, 0, length)
	require.NoError(t, err)
	require.NoError(t, s.Assign(marks[0], 0))

	var diffs []CSPVar
	for i := 0; i < m; i++ {
		for j := i + 1; j < m; j++ {
			diff, err := s.NewCSPVar(1, length)
			require.NoError(t, err)
			// diff - marks[j] + marks[i] == 0
			require.NoError(t, s.PostLinearEq([]int{1, -1, 1}, []CSPVar{diff, marks[j], marks[i]}, 0))
			diffs = append(diffs, diff)
		}
	}
	require.NoError(t, s.PostAllDifferent(diffs))

	ok, err := s.Solve()
	require.NoError(t, err)
	require.True(t, ok)

	prev := value(s, marks[0])
	for _, x := range marks[1:] {
		v := value(s, x)
		require.Greater(t, v, prev)
		require.LessOrEqual(t, v, length)
		prev = v
	}

	seen := map[int]bool{}
	for _, d := range diffs {
		v := value(s, d)
		require.False(t, seen[v], "distance %d repeated", v)
		seen[v] = true
	}
}

// TestAllDifferentHallIntervalConflict checks that posting all-different
// over three variables squeezed into a two-value domain is rejected at
// posting time: a Hall interval of size 2 covering 3 variables.
func TestAllDifferentHallIntervalConflict(t *testing.T) {
	s := NewDefaultSolver()
	vars, err := s.NewCSPVarArray(3, 0, 1)
	require.NoError(t, err)

	err = s.PostAllDifferent(vars)
	require.ErrorIs(t, err, ErrUnsat)
}

// TestLinearLeqBoundPropagation checks that sum(x, y) <= 10 forces y's
// solution value down once x's lower bound is raised at the root.
func TestLinearLeqBoundPropagation(t *testing.T) {
	s := NewDefaultSolver()
	x, err := s.NewCSPVar(0, 10)
	require.NoError(t, err)
	y, err := s.NewCSPVar(0, 10)
	require.NoError(t, err)

	require.NoError(t, s.PostLinearLeq([]int{1, 1}, []CSPVar{x, y}, -10))
	require.NoError(t, s.SetMin(x, 8))

	ok, err := s.Solve()
	require.NoError(t, err)
	require.True(t, ok)

	xv, yv := value(s, x), value(s, y)
	require.GreaterOrEqual(t, xv, 8)
	require.LessOrEqual(t, xv+yv, 10)
	require.LessOrEqual(t, yv, 2)
}

// TestElementConstraint checks z == table[idx] once idx is fixed at the
// root.
func TestElementConstraint(t *testing.T) {
	s := NewDefaultSolver()
	table := []int{10, 20, 30, 40}
	idx, err := s.NewCSPVar(0, len(table)-1)
	require.NoError(t, err)
	z, err := s.NewCSPVar(0, 40)
	require.NoError(t, err)

	require.NoError(t, s.PostElement(z, table, idx))
	require.NoError(t, s.Assign(idx, 2))

	ok, err := s.Solve()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, table[2], value(s, z))
}

// subsetString renders set's membership in the most recently found solution
// as a binary string, e.g. "101" for {0, 2} out of a universe of size 3.
func subsetString(s *Solver, set SetVar) string {
	b := make([]byte, set.UniverseSize())
	for i := range b {
		if value(s, set.members[i]) == 1 {
			b[i] = '1'
		} else {
			b[i] = '0'
		}
	}
	return string(b)
}

// TestSetVarEnumeratesFullPowerset checks that an unconstrained set variable
// over a universe of size 3 has exactly the 8 subsets of the powerset as its
// solutions, each found exactly once via repeated Solve/ExcludeLast.
func TestSetVarEnumeratesFullPowerset(t *testing.T) {
	s := NewDefaultSolver()
	set, err := s.NewSetVar(3)
	require.NoError(t, err)

	got := map[string]struct{}{}
	for {
		ok, err := s.Solve()
		require.NoError(t, err)
		if !ok {
			break
		}
		got[subsetString(s, set)] = struct{}{}
		require.NoError(t, s.ExcludeLast())
	}

	want := map[string]struct{}{}
	for i := 0; i < 8; i++ {
		want[fmt.Sprintf("%03b", i)] = struct{}{}
	}

	require.Len(t, got, 8)
	require.True(t, cmp.Equal(want, got), "subset mismatch: got %v, want %v", got, want)
}
