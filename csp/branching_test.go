package csp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseVarBranch(t *testing.T) {
	cases := map[string]VarBranch{
		"VSIDS":   VarBranchVSIDS,
		"lex":     VarBranchLex,
		"dom":     VarBranchMinDom,
		"domwdeg": VarBranchDomWDeg,
	}
	for name, want := range cases {
		got, err := ParseVarBranch(name)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := ParseVarBranch("bogus")
	require.Error(t, err)
}

func TestParseValBranch(t *testing.T) {
	cases := map[string]ValBranch{
		"VSIDS":  ValBranchVSIDS,
		"lex":    ValBranchLex,
		"bisect": ValBranchBisect,
	}
	for name, want := range cases {
		got, err := ParseValBranch(name)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := ParseValBranch("bogus")
	require.Error(t, err)
}

// TestLexVarBranchSolves exercises the non-default VarBranch/ValBranch path
// end to end, since the default VSIDS/VSIDS combination never installs a
// DecisionFunc at all.
func TestLexVarBranchSolves(t *testing.T) {
	opts := DefaultOptions
	opts.VarBranch = VarBranchLex
	opts.ValBranch = ValBranchLex
	s := NewSolver(opts)

	xs, err := s.NewCSPVarArray(3, 0, 2)
	require.NoError(t, err)
	require.NoError(t, s.PostAllDifferent(xs))

	ok, err := s.Solve()
	require.NoError(t, err)
	require.True(t, ok)

	seen := map[int]bool{}
	for _, x := range xs {
		v := value(s, x)
		require.False(t, seen[v])
		seen[v] = true
	}
}

func TestDomWDegVarBranchSolves(t *testing.T) {
	opts := DefaultOptions
	opts.VarBranch = VarBranchDomWDeg
	opts.ValBranch = ValBranchBisect
	s := NewSolver(opts)

	xs, err := s.NewCSPVarArray(4, 0, 3)
	require.NoError(t, err)
	require.NoError(t, s.PostAllDifferent(xs))

	ok, err := s.Solve()
	require.NoError(t, err)
	require.True(t, ok)
}
