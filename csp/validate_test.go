package csp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateLinearArgs(t *testing.T) {
	s := NewDefaultSolver()
	x, err := s.NewCSPVar(0, 5)
	require.NoError(t, err)

	t.Run("mismatched lengths", func(t *testing.T) {
		err := validateLinearArgs([]int{1, 2}, []CSPVar{x})
		require.Error(t, err)
	})

	t.Run("empty constraint", func(t *testing.T) {
		// validateLinearArgs itself still flags a zero-term constraint:
		// PostLinearLeq special-cases the zero-variable instance before
		// ever reaching this helper (see TestPostLinearLeq_ZeroVariable).
		err := validateLinearArgs(nil, nil)
		require.Error(t, err)
	})

	t.Run("well formed", func(t *testing.T) {
		err := validateLinearArgs([]int{1}, []CSPVar{x})
		require.NoError(t, err)
	})
}

func TestValidateAllDifferentArgs(t *testing.T) {
	s := NewDefaultSolver()
	ok, err := s.NewCSPVar(0, 5)
	require.NoError(t, err)

	t.Run("no variables", func(t *testing.T) {
		require.Error(t, validateAllDifferentArgs(nil))
	})

	t.Run("well formed", func(t *testing.T) {
		require.NoError(t, validateAllDifferentArgs([]CSPVar{ok}))
	})
}

func TestValidateElementArgs(t *testing.T) {
	s := NewDefaultSolver()
	idx, err := s.NewCSPVar(0, 2)
	require.NoError(t, err)

	t.Run("empty table", func(t *testing.T) {
		require.Error(t, validateElementArgs(nil, idx))
	})

	t.Run("well formed", func(t *testing.T) {
		require.NoError(t, validateElementArgs([]int{1, 2, 3}, idx))
	})
}
