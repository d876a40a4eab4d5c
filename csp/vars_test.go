package csp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewCSPVar_ChannelingInvariants(t *testing.T) {
	s := NewDefaultSolver()
	x, err := s.NewCSPVar(3, 7)
	require.NoError(t, err)

	require.Equal(t, 3, s.Min(x))
	require.Equal(t, 7, s.Max(x))
	require.Equal(t, 5, s.DomSize(x))
	require.False(t, s.IsFixed(x))

	for k := 3; k <= 7; k++ {
		require.True(t, s.InDomain(x, k), "value %d should be in the initial domain", k)
	}
	require.False(t, s.InDomain(x, 2))
	require.False(t, s.InDomain(x, 8))
}

func TestNewCSPVar_EmptyDomainIsUnsat(t *testing.T) {
	s := NewDefaultSolver()
	_, err := s.NewCSPVar(5, 2)
	require.ErrorIs(t, err, ErrUnsat)
}

func TestSetMin_NarrowsLowerBound(t *testing.T) {
	s := NewDefaultSolver()
	x, err := s.NewCSPVar(0, 10)
	require.NoError(t, err)

	require.NoError(t, s.SetMin(x, 4))
	require.Equal(t, 4, s.Min(x))
	require.Equal(t, 10, s.Max(x))
	require.False(t, s.InDomain(x, 3))
	require.True(t, s.InDomain(x, 4))
}

func TestSetMax_NarrowsUpperBound(t *testing.T) {
	s := NewDefaultSolver()
	x, err := s.NewCSPVar(0, 10)
	require.NoError(t, err)

	require.NoError(t, s.SetMax(x, 6))
	require.Equal(t, 0, s.Min(x))
	require.Equal(t, 6, s.Max(x))
	require.False(t, s.InDomain(x, 7))
}

func TestRemove_PunchesAHole(t *testing.T) {
	s := NewDefaultSolver()
	x, err := s.NewCSPVar(0, 3)
	require.NoError(t, err)

	require.NoError(t, s.Remove(x, 1))
	require.True(t, s.InDomain(x, 0))
	require.False(t, s.InDomain(x, 1))
	require.True(t, s.InDomain(x, 2))
	require.True(t, s.InDomain(x, 3))
	require.Equal(t, 3, s.DomSize(x))
}

func TestAssign_FixesTheVariable(t *testing.T) {
	s := NewDefaultSolver()
	x, err := s.NewCSPVar(0, 9)
	require.NoError(t, err)

	require.NoError(t, s.Assign(x, 5))
	require.True(t, s.IsFixed(x))
	require.Equal(t, 5, s.Min(x))
	require.Equal(t, 5, s.Max(x))
}

func TestAssign_OutOfRangeIsUnsat(t *testing.T) {
	s := NewDefaultSolver()
	x, err := s.NewCSPVar(0, 3)
	require.NoError(t, err)

	require.ErrorIs(t, s.Assign(x, 9), ErrUnsat)
}
