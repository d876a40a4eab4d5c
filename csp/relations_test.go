package csp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPostMax(t *testing.T) {
	s := NewDefaultSolver()
	a, err := s.NewCSPVar(0, 5)
	require.NoError(t, err)
	b, err := s.NewCSPVar(0, 5)
	require.NoError(t, err)
	z, err := s.NewCSPVar(0, 5)
	require.NoError(t, err)

	require.NoError(t, s.PostMax(z, a, b))
	require.NoError(t, s.Assign(a, 2))
	require.NoError(t, s.Assign(b, 4))

	ok, err := s.Solve()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 4, value(s, z))
}

func TestPostMin(t *testing.T) {
	s := NewDefaultSolver()
	a, err := s.NewCSPVar(0, 5)
	require.NoError(t, err)
	b, err := s.NewCSPVar(0, 5)
	require.NoError(t, err)
	z, err := s.NewCSPVar(0, 5)
	require.NoError(t, err)

	require.NoError(t, s.PostMin(z, a, b))
	require.NoError(t, s.Assign(a, 2))
	require.NoError(t, s.Assign(b, 4))

	ok, err := s.Solve()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 2, value(s, z))
}

func TestPostAbs(t *testing.T) {
	s := NewDefaultSolver()
	x, err := s.NewCSPVar(-5, 5)
	require.NoError(t, err)
	z, err := s.NewCSPVar(0, 5)
	require.NoError(t, err)

	require.NoError(t, s.PostAbs(z, x))
	require.NoError(t, s.Assign(x, -3))

	ok, err := s.Solve()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 3, value(s, z))
}

func TestPostNeq(t *testing.T) {
	s := NewDefaultSolver()
	x, err := s.NewCSPVar(0, 0)
	require.NoError(t, err)
	y, err := s.NewCSPVar(0, 0)
	require.NoError(t, err)

	require.ErrorIs(t, s.PostNeq(x, y), ErrUnsat)

	ok, err := s.Solve()
	require.NoError(t, err)
	require.False(t, ok, "x and y share their only possible value, so no model exists")
}

func TestPostLess(t *testing.T) {
	s := NewDefaultSolver()
	x, err := s.NewCSPVar(0, 5)
	require.NoError(t, err)
	y, err := s.NewCSPVar(0, 5)
	require.NoError(t, err)

	require.NoError(t, s.PostLess(x, y))
	require.NoError(t, s.Assign(y, 2))

	ok, err := s.Solve()
	require.NoError(t, err)
	require.True(t, ok)
	require.Less(t, value(s, x), value(s, y))
}
