package csp

// SetVar is a set variable over the universe [0, universeSize): a bitset
// encoded as one 0/1 CSPVar per element plus a cardinality CSPVar tied to
// the element indicators through a linear equality. Full native set-domain
// propagation is out of scope, but a set variable decomposed this way gets
// bound/cardinality reasoning for free from the linear propagator already
// built.
type SetVar struct {
	members []CSPVar
	card    CSPVar
}

// NewSetVar creates a set variable ranging over subsets of [0, universeSize).
func (s *Solver) NewSetVar(universeSize int) (SetVar, error) {
	members, err := s.NewCSPVarArray(universeSize, 0, 1)
	if err != nil {
		return SetVar{}, err
	}
	card, err := s.NewCSPVar(0, universeSize)
	if err != nil {
		return SetVar{}, err
	}

	weights := make([]int, universeSize+1)
	vars := make([]CSPVar, universeSize+1)
	for i, m := range members {
		weights[i] = 1
		vars[i] = m
	}
	weights[universeSize] = -1
	vars[universeSize] = card

	if err := s.PostLinearEq(weights, vars, 0); err != nil {
		return SetVar{}, err
	}
	return SetVar{members: members, card: card}, nil
}

// UniverseSize returns the size of set's universe.
func (set SetVar) UniverseSize() int { return len(set.members) }

// Card returns the set's cardinality variable.
func (set SetVar) Card() CSPVar { return set.card }

// SetContains reports whether elem is known to belong to set.
func (s *Solver) SetContains(set SetVar, elem int) bool {
	return s.Min(set.members[elem]) == 1
}

// SetExcludes reports whether elem is known not to belong to set.
func (s *Solver) SetExcludes(set SetVar, elem int) bool {
	return s.Max(set.members[elem]) == 0
}

// SetInclude forces elem into set. It is a root-level operation.
func (s *Solver) SetInclude(set SetVar, elem int) error {
	return s.Assign(set.members[elem], 1)
}

// SetExclude forces elem out of set. It is a root-level operation.
func (s *Solver) SetExclude(set SetVar, elem int) error {
	return s.Assign(set.members[elem], 0)
}
