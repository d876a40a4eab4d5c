package sat

import (
	"github.com/rhartert/yagh"
)

// VarOrder maintains the VSIDS order in which unassigned boolean variables
// are offered up as decisions.
type VarOrder struct {
	// Binary heap giving fast access to the variable with the highest score.
	// Ties are broken by the index of the variables, which corresponds to the
	// order in which they were declared.
	heap *yagh.IntMap[float64]

	scores  []float64 // in [0, 1e100)
	inc     float64   // in (0, 1e100)
	decay   float64   // in (0, 1]
	phases  []LBool
	savePhase bool
}

// NewVarOrder returns a new, empty VarOrder.
func NewVarOrder(decay float64, savePhase bool) *VarOrder {
	return &VarOrder{
		heap:      yagh.New[float64](0),
		inc:       1,
		decay:     decay,
		savePhase: savePhase,
	}
}

// NewVar registers a new variable with the given initial score and phase.
func (vo *VarOrder) NewVar(initScore float64, initPhase bool) {
	v := len(vo.phases)
	vo.scores = append(vo.scores, initScore)
	vo.phases = append(vo.phases, Lift(initPhase))
	vo.heap.GrowBy(1)
	vo.heap.Put(v, -initScore)
}

// Reinsert adds variable v back to the set of decision candidates. Called by
// the solver whenever v is unassigned by a backtrack; val is the value the
// variable held just before being unassigned.
func (vo *VarOrder) Reinsert(v int, val LBool) {
	if vo.savePhase {
		vo.phases[v] = val
	}
	vo.heap.Put(v, -vo.scores[v])
}

// Decay slightly reduces the weight of past activity bumps relative to
// future ones, by inflating the increment rather than deflating every score.
func (vo *VarOrder) Decay() {
	vo.inc /= vo.decay
	if vo.inc > 1e100 {
		vo.rescale()
	}
}

// Bump increases the activity score of variable v.
func (vo *VarOrder) Bump(v int) {
	newScore := vo.scores[v] + vo.inc
	vo.scores[v] = newScore
	if vo.heap.Contains(v) {
		vo.heap.Put(v, -newScore)
	}
	if newScore > 1e100 {
		vo.rescale()
	}
}

func (vo *VarOrder) rescale() {
	vo.inc *= 1e-100
	for v, s := range vo.scores {
		newScore := s * 1e-100
		vo.scores[v] = newScore
		if vo.heap.Contains(v) {
			vo.heap.Put(v, -newScore)
		}
	}
}

// next pops the unassigned variable with the highest score, or ok=false if
// every variable in the heap turns out to already be assigned.
func (vo *VarOrder) next(isUnassigned func(int) bool) (int, bool) {
	for {
		top, ok := vo.heap.Pop()
		if !ok {
			return 0, false
		}
		if isUnassigned(top.Elem) {
			return top.Elem, true
		}
	}
}

// phase returns the polarity decided for variable v the last time phase
// saving recorded one, defaulting to the positive literal.
func (vo *VarOrder) phase(v int) LBool {
	return vo.phases[v]
}
