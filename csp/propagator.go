package csp

import (
	"github.com/go-lcg/lcg/internal/sat"
)

// Propagator is implemented by every constraint in the catalogue: linear
// inequality, all-different, and the rest are all driven uniformly through
// this interface and the Scheduler below.
type Propagator interface {
	// Wake runs synchronously, inline in BCP, for a literal this propagator
	// subscribed to in wake-on-lit mode. It returns a conflict clause, or
	// nil.
	Wake(s *Solver, lit sat.Literal) *sat.Clause

	// Propagate runs out-of-line, once this propagator has been dequeued by
	// the scheduler because a literal it subscribed to in schedule-on-*
	// mode became true. It returns a conflict clause, or nil.
	Propagate(s *Solver) *sat.Clause
}

// Priority buckets, scanned highest first: cheaper, more informative events
// run before coarser ones.
const (
	PriorityFix   = 0
	PriorityBound = 1
	PriorityDom   = 2
	numPriorities = 3
)

type subscription struct {
	prop     Propagator
	priority int
}

// Scheduler is the propagator registry and dispatch queue. It implements
// sat.Dispatcher, which is how integer-variable propagation is layered on
// top of the Boolean core without the core knowing anything about CSPVar.
type Scheduler struct {
	s *Solver

	immediate map[sat.Literal][]Propagator
	scheduled map[sat.Literal][]subscription

	buckets [numPriorities]*sat.Queue[Propagator]
	pending map[Propagator]bool
}

func newScheduler(s *Solver) *Scheduler {
	sch := &Scheduler{
		s:         s,
		immediate: map[sat.Literal][]Propagator{},
		scheduled: map[sat.Literal][]subscription{},
		pending:   map[Propagator]bool{},
	}
	for i := range sch.buckets {
		sch.buckets[i] = sat.NewQueue[Propagator](8)
	}
	return sch
}

// SubscribeLit wakes p synchronously, inline in BCP, whenever lit becomes
// true. Used by propagators that need to react to a single Boolean literal
// directly (e.g. a pseudo-Boolean term's operand) rather than to one of a
// CSPVar's derived channels.
func (sch *Scheduler) SubscribeLit(lit sat.Literal, p Propagator) {
	sch.immediate[lit] = append(sch.immediate[lit], p)
}

// SubscribeFix schedules p when x becomes fixed to a single value.
func (sch *Scheduler) SubscribeFix(x CSPVar, p Propagator) {
	for k := x.lo; k <= x.hi; k++ {
		sch.scheduleOn(x.eqLit(sch.s, k), p, PriorityFix)
	}
}

// SubscribeLB schedules p when x's lower bound increases.
func (sch *Scheduler) SubscribeLB(x CSPVar, p Propagator) {
	for k := x.lo; k < x.hi; k++ {
		sch.scheduleOn(x.leqLit(sch.s, k).Opposite(), p, PriorityBound)
	}
}

// SubscribeUB schedules p when x's upper bound decreases.
func (sch *Scheduler) SubscribeUB(x CSPVar, p Propagator) {
	for k := x.lo; k < x.hi; k++ {
		sch.scheduleOn(x.leqLit(sch.s, k), p, PriorityBound)
	}
}

// SubscribeDom schedules p when any value is removed from x's domain,
// including bound changes.
func (sch *Scheduler) SubscribeDom(x CSPVar, p Propagator) {
	for k := x.lo; k <= x.hi; k++ {
		sch.scheduleOn(x.eqLit(sch.s, k).Opposite(), p, PriorityDom)
	}
}

func (sch *Scheduler) scheduleOn(lit sat.Literal, p Propagator, priority int) {
	sch.scheduled[lit] = append(sch.scheduled[lit], subscription{prop: p, priority: priority})
}

// OnAssign implements sat.Dispatcher.
func (sch *Scheduler) OnAssign(lit sat.Literal) *sat.Clause {
	for _, p := range sch.immediate[lit] {
		if conflict := p.Wake(sch.s, lit); conflict != nil {
			return conflict
		}
	}
	for _, sub := range sch.scheduled[lit] {
		if sch.pending[sub.prop] {
			continue
		}
		sch.pending[sub.prop] = true
		sch.buckets[sub.priority].Push(sub.prop)
	}
	return nil
}

// RunScheduled implements sat.Dispatcher.
func (sch *Scheduler) RunScheduled() (bool, *sat.Clause) {
	for _, b := range sch.buckets {
		if b.IsEmpty() {
			continue
		}
		p := b.Pop()
		sch.pending[p] = false
		return true, p.Propagate(sch.s)
	}
	return false, nil
}

// Cancel implements sat.Dispatcher. Scheduling is flat rather than
// partitioned by decision level: a backtrack simply discards everything
// still queued, since any propagator whose trigger literal got unassigned
// will naturally be rescheduled if the same event recurs.
func (sch *Scheduler) Cancel() {
	for i := range sch.buckets {
		sch.buckets[i].Clear()
	}
	for p := range sch.pending {
		delete(sch.pending, p)
	}
}
