package sat

import (
	"reflect"
	"testing"
)

func TestQueue_Push_WithResizeAndRotation(t *testing.T) {
	q := &Queue[int]{
		ring:  []int{3, 4, 1, 2},
		start: 2,
		end:   2,
		size:  4,
		mask:  0b11,
	}
	want := &Queue[int]{
		ring:  []int{1, 2, 3, 4, 5, 0, 0, 0},
		start: 0,
		end:   5,
		size:  5,
		mask:  0b111,
	}

	q.Push(5)

	if !reflect.DeepEqual(want, q) {
		t.Errorf("Mismatch: want %#v, got %#v", want, q)
	}
}

func TestQueue_PopThenPush_ReusesFreedSlot(t *testing.T) {
	q := NewQueue[Literal](1)
	q.Push(PositiveLiteral(0))
	q.Push(PositiveLiteral(1))
	q.Pop()
	q.Push(PositiveLiteral(2))

	got := []Literal{}
	for !q.IsEmpty() {
		got = append(got, q.Pop())
	}

	want := []Literal{PositiveLiteral(1), PositiveLiteral(2)}
	if !reflect.DeepEqual(want, got) {
		t.Errorf("Mismatch: want %#v, got %#v", want, got)
	}
}
