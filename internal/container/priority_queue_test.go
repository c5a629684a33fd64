package container

import "testing"

func TestPriorityQueueOrdersByPriority(t *testing.T) {
	q := NewPriorityQueue[string]()
	q.Push("c", 3)
	q.Push("a", 1)
	q.Push("b", 2)

	var got []string
	for q.Len() > 0 {
		v, _ := q.Pop()
		got = append(got, v)
	}

	want := []string{"a", "b", "c"}
	for i, w := range want {
		if got[i] != w {
			t.Fatalf("pop order = %v, want %v", got, want)
		}
	}
}

func TestPriorityQueueLen(t *testing.T) {
	q := NewPriorityQueue[int]()
	if q.Len() != 0 {
		t.Fatalf("new queue len = %d, want 0", q.Len())
	}
	q.Push(1, 0.5)
	q.Push(2, 0.1)
	if q.Len() != 2 {
		t.Fatalf("len = %d, want 2", q.Len())
	}
	v, p := q.Pop()
	if v != 2 || p != 0.1 {
		t.Fatalf("pop = (%d, %v), want (2, 0.1)", v, p)
	}
}
