package pqueue

import (
	"bytes"
	"os"
	"testing"

	"spos/internal/diag"
	"spos/internal/procmodel"
)

func TestAppendPeekDropOrder(t *testing.T) {
	q := New(4)
	for _, id := range []procmodel.ProcessID{1, 2, 3} {
		q.Append(id)
	}
	if q.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", q.Len())
	}
	var got []procmodel.ProcessID
	for q.HasNext() {
		got = append(got, q.PeekFirst())
		q.DropFirst()
	}
	want := []procmodel.ProcessID{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("drained %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("drained %v, want %v", got, want)
		}
	}
}

func TestPeekFirstOnEmptyQueueReturnsIdle(t *testing.T) {
	q := New(2)
	if got := q.PeekFirst(); got != 0 {
		t.Fatalf("PeekFirst() on empty queue = %d, want 0", got)
	}
}

func TestAppendOverflowReportsAndLeavesQueueUnchanged(t *testing.T) {
	var buf bytes.Buffer
	diag.SetDevice(&buf)
	defer diag.SetDevice(os.Stderr)

	q := New(2)
	q.Append(1)
	q.Append(2)
	before := q.Len()
	q.Append(3)
	if q.Len() != before {
		t.Fatalf("queue mutated on overflow: Len() = %d, want %d", q.Len(), before)
	}
	if buf.Len() == 0 {
		t.Fatal("expected a diagnostic on overflow")
	}
}

func TestRemoveByIDPreservesOrderOfSurvivors(t *testing.T) {
	q := New(8)
	for _, id := range []procmodel.ProcessID{1, 2, 3, 2, 4} {
		q.Append(id)
	}
	q.RemoveByID(2)

	var got []procmodel.ProcessID
	for q.HasNext() {
		got = append(got, q.PeekFirst())
		q.DropFirst()
	}
	want := []procmodel.ProcessID{1, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestResetEmptiesQueue(t *testing.T) {
	q := New(4)
	q.Append(1)
	q.Append(2)
	q.Reset()
	if q.HasNext() {
		t.Fatal("Reset did not empty the queue")
	}
	if q.Len() != 0 {
		t.Fatalf("Len() after Reset = %d, want 0", q.Len())
	}
}
