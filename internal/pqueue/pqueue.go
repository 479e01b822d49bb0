// Package pqueue is the fixed-capacity process-id ring (component F) the
// feedback-queue scheduling strategy is built on.
package pqueue

import (
	"spos/internal/diag"
	"spos/internal/procmodel"
)

// Queue is a fixed-capacity ring buffer of process ids with separate head
// and tail indices. Capacity is cap(data)-1 usable slots, the standard
// full/empty-disambiguation trick for a ring buffer.
type Queue struct {
	data       []procmodel.ProcessID
	head, tail int
}

// New allocates a queue able to hold up to capacity process ids.
func New(capacity int) *Queue {
	return &Queue{data: make([]procmodel.ProcessID, capacity+1)}
}

// Reset empties the queue.
func (q *Queue) Reset() {
	q.head, q.tail = 0, 0
}

// HasNext reports whether the queue holds at least one entry.
func (q *Queue) HasNext() bool {
	return q.head != q.tail
}

// Len returns the number of entries currently queued.
func (q *Queue) Len() int {
	return (q.head - q.tail + len(q.data)) % len(q.data)
}

// PeekFirst returns the head entry without removing it. Returns 0 (the idle
// slot) if the queue is empty.
func (q *Queue) PeekFirst() procmodel.ProcessID {
	if !q.HasNext() {
		return 0
	}
	return q.data[q.tail]
}

// DropFirst removes the head entry, if any.
func (q *Queue) DropFirst() {
	if q.HasNext() {
		q.tail = (q.tail + 1) % len(q.data)
	}
}

// Append pushes pid onto the tail. Overflow is a diagnostic, not a panic:
// the queue is left unchanged.
func (q *Queue) Append(pid procmodel.ProcessID) {
	next := (q.head + 1) % len(q.data)
	if next == q.tail {
		diag.Report("process queue append failed: queue full")
		return
	}
	q.data[q.head] = pid
	q.head = next
}

// RemoveByID walks the queue once, preserving order, dropping every
// occurrence of pid.
func (q *Queue) RemoveByID(pid procmodel.ProcessID) {
	n := q.Len()
	for i := 0; i < n; i++ {
		cur := q.PeekFirst()
		q.DropFirst()
		if cur != pid {
			q.Append(cur)
		}
	}
}
