// Package strategy implements the six interchangeable scheduling
// strategies (component G): Even, Random, Round-Robin, Inactive-Aging,
// Run-to-Completion, and a four-level feedback queue.
package strategy

import (
	"math/rand"

	"spos/internal/diag"
	"spos/internal/pqueue"
	"spos/internal/procmodel"
)

// Kind selects which strategy Select dispatches to.
type Kind int

const (
	Even Kind = iota
	Random
	RoundRobin
	InactiveAging
	RunToCompletion
	MLFQ
)

// NumQueues is the number of feedback-queue priority classes.
const NumQueues = 4

// Scheduler holds every strategy's scheduling information as one singleton
// structure rather than scattered globals.
type Scheduler struct {
	nSlots      int
	timeSliceRR uint8
	age         []uint8
	sliceMLFQ   []uint8
	queues      [NumQueues]*pqueue.Queue

	// rng is injected as a function value so Random is deterministic under
	// test without a build-tag-swapped implementation.
	rng func(n int) int
}

// NewScheduler allocates scheduling information for nSlots process slots.
func NewScheduler(nSlots int) *Scheduler {
	s := &Scheduler{
		nSlots:    nSlots,
		age:       make([]uint8, nSlots),
		sliceMLFQ: make([]uint8, nSlots),
		rng:       rand.Intn,
	}
	for i := range s.queues {
		s.queues[i] = pqueue.New(nSlots)
	}
	return s
}

// SetRandomSource overrides the Random strategy's index source, for
// deterministic tests.
func (s *Scheduler) SetRandomSource(rng func(n int) int) {
	s.rng = rng
}

// Select dispatches to the strategy named by kind.
func (s *Scheduler) Select(kind Kind, table *procmodel.Table, current procmodel.ProcessID) procmodel.ProcessID {
	switch kind {
	case Even:
		return s.even(table, current)
	case Random:
		return s.random(table, current)
	case RoundRobin:
		return s.roundRobin(table, current)
	case InactiveAging:
		return s.inactiveAging(table, current)
	case RunToCompletion:
		return s.runToCompletion(table, current)
	case MLFQ:
		return s.mlfq(table, current)
	default:
		diag.Fatal("strategy: unknown scheduling strategy selected")
		return 0
	}
}

func (s *Scheduler) even(table *procmodel.Table, current procmodel.ProcessID) procmodel.ProcessID {
	n := procmodel.ProcessID(s.nSlots)
	for i := procmodel.ProcessID(1); int(i) <= s.nSlots; i++ {
		idx := (current + i) % n
		st := table.Slots[idx].State
		if st == procmodel.Blocked {
			table.Slots[idx].State = procmodel.Ready
			return s.even(table, current)
		}
		if st == procmodel.Ready && idx != 0 {
			return idx
		}
	}
	return 0
}

func (s *Scheduler) random(table *procmodel.Table, current procmodel.ProcessID) procmodel.ProcessID {
	n := s.nSlots
	numEligible := 0
	for i := 1; i < n; i++ {
		st := table.Slots[i].State
		if st == procmodel.Ready || st == procmodel.Blocked {
			numEligible++
		}
	}
	if numEligible == 0 {
		return 0
	}
	r := s.rng(numEligible)
	for i := 1; i < n; i++ {
		st := table.Slots[i].State
		if st != procmodel.Ready && st != procmodel.Blocked {
			continue
		}
		if r == 0 {
			if st == procmodel.Blocked {
				table.Slots[i].State = procmodel.Ready
				return s.random(table, current)
			}
			return procmodel.ProcessID(i)
		}
		r--
	}
	return 0
}

func (s *Scheduler) roundRobin(table *procmodel.Table, current procmodel.ProcessID) procmodel.ProcessID {
	s.timeSliceRR--
	if s.timeSliceRR != 0 && table.Slots[current].State == procmodel.Ready {
		return current
	}
	next := s.even(table, current)
	s.timeSliceRR = table.Slots[next].Priority
	return next
}

func (s *Scheduler) inactiveAging(table *procmodel.Table, current procmodel.ProcessID) procmodel.ProcessID {
	n := s.nSlots
	var oldest procmodel.ProcessID

	for i := 1; i < n; i++ {
		if table.Slots[i].State == procmodel.Ready && procmodel.ProcessID(i) != current {
			s.age[i] += table.Slots[i].Priority
		}
	}
	for i := 1; i < n; i++ {
		if table.Slots[i].State != procmodel.Ready {
			continue
		}
		id := procmodel.ProcessID(i)
		if oldest == 0 || s.age[oldest] < s.age[id] {
			oldest = id
		} else if s.age[oldest] == s.age[id] && table.Slots[oldest].Priority < table.Slots[id].Priority {
			oldest = id
		}
	}

	blockedWoke := false
	for i := 1; i < n; i++ {
		if table.Slots[i].State == procmodel.Blocked {
			for j := i; j < n; j++ {
				if table.Slots[j].State == procmodel.Blocked {
					table.Slots[j].State = procmodel.Ready
				}
			}
			blockedWoke = true
			break
		}
	}
	if blockedWoke && oldest == 0 {
		return s.inactiveAging(table, current)
	}

	s.age[oldest] = table.Slots[oldest].Priority
	return oldest
}

func (s *Scheduler) runToCompletion(table *procmodel.Table, current procmodel.ProcessID) procmodel.ProcessID {
	if current != 0 && table.Slots[current].State == procmodel.Ready {
		return current
	}
	return s.even(table, current)
}

// mapToQueue maps the two high bits of priority to a feedback-queue index:
// 11->0 (highest), 10->1, 01->2, 00->3 (lowest).
func mapToQueue(priority uint8) int {
	switch priority & 0xC0 {
	case 0xC0:
		return 0
	case 0x80:
		return 1
	case 0x40:
		return 2
	default:
		return 3
	}
}

// defaultTimeslice is the fixed {1,2,4,8}-tick default for queues 0..3.
func defaultTimeslice(queue int) uint8 {
	switch queue {
	case 0:
		return 1
	case 1:
		return 2
	case 2:
		return 4
	case 3:
		return 8
	default:
		diag.Report("strategy: invalid feedback-queue id")
		return 0
	}
}

// ResetProcess reinitializes pid's scheduling information after exec: its
// aging accumulator is cleared and it is placed in the feedback queue its
// priority maps to.
func (s *Scheduler) ResetProcess(table *procmodel.Table, pid procmodel.ProcessID) {
	s.age[pid] = 0
	s.resetMLFQProcess(table, pid)
}

func (s *Scheduler) resetMLFQProcess(table *procmodel.Table, pid procmodel.ProcessID) {
	q := mapToQueue(table.Slots[pid].Priority)
	s.sliceMLFQ[pid] = defaultTimeslice(q)
	s.removeFromQueues(pid)
	s.queues[q].Append(pid)
}

func (s *Scheduler) removeFromQueues(pid procmodel.ProcessID) {
	for i := range s.queues {
		s.queues[i].RemoveByID(pid)
	}
}

// ResetInformation reinitializes whatever scheduling information kind
// depends on, called when setSchedulingStrategy switches to kind.
func (s *Scheduler) ResetInformation(kind Kind, table *procmodel.Table, current procmodel.ProcessID) {
	switch kind {
	case RoundRobin:
		s.timeSliceRR = table.Slots[current].Priority
	case InactiveAging:
		for i := range s.age {
			s.age[i] = 0
		}
	case MLFQ:
		for i := range s.queues {
			s.queues[i].Reset()
		}
		for i := 1; i < s.nSlots; i++ {
			if table.Slots[i].State != procmodel.Unused {
				s.resetMLFQProcess(table, procmodel.ProcessID(i))
			}
		}
	}
}

// QueueIndexOf reports which feedback queue pid currently sits in, or -1 if
// it is in none. Exercised by the feedback-queue-membership property test.
func (s *Scheduler) QueueIndexOf(pid procmodel.ProcessID) int {
	for qi, q := range s.queues {
		n := q.Len()
		saved := make([]procmodel.ProcessID, 0, n)
		found := -1
		for i := 0; i < n; i++ {
			cur := q.PeekFirst()
			q.DropFirst()
			saved = append(saved, cur)
			if cur == pid {
				found = qi
			}
		}
		for _, id := range saved {
			q.Append(id)
		}
		if found >= 0 {
			return found
		}
	}
	return -1
}

func (s *Scheduler) mlfq(table *procmodel.Table, current procmodel.ProcessID) procmodel.ProcessID {
	repeat := false
	for qid := 0; qid < NumQueues; qid++ {
		q := s.queues[qid]
		n := q.Len()
		for i := 0; i < n; i++ {
			cur := q.PeekFirst()
			switch {
			case table.Slots[cur].State == procmodel.Unused || cur == 0:
				q.DropFirst()
			case s.sliceMLFQ[cur] == 0:
				q.DropFirst()
				if table.Slots[cur].State == procmodel.Blocked {
					table.Slots[cur].State = procmodel.Ready
				}
				nextQ := qid + 1
				if nextQ >= NumQueues {
					nextQ = NumQueues - 1
				}
				s.queues[nextQ].Append(cur)
				s.sliceMLFQ[cur] = defaultTimeslice(nextQ)
				repeat = true
			case table.Slots[cur].State == procmodel.Ready:
				s.sliceMLFQ[cur]--
				return cur
			case table.Slots[cur].State == procmodel.Blocked:
				q.DropFirst()
				table.Slots[cur].State = procmodel.Ready
				q.Append(cur)
				repeat = true
			}
		}
	}
	if repeat {
		return s.mlfq(table, current)
	}
	return 0
}
