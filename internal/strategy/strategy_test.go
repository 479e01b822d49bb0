package strategy

import (
	"testing"

	"spos/internal/procmodel"
)

func newTable(n int) *procmodel.Table {
	return procmodel.NewTable(n, 32)
}

func TestEvenSkipsIdleAndWakesBlocked(t *testing.T) {
	s := NewScheduler(4)
	table := newTable(4)
	table.Slots[1].State = procmodel.Blocked
	table.Slots[2].State = procmodel.Ready
	table.Slots[3].State = procmodel.Unused

	got := s.even(table, 0)
	if got != 1 {
		t.Fatalf("even() = %d, want 1 (the woken slot, first in scan order after idle)", got)
	}
	if table.Slots[1].State != procmodel.Ready {
		t.Fatal("even() did not wake the blocked slot it scanned")
	}
}

// TestEvenRestartsScanFromCurrentAfterWakingBlocked exercises current != 0
// with a Blocked slot ahead of another Ready one in scan order. Recursing on
// the loop offset instead of current would restart the scan from the wrong
// slot and could return current itself, silently skipping over genuinely
// eligible processes; recursing on current, like random() and
// inactiveAging() do, always restarts from the real current pid.
func TestEvenRestartsScanFromCurrentAfterWakingBlocked(t *testing.T) {
	s := NewScheduler(5)
	table := newTable(5)
	table.Slots[1].State = procmodel.Ready
	table.Slots[3].State = procmodel.Blocked
	table.Slots[4].State = procmodel.Ready

	got := s.even(table, 2)
	if got == 2 {
		t.Fatal("even() returned current itself instead of a genuinely eligible slot")
	}
	if got != 3 {
		t.Fatalf("even() = %d, want 3 (the woken slot, first in scan order from current=2)", got)
	}
	if table.Slots[3].State != procmodel.Ready {
		t.Fatal("even() did not wake the blocked slot it scanned")
	}
}

func TestEvenNeverReturnsIdleWhenAnotherSlotIsReady(t *testing.T) {
	s := NewScheduler(3)
	table := newTable(3)
	table.Slots[1].State = procmodel.Ready

	got := s.even(table, 2)
	if got != 1 {
		t.Fatalf("even() = %d, want 1", got)
	}
}

func TestRandomChoosesAmongEligibleExcludingIdle(t *testing.T) {
	s := NewScheduler(4)
	s.SetRandomSource(func(n int) int { return 0 })
	table := newTable(4)
	table.Slots[1].State = procmodel.Unused
	table.Slots[2].State = procmodel.Ready
	table.Slots[3].State = procmodel.Ready

	got := s.random(table, 0)
	if got != 2 {
		t.Fatalf("random() with rng always 0 = %d, want 2 (first eligible)", got)
	}
}

func TestRandomWithNoEligibleProcessReturnsIdle(t *testing.T) {
	s := NewScheduler(2)
	s.SetRandomSource(func(n int) int { return 0 })
	table := newTable(2)

	got := s.random(table, 0)
	if got != 0 {
		t.Fatalf("random() with nothing eligible = %d, want 0", got)
	}
}

func TestRoundRobinKeepsCurrentUntilSliceExpires(t *testing.T) {
	s := NewScheduler(3)
	table := newTable(3)
	table.Slots[1].State = procmodel.Ready
	table.Slots[1].Priority = 3
	s.ResetInformation(RoundRobin, table, 1)

	got := s.roundRobin(table, 1)
	if got != 1 {
		t.Fatalf("roundRobin() with slice remaining = %d, want 1 (stay)", got)
	}
}

func TestRoundRobinMovesOnWhenSliceExpires(t *testing.T) {
	s := NewScheduler(3)
	table := newTable(3)
	table.Slots[1].State = procmodel.Ready
	table.Slots[1].Priority = 1
	table.Slots[2].State = procmodel.Ready
	s.ResetInformation(RoundRobin, table, 1)

	got := s.roundRobin(table, 1)
	if got == 1 {
		t.Fatal("roundRobin() did not move on after its slice expired")
	}
}

func TestInactiveAgingPrefersOldestReady(t *testing.T) {
	s := NewScheduler(4)
	table := newTable(4)
	table.Slots[1].State = procmodel.Ready
	table.Slots[1].Priority = 1
	table.Slots[2].State = procmodel.Ready
	table.Slots[2].Priority = 1

	// Age slot 2 ahead of slot 1 by running a pass where 1 is "current"
	// (excluded from aging) and 2 accumulates.
	got := s.inactiveAging(table, 1)
	if got != 2 {
		t.Fatalf("inactiveAging() = %d, want 2 (the only other ready slot)", got)
	}
}

func TestInactiveAgingResetsWinnersAge(t *testing.T) {
	s := NewScheduler(3)
	table := newTable(3)
	table.Slots[1].State = procmodel.Ready
	table.Slots[1].Priority = 5
	winner := s.inactiveAging(table, 0)
	if s.age[winner] != table.Slots[winner].Priority {
		t.Fatalf("age[%d] = %d after winning, want reset to priority %d", winner, s.age[winner], table.Slots[winner].Priority)
	}
}

func TestRunToCompletionStaysOnCurrentWhileReady(t *testing.T) {
	s := NewScheduler(3)
	table := newTable(3)
	table.Slots[1].State = procmodel.Ready

	got := s.runToCompletion(table, 1)
	if got != 1 {
		t.Fatalf("runToCompletion() = %d, want 1 (stay until done)", got)
	}
}

func TestRunToCompletionMovesOnWhenCurrentIsDone(t *testing.T) {
	s := NewScheduler(3)
	table := newTable(3)
	table.Slots[1].State = procmodel.Unused
	table.Slots[2].State = procmodel.Ready

	got := s.runToCompletion(table, 1)
	if got != 2 {
		t.Fatalf("runToCompletion() = %d, want 2", got)
	}
}

func TestMapToQueue(t *testing.T) {
	cases := []struct {
		priority uint8
		want     int
	}{
		{0xFF, 0},
		{0xC0, 0},
		{0x80, 1},
		{0xBF, 1},
		{0x40, 2},
		{0x7F, 2},
		{0x00, 3},
		{0x3F, 3},
	}
	for _, c := range cases {
		if got := mapToQueue(c.priority); got != c.want {
			t.Errorf("mapToQueue(%#02x) = %d, want %d", c.priority, got, c.want)
		}
	}
}

func TestResetProcessPlacesInMappedQueue(t *testing.T) {
	s := NewScheduler(4)
	table := newTable(4)
	table.Slots[1].State = procmodel.Ready
	table.Slots[1].Priority = 0x40

	s.ResetProcess(table, 1)
	if qi := s.QueueIndexOf(1); qi != 2 {
		t.Fatalf("QueueIndexOf(1) = %d, want 2 for priority 0x40", qi)
	}
}

func TestMLFQRunsHighestNonEmptyQueueFirst(t *testing.T) {
	s := NewScheduler(4)
	table := newTable(4)
	table.Slots[1].State = procmodel.Ready
	table.Slots[1].Priority = 0x40 // queue 2
	table.Slots[2].State = procmodel.Ready
	table.Slots[2].Priority = 0xC0 // queue 0
	s.ResetInformation(MLFQ, table, 0)

	got := s.mlfq(table, 0)
	if got != 2 {
		t.Fatalf("mlfq() = %d, want 2 (queue 0 beats queue 2)", got)
	}
}

func TestMLFQDemotesOnSliceExhaustion(t *testing.T) {
	s := NewScheduler(4)
	table := newTable(4)
	table.Slots[1].State = procmodel.Ready
	table.Slots[1].Priority = 0xC0 // queue 0, timeslice 1
	s.ResetInformation(MLFQ, table, 0)

	first := s.mlfq(table, 0)
	if first != 1 {
		t.Fatalf("mlfq() first pick = %d, want 1", first)
	}
	if qi := s.QueueIndexOf(1); qi != 0 {
		t.Fatalf("QueueIndexOf(1) after one pick = %d, want still queue 0 (slice not yet exhausted)", qi)
	}

	second := s.mlfq(table, 1)
	if second != 1 {
		t.Fatalf("mlfq() second pick = %d, want 1 again (slice exhausted now, demoted and requeued)", second)
	}
	if qi := s.QueueIndexOf(1); qi != 1 {
		t.Fatalf("QueueIndexOf(1) after slice exhaustion = %d, want queue 1 (demoted)", qi)
	}
}

func TestMLFQWakesBlockedAndRequeuesAtSameLevel(t *testing.T) {
	s := NewScheduler(4)
	table := newTable(4)
	table.Slots[1].State = procmodel.Blocked
	table.Slots[1].Priority = 0xC0
	table.Slots[2].State = procmodel.Ready
	table.Slots[2].Priority = 0xC0
	s.ResetInformation(MLFQ, table, 0)

	got := s.mlfq(table, 0)
	if got != 2 {
		t.Fatalf("mlfq() = %d, want 2 (the ready one, after the blocked head woke and requeued)", got)
	}
	if table.Slots[1].State != procmodel.Ready {
		t.Fatal("mlfq() did not wake the blocked slot it scanned past")
	}
}

func TestResetInformationMLFQPlacesEveryLiveProcess(t *testing.T) {
	s := NewScheduler(4)
	table := newTable(4)
	table.Slots[1].State = procmodel.Ready
	table.Slots[1].Priority = 0xC0
	table.Slots[2].State = procmodel.Ready
	table.Slots[2].Priority = 0x00

	s.ResetInformation(MLFQ, table, 0)
	if qi := s.QueueIndexOf(1); qi != 0 {
		t.Fatalf("QueueIndexOf(1) = %d, want 0", qi)
	}
	if qi := s.QueueIndexOf(2); qi != 3 {
		t.Fatalf("QueueIndexOf(2) = %d, want 3", qi)
	}
}
