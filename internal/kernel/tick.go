package kernel

import (
	"spos/internal/diag"
	"spos/internal/procmodel"
)

// tick is the timer ISR's logic, stripped of the register save/restore a
// real interrupt handler would do (Go gives every process its own real
// stack already). It snapshots the outgoing process's checksum, asks the
// active strategy who runs next, verifies that process's checksum, and
// hands it the turn token if it is not already the one holding the CPU.
// Returns whether a different process was chosen.
func (k *Kernel) tick() bool {
	k.mu.Lock()
	if k.timerMasked {
		k.mu.Unlock()
		return false
	}
	k.mu.Unlock()

	k.ticks.Add(1)

	k.mu.Lock()
	cur := k.current
	p := &k.table.Slots[cur]
	if p.State != procmodel.Unused {
		if p.State != procmodel.Blocked {
			p.State = procmodel.Ready
		}
		p.RecomputeChecksum()
	}

	chosen := k.strategy.Select(k.kind, k.table, cur)
	chosenProc := &k.table.Slots[chosen]
	if !chosenProc.VerifyChecksum() {
		k.mu.Unlock()
		diag.Fatal("stack corruption detected")
	}
	chosenProc.State = procmodel.Running
	changed := chosen != cur
	k.current = chosen
	k.mu.Unlock()

	if changed {
		k.turnChan(chosen) <- struct{}{}
	}
	return changed
}
