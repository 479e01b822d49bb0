package kernel

import "spos/internal/procmodel"

// Exec finds the first Unused slot, seeds its stack and scheduling
// information, and starts it as a goroutine blocked on its first turn. It
// returns procmodel.Invalid if program is nil or no slot is free.
func (k *Kernel) Exec(program func(), priority uint8) procmodel.ProcessID {
	k.EnterCriticalSection()
	defer k.LeaveCriticalSection()

	if program == nil {
		return procmodel.Invalid
	}
	var slot procmodel.ProcessID = procmodel.Invalid
	k.mu.Lock()
	for i := range k.table.Slots {
		if k.table.Slots[i].State == procmodel.Unused {
			slot = procmodel.ProcessID(i)
			break
		}
	}
	if slot == procmodel.Invalid {
		k.mu.Unlock()
		return procmodel.Invalid
	}
	p := &k.table.Slots[slot]
	p.State = procmodel.Ready
	p.Seed(program, priority)
	// A fresh channel per occupancy: any previous occupant's dispatcher
	// goroutine, still parked on the old channel object after a self-kill,
	// can never receive a turn meant for the process now taking this slot.
	k.turn[slot] = make(chan struct{}, 1)
	k.mu.Unlock()

	k.strategy.ResetProcess(k.table, slot)

	go k.dispatcher(slot)
	return slot
}

// dispatcher is the trampoline every process actually starts in: the
// stack-base return target Exec's Seed wrote. It runs the program, then
// kills its own slot and yields — the kill, for a self-kill, never returns,
// so the trailing Yield below mirrors the source's dispatcher literally
// even though it is unreachable in practice.
func (k *Kernel) dispatcher(pid procmodel.ProcessID) {
	<-k.turnChan(pid)
	k.table.Slots[pid].Program()
	k.Kill(pid)
	k.Yield()
}

// Kill transitions pid to Unused and reclaims its memory on every heap.
// Killing slot 0 (idle) or a slot that is already Unused is refused and
// returns false. If pid is the process currently running, this yields and,
// for that process's own goroutine, never returns.
func (k *Kernel) Kill(pid procmodel.ProcessID) bool {
	if pid == 0 {
		return false
	}
	k.EnterCriticalSection()
	k.mu.Lock()
	if k.table.Slots[pid].State == procmodel.Unused {
		k.mu.Unlock()
		k.LeaveCriticalSection()
		return false
	}
	k.table.Slots[pid].State = procmodel.Unused
	self := pid == k.current
	k.mu.Unlock()

	for _, h := range k.heaps {
		h.FreeProcessMemory(pid)
	}

	if self {
		k.Yield()
	}
	k.LeaveCriticalSection()
	return true
}
