package kernel

import "spos/internal/procmodel"

// Yield voluntarily relinquishes the calling process's remaining slice: it
// enters a critical section, marks the current process Blocked (unless
// Unused), drains the critical-section depth to zero so the ISR logic runs
// cleanly, invokes it, and on resume restores the depth snapshot.
//
// Per the source's dispatcher contract, Yield called on a process that was
// just killed (self-kill) never returns: it blocks forever on its turn
// channel, since Exec gives the slot a fresh channel the moment a new
// process takes it, and nothing ever signals the old one again.
func (k *Kernel) Yield() {
	k.EnterCriticalSection()
	pid := k.CurrentProcess()
	depthSnapshot := k.depth()

	k.mu.Lock()
	if k.table.Slots[pid].State != procmodel.Unused {
		k.table.Slots[pid].State = procmodel.Blocked
	}
	k.mu.Unlock()

	for k.depth() > 0 {
		k.LeaveCriticalSection()
	}

	changed := k.tick()
	if changed {
		<-k.turnChan(pid)
	}

	k.mu.Lock()
	k.csDepth = depthSnapshot
	k.timerMasked = depthSnapshot > 0
	k.mu.Unlock()
	k.LeaveCriticalSection()
}

// Tick is the external-timer entry point: the equivalent of the hardware
// timer compare-match interrupt firing, driven from outside any process's
// own goroutine (a test harness, or a real driver loop in cmd/kernel). It
// runs the ISR's bookkeeping and hands off to whichever process the active
// strategy chooses, without blocking the caller.
func (k *Kernel) Tick() {
	k.tick()
}

// Checkpoint is the implicit-preemption analogue to Yield: a process calls
// it from within a long-running loop to cooperate with the simulated timer
// at designated points, the same way a cooperative goroutine calls
// runtime.Gosched(). Unlike Yield, it does not force a Ready->Blocked
// transition first, and it is a no-op while a critical section is held
// (the simulated timer is masked).
func (k *Kernel) Checkpoint() {
	if k.depth() > 0 {
		return
	}
	pid := k.CurrentProcess()
	if k.tick() {
		<-k.turnChan(pid)
	}
}
