// Package kernel is the scheduler core (component H): timer-driven context
// save/restore, critical-section nesting, cooperative yield, and process
// lifecycle (exec/kill/dispatch). It owns the process table and both heaps
// and wires the strategy package's six scheduling strategies.
package kernel

import (
	"sync"
	"sync/atomic"

	"spos/internal/diag"
	"spos/internal/heap"
	"spos/internal/membus"
	"spos/internal/procmodel"
	"spos/internal/strategy"
)

// Kernel is the scheduler core singleton: one process table, one
// scheduling-strategy state, the two heaps, and the critical-section depth
// that masks the scheduler's (simulated) timer interrupt.
//
// A real single-core microcontroller never has two contexts touching this
// state at once; a hosted Go process might, since process "goroutines" and
// whatever drives Tick() are genuinely separate goroutines. mu stands in
// for that guarantee without changing any of the state machine's rules.
type Kernel struct {
	mu sync.Mutex

	table    *procmodel.Table
	strategy *strategy.Scheduler
	kind     strategy.Kind

	heaps    []*heap.Manager
	heapList *heap.List

	current     procmodel.ProcessID
	csDepth     uint8
	timerMasked bool

	turn []chan struct{}

	ticks atomic.Uint64
}

// New builds a kernel with its process table, scheduling strategy state,
// and the two heaps (on-chip and external) wired to it as their Scheduler.
// autostart programs are exec'd, in order, after the idle program.
func New(autostart []func()) *Kernel {
	k := &Kernel{
		table:    procmodel.NewTable(NSlots, StackSize),
		strategy: strategy.NewScheduler(NSlots),
		kind:     strategy.Even,
		turn:     make([]chan struct{}, NSlots),
	}
	for i := range k.turn {
		k.turn[i] = make(chan struct{}, 1)
	}

	onChip := membus.NewOnChip(onChipStart, onChipSize)
	onChipHeap := heap.NewManager("onchip", onChip, onChipStart, onChipHeapMapSize, NSlots, k)
	onChipHeap.InitMap()

	ext := membus.NewOnChip(externalStart, externalSize) // stand-in driver until RegisterExternalBus wires a real one
	extHeap := heap.NewManager("external", ext, externalStart, externalHeapMapSize, NSlots, k)
	extHeap.InitMap()

	k.heaps = []*heap.Manager{onChipHeap, extHeap}
	k.heapList = heap.NewList(onChipHeap, extHeap)

	k.initScheduler(autostart)
	return k
}

// RegisterExternalBus swaps the external heap's backing driver for one
// built over a real bit-serial ByteBus, re-initializing its map. Call this
// before StartScheduler if a real external SRAM device is available; it is
// never required, since membus.NewOnChip is a perfectly valid in-process
// stand-in for tests and demos.
func (k *Kernel) RegisterExternalBus(bus membus.ByteBus) {
	k.mu.Lock()
	driver := membus.NewExternal(externalStart, externalSize, bus, k)
	ext := heap.NewManager("external", driver, externalStart, externalHeapMapSize, NSlots, k)
	k.heaps[1] = ext
	k.heapList = heap.NewList(k.heaps[0], ext)
	k.mu.Unlock()
	// The External driver takes the kernel's critical section (and so k.mu)
	// on every access, so the map is initialized only after k.mu is released.
	ext.InitMap()
}

// OnChipHeap and ExternalHeap expose the two heaps for programs to call
// Malloc/Free/ShMalloc/... on.
func (k *Kernel) OnChipHeap() *heap.Manager  { return k.heaps[0] }
func (k *Kernel) ExternalHeap() *heap.Manager { return k.heaps[1] }

// HeapList is the public lookupHeap/getHeapListLength surface.
func (k *Kernel) HeapList() *heap.List { return k.heapList }

// idleProgram never produces useful work; it only has to cooperate with the
// simulated timer so some process is always selectable, the same way a real
// idle loop on the microcontroller just waits for the next interrupt instead
// of spinning a host CPU core flat out.
func (k *Kernel) idleProgram() {
	for {
		k.Checkpoint()
	}
}

func (k *Kernel) initScheduler(autostart []func()) {
	k.Exec(k.idleProgram, DefaultPriority)
	for _, entry := range autostart {
		k.Exec(entry, DefaultPriority)
	}
}

// StartScheduler marks the idle slot Running and hands it the first turn.
// Call this once, after New and any RegisterExternalBus, from the goroutine
// that should block running the kernel.
func (k *Kernel) StartScheduler() {
	k.mu.Lock()
	k.table.Slots[0].State = procmodel.Running
	k.current = 0
	k.mu.Unlock()
	k.turnChan(0) <- struct{}{}
}

// CurrentProcess is the public getCurrentProc surface, and satisfies
// heap.Scheduler.
func (k *Kernel) CurrentProcess() procmodel.ProcessID {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.current
}

// turnChan returns pid's current turn-token channel. Exec replaces this
// channel every time a slot is (re)occupied, so a prior occupant's
// dispatcher goroutine — parked forever on the channel object it last read
// after a self-kill — can never be handed a turn meant for its replacement.
func (k *Kernel) turnChan(pid procmodel.ProcessID) chan struct{} {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.turn[pid]
}

// EnterCriticalSection increments the nesting depth (overflow is fatal)
// and masks the scheduler timer.
func (k *Kernel) EnterCriticalSection() {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.csDepth == 255 {
		diag.Fatal("critical section depth overflow")
	}
	k.csDepth++
	k.timerMasked = true
}

// LeaveCriticalSection decrements the nesting depth (underflow is fatal),
// unmasking the scheduler timer once the depth reaches zero.
func (k *Kernel) LeaveCriticalSection() {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.csDepth == 0 {
		diag.Fatal("critical section depth underflow")
	}
	k.csDepth--
	if k.csDepth == 0 {
		k.timerMasked = false
	}
}

func (k *Kernel) depth() uint8 {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.csDepth
}

// SetSchedulingStrategy switches the active strategy and resets whatever
// scheduling information it depends on.
func (k *Kernel) SetSchedulingStrategy(kind strategy.Kind) {
	k.EnterCriticalSection()
	defer k.LeaveCriticalSection()
	k.kind = kind
	k.strategy.ResetInformation(kind, k.table, k.current)
}

// GetSchedulingStrategy returns the active strategy.
func (k *Kernel) GetSchedulingStrategy() strategy.Kind {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.kind
}

// Strategy exposes the scheduling-information singleton, for tests and
// diagnostics that need to inspect feedback-queue membership directly.
func (k *Kernel) Strategy() *strategy.Scheduler { return k.strategy }

// Table exposes the process table for read-only inspection (process state,
// priority) by tests and demos.
func (k *Kernel) Table() *procmodel.Table { return k.table }

// Ticks returns the number of times the ISR logic has run, a monotonic
// atomic.Uint64 counter so tests and a driver loop can observe it lock-free.
func (k *Kernel) Ticks() uint64 { return k.ticks.Load() }
