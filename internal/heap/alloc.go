package heap

import "spos/internal/procmodel"

// Component D: the heap manager's private-allocation surface.

// Malloc allocates size bytes for the calling process, returning the
// use-area start address, or 0 if size is 0, exceeds the use area, or no
// fit strategy could place it.
func (h *Manager) Malloc(size uint32) uint32 {
	h.sched.EnterCriticalSection()
	defer h.sched.LeaveCriticalSection()
	if size == 0 || size > h.useSize {
		return 0
	}
	addr := h.selectFree(size)
	if addr == 0 {
		return 0
	}
	pid := h.sched.CurrentProcess()
	h.setNibble(addr, byte(pid))
	for i := uint32(1); i < size; i++ {
		h.setNibble(addr+i, Continuation)
	}
	h.incFrame(pid, addr)
	return addr
}

// Free releases the chunk at addr on behalf of the calling process. A
// caller that does not own the chunk gets a diagnostic and no mutation.
func (h *Manager) Free(addr uint32) {
	h.FreeOwnerRestricted(addr, h.sched.CurrentProcess())
}

// FreeOwnerRestricted is Free with an explicit owner, used by process
// termination to reclaim memory on behalf of a slot that is no longer
// "current".
func (h *Manager) FreeOwnerRestricted(addr uint32, owner procmodel.ProcessID) {
	h.sched.EnterCriticalSection()
	defer h.sched.LeaveCriticalSection()
	first := h.firstByteOfChunk(addr)
	if h.getNibble(first) != byte(owner) {
		reportOwnershipFailure("free of a chunk not owned by the caller")
		return
	}
	h.zeroChunk(first)
	h.decFrame(owner, first)
}

// zeroChunk writes Free to every nibble of the chunk starting at first.
func (h *Manager) zeroChunk(first uint32) {
	limit := h.useStart + h.useSize
	i := first
	for {
		h.setNibble(i, Free)
		i++
		if i >= limit || h.getNibble(i) != Continuation {
			break
		}
	}
}

// Realloc resizes the chunk at addr, which the caller must own, returning
// the (possibly new) use-area address, or 0 if no option succeeds.
func (h *Manager) Realloc(addr, newSize uint32) uint32 {
	h.sched.EnterCriticalSection()
	defer h.sched.LeaveCriticalSection()

	limit := h.useStart + h.useSize
	if addr < h.useStart || addr >= limit {
		reportRangeFailure("realloc address out of range")
		return 0
	}
	if h.getNibble(addr) == Free {
		reportOwnershipFailure("realloc of a free address")
		return 0
	}
	owner := h.sched.CurrentProcess()
	first := h.firstByteOfChunk(addr)
	if h.getNibble(first) != byte(owner) {
		reportOwnershipFailure("realloc of a chunk not owned by the caller")
		return 0
	}
	if newSize == 0 {
		reportOwnershipFailure("realloc to zero size")
		return 0
	}

	oldSize := h.chunkSize(first)
	if newSize <= oldSize {
		for i := first + newSize; i < first+oldSize; i++ {
			h.setNibble(i, Free)
		}
		return first
	}

	freeRight := uint32(0)
	for i := first + oldSize; i < limit && h.getNibble(i) == Free; i++ {
		freeRight++
	}
	if newSize <= oldSize+freeRight {
		for i := first + oldSize; i < first+newSize; i++ {
			h.setNibble(i, Continuation)
		}
		return first
	}

	freeLeft := h.freeRunBefore(first)
	if newSize <= oldSize+freeRight+freeLeft {
		newFirst := first - freeLeft
		h.moveChunk(first, oldSize, newFirst)
		h.setNibble(newFirst, byte(owner))
		for i := newFirst + 1; i < newFirst+newSize; i++ {
			h.setNibble(i, Continuation)
		}
		for i := newFirst + newSize; i < first+oldSize; i++ {
			h.setNibble(i, Free)
		}
		return newFirst
	}

	// Nested EnterCriticalSection/LeaveCriticalSection pairs are fine: the
	// depth counter simply nests one level deeper for the duration of the
	// inner Malloc/FreeOwnerRestricted calls.
	newAddr := h.Malloc(newSize)
	if newAddr == 0 {
		return 0
	}
	h.moveChunk(first, oldSize, newAddr)
	h.FreeOwnerRestricted(first, owner)
	return newAddr
}

// freeRunBefore counts the free bytes immediately preceding first.
func (h *Manager) freeRunBefore(first uint32) uint32 {
	if first <= h.useStart {
		return 0
	}
	run := uint32(0)
	for i := first - 1; ; i-- {
		if h.getNibble(i) != Free {
			break
		}
		run++
		if i == h.useStart {
			break
		}
	}
	return run
}

// moveChunk copies raw content bytes; it does not touch the allocation map
// — callers are responsible for writing the map at the destination and
// clearing it at the source.
func (h *Manager) moveChunk(oldFirst, size, newFirst uint32) {
	for i := uint32(0); i < size; i++ {
		h.driver.Write(newFirst+i, h.driver.Read(oldFirst+i))
	}
}

// FreeProcessMemory reclaims every chunk pid owns on this heap, using its
// allocation frame to bound the scan. Called by the scheduler core's kill.
func (h *Manager) FreeProcessMemory(pid procmodel.ProcessID) {
	h.sched.EnterCriticalSection()
	defer h.sched.LeaveCriticalSection()
	f := h.allocFrame[pid]
	if !f.valid {
		return
	}
	for addr := f.lo; ; addr++ {
		if h.getNibble(addr) == byte(pid) {
			h.FreeOwnerRestricted(addr, pid)
		}
		if addr == f.hi {
			break
		}
	}
}
