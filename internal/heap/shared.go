package heap

// Component E: the shared-memory gate. Coordination state lives entirely
// in the allocation map's head nibble for the chunk — there is no separate
// lock table. Every transition is taken under the kernel critical section;
// a busy condition yields, which drops the critical section, reruns the
// scheduler, and re-enters the critical section on resume.

// ShMalloc allocates a shared chunk, marked closed, with no pid owner. It
// is never reclaimed by FreeProcessMemory.
func (h *Manager) ShMalloc(size uint32) uint32 {
	h.sched.EnterCriticalSection()
	defer h.sched.LeaveCriticalSection()
	if size == 0 || size > h.useSize {
		return 0
	}
	addr := h.selectFree(size)
	if addr == 0 {
		return 0
	}
	h.setNibble(addr, SharedClosed)
	for i := uint32(1); i < size; i++ {
		h.setNibble(addr+i, Continuation)
	}
	return addr
}

// ShFree waits for the chunk at addr to be closed, then zeroes it.
func (h *Manager) ShFree(addr uint32) {
	h.sched.EnterCriticalSection()
	defer h.sched.LeaveCriticalSection()
	for {
		first := h.firstByteOfChunk(addr)
		status := h.getNibble(first)
		switch {
		case status == SharedClosed:
			h.zeroChunk(first)
			return
		case status == SharedWriteOpen || isReaderOpen(status):
			h.sched.Yield()
		default:
			reportOwnershipFailure("shFree of a non-shared chunk")
			return
		}
	}
}

func isReaderOpen(status byte) bool {
	return status >= SharedReadBase && status < Continuation
}

func readerFull(status byte) bool {
	return status == SharedReadBase+readerCap-1
}

// ShReadOpen busy-waits while the chunk is writer-open or already at the
// reader cap, then opens (or increments) a reader slot and returns the
// chunk's head address.
func (h *Manager) ShReadOpen(addr uint32) uint32 {
	h.sched.EnterCriticalSection()
	defer h.sched.LeaveCriticalSection()
	for {
		first := h.firstByteOfChunk(addr)
		status := h.getNibble(first)
		switch {
		case status == SharedClosed:
			h.setNibble(first, SharedReadBase)
			return first
		case isReaderOpen(status) && !readerFull(status):
			h.setNibble(first, status+1)
			return first
		case status == SharedWriteOpen || readerFull(status):
			h.sched.Yield()
		default:
			reportOwnershipFailure("shReadOpen of a non-shared chunk")
			return 0
		}
	}
}

// ShWriteOpen busy-waits while the chunk is not closed, then opens it for
// exclusive writing and returns the chunk's head address.
func (h *Manager) ShWriteOpen(addr uint32) uint32 {
	h.sched.EnterCriticalSection()
	defer h.sched.LeaveCriticalSection()
	for {
		first := h.firstByteOfChunk(addr)
		status := h.getNibble(first)
		switch {
		case status == SharedClosed:
			h.setNibble(first, SharedWriteOpen)
			return first
		case status == SharedWriteOpen || isReaderOpen(status):
			h.sched.Yield()
		default:
			reportOwnershipFailure("shWriteOpen of a non-shared chunk")
			return 0
		}
	}
}

// ShClose releases one open (writer, or one reader slot) on the chunk
// whose head is at firstByte.
func (h *Manager) ShClose(firstByte uint32) {
	h.sched.EnterCriticalSection()
	defer h.sched.LeaveCriticalSection()
	status := h.getNibble(firstByte)
	switch {
	case status == SharedWriteOpen || status == SharedReadBase:
		h.setNibble(firstByte, SharedClosed)
	case status > SharedReadBase && status < Continuation:
		h.setNibble(firstByte, status-1)
	case status == SharedClosed:
		reportOwnershipFailure("shClose of an already-closed chunk")
	default:
		reportOwnershipFailure("shClose of a non-shared chunk")
	}
}

// ShRead opens the chunk for reading, copies len(buf) bytes starting at
// offset into buf, and closes it.
func (h *Manager) ShRead(addr uint32, offset uint32, buf []byte) {
	first := h.ShReadOpen(addr)
	if first == 0 {
		return
	}
	defer h.ShClose(first)
	size := h.ChunkSize(first)
	if offset+uint32(len(buf)) > size {
		reportRangeFailure("shared read out of chunk bounds")
		return
	}
	for i := range buf {
		buf[i] = h.driver.Read(first + offset + uint32(i))
	}
}

// ShWrite opens the chunk for writing, copies data starting at offset, and
// closes it.
func (h *Manager) ShWrite(addr uint32, offset uint32, data []byte) {
	first := h.ShWriteOpen(addr)
	if first == 0 {
		return
	}
	defer h.ShClose(first)
	size := h.ChunkSize(first)
	if offset+uint32(len(data)) > size {
		reportRangeFailure("shared write out of chunk bounds")
		return
	}
	for i, b := range data {
		h.driver.Write(first+offset+uint32(i), b)
	}
}
