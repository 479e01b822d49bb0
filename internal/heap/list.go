package heap

// List is the heap directory: the public lookupHeap/getHeapListLength
// surface, kept as its own small type rather than inlined into the
// scheduler core, mirroring how the source separates heap instances from
// the heap directory.
type List struct {
	heaps []*Manager
}

// NewList builds a directory over the given heaps, in lookup order.
func NewList(heaps ...*Manager) *List {
	return &List{heaps: heaps}
}

// Len is the public getHeapListLength surface.
func (l *List) Len() int {
	return len(l.heaps)
}

// Lookup is the public lookupHeap surface: returns the heap at index, or
// nil if index is out of range.
func (l *List) Lookup(index int) *Manager {
	if index < 0 || index >= len(l.heaps) {
		return nil
	}
	return l.heaps[index]
}
