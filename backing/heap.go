package backing

import "github.com/pkg/errors"

// ErrLimitExceeded is returned by Heap.Alloc when the allocation would take
// the live byte count over Heap.Limit.
var ErrLimitExceeded = errors.New("backing: heap limit exceeded")

// Heap allocates blocks from the Go heap.
//
// Alignment is obtained by over-allocating and shifting the start of the
// block. Blocks are capped at their requested size, so Resize can always
// shrink a block and grow it back up to that size, but never beyond. Free
// drops the allocator's accounting and leaves the memory to the garbage
// collector.
type Heap struct {
	// Limit caps the bytes handed out and not yet freed. Zero means no
	// limit.
	Limit int

	inUse int
}

// NewHeap returns a Heap without a limit.
func NewHeap() *Heap {
	return &Heap{}
}

// NewHeapWithLimit returns a Heap that fails allocations once limit bytes
// are live.
func NewHeapWithLimit(limit int) *Heap {
	return &Heap{Limit: limit}
}

// InUse returns the number of bytes allocated and not yet freed.
func (h *Heap) InUse() int {
	return h.inUse
}

// Alloc satisfies the Allocator interface.
func (h *Heap) Alloc(size, alignment int) ([]byte, error) {
	checkAlloc(size, alignment)
	if h.Limit > 0 && h.inUse+size > h.Limit {
		return nil, errors.Wrapf(ErrLimitExceeded, "allocating %d bytes with %d in use", size, h.inUse)
	}
	if size == 0 {
		return []byte{}, nil
	}
	buf := make([]byte, size+alignment-1)
	addr := addressOf(buf)
	shift := int(alignForward(addr, alignment) - addr)
	h.inUse += size
	return buf[shift : shift+size : shift+size], nil
}

// Resize satisfies the Allocator interface.
func (h *Heap) Resize(block []byte, newSize int) ([]byte, bool) {
	if newSize < 0 || newSize > cap(block) {
		return block, false
	}
	delta := newSize - len(block)
	if delta > 0 && h.Limit > 0 && h.inUse+delta > h.Limit {
		return block, false
	}
	h.inUse += delta
	return block[:newSize], true
}

// Free satisfies the Allocator interface.
func (h *Heap) Free(block []byte) {
	h.inUse -= len(block)
}
