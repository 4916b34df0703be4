package backing

import (
	"unsafe"

	"github.com/pkg/errors"
	"modernc.org/memory"
)

// mallocAlign is the alignment modernc.org/memory guarantees for every
// block it returns.
const mallocAlign = int(2 * unsafe.Sizeof(uintptr(0)))

// OffHeap allocates blocks outside the Go heap through modernc.org/memory.
//
// Memory from OffHeap is invisible to the garbage collector: it must never
// hold Go pointers. Call Close to return every page to the operating system.
type OffHeap struct {
	mem memory.Allocator
	// origins maps the start of an over-aligned block to the block
	// memory.Allocator actually returned.
	origins map[uintptr][]byte
}

// NewOffHeap returns an empty OffHeap allocator.
func NewOffHeap() *OffHeap {
	return &OffHeap{origins: make(map[uintptr][]byte)}
}

// Alloc satisfies the Allocator interface.
func (o *OffHeap) Alloc(size, alignment int) ([]byte, error) {
	checkAlloc(size, alignment)
	if size == 0 {
		return []byte{}, nil
	}
	if alignment <= mallocAlign {
		b, err := o.mem.Malloc(size)
		if err != nil {
			return nil, errors.Wrapf(err, "offheap: malloc %d bytes", size)
		}
		return b, nil
	}
	raw, err := o.mem.Malloc(size + alignment - 1)
	if err != nil {
		return nil, errors.Wrapf(err, "offheap: malloc %d bytes aligned to %d", size, alignment)
	}
	addr := addressOf(raw)
	shift := int(alignForward(addr, alignment) - addr)
	b := raw[shift : shift+size : shift+size]
	o.origins[addressOf(b)] = raw
	return b, nil
}

func (o *OffHeap) origin(block []byte) []byte {
	if raw, ok := o.origins[addressOf(block)]; ok {
		return raw
	}
	return block
}

// Resize satisfies the Allocator interface. A block can grow up to the
// usable size of the underlying malloc block.
func (o *OffHeap) Resize(block []byte, newSize int) ([]byte, bool) {
	if newSize < 0 {
		return block, false
	}
	if newSize <= cap(block) {
		return block[:newSize], true
	}
	if cap(block) == 0 {
		return block, false
	}
	raw := o.origin(block)
	raw = raw[:cap(raw)]
	shift := int(addressOf(block) - addressOf(raw))
	if newSize > memory.UsableSize(&raw[0])-shift {
		return block, false
	}
	return unsafe.Slice(unsafe.SliceData(block), newSize), true
}

// Free satisfies the Allocator interface.
func (o *OffHeap) Free(block []byte) {
	if cap(block) == 0 {
		return
	}
	raw := o.origin(block)
	delete(o.origins, addressOf(block))
	// memory.Allocator.Free only fails for foreign pointers.
	_ = o.mem.Free(raw[:cap(raw)])
}

// Close releases all memory held by the allocator. Blocks still in use
// become invalid.
func (o *OffHeap) Close() error {
	clear(o.origins)
	return o.mem.Close()
}
