//go:build linux

package backing

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Mmap hands out anonymous private mappings, one per block.
//
// Block lengths are rounded up to whole pages; the rounding is kept as slice
// capacity so Resize can use it without a syscall. Beyond that, growth asks
// the kernel to extend the mapping where it is, which fails rather than
// relocating when the neighbouring address range is taken.
type Mmap struct {
	pageSize int
}

// NewMmap returns an Mmap allocator using the system page size.
func NewMmap() *Mmap {
	return &Mmap{pageSize: unix.Getpagesize()}
}

func (m *Mmap) roundUp(n int) int {
	return int(alignForward(uintptr(n), m.pageSize))
}

// Alloc satisfies the Allocator interface. Mappings are page aligned, so
// alignments above the page size fail with ErrAlignment.
func (m *Mmap) Alloc(size, alignment int) ([]byte, error) {
	checkAlloc(size, alignment)
	if alignment > m.pageSize {
		return nil, errors.Wrapf(ErrAlignment, "mmap: alignment %d exceeds page size %d", alignment, m.pageSize)
	}
	if size == 0 {
		return []byte{}, nil
	}
	b, err := unix.Mmap(-1, 0, m.roundUp(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, errors.Wrapf(err, "mmap: mapping %d bytes", size)
	}
	return b[:size], nil
}

// Resize satisfies the Allocator interface.
func (m *Mmap) Resize(block []byte, newSize int) ([]byte, bool) {
	if newSize < 0 {
		return block, false
	}
	if newSize <= cap(block) {
		return block[:newSize], true
	}
	if cap(block) == 0 {
		return block, false
	}
	// No MREMAP_MAYMOVE: the kernel either extends in place or refuses.
	b, err := unix.Mremap(block[:cap(block)], m.roundUp(newSize), 0)
	if err != nil {
		return block, false
	}
	return b[:newSize], true
}

// Free satisfies the Allocator interface.
func (m *Mmap) Free(block []byte) {
	if cap(block) == 0 {
		return
	}
	// Munmap only fails for slices that did not come from Alloc.
	_ = unix.Munmap(block[:cap(block)])
}
