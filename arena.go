package arena

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/pavanmanishd/arena/v2/backing"
)

// DefaultChunkSize is a sensible WithMinChunkSize value for request-scoped
// arenas (64 KiB).
const DefaultChunkSize = 1 << 16

// Allocator is the memory an Arena draws its chunks from. Package backing
// has implementations for the Go heap, mmap and off-heap memory.
type Allocator = backing.Allocator

// Arena is a bump allocator over a list of chunks. Not goroutine-safe.
// Use SafeArena for concurrent access.
type Arena struct {
	head *chunk // receives allocations; older chunks follow via next
	end  int    // next free byte in head.data()

	backing      Allocator
	logger       log.Logger
	minChunkSize int
	released     bool
}

// New creates an empty Arena drawing chunks from b. No memory is taken from
// b until the first allocation.
func New(b Allocator, opts ...Option) *Arena {
	a := &Arena{
		backing: b,
		logger:  log.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Allocate returns n bytes aligned to alignment, which must be a power of
// two. The memory is not zeroed and stays valid until the next Reset or
// Release. A zero n returns nil without touching the arena.
func (a *Arena) Allocate(n, alignment int) ([]byte, error) {
	a.panicIfReleased()
	if n < 0 {
		panic("arena: negative allocation size")
	}
	if !isPowerOfTwo(alignment) {
		panic("arena: alignment must be a power of two")
	}
	if n == 0 {
		return nil, nil
	}
	if n > math.MaxInt/4-alignment {
		return nil, errors.Wrapf(ErrOutOfMemory, "request of %d bytes", n)
	}

	if a.head == nil {
		if err := a.grow(0, n, alignment); err != nil {
			return nil, err
		}
	}
	for {
		data := a.head.data()
		base := addressOf(data)
		adjusted := int(alignForward(base+uintptr(a.end), alignment) - base)
		newEnd := adjusted + n
		if newEnd <= len(data) {
			a.end = newEnd
			return data[adjusted:newEnd:newEnd], nil
		}

		// Slow path: grow the head in place, otherwise start a new one.
		if block, ok := a.backing.Resize(a.head.block, headerSize+newEnd); ok {
			a.head.setBlock(block)
			level.Debug(a.logger).Log("msg", "grew chunk in place", "size", humanize.IBytes(uint64(len(block))))
			continue
		}
		if err := a.grow(len(data), n, alignment); err != nil {
			return nil, err
		}
	}
}

// grow prepends a chunk big enough for n bytes at the given alignment and
// for everything the previous chunk held, so a steadily growing workload
// needs only a logarithmic number of chunks.
func (a *Arena) grow(prevLen, n, alignment int) error {
	bigEnough := prevLen + n + alignment + headerSize + 16
	size := bigEnough + bigEnough/2
	if size < a.minChunkSize+headerSize {
		size = a.minChunkSize + headerSize
	}
	block, err := a.backing.Alloc(size, chunkAlign)
	if err != nil {
		// Both errors stay matchable with errors.Is.
		return fmt.Errorf("%w: allocating %d byte chunk for %d bytes aligned to %d: %w", ErrOutOfMemory, size, n, alignment, err)
	}
	c := newChunk(block)
	if a.head != nil {
		a.head.used = a.end
	}
	c.next = a.head
	a.head = c
	a.end = 0
	level.Debug(a.logger).Log("msg", "created chunk", "size", humanize.IBytes(uint64(size)), "prev_data", humanize.IBytes(uint64(prevLen)))
	return nil
}

// isLast reports whether buf ends exactly at the bump cursor of the head
// chunk, i.e. whether it is the most recent allocation. The test is by
// address, so it stays O(1) and needs no bookkeeping per allocation.
func (a *Arena) isLast(buf []byte) bool {
	if a.head == nil || len(buf) == 0 {
		return false
	}
	base := addressOf(a.head.data())
	start := addressOf(buf)
	return start >= base && start+uintptr(len(buf)) == base+uintptr(a.end)
}

// Resize changes the length of buf, which must have come from this arena,
// without moving it. Only the most recent allocation can grow, and only
// while the head chunk has room; any allocation can shrink, but only the
// most recent one gives the space back. On success the resized view is
// returned.
func (a *Arena) Resize(buf []byte, newSize int) ([]byte, bool) {
	a.panicIfReleased()
	if newSize < 0 {
		panic("arena: negative allocation size")
	}
	if !a.isLast(buf) {
		if newSize > len(buf) {
			return buf, false
		}
		return buf[:newSize:newSize], true
	}
	if newSize <= len(buf) {
		a.end -= len(buf) - newSize
		return buf[:newSize:newSize], true
	}
	delta := newSize - len(buf)
	if a.end+delta > len(a.head.data()) {
		return buf, false
	}
	a.end += delta
	return a.head.data()[a.end-newSize : a.end : a.end], true
}

// Free returns the space of buf to the arena if it is the most recent
// allocation. For any other buffer it does nothing; that memory comes back
// with the next Reset or Release.
func (a *Arena) Free(buf []byte) {
	a.panicIfReleased()
	if a.isLast(buf) {
		a.end -= len(buf)
	}
}

// QueryCapacity returns the usable bytes held across all chunks, whether
// or not they have been handed out.
func (a *Arena) QueryCapacity() int {
	sum := 0
	for c := a.head; c != nil; c = c.next {
		sum += c.totalSize() - headerSize
	}
	return sum
}

// Release returns every chunk to the backing allocator and makes the arena
// unusable. Any subsequent operation panics.
func (a *Arena) Release() {
	a.freeChunks()
	a.released = true
}

func (a *Arena) freeChunks() {
	for c := a.head; c != nil; {
		next := c.next
		a.backing.Free(c.block)
		c = next
	}
	a.head = nil
	a.end = 0
}

// panicIfReleased panics if the arena has been released.
func (a *Arena) panicIfReleased() {
	if a.released {
		panic("arena: use after Release()")
	}
}
