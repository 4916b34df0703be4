package arena

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log/level"
)

type resetKind uint8

const (
	freeAll resetKind = iota
	retainCapacity
	retainWithLimit
)

// ResetMode selects how much memory Reset keeps.
type ResetMode struct {
	kind  resetKind
	limit int
}

var (
	// FreeAll returns every chunk to the backing allocator.
	FreeAll = ResetMode{kind: freeAll}
	// RetainCapacity keeps the current capacity in a single chunk, so the
	// next cycle of a similar workload needs no backing allocator calls.
	RetainCapacity = ResetMode{kind: retainCapacity}
)

// RetainWithLimit keeps at most limit bytes of the current capacity.
func RetainWithLimit(limit int) ResetMode {
	return ResetMode{kind: retainWithLimit, limit: max(limit, 0)}
}

func (m ResetMode) String() string {
	switch m.kind {
	case freeAll:
		return "free_all"
	case retainCapacity:
		return "retain_capacity"
	default:
		return fmt.Sprintf("retain_with_limit(%d)", m.limit)
	}
}

func (m ResetMode) target(capacity int) int {
	switch m.kind {
	case freeAll:
		return 0
	case retainCapacity:
		return capacity
	default:
		return min(m.limit, capacity)
	}
}

// Reset discards every allocation. Depending on mode it either frees all
// chunks or keeps the oldest one, resized to the retained capacity. Once a
// workload has settled, repeated Reset calls touch the backing allocator
// no more.
//
// Reset returns false when the retained chunk could neither be resized nor
// replaced. The arena is then empty but fully usable; it merely lost the
// capacity it tried to keep.
func (a *Arena) Reset(mode ResetMode) bool {
	a.panicIfReleased()
	target := mode.target(a.QueryCapacity())
	if target == 0 {
		a.freeChunks()
		return true
	}
	total := headerSize + target

	// Free everything but the tail, which is the oldest chunk.
	c := a.head
	for c.next != nil {
		next := c.next
		a.backing.Free(c.block)
		c = next
	}
	a.head = c
	a.end = 0
	c.used = 0

	if c.totalSize() == total {
		return true
	}
	if block, ok := a.backing.Resize(c.block, total); ok {
		c.setBlock(block)
		return true
	}
	block, err := a.backing.Alloc(total, chunkAlign)
	a.backing.Free(c.block)
	if err != nil {
		a.head = nil
		level.Warn(a.logger).Log("msg", "reset could not retain capacity", "mode", mode.String(), "size", humanize.IBytes(uint64(total)), "err", err)
		return false
	}
	a.head = newChunk(block)
	level.Debug(a.logger).Log("msg", "replaced retained chunk", "mode", mode.String(), "size", humanize.IBytes(uint64(total)))
	return true
}
