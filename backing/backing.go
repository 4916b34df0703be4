// Package backing provides general-purpose allocators an arena can draw its
// chunks from.
//
// Every allocator here satisfies Allocator: Alloc returns a block of exactly
// the requested length aligned to the requested power of two, Resize grows
// or shrinks a block in place and reports false when it cannot do so without
// moving it, and Free hands the block back. None of them zero memory and
// none of them are safe for concurrent use.
package backing

import (
	"unsafe"

	"github.com/pkg/errors"
)

// ErrAlignment is returned by Alloc when an allocator cannot honour the
// requested alignment.
var ErrAlignment = errors.New("backing: unsupported alignment")

// Allocator is the capability set a region allocator needs from the memory
// it wraps.
type Allocator interface {
	// Alloc returns a block of size bytes whose first byte is aligned to
	// alignment. The contents are unspecified.
	Alloc(size, alignment int) ([]byte, error)
	// Resize changes the length of block without moving it. On success the
	// returned slice starts at the same address as block and has length
	// newSize.
	Resize(block []byte, newSize int) ([]byte, bool)
	// Free releases block. block must have been returned by Alloc or Resize
	// of the same allocator.
	Free(block []byte)
}

func addressOf(b []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))
}

func alignForward(addr uintptr, alignment int) uintptr {
	mask := uintptr(alignment) - 1
	return (addr + mask) &^ mask
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

func checkAlloc(size, alignment int) {
	if size < 0 {
		panic("backing: negative size")
	}
	if !isPowerOfTwo(alignment) {
		panic("backing: alignment must be a power of two")
	}
}
