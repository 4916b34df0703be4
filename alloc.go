package arena

import (
	"math"
	"runtime"
	"unsafe"

	"github.com/pkg/errors"
)

// The typed helpers below place values inside arena chunks. Chunks may live
// outside the Go heap and are never scanned by the garbage collector, so T
// must not contain Go pointers (no pointers, slices, strings, maps,
// interfaces or channels).

// Alloc returns a pointer to a zeroed T stored inside the arena.
// The returned pointer is valid until the next Reset or Release.
func Alloc[T any](a *Arena) (*T, error) {
	var zero T
	size := int(unsafe.Sizeof(zero))
	if size == 0 {
		return new(T), nil
	}
	b, err := a.Allocate(size, int(unsafe.Alignof(zero)))
	if err != nil {
		return nil, err
	}
	clear(b)
	return (*T)(unsafe.Pointer(unsafe.SliceData(b))), nil
}

// AllocSlice allocates a slice of n elements of type T inside the arena.
// The slice elements are not initialized (contain garbage data).
// Returns nil if n <= 0.
func AllocSlice[T any](a *Arena, n int) ([]T, error) {
	if n <= 0 {
		return nil, nil
	}
	var zero T
	elemSize := int(unsafe.Sizeof(zero))
	if elemSize == 0 {
		return make([]T, n), nil
	}
	if n > math.MaxInt/elemSize {
		return nil, errors.Wrapf(ErrOutOfMemory, "slice of %d elements of %d bytes", n, elemSize)
	}
	b, err := a.Allocate(elemSize*n, int(unsafe.Alignof(zero)))
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(b))), n), nil
}

// AllocSliceZeroed allocates a slice of n elements of type T with zeroed memory.
func AllocSliceZeroed[T any](a *Arena, n int) ([]T, error) {
	s, err := AllocSlice[T](a, n)
	if err != nil {
		return nil, err
	}
	clear(s)
	return s, nil
}

// CloneBytes copies b into the arena.
func CloneBytes(a *Arena, b []byte) ([]byte, error) {
	dst, err := a.Allocate(len(b), 1)
	if err != nil {
		return nil, err
	}
	copy(dst, b)
	return dst, nil
}

// CloneString copies s into the arena and returns a string backed by arena
// memory.
func CloneString(a *Arena, s string) (string, error) {
	if s == "" {
		return "", nil
	}
	b, err := a.Allocate(len(s), 1)
	if err != nil {
		return "", err
	}
	copy(b, s)
	return unsafe.String(unsafe.SliceData(b), len(b)), nil
}

// PtrAndKeepAlive returns t and calls runtime.KeepAlive on the arena.
// This is useful to prevent the arena from being garbage collected
// while the pointer is still in use in unsafe code.
func PtrAndKeepAlive[T any](a *Arena, t *T) *T {
	runtime.KeepAlive(a)
	return t
}
