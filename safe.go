package arena

import (
	"runtime"
	"sync"
)

// SafeArena is a mutex-protected wrapper around Arena for concurrent access.
// All operations are thread-safe but come with the overhead of mutex locking.
// Slices handed out remain plain memory: callers still coordinate access to
// them and must stop using them before Reset or Release.
type SafeArena struct {
	mu sync.Mutex
	a  *Arena
}

// NewSafeArena creates a new thread-safe arena drawing chunks from b.
func NewSafeArena(b Allocator, opts ...Option) *SafeArena {
	return &SafeArena{a: New(b, opts...)}
}

// Allocate thread-safely allocates n bytes aligned to alignment.
func (s *SafeArena) Allocate(n, alignment int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Allocate(n, alignment)
}

// Resize thread-safely resizes buf in place.
func (s *SafeArena) Resize(buf []byte, newSize int) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Resize(buf, newSize)
}

// Free thread-safely returns buf to the arena if it is the most recent
// allocation.
func (s *SafeArena) Free(buf []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.a.Free(buf)
}

// Reset thread-safely discards every allocation.
func (s *SafeArena) Reset(mode ResetMode) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Reset(mode)
}

// QueryCapacity thread-safely returns the usable bytes across all chunks.
func (s *SafeArena) QueryCapacity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.QueryCapacity()
}

// Release thread-safely drops all chunks and makes the arena unusable.
func (s *SafeArena) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.a.Release()
}

// Generic allocation functions for SafeArena

// SafeAlloc thread-safely returns a pointer to a zeroed T stored inside the arena.
func SafeAlloc[T any](s *SafeArena) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Alloc[T](s.a)
}

// SafeAllocSlice thread-safely allocates a slice of n elements of type T.
func SafeAllocSlice[T any](s *SafeArena, n int) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return AllocSlice[T](s.a, n)
}

// SafeAllocSliceZeroed thread-safely allocates a slice of n elements with zeroed memory.
func SafeAllocSliceZeroed[T any](s *SafeArena, n int) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return AllocSliceZeroed[T](s.a, n)
}

// SafePtrAndKeepAlive thread-safely returns t and calls runtime.KeepAlive on the arena.
func SafePtrAndKeepAlive[T any](s *SafeArena, t *T) *T {
	s.mu.Lock()
	defer s.mu.Unlock()
	runtime.KeepAlive(s.a)
	return t
}
