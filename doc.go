// Package arena implements a region allocator (memory arena) for Go.
//
// # Overview
//
// An arena wraps a general-purpose backing allocator and serves many small
// allocations from a few large chunks by bumping a cursor. Individual
// allocations are never tracked; memory comes back in bulk with Reset or
// Release. This is particularly useful for:
//
//   - Request-scoped allocations in servers
//   - Temporary object allocation with batch cleanup
//   - Reducing garbage collection pressure
//   - Workloads that repeat with a similar memory footprint
//
// # Basic Usage
//
//	a := arena.New(backing.NewHeap())
//	defer a.Release() // Return every chunk when done
//
//	// Allocate raw bytes with an explicit alignment
//	buf, err := a.Allocate(1024, 8)
//
//	// Allocate typed values
//	ptr, err := arena.Alloc[MyStruct](a)
//	slice, err := arena.AllocSlice[int](a, 100)
//
//	// Reuse the arena, keeping its capacity in one chunk
//	a.Reset(arena.RetainCapacity)
//
// # Backing Allocators
//
// Package backing provides allocators for the Go heap (backing.Heap),
// anonymous mappings (backing.Mmap, Linux only) and off-heap memory
// (backing.OffHeap). backing.Instrumented wraps any of them with prometheus
// metrics.
//
// # Memory Layout
//
// Each chunk is one backing allocation: a small header recording the chunk
// size, followed by the data region. New chunks are prepended to a list and
// only the newest one receives allocations. When it runs out the arena first
// asks the backing allocator to grow it in place, and otherwise creates a
// chunk large enough for the request plus everything the previous chunk
// held.
//
// # Freeing and Resizing
//
// Only the most recent allocation can give its space back (Free) or grow
// (Resize). Freeing any other allocation does nothing until the next Reset.
//
// # Reset Modes
//
//   - FreeAll returns every chunk to the backing allocator.
//   - RetainCapacity keeps the current capacity in a single chunk.
//   - RetainWithLimit(n) keeps at most n bytes.
//
// Retaining capacity "preheats" the arena: after a few cycles of a stable
// workload, neither allocation nor Reset calls the backing allocator.
//
// # Thread Safety
//
// The basic Arena type is not thread-safe. For concurrent access, use SafeArena:
//
//	s := arena.NewSafeArena(backing.NewHeap())
//	defer s.Release()
//
//	buf, err := s.Allocate(1024, 8)
//	ptr, err := arena.SafeAlloc[MyStruct](s)
//
// # Important Notes
//
//   - Allocated memory is only valid until the next Reset or Release
//   - Memory is not zeroed unless using Alloc or AllocSliceZeroed
//   - Values placed in the arena must not contain Go pointers
//
// # Metrics and Monitoring
//
//	metrics := a.Metrics()
//	fmt.Printf("Utilization: %.2f%%\n", metrics.Utilization*100)
//	fmt.Printf("Memory in use: %d bytes\n", metrics.SizeInUse)
//	fmt.Printf("Total capacity: %d bytes\n", metrics.Capacity)
package arena
