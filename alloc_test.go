package arena

import (
	"fmt"
	"math"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/pavanmanishd/arena/v2/backing"
)

type testStruct struct {
	a int64
	b int32
	c int16
	d int8
}

func newTestArena() *Arena {
	return New(backing.NewHeap(), WithMinChunkSize(1024))
}

func TestAlloc(t *testing.T) {
	a := newTestArena()

	// Test basic allocation
	ptr, err := Alloc[int](a)
	if err != nil {
		t.Fatalf("Alloc[int] error = %v", err)
	}
	if *ptr != 0 {
		t.Errorf("Alloc[int] value = %d, want 0 (zeroed)", *ptr)
	}

	// Test struct allocation
	s, err := Alloc[testStruct](a)
	if err != nil {
		t.Fatalf("Alloc[testStruct] error = %v", err)
	}
	if s.a != 0 || s.b != 0 || s.c != 0 || s.d != 0 {
		t.Errorf("Alloc[testStruct] not properly zeroed: %+v", *s)
	}

	// Verify we can write to allocated memory
	*ptr = 42
	s.a = 100
	if *ptr != 42 || s.a != 100 {
		t.Error("Could not write to allocated memory")
	}
}

func TestAllocZeroesReusedMemory(t *testing.T) {
	a := newTestArena()

	ptr, err := Alloc[int64](a)
	require.NoError(t, err)
	*ptr = -1
	a.Free(unsafe.Slice((*byte)(unsafe.Pointer(ptr)), 8))

	again, err := Alloc[int64](a)
	require.NoError(t, err)
	require.Equal(t, ptr, again)
	require.Zero(t, *again)
}

func TestAllocZeroSized(t *testing.T) {
	a := newTestArena()

	ptr, err := Alloc[struct{}](a)
	require.NoError(t, err)
	require.NotNil(t, ptr)

	s, err := AllocSlice[struct{}](a, 10)
	require.NoError(t, err)
	require.Len(t, s, 10)
	require.Zero(t, a.SizeInUse())
}

func TestAllocSlice(t *testing.T) {
	a := newTestArena()

	// Test normal slice allocation
	slice, err := AllocSlice[int](a, 10)
	if err != nil {
		t.Fatalf("AllocSlice[int](10) error = %v", err)
	}
	if len(slice) != 10 {
		t.Errorf("AllocSlice[int](10) length = %d, want 10", len(slice))
	}
	if cap(slice) != 10 {
		t.Errorf("AllocSlice[int](10) capacity = %d, want 10", cap(slice))
	}

	// Test zero size
	empty, _ := AllocSlice[int](a, 0)
	if empty != nil {
		t.Errorf("AllocSlice[int](0) = %v, want nil", empty)
	}

	// Test negative size
	negative, _ := AllocSlice[int](a, -1)
	if negative != nil {
		t.Errorf("AllocSlice[int](-1) = %v, want nil", negative)
	}

	// Verify we can write to slice
	for i := range slice {
		slice[i] = i * 2
	}
	for i := range slice {
		if slice[i] != i*2 {
			t.Errorf("slice[%d] = %d, want %d", i, slice[i], i*2)
		}
	}
}

func TestAllocSliceOverflow(t *testing.T) {
	a := newTestArena()

	_, err := AllocSlice[int64](a, math.MaxInt/4)
	require.ErrorIs(t, err, ErrOutOfMemory)
	require.Zero(t, a.SizeInUse())
}

func TestAllocSliceZeroed(t *testing.T) {
	a := newTestArena()

	// Dirty the memory first so zeroing is observable.
	dirty, err := AllocSlice[int](a, 5)
	require.NoError(t, err)
	for i := range dirty {
		dirty[i] = 7
	}
	a.Reset(RetainCapacity)

	slice, err := AllocSliceZeroed[int](a, 5)
	require.NoError(t, err)
	if len(slice) != 5 {
		t.Errorf("AllocSliceZeroed[int](5) length = %d, want 5", len(slice))
	}

	// Verify all elements are zeroed
	for i, v := range slice {
		if v != 0 {
			t.Errorf("slice[%d] = %d, want 0 (zeroed)", i, v)
		}
	}
}

func TestCloneBytesAndString(t *testing.T) {
	a := newTestArena()

	src := []byte("region allocator")
	b, err := CloneBytes(a, src)
	require.NoError(t, err)
	require.Equal(t, src, b)
	require.NotEqual(t, addressOf(src), addressOf(b))

	s, err := CloneString(a, "bump pointer")
	require.NoError(t, err)
	require.Equal(t, "bump pointer", s)

	empty, err := CloneString(a, "")
	require.NoError(t, err)
	require.Empty(t, empty)

	nothing, err := CloneBytes(a, nil)
	require.NoError(t, err)
	require.Nil(t, nothing)
}

func TestAllocPropagatesOutOfMemory(t *testing.T) {
	rec := newRecorder()
	rec.failAlloc = true
	a := New(rec)

	_, err := Alloc[int](a)
	require.ErrorIs(t, err, ErrOutOfMemory)
	_, err = AllocSlice[int](a, 4)
	require.ErrorIs(t, err, ErrOutOfMemory)
	_, err = AllocSliceZeroed[int](a, 4)
	require.ErrorIs(t, err, ErrOutOfMemory)
	_, err = CloneString(a, "x")
	require.ErrorIs(t, err, ErrOutOfMemory)
}

func TestPtrAndKeepAlive(t *testing.T) {
	a := newTestArena()
	ptr, err := Alloc[int](a)
	require.NoError(t, err)
	*ptr = 42

	result := PtrAndKeepAlive(a, ptr)
	if result != ptr {
		t.Errorf("PtrAndKeepAlive returned different pointer")
	}
	if *result != 42 {
		t.Errorf("PtrAndKeepAlive value = %d, want 42", *result)
	}
}

func TestAllocAlignment(t *testing.T) {
	a := newTestArena()

	// Interleave odd-sized allocations so alignment has to do work.
	for i := 0; i < 10; i++ {
		_, err := Alloc[int8](a)
		require.NoError(t, err)
		ptr, err := Alloc[int64](a)
		require.NoError(t, err)
		addr := uintptr(unsafe.Pointer(ptr))
		if addr%unsafe.Alignof(int64(0)) != 0 {
			t.Errorf("Pointer %d not properly aligned: %x", i, addr)
		}
	}
}

func BenchmarkAlloc(b *testing.B) {
	a := New(backing.NewHeap(), WithMinChunkSize(1024*1024))

	b.Run("Alloc[int]", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = Alloc[int](a)
			if i%1000 == 999 {
				a.Reset(RetainCapacity)
			}
		}
	})
}

func BenchmarkAllocSlice(b *testing.B) {
	a := New(backing.NewHeap(), WithMinChunkSize(1024*1024))
	sizes := []int{10, 100, 1000}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("AllocSlice-%d", size), func(b *testing.B) {
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _ = AllocSlice[int](a, size)
				if i%100 == 99 {
					a.Reset(RetainCapacity)
				}
			}
		})

		b.Run(fmt.Sprintf("AllocSliceZeroed-%d", size), func(b *testing.B) {
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _ = AllocSliceZeroed[int](a, size)
				if i%100 == 99 {
					a.Reset(RetainCapacity)
				}
			}
		})
	}
}
