package arena

import "unsafe"

// headerSize is the space reserved at the start of every chunk block for the
// chunk header. Two words keep the data region 16-byte aligned.
const headerSize = 16

// chunkAlign is the alignment requested from the backing allocator for
// chunk blocks.
const chunkAlign = 16

// chunk is one block obtained from the backing allocator. The block starts
// with its header (the total block size) followed by the data region. The
// list links stay in Go memory so the GC never has to trace into blocks that
// may live outside the Go heap.
type chunk struct {
	block []byte
	next  *chunk
	used  int // end index at the time the chunk stopped being the head
}

func newChunk(block []byte) *chunk {
	c := &chunk{}
	c.setBlock(block)
	return c
}

func (c *chunk) setBlock(block []byte) {
	c.block = block
	*(*uint64)(unsafe.Pointer(&block[0])) = uint64(len(block))
}

// totalSize reads the header.
func (c *chunk) totalSize() int {
	return int(*(*uint64)(unsafe.Pointer(&c.block[0])))
}

func (c *chunk) data() []byte {
	return c.block[headerSize:c.totalSize()]
}

func addressOf(b []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))
}

// alignForward rounds addr up to a multiple of alignment, which must be a
// power of two.
func alignForward(addr uintptr, alignment int) uintptr {
	mask := uintptr(alignment) - 1
	return (addr + mask) &^ mask
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
