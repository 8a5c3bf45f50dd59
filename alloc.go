package chash

import "fmt"

// Allocator accounts for the memory a table claims: the table header, the
// bucket array, and every node with its key and value copies.
// Alloc returns an error when the charge cannot be satisfied; the table then
// releases whatever it already charged for the failed operation.
type Allocator interface {
	Alloc(size int) error
	Free(size int)
}

type heapAllocator struct{}

func (heapAllocator) Alloc(int) error { return nil }
func (heapAllocator) Free(int)        {}

// Tracker is an Allocator that records outstanding charges and optionally
// enforces a byte limit. The zero value tracks without a limit.
type Tracker struct {
	// Limit is the maximum number of outstanding bytes; 0 means unlimited.
	Limit int

	bytes  int
	blocks int
	allocs int
	frees  int
}

// Alloc charges size bytes, failing with ErrAllocation if Limit would be exceeded.
func (t *Tracker) Alloc(size int) error {
	if t.Limit > 0 && t.bytes+size > t.Limit {
		return fmt.Errorf("%w: %d bytes requested, %d of %d in use",
			ErrAllocation, size, t.bytes, t.Limit)
	}
	t.bytes += size
	t.blocks++
	t.allocs++
	return nil
}

// Free releases a charge of size bytes made by Alloc.
func (t *Tracker) Free(size int) {
	t.bytes -= size
	t.blocks--
	t.frees++
}

// Outstanding returns the bytes and blocks charged but not yet freed.
func (t *Tracker) Outstanding() (bytes, blocks int) {
	return t.bytes, t.blocks
}

// Counts returns the total number of Alloc and Free calls that succeeded.
func (t *Tracker) Counts() (allocs, frees int) {
	return t.allocs, t.frees
}
