package alloc

import (
	"github.com/benz9527/xexec/lib/infra"
)

const defaultBlockAllocatorChunkSize = 64

var _ BlockAllocator[struct{}] = (*xBlockAllocator[struct{}])(nil)

// xBlockAllocator carves blocks from chunked backing slices and recycles
// released blocks through a LIFO free list. All free-list entries are
// single-instance blocks; multi-instance requests are always carved whole
// from one chunk so the returned storage stays contiguous.
type xBlockAllocator[T any] struct {
	chunk     []T
	chunkOff  int
	free      [][]T
	chunkSize int
	capacity  int64 // 0 means unbounded
	allocated int64
}

func (a *xBlockAllocator[T]) Allocate(count int) ([]T, error) {
	if count <= 0 {
		return nil, infra.WrapErrorStack(ErrAllocInvalidCount)
	}
	if a.capacity > 0 && a.allocated+int64(count) > a.capacity {
		return nil, infra.WrapErrorStack(ErrAllocExhausted)
	}
	if count == 1 && len(a.free) > 0 {
		tail := len(a.free) - 1
		blk := a.free[tail]
		a.free[tail] = nil
		a.free = a.free[:tail]
		a.allocated++
		return blk, nil
	}
	if a.chunkOff+count > len(a.chunk) {
		size := a.chunkSize
		if count > size {
			size = count
		}
		a.chunk = make([]T, size)
		a.chunkOff = 0
	}
	blk := a.chunk[a.chunkOff : a.chunkOff+count : a.chunkOff+count]
	a.chunkOff += count
	a.allocated += int64(count)
	return blk, nil
}

func (a *xBlockAllocator[T]) Release(blk []T) {
	if len(blk) <= 0 {
		return
	}
	// Clearing drops the references captured by the instances, which is
	// what lets the GC collect them while the storage itself is reused.
	var zero T
	for i := 0; i < len(blk); i++ {
		blk[i] = zero
		a.free = append(a.free, blk[i:i+1:i+1])
	}
	a.allocated -= int64(len(blk))
}

func (a *xBlockAllocator[T]) Allocated() int64 {
	return a.allocated
}

type BlockAllocatorOption[T any] func(*xBlockAllocator[T])

// WithBlockAllocatorChunkSize sets how many instances each backing chunk
// holds. Values below 1 fall back to the default.
func WithBlockAllocatorChunkSize[T any](size int) BlockAllocatorOption[T] {
	return func(a *xBlockAllocator[T]) {
		if size > 0 {
			a.chunkSize = size
		}
	}
}

// WithBlockAllocatorCapacity bounds the number of outstanding instances.
// Allocate fails with ErrAllocExhausted once the bound would be exceeded.
// Zero (the default) means unbounded.
func WithBlockAllocatorCapacity[T any](capacity int64) BlockAllocatorOption[T] {
	return func(a *xBlockAllocator[T]) {
		if capacity > 0 {
			a.capacity = capacity
		}
	}
}

func NewXBlockAllocator[T any](opts ...BlockAllocatorOption[T]) BlockAllocator[T] {
	a := &xBlockAllocator[T]{
		chunkSize: defaultBlockAllocatorChunkSize,
	}
	for _, o := range opts {
		if o != nil {
			o(a)
		}
	}
	return a
}
