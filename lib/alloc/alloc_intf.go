// References:
// https://github.com/golang/go/blob/master/src/runtime/mfixalloc.go

package alloc

type AllocErr string

const (
	ErrAllocExhausted    AllocErr = "block allocator exhausted"
	ErrAllocInvalidCount AllocErr = "block allocator invalid count"
)

func (err AllocErr) Error() string {
	return string(err)
}

// BlockAllocator hands out fixed-shape blocks sized for instances of T and
// reclaims them through an internal free list, so the hot allocation path
// of its owner avoids the general-purpose allocator.
//
// It is NOT internally synchronized. Every call must happen while the
// owner's lock is held; the owner shares one lock between its own state and
// this allocator's free list.
type BlockAllocator[T any] interface {
	// Allocate returns storage for count contiguous instances of T.
	// The caller is responsible for initializing the instances and for
	// clearing them again via Release once they go out of use.
	Allocate(count int) ([]T, error)
	// Release returns a block previously obtained from Allocate.
	// Releasing storage not obtained from this allocator, or releasing
	// the same block twice, corrupts the free list.
	Release(blk []T)
	// Allocated reports the number of instances currently outstanding.
	Allocated() int64
}
