package alloc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	id  int
	ref *int
}

func TestBlockAllocator_AllocateAndRelease(t *testing.T) {
	a := NewXBlockAllocator[payload]()

	blk, err := a.Allocate(1)
	require.NoError(t, err)
	require.Len(t, blk, 1)
	assert.Equal(t, int64(1), a.Allocated())

	cnt := 7
	blk[0] = payload{id: 1, ref: &cnt}
	a.Release(blk)
	assert.Equal(t, int64(0), a.Allocated())
	// Cleared on release.
	assert.Nil(t, blk[0].ref)
	assert.Equal(t, 0, blk[0].id)
}

func TestBlockAllocator_FreeListReuse(t *testing.T) {
	a := NewXBlockAllocator[payload](
		WithBlockAllocatorChunkSize[payload](4),
	)

	blk1, err := a.Allocate(1)
	require.NoError(t, err)
	blk1[0].id = 42
	a.Release(blk1)

	blk2, err := a.Allocate(1)
	require.NoError(t, err)
	// Same storage handed out again, zeroed.
	assert.Equal(t, &blk1[0], &blk2[0])
	assert.Equal(t, 0, blk2[0].id)
}

func TestBlockAllocator_ContiguousMultiBlock(t *testing.T) {
	a := NewXBlockAllocator[int](
		WithBlockAllocatorChunkSize[int](8),
	)

	blk, err := a.Allocate(16) // larger than one chunk
	require.NoError(t, err)
	require.Len(t, blk, 16)
	for i := range blk {
		blk[i] = i
	}
	for i := range blk {
		assert.Equal(t, i, blk[i])
	}
	assert.Equal(t, int64(16), a.Allocated())
	a.Release(blk)
	assert.Equal(t, int64(0), a.Allocated())
}

func TestBlockAllocator_CapacityExhausted(t *testing.T) {
	a := NewXBlockAllocator[int](
		WithBlockAllocatorCapacity[int](2),
	)

	blk1, err := a.Allocate(1)
	require.NoError(t, err)
	_, err = a.Allocate(1)
	require.NoError(t, err)

	_, err = a.Allocate(1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAllocExhausted))

	// Releasing frees capacity again.
	a.Release(blk1)
	_, err = a.Allocate(1)
	assert.NoError(t, err)
}

func TestBlockAllocator_InvalidCount(t *testing.T) {
	a := NewXBlockAllocator[int]()
	_, err := a.Allocate(0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAllocInvalidCount))
	_, err = a.Allocate(-3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAllocInvalidCount))
}
