package executor

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXDrainDriver_PeriodicDrain(t *testing.T) {
	exec := NewXExecutor()
	defer func() { _ = exec.Close() }()

	dd, err := NewXDrainDriver(context.Background(), exec,
		WithDrainInterval(5*time.Millisecond),
	)
	require.NoError(t, err)
	defer func() { _ = dd.Close() }()

	var invoked atomic.Int64
	for i := 0; i < 10; i++ {
		require.NoError(t, exec.Post(func() error {
			invoked.Add(1)
			return nil
		}))
	}

	assert.Eventually(t, func() bool {
		return invoked.Load() == 10
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(0), exec.Len())
}

func TestXDrainDriver_WakeAheadOfTick(t *testing.T) {
	exec := NewXExecutor()
	defer func() { _ = exec.Close() }()

	// Interval far away, only Wake can trigger the drain.
	dd, err := NewXDrainDriver(context.Background(), exec,
		WithDrainInterval(time.Hour),
	)
	require.NoError(t, err)
	defer func() { _ = dd.Close() }()

	var invoked atomic.Int64
	require.NoError(t, exec.Post(func() error {
		invoked.Add(1)
		return nil
	}))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int64(0), invoked.Load())

	dd.Wake()
	assert.Eventually(t, func() bool {
		return invoked.Load() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestXDrainDriver_FIFOThroughDriver(t *testing.T) {
	exec := NewXExecutor()
	defer func() { _ = exec.Close() }()

	dd, err := NewXDrainDriver(context.Background(), exec,
		WithDrainInterval(time.Hour),
	)
	require.NoError(t, err)
	defer func() { _ = dd.Close() }()

	orderC := make(chan int, 3)
	for i := 0; i < 3; i++ {
		i := i
		require.NoError(t, exec.Post(func() error {
			orderC <- i
			return nil
		}))
	}
	dd.Wake()

	for want := 0; want < 3; want++ {
		select {
		case got := <-orderC:
			assert.Equal(t, want, got)
		case <-time.After(time.Second):
			t.Fatal("drain did not happen in time")
		}
	}
}

func TestXDrainDriver_CloseStopsDraining(t *testing.T) {
	exec := NewXExecutor()
	defer func() { _ = exec.Close() }()

	dd, err := NewXDrainDriver(context.Background(), exec,
		WithDrainInterval(5*time.Millisecond),
	)
	require.NoError(t, err)
	require.NoError(t, dd.Close())
	require.NoError(t, dd.Close()) // idempotent

	var invoked atomic.Int64
	require.NoError(t, exec.Post(func() error {
		invoked.Add(1)
		return nil
	}))
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int64(0), invoked.Load())
	assert.Equal(t, int64(1), exec.Len())

	// The executor itself is untouched by the driver's close.
	require.NoError(t, exec.Run())
	assert.Equal(t, int64(1), invoked.Load())
}

func TestXDrainDriver_ContextCancelStops(t *testing.T) {
	exec := NewXExecutor()
	defer func() { _ = exec.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	dd, err := NewXDrainDriver(ctx, exec,
		WithDrainInterval(5*time.Millisecond),
	)
	require.NoError(t, err)
	defer func() { _ = dd.Close() }()

	var invoked atomic.Int64
	require.NoError(t, exec.Post(func() error {
		invoked.Add(1)
		return nil
	}))
	assert.Eventually(t, func() bool {
		return invoked.Load() == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, exec.Post(func() error {
		invoked.Add(1)
		return nil
	}))
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int64(1), invoked.Load(), "no drain after cancellation")
}
