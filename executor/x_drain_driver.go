package executor

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/benz9527/xexec/lib/infra"
	"github.com/benz9527/xexec/lib/ipc"
)

var _ DrainDriver = (*xDrainDriver)(nil)

// xDrainDriver is the single consumer of one executor. One goroutine
// multiplexes the interval tick and the wake channel; every firing submits
// one drain to a 1-worker pool, so Run calls are strictly serialized and
// the no-concurrent-run precondition holds no matter how ticks and
// wake-ups interleave.
type xDrainDriver struct {
	exec      Executor
	gPool     *ants.Pool
	wakeC     ipc.ClosableChannel[struct{}]
	stopC     chan struct{}
	interval  time.Duration
	isRunning atomic.Bool
}

func (dd *xDrainDriver) Wake() {
	if !dd.isRunning.Load() {
		return
	}
	// Coalesces: a wake-up already buffered is enough.
	_ = dd.wakeC.Send(struct{}{}, true)
}

func (dd *xDrainDriver) Close() error {
	if !dd.isRunning.CompareAndSwap(true, false) {
		return nil
	}
	close(dd.stopC)
	_ = dd.wakeC.Close()
	// The executor is not owned by the driver and stays open.
	dd.gPool.Release()
	return nil
}

func (dd *xDrainDriver) poll(ctx context.Context) {
	ticker := time.NewTicker(dd.interval)
	defer func() {
		if r := recover(); r != nil {
			slog.Error("drain driver poll panic recover", "error", r)
		}
		ticker.Stop()
	}()
	for {
		select {
		case <-ctx.Done():
			_ = dd.Close()
			return
		case <-dd.stopC:
			return
		case <-ticker.C:
		case <-dd.wakeC.Wait():
		}
		// Blocks while a previous drain is still running; at most one
		// extra drain gets queued behind it.
		if err := dd.gPool.Submit(dd.drain); err != nil {
			if !errors.Is(err, ants.ErrPoolClosed) {
				slog.Error("drain driver unable to submit drain", "error", err)
			}
			return
		}
	}
}

func (dd *xDrainDriver) drain() {
	if err := dd.exec.Run(); err != nil && !errors.Is(err, ErrExecClosed) {
		slog.Error("deferred batch execution failed", "error", err)
	}
}

func NewXDrainDriver(ctx context.Context, exec Executor, opts ...DrainDriverOption) (DrainDriver, error) {
	if exec == nil {
		return nil, infra.NewErrorStack("[drain driver] executor is nil")
	}
	gPool, err := ants.NewPool(1, ants.WithPreAlloc(true))
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[drain driver] unable to create drain pool")
	}
	dd := &xDrainDriver{
		exec:     exec,
		gPool:    gPool,
		wakeC:    ipc.NewSafeClosableChannel[struct{}](1),
		stopC:    make(chan struct{}),
		interval: time.Duration(defaultDrainIntervalMilliseconds) * time.Millisecond,
	}
	for _, o := range opts {
		if o != nil {
			o(dd)
		}
	}
	dd.isRunning.Store(true)
	go dd.poll(ctx)
	return dd, nil
}
