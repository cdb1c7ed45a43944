package executor

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"go.uber.org/multierr"

	"github.com/benz9527/xexec/lib/alloc"
	"github.com/benz9527/xexec/lib/infra"
)

var _ Executor = (*xExecutor)(nil)

// taskItem is one pending unit of work. The intrusive next pointer chains
// items from head to tail; the storage comes from the block allocator and
// is cleared when the node is released.
type taskItem struct {
	next *taskItem
	fn   Task
}

type xExecutor struct {
	// lock guards the head/tail links and the node allocator's free
	// list. The allocator is not synchronized on its own; sharing one
	// lock is what keeps the second reclaim pass of Run cheap.
	lock        sync.Mutex
	nodes       alloc.BlockAllocator[taskItem]
	head        *taskItem
	tail        *taskItem
	itemCounter atomic.Int64
	isClosed    atomic.Bool
	stats       *xExecutorStats

	name            string
	continueOnError bool
	isStatsEnabled  bool
	allocChunkSize  int
	allocCapacity   int64
}

func (exec *xExecutor) Post(fn Task) error {
	if fn == nil {
		return infra.WrapErrorStack(ErrExecNilTask)
	}
	exec.lock.Lock()
	if exec.isClosed.Load() {
		exec.lock.Unlock()
		return infra.WrapErrorStack(ErrExecClosed)
	}
	blk, err := exec.nodes.Allocate(1)
	if err != nil {
		// Failed strictly before linkage, the queue is untouched.
		exec.lock.Unlock()
		return infra.WrapErrorStackWithMessage(err, "[executor] unable to allocate task node")
	}
	item := &blk[0]
	item.fn = fn
	item.next = nil
	if exec.tail != nil {
		exec.tail.next = item
		exec.tail = item
	} else {
		exec.head = item
		exec.tail = item
	}
	exec.itemCounter.Add(1)
	exec.lock.Unlock()

	exec.stats.IncreaseTaskPostedCount()
	return nil
}

// Run drains and executes the whole backlog. On the first task failure the
// remaining tasks of the detached batch are discarded uninvoked (their
// storage is still reclaimed); WithExecContinueOnError switches to running
// every task and returning the failures aggregated.
func (exec *xExecutor) Run() error {
	exec.lock.Lock()
	if exec.isClosed.Load() {
		exec.lock.Unlock()
		return infra.WrapErrorStack(ErrExecClosed)
	}
	head := exec.head
	if head == nil {
		exec.lock.Unlock()
		return nil
	}
	exec.head = nil
	exec.tail = nil
	exec.lock.Unlock()

	// The detached chain is invisible through head/tail now, so tasks
	// run with no lock held and producers keep posting meanwhile.
	var (
		err       error
		batchSize int64
		executed  int64
		discarded int64
	)
	for cur := head; cur != nil; cur = cur.next {
		if err != nil && !exec.continueOnError {
			// Abort policy: the rest of the batch is never invoked.
			batchSize++
			discarded++
			continue
		}
		startedAt := time.Now()
		taskErr := invoke(cur.fn)
		exec.stats.RecordTaskExecuteDuration(time.Since(startedAt).Milliseconds())
		batchSize++
		executed++
		if taskErr != nil {
			exec.stats.IncreaseTaskFailedCount()
			if exec.continueOnError {
				err = multierr.Append(err, taskErr)
			} else {
				err = taskErr
			}
		}
	}

	exec.lock.Lock()
	for item := head; item != nil; {
		next := item.next
		exec.nodes.Release(unsafe.Slice(item, 1))
		item = next
	}
	exec.itemCounter.Add(-batchSize)
	exec.lock.Unlock()

	exec.stats.RecordRunBatchSize(batchSize)
	exec.stats.IncreaseTaskExecutedCount(executed)
	exec.stats.IncreaseTaskDiscardedCount(discarded)
	return err
}

func (exec *xExecutor) Len() int64 {
	return exec.itemCounter.Load()
}

// Close discards any still-pending tasks WITHOUT invoking them and
// reclaims their storage. Idempotent.
func (exec *xExecutor) Close() error {
	if !exec.isClosed.CompareAndSwap(false, true) {
		return nil
	}
	exec.lock.Lock()
	var discarded int64
	for item := exec.head; item != nil; {
		next := item.next
		exec.nodes.Release(unsafe.Slice(item, 1))
		item = next
		discarded++
	}
	exec.head = nil
	exec.tail = nil
	exec.itemCounter.Add(-discarded)
	exec.lock.Unlock()

	exec.stats.IncreaseTaskDiscardedCount(discarded)
	return nil
}

// invoke runs one task, converting a panic into an error so the batch is
// always reclaimed afterwards.
func invoke(fn Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = infra.WrapErrorStackWithMessage(fmt.Errorf("%v", r), "[executor] task panicked")
		}
	}()
	return fn()
}

func NewXExecutor(opts ...ExecutorOption) Executor {
	exec := &xExecutor{
		name:           defaultExecutorName,
		allocChunkSize: defaultTaskNodeChunkSize,
	}
	for _, o := range opts {
		if o != nil {
			o(exec)
		}
	}
	allocOpts := []alloc.BlockAllocatorOption[taskItem]{
		alloc.WithBlockAllocatorChunkSize[taskItem](exec.allocChunkSize),
	}
	if exec.allocCapacity > 0 {
		allocOpts = append(allocOpts, alloc.WithBlockAllocatorCapacity[taskItem](exec.allocCapacity))
	}
	exec.nodes = alloc.NewXBlockAllocator[taskItem](allocOpts...)
	if exec.isStatsEnabled {
		exec.stats = newXExecutorStats(exec.name)
	}
	return exec
}
