package executor

import "io"

// Task is one deferred, zero-argument unit of work. A task that has
// nothing to report returns nil; a non-nil error (or a panic, which is
// recovered and converted) surfaces to the caller of Run.
type Task func() error

type ExecErr string

const (
	ErrExecClosed  ExecErr = "executor already closed"
	ErrExecNilTask ExecErr = "executor received nil task"
)

func (err ExecErr) Error() string {
	return string(err)
}

// Executor is a passive, externally-driven FIFO: any number of producers
// defer work through Post and a single consumer periodically drains the
// whole backlog through Run. It owns no goroutines.
type Executor interface {
	io.Closer
	// Post enqueues fn to be executed by the next call to Run.
	// Tasks posted from the same goroutine execute in the order they
	// were posted. May be called concurrently.
	Post(fn Task) error
	// Run detaches the entire pending chain, executes it in order with
	// the lock released, then reclaims the executed nodes. Returns
	// immediately when the queue is empty. Tasks posted while Run is
	// executing land in a later batch.
	//
	// May NOT be called concurrently with itself, including from inside
	// a running task.
	Run() error
	// Len reports the number of pending tasks.
	Len() int64
}

// DrainDriver owns the consumer loop for one Executor: it calls Run on an
// interval and on demand via Wake, never overlapping two drains.
type DrainDriver interface {
	io.Closer
	// Wake schedules a drain ahead of the next interval tick.
	// Non-blocking; coalesces with an already pending wake-up.
	Wake()
}
