package executor

import "time"

const (
	defaultExecutorName                 = "default"
	defaultTaskNodeChunkSize            = 64
	defaultMinDrainIntervalMilliseconds = 1
	defaultDrainIntervalMilliseconds    = 20
)

type ExecutorOption func(*xExecutor)

// WithExecName names the executor; the name shows up in the otel meter
// when stats are enabled.
func WithExecName(name string) ExecutorOption {
	return func(exec *xExecutor) {
		if len(name) > 0 {
			exec.name = name
		}
	}
}

// WithExecStats enables the otel metrics of the executor.
func WithExecStats() ExecutorOption {
	return func(exec *xExecutor) {
		exec.isStatsEnabled = true
	}
}

// WithExecContinueOnError makes Run execute every task of a batch even
// after failures and return the failures aggregated, instead of the
// default abort-and-discard policy.
func WithExecContinueOnError() ExecutorOption {
	return func(exec *xExecutor) {
		exec.continueOnError = true
	}
}

// WithExecTaskNodeChunkSize sets how many task nodes each backing chunk of
// the node allocator holds.
func WithExecTaskNodeChunkSize(size int) ExecutorOption {
	return func(exec *xExecutor) {
		if size > 0 {
			exec.allocChunkSize = size
		}
	}
}

// WithExecTaskCapacity bounds the number of pending tasks through the node
// allocator; Post fails once the bound would be exceeded. Zero (the
// default) means unbounded.
func WithExecTaskCapacity(capacity int64) ExecutorOption {
	return func(exec *xExecutor) {
		if capacity > 0 {
			exec.allocCapacity = capacity
		}
	}
}

type DrainDriverOption func(*xDrainDriver)

// WithDrainInterval sets the period of the driver's drain tick.
// Values below 1ms fall back to the default.
func WithDrainInterval(interval time.Duration) DrainDriverOption {
	return func(dd *xDrainDriver) {
		if interval.Milliseconds() >= defaultMinDrainIntervalMilliseconds {
			dd.interval = interval
		}
	}
}
