package executor

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	ExecutorStatsName = "xexec/exec"
)

type xExecutorStats struct {
	taskPostedCount      metric.Int64Counter
	taskExecutedCount    metric.Int64Counter
	taskFailedCount      metric.Int64Counter
	taskDiscardedCount   metric.Int64Counter
	runBatchSizes        metric.Int64Histogram
	taskExecuteDurations metric.Int64Histogram
}

func (stats *xExecutorStats) IncreaseTaskPostedCount() {
	if stats == nil {
		return
	}
	stats.taskPostedCount.Add(context.Background(), 1)
}

func (stats *xExecutorStats) IncreaseTaskExecutedCount(count int64) {
	if stats == nil || count <= 0 {
		return
	}
	stats.taskExecutedCount.Add(context.Background(), count)
}

func (stats *xExecutorStats) IncreaseTaskFailedCount() {
	if stats == nil {
		return
	}
	stats.taskFailedCount.Add(context.Background(), 1)
}

func (stats *xExecutorStats) IncreaseTaskDiscardedCount(count int64) {
	if stats == nil || count <= 0 {
		return
	}
	stats.taskDiscardedCount.Add(context.Background(), count)
}

func (stats *xExecutorStats) RecordRunBatchSize(size int64) {
	if stats == nil {
		return
	}
	stats.runBatchSizes.Record(context.Background(), size)
}

func (stats *xExecutorStats) RecordTaskExecuteDuration(durationMs int64) {
	if stats == nil {
		return
	}
	stats.taskExecuteDurations.Record(context.Background(), durationMs)
}

func newXExecutorStats(name string) *xExecutorStats {
	meterName := fmt.Sprintf("%s/%s", ExecutorStatsName, name)
	return &xExecutorStats{
		taskPostedCount: lo.Must[metric.Int64Counter](otel.Meter(meterName).
			Int64Counter(
				"exec.task.posted.count",
				metric.WithDescription("The number of tasks posted to the executor."),
			),
		),
		taskExecutedCount: lo.Must[metric.Int64Counter](otel.Meter(meterName).
			Int64Counter(
				"exec.task.executed.count",
				metric.WithDescription("The number of tasks executed by the executor."),
			),
		),
		taskFailedCount: lo.Must[metric.Int64Counter](otel.Meter(meterName).
			Int64Counter(
				"exec.task.failed.count",
				metric.WithDescription("The number of executed tasks that failed."),
			),
		),
		taskDiscardedCount: lo.Must[metric.Int64Counter](otel.Meter(meterName).
			Int64Counter(
				"exec.task.discarded.count",
				metric.WithDescription("The number of tasks discarded without execution."),
			),
		),
		runBatchSizes: lo.Must[metric.Int64Histogram](otel.Meter(meterName).
			Int64Histogram(
				"exec.run.batch.size",
				metric.WithDescription("The number of tasks detached by one drain."),
			),
		),
		taskExecuteDurations: lo.Must[metric.Int64Histogram](otel.Meter(meterName).
			Int64Histogram(
				"exec.task.execute.duration",
				metric.WithDescription("The duration of the task execution. In milliseconds."),
				metric.WithUnit("ms"),
			),
		),
	}
}
