package debug

// Debug runtime logger. Started only when config.Debug is true.
// Emits goroutine count, stack usage and live display handles at a fixed
// interval so leaked handles or stuck request workers show up in the log.

import (
	"context"
	"log/slog"
	"runtime"
	"runtime/metrics"
	"time"
)

// LiveFunc reports how many display handles are currently held.
type LiveFunc func() int64

// StartGoroutineLogger launches a ticker that logs goroutine count, stack
// memory and live handles until ctx is done.
func StartGoroutineLogger(ctx context.Context, interval time.Duration, logger *slog.Logger, live LiveFunc) {
	if interval <= 0 {
		interval = time.Second
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				logGoroutines(logger, live)
			}
		}
	}()
}

func logGoroutines(logger *slog.Logger, live LiveFunc) {
	samples := []metrics.Sample{{Name: "/sched/goroutines:goroutines"}}
	metrics.Read(samples)
	var goroutines uint64
	if samples[0].Value.Kind() == metrics.KindUint64 {
		goroutines = samples[0].Value.Uint64()
	}
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	logger.Info("goroutine-stacks",
		slog.Uint64("goroutines", goroutines),
		slog.Uint64("stack_inuse", ms.StackInuse),
		slog.Uint64("stack_sys", ms.StackSys),
		slog.Uint64("heap_alloc", ms.HeapAlloc),
		slog.Int64("live_handles", liveCount(live)),
	)
}

func liveCount(live LiveFunc) int64 {
	if live == nil {
		return 0
	}
	return live()
}
