//go:build !windows

package debug

import (
	"context"
	"log/slog"
	"runtime"
	"time"
)

// StartMemLogger logs Go heap stats every interval until ctx is done. RSS is
// only reported on windows.
func StartMemLogger(ctx context.Context, interval time.Duration, logger *slog.Logger, live LiveFunc) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				logMem(logger, live)
			}
		}
	}()
}

func logMem(logger *slog.Logger, live LiveFunc) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	logger.Info("memstats",
		slog.Int("goroutines", runtime.NumGoroutine()),
		slog.Uint64("heap_alloc", ms.HeapAlloc),
		slog.Uint64("heap_inuse", ms.HeapInuse),
		slog.Uint64("heap_sys", ms.HeapSys),
		slog.Uint64("num_gc", uint64(ms.NumGC)),
		slog.Int64("live_handles", liveCount(live)),
	)
}
