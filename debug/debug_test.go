package debug

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestLogGoroutines_ReportsLiveHandles(t *testing.T) {
	var buf syncBuffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	logGoroutines(logger, func() int64 { return 3 })

	var rec map[string]any
	if err := json.Unmarshal([]byte(buf.String()), &rec); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if rec["msg"] != "goroutine-stacks" || rec["live_handles"] != float64(3) {
		t.Fatalf("unexpected record %v", rec)
	}
	if g, _ := rec["goroutines"].(float64); g < 1 {
		t.Fatalf("goroutines = %v", rec["goroutines"])
	}
}

func TestLoggersStopWithContext(t *testing.T) {
	var buf syncBuffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	ctx, cancel := context.WithCancel(context.Background())
	StartGoroutineLogger(ctx, 5*time.Millisecond, logger, nil)
	StartMemLogger(ctx, 5*time.Millisecond, logger, nil)

	deadline := time.Now().Add(2 * time.Second)
	for !bytes.Contains([]byte(buf.String()), []byte("memstats")) {
		if time.Now().After(deadline) {
			t.Fatalf("no memstats record logged")
		}
		time.Sleep(time.Millisecond)
	}
	cancel()
}
