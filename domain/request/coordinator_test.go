package request

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/soocke/rustlens/domain/detection"
)

type reply struct {
	res *detection.Result
	err error
}

// gatedDetector blocks every call until the test answers it. It ignores ctx so
// a superseded call still completes, like a remote service that never saw the
// cancellation.
type gatedDetector struct {
	mu    sync.Mutex
	sels  []*detection.Selection
	ctxs  []context.Context
	gates []chan reply
}

func (d *gatedDetector) Detect(ctx context.Context, sel *detection.Selection) (*detection.Result, error) {
	ch := make(chan reply, 1)
	d.mu.Lock()
	d.sels = append(d.sels, sel)
	d.ctxs = append(d.ctxs, ctx)
	d.gates = append(d.gates, ch)
	d.mu.Unlock()
	r := <-ch
	return r.res, r.err
}

func (d *gatedDetector) calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.gates)
}

func (d *gatedDetector) answer(t *testing.T, i int, r reply) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for d.calls() <= i {
		if time.Now().After(deadline) {
			t.Fatalf("timeout waiting for call %d", i)
		}
		time.Sleep(time.Millisecond)
	}
	d.mu.Lock()
	ch := d.gates[i]
	d.mu.Unlock()
	ch <- r
}

// answerFor answers the call made for the selection named name, whatever
// order the workers reached the detector in.
func (d *gatedDetector) answerFor(t *testing.T, name string, r reply) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		d.mu.Lock()
		for i, sel := range d.sels {
			if sel.Name == name {
				ch := d.gates[i]
				d.mu.Unlock()
				ch <- r
				return
			}
		}
		d.mu.Unlock()
		if time.Now().After(deadline) {
			t.Fatalf("timeout waiting for call for %q", name)
		}
		time.Sleep(time.Millisecond)
	}
}

func (d *gatedDetector) ctx(i int) context.Context {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ctxs[i]
}

func waitOne(t *testing.T, c *Coordinator) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.Wait(ctx); err != nil {
		t.Fatalf("wait: %v", err)
	}
}

func selection(name string) *detection.Selection {
	return &detection.Selection{Name: name, Data: []byte(name)}
}

func result(names ...string) *detection.Result {
	res := &detection.Result{CorrosionPercent: 1, Detections: []detection.Detection{}}
	for _, n := range names {
		res.Detections = append(res.Detections, detection.Detection{Name: n, XMax: 1, YMax: 1, Confidence: 0.5})
	}
	return res
}

func TestCoordinator_SubmitSuccess(t *testing.T) {
	d := &gatedDetector{}
	var seen []Status
	c := NewCoordinator(d, 0, nil, Hooks{})
	c.AddListener(func(prev, next State) { seen = append(seen, next.Status) })

	if err := c.Submit(selection("a")); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !c.State().Pending() {
		t.Fatalf("expected pending, got %v", c.State().Status)
	}
	want := result("rust")
	d.answer(t, 0, reply{res: want})
	waitOne(t, c)

	st := c.State()
	if st.Status != StatusSucceeded || st.Result != want || st.Err != nil {
		t.Fatalf("unexpected state %+v", st)
	}
	if len(seen) != 2 || seen[0] != StatusPending || seen[1] != StatusSucceeded {
		t.Fatalf("unexpected transitions %v", seen)
	}
}

func TestCoordinator_RejectsWithoutSelection(t *testing.T) {
	d := &gatedDetector{}
	c := NewCoordinator(d, 0, nil, Hooks{})
	for _, sel := range []*detection.Selection{nil, {Name: "empty"}} {
		if err := c.Submit(sel); !errors.Is(err, detection.ErrNoSelection) {
			t.Fatalf("expected ErrNoSelection, got %v", err)
		}
	}
	if c.State().Status != StatusIdle || d.calls() != 0 {
		t.Fatalf("state=%v calls=%d", c.State().Status, d.calls())
	}
}

func TestCoordinator_SingleFlight(t *testing.T) {
	d := &gatedDetector{}
	busy := 0
	c := NewCoordinator(d, 0, nil, Hooks{OnBusy: func() { busy++ }})
	if err := c.Submit(selection("a")); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := c.Submit(selection("a")); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	d.answer(t, 0, reply{res: result()})
	waitOne(t, c)
	if d.calls() != 1 || busy != 1 {
		t.Fatalf("calls=%d busy=%d", d.calls(), busy)
	}
	// idle again: a resubmit is accepted
	if err := c.Submit(selection("a")); err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	d.answer(t, 1, reply{res: result()})
	waitOne(t, c)
}

func TestCoordinator_ServiceErrorBecomesFailed(t *testing.T) {
	d := &gatedDetector{}
	var kinds []string
	c := NewCoordinator(d, 0, nil, Hooks{OnFailure: func(k string) { kinds = append(kinds, k) }})
	_ = c.Submit(selection("a"))
	d.answer(t, 0, reply{err: &detection.ServiceError{StatusCode: 500, StatusText: "Internal Server Error"}})
	waitOne(t, c)

	st := c.State()
	if st.Status != StatusFailed || st.Result != nil {
		t.Fatalf("unexpected state %+v", st)
	}
	if st.Message() != "Server error: Internal Server Error" {
		t.Fatalf("unexpected message %q", st.Message())
	}
	if len(kinds) != 1 || kinds[0] != "service" {
		t.Fatalf("unexpected failure kinds %v", kinds)
	}
}

func TestCoordinator_SubmitClearsPreviousOutcome(t *testing.T) {
	d := &gatedDetector{}
	var pending []State
	c := NewCoordinator(d, 0, nil, Hooks{})
	c.AddListener(func(prev, next State) {
		if next.Pending() {
			pending = append(pending, next)
		}
	})
	_ = c.Submit(selection("a"))
	d.answer(t, 0, reply{err: errors.New("connection refused")})
	waitOne(t, c)
	_ = c.Submit(selection("a"))
	if c.State().Err != nil || c.State().Result != nil {
		t.Fatalf("pending state must not carry stale data: %+v", c.State())
	}
	d.answer(t, 1, reply{res: result("x")})
	waitOne(t, c)
	_ = c.Submit(selection("a"))
	for i, st := range pending {
		if st.Err != nil || st.Result != nil {
			t.Fatalf("pending transition %d carried stale data: %+v", i, st)
		}
	}
	if len(pending) != 3 {
		t.Fatalf("expected 3 pending transitions, got %d", len(pending))
	}
}

func TestCoordinator_ResetDiscardsLateResponse(t *testing.T) {
	d := &gatedDetector{}
	discarded := 0
	c := NewCoordinator(d, 0, nil, Hooks{OnDiscard: func() { discarded++ }})
	_ = c.Submit(selection("a"))
	d.answer(t, 0, reply{}) // wait for the call to start before resetting
	c.Reset()
	if c.State().Status != StatusIdle {
		t.Fatalf("expected idle after reset, got %v", c.State().Status)
	}
	waitOne(t, c)
	if st := c.State(); st.Status != StatusIdle || st.Result != nil || st.Err != nil {
		t.Fatalf("stale completion leaked into state: %+v", st)
	}
	if discarded != 1 {
		t.Fatalf("expected one discard, got %d", discarded)
	}
}

func TestCoordinator_ResetCancelsInFlightContext(t *testing.T) {
	d := &gatedDetector{}
	c := NewCoordinator(d, 0, nil, Hooks{})
	_ = c.Submit(selection("a"))
	deadline := time.Now().Add(2 * time.Second)
	for d.calls() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	c.Reset()
	select {
	case <-d.ctx(0).Done():
	case <-time.After(time.Second):
		t.Fatalf("in-flight context not cancelled by reset")
	}
	d.answer(t, 0, reply{res: result("late")})
	waitOne(t, c)
	if c.State().Result != nil {
		t.Fatalf("late result applied")
	}
}

func TestCoordinator_NewerSubmitWinsOverStale(t *testing.T) {
	d := &gatedDetector{}
	c := NewCoordinator(d, 0, nil, Hooks{})
	_ = c.Submit(selection("a"))
	c.Reset()
	_ = c.Submit(selection("b"))

	d.answerFor(t, "a", reply{res: result("from-a")})
	waitOne(t, c)
	if !c.State().Pending() {
		t.Fatalf("stale completion ended the newer request: %v", c.State().Status)
	}
	fromB := result("from-b")
	d.answerFor(t, "b", reply{res: fromB})
	waitOne(t, c)
	if c.State().Result != fromB {
		t.Fatalf("expected result of newer request")
	}
}

func TestCoordinator_PollDoesNotBlock(t *testing.T) {
	d := &gatedDetector{}
	c := NewCoordinator(d, 0, nil, Hooks{})
	if c.Poll() {
		t.Fatalf("poll on idle coordinator should report nothing")
	}
	_ = c.Submit(selection("a"))
	if c.Poll() {
		t.Fatalf("poll before completion should report nothing")
	}
	d.answer(t, 0, reply{res: result()})
	deadline := time.Now().Add(2 * time.Second)
	for !c.Poll() {
		if time.Now().After(deadline) {
			t.Fatalf("completion never polled")
		}
		time.Sleep(time.Millisecond)
	}
	if c.State().Status != StatusSucceeded {
		t.Fatalf("unexpected status %v", c.State().Status)
	}
}

func TestCoordinator_CloseReleasesWorkers(t *testing.T) {
	d := &gatedDetector{}
	c := NewCoordinator(d, 0, nil, Hooks{})
	for i := 0; i < 3; i++ {
		_ = c.Submit(selection("a"))
		c.Reset()
	}
	c.Close()
	for i := 0; i < 3; i++ {
		d.answer(t, i, reply{res: result()})
	}
	if err := c.Submit(selection("a")); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if c.State().Status != StatusIdle {
		t.Fatalf("expected idle after close")
	}
}
