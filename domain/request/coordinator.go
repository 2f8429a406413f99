// Package request drives the single-flight detection call. The network call
// runs on a worker goroutine; its completion is applied only when the owner
// calls Poll or Wait, which keeps every state mutation on the caller's thread.
package request

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/soocke/rustlens/domain/detection"
)

// Status enumerates the request phases.
type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPending:
		return "pending"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is the current request phase. Result is set only when Succeeded and
// Err only when Failed. Succeeded and Failed are idle phases: a new submit is
// accepted from them.
type State struct {
	Status Status
	Result *detection.Result
	Err    error
}

// Pending reports whether a request is in flight.
func (s State) Pending() bool { return s.Status == StatusPending }

// Message returns the user facing error text, or "".
func (s State) Message() string { return detection.Message(s.Err) }

var (
	// ErrBusy rejects a submit while another request is pending.
	ErrBusy = errors.New("a detection request is already in progress")
	// ErrClosed rejects a submit after Close.
	ErrClosed = errors.New("request coordinator closed")
)

// Detector performs the remote detection call.
type Detector interface {
	Detect(ctx context.Context, sel *detection.Selection) (*detection.Result, error)
}

// Listener is called on every state change.
type Listener func(prev, next State)

// Hooks are optional callbacks for instrumentation.
type Hooks struct {
	OnSubmit  func()
	OnSuccess func(elapsed time.Duration)
	OnFailure func(kind string)
	OnDiscard func()
	OnBusy    func()
}

type completion struct {
	generation uint64
	result     *detection.Result
	err        error
	elapsed    time.Duration
}

// Coordinator owns the request state machine:
//
//	Idle/Succeeded/Failed --Submit--> Pending --ok--> Succeeded
//	                                  Pending --err--> Failed
//	any --Reset--> Idle
//
// Every Reset and every Submit bumps the generation; a completion whose
// generation is not current is dropped.
type Coordinator struct {
	detector Detector
	logger   *slog.Logger
	timeout  time.Duration
	hooks    Hooks

	state      State
	generation uint64
	cancel     context.CancelFunc
	listeners  []Listener

	completions chan completion
	done        chan struct{}
	closeOnce   sync.Once
	closed      bool
}

// NewCoordinator returns an idle coordinator. A zero timeout leaves
// termination of a pending call to the transport.
func NewCoordinator(detector Detector, timeout time.Duration, logger *slog.Logger, hooks Hooks) *Coordinator {
	return &Coordinator{
		detector:    detector,
		logger:      logger,
		timeout:     timeout,
		hooks:       hooks,
		completions: make(chan completion, 8),
		done:        make(chan struct{}),
	}
}

// AddListener registers l for state changes.
func (c *Coordinator) AddListener(l Listener) {
	if c == nil || l == nil {
		return
	}
	c.listeners = append(c.listeners, l)
}

// State returns the current state.
func (c *Coordinator) State() State {
	if c == nil {
		return State{}
	}
	return c.state
}

// Submit starts a detection for sel. It fails without a transition when sel is
// empty (detection.ErrNoSelection) or a request is pending (ErrBusy).
func (c *Coordinator) Submit(sel *detection.Selection) error {
	if c.closed {
		return ErrClosed
	}
	if sel.Empty() {
		return detection.ErrNoSelection
	}
	if c.state.Pending() {
		if c.hooks.OnBusy != nil {
			c.hooks.OnBusy()
		}
		return ErrBusy
	}
	if c.detector == nil {
		return fmt.Errorf("submit: no detector configured")
	}

	c.generation++
	gen := c.generation
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if c.timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), c.timeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	c.cancel = cancel
	c.transition(State{Status: StatusPending})
	if c.hooks.OnSubmit != nil {
		c.hooks.OnSubmit()
	}
	if c.logger != nil {
		c.logger.Info("detect.submit", "file", sel.Name, "bytes", len(sel.Data), "generation", gen)
	}
	go c.run(ctx, cancel, gen, sel)
	return nil
}

func (c *Coordinator) run(ctx context.Context, cancel context.CancelFunc, gen uint64, sel *detection.Selection) {
	defer cancel()
	comp := completion{generation: gen}
	defer func() {
		if r := recover(); r != nil {
			if c.logger != nil {
				c.logger.Error("detect worker panic", "error", r)
			}
			comp.result, comp.err = nil, fmt.Errorf("detect worker panic: %v", r)
		}
		select {
		case c.completions <- comp:
		case <-c.done:
		}
	}()
	start := time.Now()
	comp.result, comp.err = c.detector.Detect(ctx, sel)
	comp.elapsed = time.Since(start)
}

// Poll applies every completion already delivered and returns without
// blocking. It reports whether any completion changed the state.
func (c *Coordinator) Poll() bool {
	if c == nil {
		return false
	}
	applied := false
	for {
		select {
		case comp := <-c.completions:
			if c.apply(comp) {
				applied = true
			}
		default:
			return applied
		}
	}
}

// Wait blocks until one completion is delivered and handled, or ctx ends.
func (c *Coordinator) Wait(ctx context.Context) error {
	select {
	case comp := <-c.completions:
		c.apply(comp)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Coordinator) apply(comp completion) bool {
	if comp.generation != c.generation || !c.state.Pending() {
		if c.logger != nil {
			c.logger.Debug("detect.discard", "generation", comp.generation, "current", c.generation, "error", comp.err)
		}
		if c.hooks.OnDiscard != nil {
			c.hooks.OnDiscard()
		}
		return false
	}
	c.cancel = nil
	if comp.err != nil {
		kind := detection.Kind(comp.err)
		if c.logger != nil {
			c.logger.Warn("detect.failed", "kind", kind, "error", comp.err, "elapsed", comp.elapsed)
		}
		if c.hooks.OnFailure != nil {
			c.hooks.OnFailure(kind)
		}
		c.transition(State{Status: StatusFailed, Err: comp.err})
		return true
	}
	if comp.result == nil {
		c.transition(State{Status: StatusFailed, Err: &detection.MalformedResponseError{}})
		return true
	}
	if c.logger != nil {
		c.logger.Info("detect.done", "detections", len(comp.result.Detections), "corrosion_percent", comp.result.CorrosionPercent, "elapsed", comp.elapsed)
	}
	if c.hooks.OnSuccess != nil {
		c.hooks.OnSuccess(comp.elapsed)
	}
	c.transition(State{Status: StatusSucceeded, Result: comp.result})
	return true
}

// Reset returns to Idle from any phase. A pending call is cancelled and its
// completion, if it still arrives, is dropped.
func (c *Coordinator) Reset() {
	if c == nil {
		return
	}
	c.generation++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.transition(State{})
}

// Close resets and stops accepting submits. Workers still running are
// released without delivering.
func (c *Coordinator) Close() {
	if c == nil {
		return
	}
	c.Reset()
	c.closed = true
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *Coordinator) transition(next State) {
	prev := c.state
	if prev.Status == next.Status && prev.Result == next.Result && prev.Err == next.Err {
		return
	}
	c.state = next
	if c.logger != nil {
		c.logger.Debug("request state transition", "from", prev.Status.String(), "to", next.Status.String())
	}
	for _, l := range c.listeners {
		l(prev, next)
	}
}
