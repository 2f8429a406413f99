// Package lifecycle owns the display handle derived from the current selection.
// At most one handle is live at a time and every handle is released exactly
// once: on replacement, on reset, or on Close.
package lifecycle

import (
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/soocke/rustlens/domain/detection"
)

// Backend acquires and frees the resource a handle stands for (decoded pixels,
// a toolkit photo image, ...).
type Backend interface {
	Acquire(id string, sel *detection.Selection) (any, error)
	Free(id string, resource any)
}

// Hooks are optional callbacks fired after a handle is acquired or released.
type Hooks struct {
	OnAcquire func(id string)
	OnRelease func(id string)
}

// Handle is a resolvable reference to the displayed image of one selection.
type Handle struct {
	id       string
	sel      *detection.Selection
	resource any
	released bool
}

// ID returns the handle URI ("handle:<uuid>").
func (h *Handle) ID() string {
	if h == nil {
		return ""
	}
	return h.id
}

// Selection returns the selection the handle was derived from.
func (h *Handle) Selection() *detection.Selection {
	if h == nil {
		return nil
	}
	return h.sel
}

// Resource returns the backend resource, or nil once released.
func (h *Handle) Resource() any {
	if h == nil || h.released {
		return nil
	}
	return h.resource
}

// Released reports whether the handle has been freed.
func (h *Handle) Released() bool { return h == nil || h.released }

// Stats summarizes handle bookkeeping.
type Stats struct {
	Created  uint64
	Released uint64
	Live     int64
}

// Lifecycle mints and releases handles. All methods except Stats and Live must
// be called from the UI thread.
type Lifecycle struct {
	backend Backend
	logger  *slog.Logger
	hooks   Hooks
	current *Handle

	created  atomic.Uint64
	released atomic.Uint64
	live     atomic.Int64
}

// New returns a Lifecycle backed by backend.
func New(backend Backend, logger *slog.Logger, hooks Hooks) *Lifecycle {
	return &Lifecycle{backend: backend, logger: logger, hooks: hooks}
}

// Select releases the current handle and binds a new one to sel. An empty sel
// is rejected with detection.ErrEmptyFile and leaves the current handle alone.
func (l *Lifecycle) Select(sel *detection.Selection) (*Handle, error) {
	if sel.Empty() {
		return nil, detection.ErrEmptyFile
	}
	l.Release(l.current)
	l.current = nil

	id := "handle:" + uuid.NewString()
	var res any
	if l.backend != nil {
		r, err := l.backend.Acquire(id, sel)
		if err != nil {
			if l.logger != nil {
				l.logger.Error("handle acquire", "file", sel.Name, "error", err)
			}
			return nil, err
		}
		res = r
	}
	h := &Handle{id: id, sel: sel, resource: res}
	l.current = h
	l.created.Add(1)
	l.live.Add(1)
	if l.logger != nil {
		l.logger.Debug("handle acquired", "handle", id, "file", sel.Name, "bytes", len(sel.Data))
	}
	if l.hooks.OnAcquire != nil {
		l.hooks.OnAcquire(id)
	}
	return h, nil
}

// Release frees h. Nil and already released handles are ignored.
func (l *Lifecycle) Release(h *Handle) {
	if h == nil || h.released {
		return
	}
	h.released = true
	if l.backend != nil {
		l.backend.Free(h.id, h.resource)
	}
	h.resource = nil
	if l.current == h {
		l.current = nil
	}
	l.released.Add(1)
	l.live.Add(-1)
	if l.logger != nil {
		l.logger.Debug("handle released", "handle", h.id)
	}
	if l.hooks.OnRelease != nil {
		l.hooks.OnRelease(h.id)
	}
}

// Current returns the live handle, or nil.
func (l *Lifecycle) Current() *Handle { return l.current }

// Reset releases the live handle, if any.
func (l *Lifecycle) Reset() { l.Release(l.current) }

// Close releases the live handle on teardown.
func (l *Lifecycle) Close() { l.Reset() }

// Live returns the number of handles not yet released. Safe from any goroutine.
func (l *Lifecycle) Live() int64 { return l.live.Load() }

// Stats returns counters. Safe from any goroutine.
func (l *Lifecycle) Stats() Stats {
	return Stats{Created: l.created.Load(), Released: l.released.Load(), Live: l.live.Load()}
}
