package model

import (
	"github.com/soocke/rustlens/domain/detection"
	"github.com/soocke/rustlens/domain/lifecycle"
	"github.com/soocke/rustlens/domain/request"
)

// Change is a bit set describing what a ViewState update touched.
type Change uint8

const (
	// ChangeSelection: the selection and its display handle were replaced or cleared.
	ChangeSelection Change = 1 << iota
	// ChangeResult: the accepted detection result changed (including to none).
	ChangeResult
	// ChangeRequest: loading or error changed.
	ChangeRequest
	// ChangeFlags: presentation toggles changed.
	ChangeFlags
)

// Has reports whether any bit of o is set in c.
func (c Change) Has(o Change) bool { return c&o != 0 }

// Flags are presentation toggles independent of the request phase.
type Flags struct {
	ShowRawResult bool
}

// Listener is notified after every update with the bits that changed.
type Listener func(change Change, vs *ViewState)

// ViewState aggregates what the window shows. Listeners re-derive their
// output from the current state, never from the change history.
// No synchronization needed: updates occur on the UI thread.
type ViewState struct {
	selection *detection.Selection
	handle    *lifecycle.Handle
	request   request.State
	flags     Flags
	listeners []Listener
}

func NewViewState() *ViewState { return &ViewState{} }

// Subscribe registers l for updates.
func (vs *ViewState) Subscribe(l Listener) {
	if vs == nil || l == nil {
		return
	}
	vs.listeners = append(vs.listeners, l)
}

func (vs *ViewState) Selection() *detection.Selection {
	if vs == nil {
		return nil
	}
	return vs.selection
}

func (vs *ViewState) Handle() *lifecycle.Handle {
	if vs == nil {
		return nil
	}
	return vs.handle
}

func (vs *ViewState) Request() request.State {
	if vs == nil {
		return request.State{}
	}
	return vs.request
}

// Loading reports whether a request is pending.
func (vs *ViewState) Loading() bool { return vs.Request().Pending() }

// Result returns the accepted result, or nil.
func (vs *ViewState) Result() *detection.Result { return vs.Request().Result }

// ErrorMessage returns the text of the last failure, or "".
func (vs *ViewState) ErrorMessage() string { return vs.Request().Message() }

func (vs *ViewState) Flags() Flags {
	if vs == nil {
		return Flags{}
	}
	return vs.flags
}

// SetSelection binds a new selection and handle. The previous result, error
// and raw view are dropped in the same update.
func (vs *ViewState) SetSelection(sel *detection.Selection, h *lifecycle.Handle) {
	if vs == nil {
		return
	}
	change := ChangeSelection
	change |= vs.setRequest(request.State{})
	change |= vs.setFlags(Flags{})
	vs.selection, vs.handle = sel, h
	vs.emit(change)
}

// Clear drops the selection, handle, outcome and toggles.
func (vs *ViewState) Clear() {
	if vs == nil {
		return
	}
	change := vs.setRequest(request.State{}) | vs.setFlags(Flags{})
	if vs.selection != nil || vs.handle != nil {
		change |= ChangeSelection
	}
	vs.selection, vs.handle = nil, nil
	vs.emit(change)
}

// SetRequest mirrors the coordinator state. Entering Pending hides the raw view.
func (vs *ViewState) SetRequest(st request.State) {
	if vs == nil {
		return
	}
	change := vs.setRequest(st)
	if st.Pending() {
		change |= vs.setFlags(Flags{})
	}
	vs.emit(change)
}

// ToggleRawResult flips the raw result toggle.
func (vs *ViewState) ToggleRawResult() {
	if vs == nil {
		return
	}
	vs.emit(vs.setFlags(Flags{ShowRawResult: !vs.flags.ShowRawResult}))
}

func (vs *ViewState) setRequest(st request.State) Change {
	prev := vs.request
	var c Change
	if prev.Result != st.Result {
		c |= ChangeResult
	}
	if prev.Status != st.Status || prev.Err != st.Err {
		c |= ChangeRequest
	}
	vs.request = st
	return c
}

func (vs *ViewState) setFlags(f Flags) Change {
	if vs.flags == f {
		return 0
	}
	vs.flags = f
	return ChangeFlags
}

func (vs *ViewState) emit(c Change) {
	if c == 0 {
		return
	}
	for _, l := range vs.listeners {
		l(c, vs)
	}
}
