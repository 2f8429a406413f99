package presenter

import (
	"errors"
	"log/slog"

	"github.com/soocke/rustlens/domain/detection"
	"github.com/soocke/rustlens/domain/lifecycle"
	"github.com/soocke/rustlens/domain/request"
	"github.com/soocke/rustlens/ui/model"
)

// Alerter shows a notice the user must acknowledge.
type Alerter interface{ Alert(msg string) }

// DetectPresenter turns user actions (choose, detect, reset, toggle) into
// lifecycle, coordinator and view state updates. All methods run on the UI
// thread.
type DetectPresenter struct {
	state   *model.ViewState
	handles *lifecycle.Lifecycle
	coord   *request.Coordinator
	alert   Alerter
	logger  *slog.Logger
}

// NewDetectPresenter wires coord state changes into state.
func NewDetectPresenter(state *model.ViewState, handles *lifecycle.Lifecycle, coord *request.Coordinator, alert Alerter, logger *slog.Logger) *DetectPresenter {
	p := &DetectPresenter{state: state, handles: handles, coord: coord, alert: alert, logger: logger}
	coord.AddListener(func(_, next request.State) { state.SetRequest(next) })
	return p
}

// Select makes sel the current selection. Any in-flight request is
// invalidated before the old handle is released. An empty sel is ignored.
func (p *DetectPresenter) Select(sel *detection.Selection) error {
	if p == nil {
		return nil
	}
	if sel.Empty() {
		return detection.ErrEmptyFile
	}
	p.coord.Reset()
	h, err := p.handles.Select(sel)
	if err != nil {
		p.state.Clear()
		p.notify("Could not open " + sel.Name + ": " + err.Error())
		return err
	}
	p.state.SetSelection(sel, h)
	if p.logger != nil {
		p.logger.Info("selection", "file", sel.Name, "handle", h.ID())
	}
	return nil
}

// Submit sends the current selection for detection.
func (p *DetectPresenter) Submit() error {
	if p == nil {
		return nil
	}
	sel := p.state.Selection()
	if sel.Empty() {
		p.notify(detection.ErrNoSelection.Error())
		return detection.ErrNoSelection
	}
	err := p.coord.Submit(sel)
	switch {
	case err == nil:
	case errors.Is(err, request.ErrBusy):
		if p.logger != nil {
			p.logger.Debug("submit ignored", "reason", err)
		}
	default:
		if p.logger != nil {
			p.logger.Error("submit", "error", err)
		}
	}
	return err
}

// Reset drops the selection, its handle and any outcome.
func (p *DetectPresenter) Reset() {
	if p == nil {
		return
	}
	p.coord.Reset()
	p.handles.Reset()
	p.state.Clear()
}

// ToggleRawResult flips the raw JSON view.
func (p *DetectPresenter) ToggleRawResult() {
	if p == nil {
		return
	}
	p.state.ToggleRawResult()
}

// Tick applies finished requests. Call from the UI loop.
func (p *DetectPresenter) Tick() {
	if p == nil {
		return
	}
	p.coord.Poll()
}

// Close is the teardown path: stops the coordinator and releases the handle.
func (p *DetectPresenter) Close() {
	if p == nil {
		return
	}
	p.coord.Close()
	p.handles.Close()
	p.state.Clear()
}

func (p *DetectPresenter) notify(msg string) {
	if p.alert != nil {
		p.alert.Alert(msg)
	}
}
