package view

import (
	"fmt"

	//lint:ignore ST1001 Dot import for concise Tk widget DSL.
	. "modernc.org/tk9.0"
)

// StatusBar shows the endpoint in use and the display handle counters.
type StatusBar interface {
	SetEndpoint(url string)
	SetHandles(live int64, released uint64)
}

type statusBar struct {
	endpointLbl *LabelWidget
	handlesLbl  *LabelWidget
}

// NewStatusBar creates the endpoint and handles labels in a grid layout.
// The endpoint label is placed at (row, startCol) and handles label at (row, startCol+1).
func NewStatusBar(parent *FrameWidget, row, startCol int) StatusBar {
	s := &statusBar{endpointLbl: Label(Anchor("w")), handlesLbl: Label(Width(24), Anchor("e"))}
	Grid(s.endpointLbl, In(parent), Row(row), Column(startCol), Sticky("w"), Padx("0.2m"))
	Grid(s.handlesLbl, In(parent), Row(row), Column(startCol+1), Sticky("e"), Padx("0.2m"))
	s.endpointLbl.Configure(Txt("Endpoint: <none>"))
	s.handlesLbl.Configure(Txt("Handles: 0 live"))
	return s
}

func (s *statusBar) SetEndpoint(url string) {
	if s == nil || s.endpointLbl == nil {
		return
	}
	s.endpointLbl.Configure(Txt("Endpoint: " + url))
}

func (s *statusBar) SetHandles(live int64, released uint64) {
	if s == nil || s.handlesLbl == nil {
		return
	}
	s.handlesLbl.Configure(Txt(fmt.Sprintf("Handles: %d live, %d released", live, released)))
}
