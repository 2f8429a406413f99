package view

import (
	"fmt"
	"strings"

	"github.com/soocke/rustlens/ui/presenter"
	"github.com/soocke/rustlens/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// ResultPanel renders the error line, coverage, detections table and the raw
// JSON view.
type ResultPanel interface {
	ShowPanel(p presenter.Panel)
}

type resultPanel struct {
	errorLbl    *LabelWidget
	coverageLbl *LabelWidget
	table       *TextWidget
	toggleBtn   *TButtonWidget
	raw         *TextWidget
}

// NewResultPanel builds the panel inside parent starting at row.
func NewResultPanel(parent *FrameWidget, row int, onToggleRaw func()) ResultPanel {
	pal := theme.CurrentPalette()
	v := &resultPanel{}
	v.errorLbl = Label(Txt(""), Foreground(pal.Danger), Anchor("w"))
	Grid(v.errorLbl, In(parent), Row(row), Column(0), Sticky("we"), Padx("0.4m"), Pady("0.2m"))
	v.coverageLbl = Label(Txt(""), Anchor("w"))
	Grid(v.coverageLbl, In(parent), Row(row+1), Column(0), Sticky("we"), Padx("0.4m"), Pady("0.2m"))
	v.table = Text(Height(8), Width(48), Wrap("none"))
	Grid(v.table, In(parent), Row(row+2), Column(0), Sticky("we"), Padx("0.4m"), Pady("0.2m"))
	v.toggleBtn = TButton(Txt("Show JSON Response"), Style(theme.StyleSecondaryButton), Command(onToggleRaw))
	Grid(v.toggleBtn, In(parent), Row(row+3), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.2m"))
	v.raw = Text(Height(12), Width(48), Wrap("none"))
	Grid(v.raw, In(parent), Row(row+4), Column(0), Sticky("we"), Padx("0.4m"), Pady("0.2m"))
	v.ShowPanel(presenter.Panel{})
	return v
}

func (v *resultPanel) ShowPanel(p presenter.Panel) {
	if v == nil {
		return
	}
	v.errorLbl.Configure(Txt(p.ErrorText))
	v.coverageLbl.Configure(Txt(p.Coverage))
	setText(v.table, tableText(p))

	toggle := "disabled"
	if p.HasResult {
		toggle = "normal"
	}
	label := p.ToggleLabel
	if label == "" {
		label = "Show JSON Response"
	}
	v.toggleBtn.Configure(Txt(label), State(toggle))
	setText(v.raw, p.RawJSON)
}

func tableText(p presenter.Panel) string {
	if !p.HasResult {
		return ""
	}
	if p.EmptyText != "" {
		return p.EmptyText
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-4s %-24s %s\n", "#", "Name", "Severity")
	for _, r := range p.Rows {
		fmt.Fprintf(&b, "%-4d %-24s %s\n", r.Index, r.Name, r.Severity)
	}
	return b.String()
}

// setText replaces the content of a read-only text widget.
func setText(w *TextWidget, s string) {
	if w == nil {
		return
	}
	w.Configure(State("normal"))
	w.Delete("1.0", END)
	if s != "" {
		w.Insert("1.0", s)
	}
	w.Configure(State("disabled"))
}
