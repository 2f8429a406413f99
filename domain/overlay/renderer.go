// Package overlay projects detection boxes from native image space onto the
// displayed image and draws them onto a Surface.
package overlay

import (
	"image/color"
	"strconv"

	"github.com/soocke/rustlens/domain/detection"
)

// Surface is the drawing target. Coordinates are displayed pixels with the
// origin at the top-left; DrawText anchors the top of the text at y.
type Surface interface {
	Resize(w, h int)
	Clear()
	DrawRectOutline(x, y, w, h, lineWidth float64, c color.Color)
	DrawFilledRect(x, y, w, h float64, c color.Color)
	DrawText(text string, x, y float64, c color.Color)
	MeasureTextWidth(text string) float64
}

// Style holds the overlay look.
type Style struct {
	BoxColor     color.Color
	LabelColor   color.Color
	TextColor    color.Color
	LineWidth    float64
	LabelHeight  float64
	LabelPadding float64 // total horizontal padding; text starts at half of it
}

// DefaultStyle is a 2px red outline with white text on a red label.
func DefaultStyle() Style {
	red := color.RGBA{R: 0xff, A: 0xff}
	return Style{
		BoxColor:     red,
		LabelColor:   red,
		TextColor:    color.White,
		LineWidth:    2,
		LabelHeight:  20,
		LabelPadding: 6,
	}
}

// Renderer draws detection results. It holds no per-frame state, so rendering
// the same inputs again produces the same surface.
type Renderer struct{ style Style }

// NewRenderer returns a renderer with style; zero fields fall back to
// DefaultStyle.
func NewRenderer(style Style) *Renderer {
	def := DefaultStyle()
	if style.BoxColor == nil {
		style.BoxColor = def.BoxColor
	}
	if style.LabelColor == nil {
		style.LabelColor = def.LabelColor
	}
	if style.TextColor == nil {
		style.TextColor = def.TextColor
	}
	if style.LineWidth <= 0 {
		style.LineWidth = def.LineWidth
	}
	if style.LabelHeight <= 0 {
		style.LabelHeight = def.LabelHeight
	}
	if style.LabelPadding < 0 {
		style.LabelPadding = def.LabelPadding
	}
	return &Renderer{style: style}
}

// Style returns the effective style.
func (r *Renderer) Style() Style { return r.style }

// Render clears s and, when both res and p are present, sizes s to the
// displayed image and draws every detection in response order.
func (r *Renderer) Render(s Surface, res *detection.Result, p *Projector) {
	if s == nil {
		return
	}
	s.Clear()
	if res == nil || p == nil {
		return
	}
	s.Resize(p.DisplayW, p.DisplayH)
	st := r.style
	for _, d := range res.Detections {
		b := p.Project(d)
		s.DrawRectOutline(b.X, b.Y, b.W, b.H, st.LineWidth, st.BoxColor)

		label := Label(d)
		tw := s.MeasureTextWidth(label)
		s.DrawFilledRect(b.X, b.Y, tw+st.LabelPadding, st.LabelHeight, st.LabelColor)
		s.DrawText(label, b.X+st.LabelPadding/2, b.Y, st.TextColor)
	}
}

// Label formats "<name> <confidence percent, one decimal>%".
func Label(d detection.Detection) string {
	return d.Name + " " + strconv.FormatFloat(d.Confidence*100, 'f', 1, 64) + "%"
}
