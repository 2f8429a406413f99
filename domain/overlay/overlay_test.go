package overlay

import (
	"bytes"
	"fmt"
	"image/color"
	"strings"
	"testing"

	"github.com/soocke/rustlens/domain/detection"
)

// recordingSurface logs every call so tests can assert the drawing sequence.
type recordingSurface struct {
	ops       []string
	charWidth float64
}

func (s *recordingSurface) Resize(w, h int) { s.ops = append(s.ops, fmt.Sprintf("resize %d %d", w, h)) }
func (s *recordingSurface) Clear()          { s.ops = append(s.ops, "clear") }
func (s *recordingSurface) DrawRectOutline(x, y, w, h, lw float64, c color.Color) {
	s.ops = append(s.ops, fmt.Sprintf("outline %g %g %g %g lw=%g", x, y, w, h, lw))
}
func (s *recordingSurface) DrawFilledRect(x, y, w, h float64, c color.Color) {
	s.ops = append(s.ops, fmt.Sprintf("fill %g %g %g %g", x, y, w, h))
}
func (s *recordingSurface) DrawText(text string, x, y float64, c color.Color) {
	s.ops = append(s.ops, fmt.Sprintf("text %q %g %g", text, x, y))
}
func (s *recordingSurface) MeasureTextWidth(text string) float64 {
	return float64(len(text)) * s.charWidth
}

func rustResult() *detection.Result {
	return &detection.Result{
		CorrosionPercent: 25,
		Detections: []detection.Detection{
			{XMin: 10, YMin: 20, XMax: 110, YMax: 70, Confidence: 0.8345, Name: "rust"},
		},
	}
}

func TestNewProjector(t *testing.T) {
	cases := []struct {
		nw, nh, dw, dh int
		sx, sy         float64
		ok             bool
	}{
		{200, 100, 400, 200, 2, 2, true},
		{640, 480, 320, 240, 0.5, 0.5, true},
		{1000, 500, 600, 300, 0.6, 0.6, true},
		{300, 300, 600, 150, 2, 0.5, true},
		{0, 100, 400, 200, 0, 0, false},
		{200, 0, 400, 200, 0, 0, false},
	}
	for _, c := range cases {
		p, ok := NewProjector(c.nw, c.nh, c.dw, c.dh)
		if ok != c.ok {
			t.Fatalf("NewProjector(%d,%d,%d,%d) ok=%v want %v", c.nw, c.nh, c.dw, c.dh, ok, c.ok)
		}
		if !ok {
			continue
		}
		if p.ScaleX != float64(c.dw)/float64(c.nw) || p.ScaleY != float64(c.dh)/float64(c.nh) {
			t.Fatalf("scale for %+v: got %g,%g", c, p.ScaleX, p.ScaleY)
		}
		if p.ScaleX != c.sx || p.ScaleY != c.sy {
			t.Fatalf("scale for %+v: got %g,%g want %g,%g", c, p.ScaleX, p.ScaleY, c.sx, c.sy)
		}
	}
}

func TestLabel(t *testing.T) {
	cases := map[float64]string{
		0.8345: "rust 83.5%",
		1:      "rust 100.0%",
		0.05:   "rust 5.0%",
		0:      "rust 0.0%",
	}
	for conf, want := range cases {
		if got := Label(detection.Detection{Name: "rust", Confidence: conf}); got != want {
			t.Fatalf("Label(%g) = %q want %q", conf, got, want)
		}
	}
}

func TestRender_ScaledBoxAndLabel(t *testing.T) {
	s := &recordingSurface{charWidth: 7}
	p, _ := NewProjector(200, 100, 400, 200)
	NewRenderer(DefaultStyle()).Render(s, rustResult(), &p)

	want := []string{
		"clear",
		"resize 400 200",
		"outline 20 40 200 100 lw=2",
		"fill 20 40 76 20", // 10 chars * 7 + 6 padding
		`text "rust 83.5%" 23 40`,
	}
	if strings.Join(s.ops, "\n") != strings.Join(want, "\n") {
		t.Fatalf("unexpected ops:\n%s\nwant:\n%s", strings.Join(s.ops, "\n"), strings.Join(want, "\n"))
	}
}

func TestRender_NoResultOrProjectorOnlyClears(t *testing.T) {
	p, _ := NewProjector(200, 100, 400, 200)
	for name, run := range map[string]func(Surface){
		"nil result":    func(s Surface) { NewRenderer(Style{}).Render(s, nil, &p) },
		"nil projector": func(s Surface) { NewRenderer(Style{}).Render(s, rustResult(), nil) },
	} {
		s := &recordingSurface{}
		run(s)
		if len(s.ops) != 1 || s.ops[0] != "clear" {
			t.Fatalf("%s: expected a single clear, got %v", name, s.ops)
		}
	}
}

func TestRender_EmptyDetectionsDrawNothing(t *testing.T) {
	s := &recordingSurface{}
	p, _ := NewProjector(200, 100, 400, 200)
	NewRenderer(Style{}).Render(s, &detection.Result{Detections: []detection.Detection{}}, &p)
	if len(s.ops) != 2 || s.ops[0] != "clear" || s.ops[1] != "resize 400 200" {
		t.Fatalf("unexpected ops %v", s.ops)
	}
}

func TestRender_PreservesResponseOrder(t *testing.T) {
	s := &recordingSurface{charWidth: 1}
	p, _ := NewProjector(10, 10, 10, 10)
	res := &detection.Result{Detections: []detection.Detection{
		{Name: "b", XMax: 5, YMax: 5, Confidence: 0.9},
		{Name: "a", XMax: 5, YMax: 5, Confidence: 0.1},
		{Name: "c", XMax: 5, YMax: 5, Confidence: 0.5},
	}}
	NewRenderer(Style{}).Render(s, res, &p)
	var texts []string
	for _, op := range s.ops {
		if strings.HasPrefix(op, "text ") {
			texts = append(texts, op)
		}
	}
	if len(texts) != 3 || !strings.Contains(texts[0], `"b `) || !strings.Contains(texts[1], `"a `) || !strings.Contains(texts[2], `"c `) {
		t.Fatalf("order not preserved: %v", texts)
	}
}

func TestRaster_RenderIsIdempotent(t *testing.T) {
	p, _ := NewProjector(200, 100, 400, 200)
	r := NewRenderer(DefaultStyle())

	once := NewRaster(nil)
	r.Render(once, rustResult(), &p)

	twice := NewRaster(nil)
	r.Render(twice, rustResult(), &p)
	r.Render(twice, rustResult(), &p)

	if !bytes.Equal(once.Image().Pix, twice.Image().Pix) {
		t.Fatalf("second render changed the surface")
	}
}

func TestRaster_StaleBoxesCleared(t *testing.T) {
	p, _ := NewProjector(200, 100, 400, 200)
	r := NewRenderer(DefaultStyle())
	s := NewRaster(nil)
	r.Render(s, rustResult(), &p)
	r.Render(s, &detection.Result{Detections: []detection.Detection{}}, &p)
	for i, b := range s.Image().Pix {
		if b != 0 {
			t.Fatalf("pixel byte %d not cleared: %d", i, b)
		}
	}
	r.Render(s, rustResult(), &p)
	r.Render(s, nil, nil)
	for i, b := range s.Image().Pix {
		if b != 0 {
			t.Fatalf("pixel byte %d not cleared after nil render: %d", i, b)
		}
	}
}

func TestRaster_DrawsAtProjectedPixels(t *testing.T) {
	p, _ := NewProjector(200, 100, 400, 200)
	s := NewRaster(nil)
	NewRenderer(DefaultStyle()).Render(s, rustResult(), &p)
	img := s.Image()
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 200 {
		t.Fatalf("surface not resized: %v", b)
	}
	red := color.RGBA{R: 0xff, A: 0xff}
	// bottom-right corner of the outline and the middle of the right edge
	for _, pt := range [][2]int{{219, 139}, {220, 90}} {
		if got := img.RGBAAt(pt[0], pt[1]); got != red {
			t.Fatalf("pixel %v = %v, want red", pt, got)
		}
	}
	// box interior below the label stays transparent
	if got := img.RGBAAt(120, 100); got.A != 0 {
		t.Fatalf("interior pixel painted: %v", got)
	}
	// outside the box
	if got := img.RGBAAt(300, 180); got.A != 0 {
		t.Fatalf("outside pixel painted: %v", got)
	}
	// label text is drawn in white inside the label background
	white := 0
	for y := 40; y < 60; y++ {
		for x := 23; x < 23+70; x++ {
			if c := img.RGBAAt(x, y); c.R == 0xff && c.G == 0xff && c.B == 0xff {
				white++
			}
		}
	}
	if white == 0 {
		t.Fatalf("no label text pixels found")
	}
	if w := s.MeasureTextWidth("rust 83.5%"); w != 70 {
		t.Fatalf("basicfont width = %g, want 70", w)
	}
}
