package overlay

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Raster is a Surface backed by a transparent RGBA image, meant to be
// composited over the displayed picture.
type Raster struct {
	img  *image.RGBA
	face font.Face
}

// NewRaster returns an empty raster drawing text with face (basicfont 7x13
// when nil).
func NewRaster(face font.Face) *Raster {
	if face == nil {
		face = basicfont.Face7x13
	}
	return &Raster{img: image.NewRGBA(image.Rectangle{}), face: face}
}

// Image returns the backing image. It is replaced on Resize.
func (r *Raster) Image() *image.RGBA { return r.img }

func (r *Raster) Resize(w, h int) {
	w, h = max(w, 0), max(h, 0)
	if b := r.img.Bounds(); b.Dx() == w && b.Dy() == h {
		return
	}
	r.img = image.NewRGBA(image.Rect(0, 0, w, h))
}

func (r *Raster) Clear() { clear(r.img.Pix) }

func (r *Raster) DrawRectOutline(x, y, w, h, lineWidth float64, c color.Color) {
	if w < 0 {
		x, w = x+w, -w
	}
	if h < 0 {
		y, h = y+h, -h
	}
	half := lineWidth / 2
	r.fill(x-half, y-half, x+w+half, y+half, c)     // top
	r.fill(x-half, y+h-half, x+w+half, y+h+half, c) // bottom
	r.fill(x-half, y+half, x+half, y+h-half, c)     // left
	r.fill(x+w-half, y+half, x+w+half, y+h-half, c) // right
}

func (r *Raster) DrawFilledRect(x, y, w, h float64, c color.Color) {
	r.fill(x, y, x+w, y+h, c)
}

func (r *Raster) DrawText(text string, x, y float64, c color.Color) {
	d := font.Drawer{
		Dst:  r.img,
		Src:  image.NewUniform(c),
		Face: r.face,
		Dot: fixed.Point26_6{
			X: fixed.Int26_6(math.Round(x * 64)),
			Y: fixed.Int26_6(math.Round(y*64)) + r.face.Metrics().Ascent,
		},
	}
	d.DrawString(text)
}

func (r *Raster) MeasureTextWidth(text string) float64 {
	return float64(font.MeasureString(r.face, text)) / 64
}

func (r *Raster) fill(x0, y0, x1, y1 float64, c color.Color) {
	rect := image.Rect(
		int(math.Round(x0)), int(math.Round(y0)),
		int(math.Round(x1)), int(math.Round(y1)),
	).Intersect(r.img.Bounds())
	if rect.Empty() {
		return
	}
	draw.Draw(r.img, rect, image.NewUniform(c), image.Point{}, draw.Over)
}
