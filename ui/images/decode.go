package images

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/soocke/rustlens/domain/detection"
)

// Decoded is a selected image prepared for display: the natural pixels and a
// copy scaled to fit the preview area.
type Decoded struct {
	Format  string
	Natural image.Image
	Display image.Image
}

// NaturalSize returns the intrinsic pixel size, or 0x0 once released.
func (d *Decoded) NaturalSize() (int, int) {
	if d == nil || d.Natural == nil {
		return 0, 0
	}
	b := d.Natural.Bounds()
	return b.Dx(), b.Dy()
}

// DisplaySize returns the displayed pixel size, or 0x0 once released.
func (d *Decoded) DisplaySize() (int, int) {
	if d == nil || d.Display == nil {
		return 0, 0
	}
	b := d.Display.Bounds()
	return b.Dx(), b.Dy()
}

// DisplayImage returns the scaled image shown to the user.
func (d *Decoded) DisplayImage() image.Image {
	if d == nil {
		return nil
	}
	return d.Display
}

// Release drops the pixel buffers.
func (d *Decoded) Release() {
	if d == nil {
		return
	}
	d.Natural, d.Display = nil, nil
}

// Prepare decodes data and scales it to fit maxW x maxH.
func Prepare(data []byte, maxW, maxH int) (*Decoded, error) {
	if len(data) == 0 {
		return nil, errors.New("decode image: empty payload")
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return &Decoded{Format: format, Natural: img, Display: ScaleToFit(img, maxW, maxH)}, nil
}

// Backend decodes selections for the display handle lifecycle.
type Backend struct {
	MaxW, MaxH int
}

func (b Backend) Acquire(_ string, sel *detection.Selection) (any, error) {
	if sel.Empty() {
		return nil, detection.ErrEmptyFile
	}
	return Prepare(sel.Data, b.MaxW, b.MaxH)
}

func (b Backend) Free(_ string, res any) {
	if d, ok := res.(*Decoded); ok {
		d.Release()
	}
}
